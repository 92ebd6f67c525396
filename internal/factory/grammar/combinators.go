package grammar

import (
	"sort"
	"strings"
)

// parser consumes tokens starting at pos and returns the value and the
// position after it.
type parser[T any] func(st *state, pos int) (T, int, bool)

// state is the per-call parse state. Parsers themselves hold no state, so a
// grammar can be shared between goroutines.
type state struct {
	toks     []token
	silent   int
	furthest int
	expected map[string]struct{}
}

func newState(toks []token) *state {
	return &state{toks: toks, furthest: -1, expected: make(map[string]struct{})}
}

// fail records what was expected at pos.
func (st *state) fail(pos int, what string) {
	if st.silent > 0 || pos < st.furthest {
		return
	}
	if pos > st.furthest {
		st.furthest = pos
		clear(st.expected)
	}
	st.expected[what] = struct{}{}
}

func (st *state) expectation() string {
	names := make([]string, 0, len(st.expected))
	for name := range st.expected {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, " | ")
}

// option is the result of an optional parser.
type option[T any] struct {
	Value T
	OK    bool
}

// cursor threads a position through a sequence of parsers; after the first
// failure every later step is skipped.
type cursor struct {
	st  *state
	pos int
	ok  bool
}

func begin(st *state, pos int) *cursor {
	return &cursor{st: st, pos: pos, ok: true}
}

func run[T any](c *cursor, p parser[T]) T {
	var zero T
	if !c.ok {
		return zero
	}
	v, next, ok := p(c.st, c.pos)
	if !ok {
		c.ok = false
		return zero
	}
	c.pos = next
	return v
}

// symbol matches one token of the given kind.
func symbol(kind tokenKind) parser[token] {
	return func(st *state, pos int) (token, int, bool) {
		if pos < len(st.toks) && st.toks[pos].kind == kind {
			return st.toks[pos], pos + 1, true
		}
		st.fail(pos, kind.String())
		return token{}, pos, false
	}
}

// keyword matches a case-insensitive phrase of one or more words.
func keyword(words ...string) parser[string] {
	text := strings.Join(words, " ")
	return func(st *state, pos int) (string, int, bool) {
		for i, w := range words {
			p := pos + i
			if p >= len(st.toks) || st.toks[p].kind != tokWord || st.toks[p].lower != w {
				st.fail(pos, `"`+text+`"`)
				return "", pos, false
			}
		}
		return text, pos + len(words), true
	}
}

// oneOf matches any one of the given single-word keywords.
func oneOf(words ...string) parser[string] {
	ps := make([]parser[string], len(words))
	for i, w := range words {
		ps[i] = keyword(w)
	}
	return alt(ps...)
}

// alt returns the result of the first parser that matches.
func alt[T any](ps ...parser[T]) parser[T] {
	return func(st *state, pos int) (T, int, bool) {
		for _, p := range ps {
			if v, next, ok := p(st, pos); ok {
				return v, next, true
			}
		}
		var zero T
		return zero, pos, false
	}
}

func opt[T any](p parser[T]) parser[option[T]] {
	return func(st *state, pos int) (option[T], int, bool) {
		v, next, ok := p(st, pos)
		if !ok {
			return option[T]{}, pos, true
		}
		return option[T]{Value: v, OK: true}, next, true
	}
}

func mapTo[T, R any](p parser[T], f func(T) R) parser[R] {
	return func(st *state, pos int) (R, int, bool) {
		v, next, ok := p(st, pos)
		if !ok {
			var zero R
			return zero, pos, false
		}
		return f(v), next, true
	}
}

// constant replaces a matched value.
func constant[T, R any](p parser[T], r R) parser[R] {
	return mapTo(p, func(T) R { return r })
}

// prefixed matches prefix then p and keeps only p's value.
func prefixed[P, T any](prefix parser[P], p parser[T]) parser[T] {
	return func(st *state, pos int) (T, int, bool) {
		c := begin(st, pos)
		run(c, prefix)
		v := run(c, p)
		if !c.ok {
			var zero T
			return zero, pos, false
		}
		return v, c.pos, true
	}
}

// sepBy1 matches p, then zero or more (sep p). A trailing separator is not
// consumed.
func sepBy1[T, S any](p parser[T], sep parser[S]) parser[[]T] {
	next := prefixed(sep, p)
	return func(st *state, pos int) ([]T, int, bool) {
		first, pos2, ok := p(st, pos)
		if !ok {
			return nil, pos, false
		}
		out := []T{first}
		for {
			v, after, ok := next(st, pos2)
			if !ok {
				return out, pos2, true
			}
			out = append(out, v)
			pos2 = after
		}
	}
}

// matchesSilently reports whether p matches at pos without recording
// expectations.
func matchesSilently[T any](st *state, pos int, p parser[T]) bool {
	st.silent++
	defer func() { st.silent-- }()
	_, _, ok := p(st, pos)
	return ok
}

// phrase matches a maximal run of word tokens, stopping before anything stop
// matches. The words are joined with single spaces.
func phrase[S any](stop parser[S]) parser[string] {
	return func(st *state, pos int) (string, int, bool) {
		var words []string
		p := pos
		for p < len(st.toks) && st.toks[p].kind == tokWord && !matchesSilently(st, p, stop) {
			words = append(words, st.toks[p].text)
			p++
		}
		if len(words) == 0 {
			st.fail(pos, "entity expression")
			return "", pos, false
		}
		return strings.Join(words, " "), p, true
	}
}

// end matches the end of input.
func end(st *state, pos int) (struct{}, int, bool) {
	if pos == len(st.toks) {
		return struct{}{}, pos, true
	}
	st.fail(pos, "end of text")
	return struct{}{}, pos, false
}
