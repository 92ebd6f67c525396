package grammar

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokWord tokenKind = iota
	tokInt
	tokQuestion
	tokUnderscore
	tokPlus
)

func (k tokenKind) String() string {
	switch k {
	case tokInt:
		return "integer"
	case tokQuestion:
		return `"?"`
	case tokUnderscore:
		return `"_"`
	case tokPlus:
		return `"+"`
	default:
		return "word"
	}
}

type token struct {
	kind   tokenKind
	text   string
	lower  string
	offset int
	num    int
}

// lexError reports an unexpected character at a byte offset.
type lexError struct {
	offset int
	msg    string
}

func isWordRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return true
	}
	switch r {
	case '_', ':', '.', '*', '-':
		return true
	}
	return false
}

// lex splits raw into tokens. "?" and "+" are always standalone; a word that
// is exactly "_" is the any marker; an all-digit word is an integer.
func lex(raw string) ([]token, *lexError) {
	var toks []token
	start := -1

	flush := func(end int) *lexError {
		if start < 0 {
			return nil
		}
		text := raw[start:end]
		t := token{kind: tokWord, text: text, lower: strings.ToLower(text), offset: start}
		switch {
		case text == "_":
			t.kind = tokUnderscore
		case isDigits(text):
			n, err := strconv.Atoi(text)
			if err != nil {
				return &lexError{offset: start, msg: fmt.Sprintf("number %s is out of range", text)}
			}
			t.kind = tokInt
			t.num = n
		}
		toks = append(toks, t)
		start = -1
		return nil
	}

	for i := 0; i < len(raw); {
		r, size := utf8.DecodeRuneInString(raw[i:])
		switch {
		case unicode.IsSpace(r):
			if err := flush(i); err != nil {
				return nil, err
			}
		case r == '?' || r == '+':
			if err := flush(i); err != nil {
				return nil, err
			}
			kind := tokQuestion
			if r == '+' {
				kind = tokPlus
			}
			toks = append(toks, token{kind: kind, text: string(r), lower: string(r), offset: i})
		case isWordRune(r):
			if start < 0 {
				start = i
			}
		default:
			return nil, &lexError{offset: i, msg: fmt.Sprintf("unexpected character %q", r)}
		}
		i += size
	}
	if err := flush(len(raw)); err != nil {
		return nil, err
	}
	return toks, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
