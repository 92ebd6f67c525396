// Package result renders query outcomes as front-end messages with a
// textual fallback and handles reaction-driven navigation.
package result

import (
	"strconv"
	"unicode/utf8"
)

// MaxContentLength caps message content, counted in characters. Longer
// content is replaced with TooLong rather than truncated.
const MaxContentLength = 2000

// TooLong replaces content over MaxContentLength.
const TooLong = "Output was too long"

// Reaction is a navigation affordance attached to a message.
type Reaction string

const (
	ReactionPrevious Reaction = "⬅️"
	ReactionNext     Reaction = "➡️"
	ReactionInfo     Reaction = "ℹ️"
)

var numberReactions = []Reaction{"1️⃣", "2️⃣", "3️⃣", "4️⃣", "5️⃣", "6️⃣", "7️⃣", "8️⃣", "9️⃣"}

// NumberReaction returns the selector for position n, 1 through 9.
func NumberReaction(n int) (Reaction, bool) {
	if n < 1 || n > len(numberReactions) {
		return "", false
	}
	return numberReactions[n-1], true
}

// Number returns the position selected by r, 1 through 9.
func (r Reaction) Number() (int, bool) {
	for i, nr := range numberReactions {
		if r == nr {
			return i + 1, true
		}
	}
	return 0, false
}

// Name is a terminal-friendly name for the reaction.
func (r Reaction) Name() string {
	switch r {
	case ReactionPrevious:
		return "prev"
	case ReactionNext:
		return "next"
	case ReactionInfo:
		return "info"
	}
	if n, ok := r.Number(); ok {
		return strconv.Itoa(n)
	}
	return string(r)
}

// ParseReaction maps a terminal-friendly name back to its reaction.
func ParseReaction(name string) (Reaction, bool) {
	switch name {
	case "prev":
		return ReactionPrevious, true
	case "next":
		return ReactionNext, true
	case "info":
		return ReactionInfo, true
	}
	n, err := strconv.Atoi(name)
	if err != nil {
		return "", false
	}
	return NumberReaction(n)
}

// Message is the media-agnostic rendering of a result.
type Message struct {
	Content    string      `json:"content,omitempty" yaml:"content,omitempty"`
	Embed      *Embed      `json:"embed,omitempty" yaml:"embed,omitempty"`
	Reactions  []Reaction  `json:"reactions,omitempty" yaml:"reactions,omitempty"`
	Attachment *Attachment `json:"attachment,omitempty" yaml:"attachment,omitempty"`
}

// Embed is the titled body of a message.
type Embed struct {
	Title       string  `json:"title" yaml:"title"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Fields      []Field `json:"fields,omitempty" yaml:"fields,omitempty"`
	Footer      string  `json:"footer,omitempty" yaml:"footer,omitempty"`
}

// Field is a keyed group inside an embed.
type Field struct {
	Name   string `json:"name" yaml:"name"`
	Value  string `json:"value" yaml:"value"`
	Inline bool   `json:"inline,omitempty" yaml:"inline,omitempty"`
}

// AddField appends a field unless value is empty.
func (e *Embed) AddField(name, value string, inline bool) {
	if value == "" {
		return
	}
	e.Fields = append(e.Fields, Field{Name: name, Value: value, Inline: inline})
}

// Attachment is a file sent with a message.
type Attachment struct {
	Name    string `json:"name" yaml:"name"`
	Content string `json:"content" yaml:"content"`
}

func newMessage(content string) *Message {
	if utf8.RuneCountInString(content) > MaxContentLength {
		content = TooLong
	}
	return &Message{Content: content}
}
