// Package format assembles Telegram message text together with the entities
// that style it, so nothing has to be escaped for a parse mode.
package format

import (
	"strings"
	"unicode/utf16"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Message is plain text plus the entities Telegram renders over it.
type Message struct {
	Text     string
	Entities []tgbotapi.MessageEntity
}

// UTF16Len returns the length of s in UTF-16 code units, the unit Telegram
// uses for entity offsets.
func UTF16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// Builder appends text and records entity offsets as it goes.
type Builder struct {
	sb       strings.Builder
	offset   int
	entities []tgbotapi.MessageEntity
}

func (b *Builder) Text(s string) *Builder {
	b.sb.WriteString(s)
	b.offset += UTF16Len(s)
	return b
}

// Line writes s followed by a newline.
func (b *Builder) Line(s string) *Builder {
	return b.Text(s + "\n")
}

func (b *Builder) Bold(s string) *Builder   { return b.styled("bold", s) }
func (b *Builder) Italic(s string) *Builder { return b.styled("italic", s) }
func (b *Builder) Code(s string) *Builder   { return b.styled("code", s) }

func (b *Builder) styled(kind, s string) *Builder {
	if s == "" {
		return b
	}
	b.entities = append(b.entities, tgbotapi.MessageEntity{
		Type:   kind,
		Offset: b.offset,
		Length: UTF16Len(s),
	})
	return b.Text(s)
}

// Message returns the built text without trailing blank space. Entities are
// already in offset order.
func (b *Builder) Message() Message {
	text := strings.TrimRight(b.sb.String(), " \n")
	limit := UTF16Len(text)

	entities := make([]tgbotapi.MessageEntity, 0, len(b.entities))
	for _, e := range b.entities {
		if e.Offset >= limit {
			continue
		}
		if e.Offset+e.Length > limit {
			e.Length = limit - e.Offset
		}
		entities = append(entities, e)
	}
	return Message{Text: text, Entities: entities}
}
