package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestDetectMessageType(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"single emoji", "😀", MessageTypeEmoji},
		{"several emoji", "😀😂👍", MessageTypeEmoji},
		{"emoji with surrounding spaces", "  🎉  ", MessageTypeEmoji},
		{"ten emoji", "😀😀😀😀😀😀😀😀😀😀", MessageTypeEmoji},
		{"eleven emoji", "😀😀😀😀😀😀😀😀😀😀😀", MessageTypeText},
		{"mixed text and emoji", "Hello 😀 there", MessageTypeText},
		{"plain text", "hello", MessageTypeText},
		{"short text", "ok", MessageTypeText},
		{"empty", "", MessageTypeText},
		{"heart suit", "❤️", MessageTypeEmoji},
		{"flag", "🇩🇪", MessageTypeEmoji},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectMessageType(tt.content))
		})
	}
}

func TestConversationKey(t *testing.T) {
	a := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	b := uuid.MustParse("22222222-2222-2222-2222-222222222222")

	// Same key regardless of argument order.
	assert.Equal(t, ConversationKey(a, b), ConversationKey(b, a))

	// Lower UUID string comes first.
	assert.Equal(t, a.String()+":"+b.String(), ConversationKey(b, a))
}
