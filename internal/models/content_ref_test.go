package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseContentKind(t *testing.T) {
	k, ok := ParseContentKind("message")
	assert.True(t, ok)
	assert.Equal(t, KindMessage, k)

	k, ok = ParseContentKind("reply")
	assert.True(t, ok)
	assert.Equal(t, KindReply, k)

	_, ok = ParseContentKind("channel")
	assert.False(t, ok)
	_, ok = ParseContentKind("Message")
	assert.False(t, ok)
}

func TestContentRef(t *testing.T) {
	assert.Equal(t, "reply:7", ReplyRef(7).String())
	r := Rating{ContentID: 3, ContentType: KindMessage}
	assert.Equal(t, MessageRef(3), r.Ref())
}

func TestCanModify(t *testing.T) {
	var anon *User
	assert.False(t, anon.CanModify(1))
	assert.True(t, (&User{ID: 1}).CanModify(1))
	assert.False(t, (&User{ID: 2}).CanModify(1))
	assert.True(t, (&User{ID: 2, IsAdmin: true}).CanModify(1))
}
