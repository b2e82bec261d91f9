package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchContent(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	ch := f.channel(t, alice, "general")
	m := f.message(t, alice, ch.ID, "Gophers are GREAT")
	f.message(t, bob, ch.ID, "nothing here")
	f.replyTo(t, bob, m.ID, "great indeed")
	f.replyTo(t, bob, m.ID, "100% agree")

	res, err := f.search.SearchContent(f.ctx, "great")
	require.NoError(t, err)
	assert.Len(t, res.Messages, 1)
	assert.Len(t, res.Replies, 1)

	res, err = f.search.SearchContent(f.ctx, "%")
	require.NoError(t, err)
	assert.Empty(t, res.Messages)
	assert.Len(t, res.Replies, 1, "wildcards are matched literally")

	res, err = f.search.SearchContent(f.ctx, "  ")
	require.NoError(t, err)
	assert.Empty(t, res.Messages)
	assert.Empty(t, res.Replies)

	res, err = f.search.ContentByUser(f.ctx, bob.ID)
	require.NoError(t, err)
	assert.Len(t, res.Messages, 1)
	assert.Len(t, res.Replies, 2)

	_, err = f.search.ContentByUser(f.ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSearchChannelsAndMessages(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner")
	v1 := f.user(t, "v1")
	v2 := f.user(t, "v2")
	f.channel(t, owner, "golang")
	_, err := f.forum.CreateChannel(f.ctx, owner, "misc", "talk about Go tooling")
	require.NoError(t, err)
	f.channel(t, owner, "rust")

	chs, err := f.search.SearchChannels(f.ctx, "go", SortRecent)
	require.NoError(t, err)
	assert.Len(t, chs, 2)

	_, err = f.search.SearchChannels(f.ctx, "go", "alphabetical")
	assert.ErrorIs(t, err, ErrBadInput)

	ch := f.channel(t, owner, "votes")
	low := f.message(t, owner, ch.ID, "topic low")
	high := f.message(t, owner, ch.ID, "topic high")
	mid := f.message(t, owner, ch.ID, "topic mid")
	f.rate(t, v1, low.Ref(), false)
	f.rate(t, v1, high.Ref(), true)
	f.rate(t, v2, high.Ref(), true)
	f.rate(t, v1, mid.Ref(), true)
	f.rate(t, v2, mid.Ref(), false)

	msgs, err := f.search.SearchMessages(f.ctx, "topic", SortRating)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, []uint{high.ID, mid.ID, low.ID}, []uint{msgs[0].ID, msgs[1].ID, msgs[2].ID})
	assert.Equal(t, Tally{Positive: 2}, msgs[0].Tally)

	msgs, err = f.search.SearchMessages(f.ctx, "topic", SortRecent)
	require.NoError(t, err)
	assert.Equal(t, mid.ID, msgs[0].ID)
}

func TestSearchUsers(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	f.user(t, "bob")

	users, err := f.search.SearchUsers(f.ctx, "ALI")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, alice.ID, users[0].ID)

	users, err = f.search.SearchUsers(f.ctx, fmt.Sprint(alice.ID))
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, alice.ID, users[0].ID)

	users, err = f.search.SearchUsers(f.ctx, "")
	require.NoError(t, err)
	assert.Len(t, users, 2)
}
