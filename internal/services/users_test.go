package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)

	u, err := f.users.Register(f.ctx, " alice ", "hunter2", "Alice", "")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.NotEqual(t, "hunter2", u.Password)
	assert.False(t, u.IsAdmin)

	_, err = f.users.Register(f.ctx, "alice", "other", "Alice 2", "")
	assert.ErrorIs(t, err, ErrBadInput)

	_, err = f.users.Register(f.ctx, "bob", "", "Bob", "")
	assert.ErrorIs(t, err, ErrBadInput)

	got, err := f.users.Login(f.ctx, "alice", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = f.users.Login(f.ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = f.users.Login(f.ctx, "nobody", "hunter2")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestUserLookupsAndUpdate(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	f.user(t, "bob")

	byName, err := f.users.UserByName(f.ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byName.ID)

	_, err = f.users.UserByName(f.ctx, "carol")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.users.User(f.ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := f.users.Users(f.ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	name := "Alice Liddell"
	updated, err := f.users.UpdateUser(f.ctx, alice, UserPatch{DisplayName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Alice Liddell", updated.DisplayName)

	avatar := "/uploads/me.png"
	updated, err = f.users.UpdateUser(f.ctx, alice, UserPatch{Avatar: &avatar})
	require.NoError(t, err)
	assert.Equal(t, "Alice Liddell", updated.DisplayName)
	assert.Equal(t, avatar, updated.Avatar)

	blank := ""
	_, err = f.users.UpdateUser(f.ctx, alice, UserPatch{DisplayName: &blank})
	assert.ErrorIs(t, err, ErrBadInput)
	_, err = f.users.UpdateUser(f.ctx, nil, UserPatch{DisplayName: &name})
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestDeleteUserAuthorization(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	admin := f.admin(t, "root")

	assert.ErrorIs(t, f.users.DeleteUser(f.ctx, nil, alice.ID), ErrUnauthenticated)
	assert.ErrorIs(t, f.users.DeleteUser(f.ctx, bob, alice.ID), ErrForbidden)
	assert.ErrorIs(t, f.users.DeleteUser(f.ctx, admin, 999), ErrNotFound)

	require.NoError(t, f.users.DeleteUser(f.ctx, admin, alice.ID))
	require.NoError(t, f.users.DeleteUser(f.ctx, bob, bob.ID))

	all, err := f.users.Users(f.ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, admin.ID, all[0].ID)
}

func TestTopUsers(t *testing.T) {
	f := newFixture(t)
	prolific := f.user(t, "prolific")
	liked := f.user(t, "liked")
	v1 := f.user(t, "v1")
	v2 := f.user(t, "v2")
	ch := f.channel(t, prolific, "general")

	m1 := f.message(t, prolific, ch.ID, "a")
	f.message(t, prolific, ch.ID, "b")
	f.replyTo(t, prolific, m1.ID, "c")
	lm := f.message(t, liked, ch.ID, "good one")
	lr := f.replyTo(t, liked, m1.ID, "good reply")

	f.rate(t, v1, lm.Ref(), true)
	f.rate(t, v2, lm.Ref(), true)
	f.rate(t, v1, lr.Ref(), true)
	f.rate(t, v1, m1.Ref(), false)

	byPosts, err := f.users.TopUsers(f.ctx, TopByPosts, 2)
	require.NoError(t, err)
	require.Len(t, byPosts, 2)
	assert.Equal(t, prolific.ID, byPosts[0].ID)
	assert.Equal(t, int64(3), byPosts[0].Score)
	assert.Equal(t, liked.ID, byPosts[1].ID)
	assert.Equal(t, int64(2), byPosts[1].Score)

	byRatings, err := f.users.TopUsers(f.ctx, TopByRatings, 10)
	require.NoError(t, err)
	require.Len(t, byRatings, 4)
	assert.Equal(t, liked.ID, byRatings[0].ID)
	assert.Equal(t, int64(3), byRatings[0].Score)
	assert.Equal(t, prolific.ID, byRatings[len(byRatings)-1].ID)
	assert.Equal(t, int64(-1), byRatings[len(byRatings)-1].Score)

	_, err = f.users.TopUsers(f.ctx, "karma", 10)
	assert.ErrorIs(t, err, ErrBadInput)
}
