package services

import (
	"context"
	"testing"
	"threadline/internal/db"
	"threadline/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	ctx     context.Context
	db      *gorm.DB
	ratings *RatingService
	cascade *CascadeService
	forum   *ForumService
	users   *UserService
	search  *SearchService
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := db.Open(sqlite.Open("file::memory:?_pragma=foreign_keys(1)"), zap.NewNop())
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	// One connection, one in-memory database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(conn))
	return conn
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := newTestDB(t)
	log := zap.NewNop()
	ratings := NewRatingService(conn, log)
	cascade := NewCascadeService(conn, log)
	forum := NewForumService(conn, log, ratings, cascade)
	return &fixture{
		ctx:     context.Background(),
		db:      conn,
		ratings: ratings,
		cascade: cascade,
		forum:   forum,
		users:   NewUserService(conn, log, cascade),
		search:  NewSearchService(conn, forum),
	}
}

func (f *fixture) user(t *testing.T, name string) *models.User {
	t.Helper()
	u := &models.User{Username: name, Password: "x", DisplayName: name}
	require.NoError(t, f.db.Create(u).Error)
	return u
}

func (f *fixture) admin(t *testing.T, name string) *models.User {
	t.Helper()
	u := &models.User{Username: name, Password: "x", DisplayName: name, IsAdmin: true}
	require.NoError(t, f.db.Create(u).Error)
	return u
}

func (f *fixture) channel(t *testing.T, owner *models.User, name string) *models.Channel {
	t.Helper()
	ch, err := f.forum.CreateChannel(f.ctx, owner, name, "")
	require.NoError(t, err)
	return ch
}

func (f *fixture) message(t *testing.T, author *models.User, channelID uint, body string) *MessageView {
	t.Helper()
	m, err := f.forum.CreateMessage(f.ctx, author, channelID, body, "")
	require.NoError(t, err)
	return m
}

func (f *fixture) replyTo(t *testing.T, author *models.User, messageID uint, body string) *ReplyView {
	t.Helper()
	r, err := f.forum.CreateReply(f.ctx, author, NewReply{MessageID: &messageID, Content: body})
	require.NoError(t, err)
	return r
}

func (f *fixture) replyUnder(t *testing.T, author *models.User, parentID uint, body string) *ReplyView {
	t.Helper()
	r, err := f.forum.CreateReply(f.ctx, author, NewReply{ParentReplyID: &parentID, Content: body})
	require.NoError(t, err)
	return r
}

func (f *fixture) rate(t *testing.T, voter *models.User, ref models.ContentRef, up bool) {
	t.Helper()
	_, err := f.ratings.Rate(f.ctx, voter, ref.ID, string(ref.Kind), up)
	require.NoError(t, err)
}

func (f *fixture) count(t *testing.T, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := f.db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}
