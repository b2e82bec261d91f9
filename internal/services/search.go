package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"threadline/internal/models"

	"gorm.io/gorm"
)

const (
	SortRecent = "recent"
	SortRating = "rating"
)

// ContentResults groups matching messages and replies.
type ContentResults struct {
	Messages []MessageView `json:"messages"`
	Replies  []ReplyView   `json:"replies"`
}

// SearchService does plain case-insensitive substring matching.
type SearchService struct {
	db    *gorm.DB
	forum *ForumService
}

func NewSearchService(db *gorm.DB, forum *ForumService) *SearchService {
	return &SearchService{db: db, forum: forum}
}

func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(term)) + "%"
}

// SearchContent finds messages and replies whose content contains query.
func (s *SearchService) SearchContent(ctx context.Context, query string) (*ContentResults, error) {
	if strings.TrimSpace(query) == "" {
		return &ContentResults{Messages: []MessageView{}, Replies: []ReplyView{}}, nil
	}
	pattern := likePattern(query)
	return s.content(ctx, "LOWER(content) LIKE LOWER(?) ESCAPE '\\'", pattern)
}

// ContentByUser lists everything a user authored, newest first.
func (s *SearchService) ContentByUser(ctx context.Context, userID uint) (*ContentResults, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Select("id").First(&u, userID).Error; err != nil {
		return nil, notFoundOr(err, fmt.Sprintf("user %d", userID))
	}
	return s.content(ctx, "user_id = ?", userID)
}

func (s *SearchService) content(ctx context.Context, where string, args ...interface{}) (*ContentResults, error) {
	var msgs []models.Message
	err := s.db.WithContext(ctx).Preload("User").
		Where(where, args...).
		Order("created_at DESC, id DESC").
		Find(&msgs).Error
	if err != nil {
		return nil, internal(err)
	}
	msgViews, err := s.forum.messageViews(ctx, msgs)
	if err != nil {
		return nil, err
	}

	var replies []models.Reply
	err = s.db.WithContext(ctx).Preload("User").
		Where(where, args...).
		Order("created_at DESC, id DESC").
		Find(&replies).Error
	if err != nil {
		return nil, internal(err)
	}
	ids := make([]uint, len(replies))
	for i := range replies {
		ids[i] = replies[i].ID
	}
	tallies, err := s.forum.ratings.Tallies(ctx, models.KindReply, ids)
	if err != nil {
		return nil, err
	}
	replyViews := make([]ReplyView, len(replies))
	for i, r := range replies {
		replyViews[i] = ReplyView{Reply: r, Tally: tallies[r.ID]}
	}

	return &ContentResults{Messages: msgViews, Replies: replyViews}, nil
}

// SearchChannels matches name or description. SortRating orders by last
// activity on the channel row.
func (s *SearchService) SearchChannels(ctx context.Context, term, sortBy string) ([]models.Channel, error) {
	order, err := channelOrder(sortBy)
	if err != nil {
		return nil, err
	}
	q := s.db.WithContext(ctx).Preload("Creator").Order(order)
	if strings.TrimSpace(term) != "" {
		p := likePattern(term)
		q = q.Where("LOWER(name) LIKE LOWER(?) ESCAPE '\\' OR LOWER(description) LIKE LOWER(?) ESCAPE '\\'", p, p)
	}
	var channels []models.Channel
	if err := q.Find(&channels).Error; err != nil {
		return nil, internal(err)
	}
	return channels, nil
}

func channelOrder(sortBy string) (string, error) {
	switch sortBy {
	case "", SortRecent:
		return "created_at DESC, id DESC", nil
	case SortRating:
		return "updated_at DESC, id DESC", nil
	}
	return "", fmt.Errorf("%w: unknown sort %q", ErrBadInput, sortBy)
}

// SearchMessages matches message content. SortRating orders by net votes.
func (s *SearchService) SearchMessages(ctx context.Context, term, sortBy string) ([]MessageView, error) {
	q := s.db.WithContext(ctx).Preload("User")
	if strings.TrimSpace(term) != "" {
		q = q.Where("LOWER(content) LIKE LOWER(?) ESCAPE '\\'", likePattern(term))
	}

	switch sortBy {
	case "", SortRecent:
		q = q.Order("created_at DESC, id DESC")
	case SortRating:
		q = q.Order(`(SELECT COALESCE(SUM(CASE WHEN ra.is_positive THEN 1 ELSE -1 END), 0)
			FROM ratings ra WHERE ra.content_type = 'message' AND ra.content_id = messages.id) DESC`).
			Order("created_at DESC, id DESC")
	default:
		return nil, fmt.Errorf("%w: unknown sort %q", ErrBadInput, sortBy)
	}

	var msgs []models.Message
	if err := q.Find(&msgs).Error; err != nil {
		return nil, internal(err)
	}
	return s.forum.messageViews(ctx, msgs)
}

// SearchUsers matches username or display name, or an exact numeric id.
func (s *SearchService) SearchUsers(ctx context.Context, term string) ([]models.User, error) {
	term = strings.TrimSpace(term)
	q := s.db.WithContext(ctx).Order("username ASC")
	if term != "" {
		p := likePattern(term)
		cond := s.db.Where("LOWER(username) LIKE LOWER(?) ESCAPE '\\'", p).
			Or("LOWER(display_name) LIKE LOWER(?) ESCAPE '\\'", p)
		if id, err := strconv.ParseUint(term, 10, 64); err == nil {
			cond = cond.Or("id = ?", id)
		}
		q = q.Where(cond)
	}
	var users []models.User
	if err := q.Find(&users).Error; err != nil {
		return nil, internal(err)
	}
	return users, nil
}
