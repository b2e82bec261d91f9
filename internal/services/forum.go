package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"threadline/internal/content"
	"threadline/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MessageView is a message with its vote counts computed at read time.
type MessageView struct {
	models.Message
	Tally
}

// ReplyView is a reply with its vote counts computed at read time.
type ReplyView struct {
	models.Reply
	Tally
}

// ChannelPatch and ContentPatch carry partial updates; nil fields are left
// unchanged.
type ChannelPatch struct {
	Name        *string
	Description *string
}

type ContentPatch struct {
	Content  *string
	ImageURL *string
}

type NewReply struct {
	MessageID     *uint
	ParentReplyID *uint
	Content       string
	ImageURL      string
}

// ForumService owns channels, messages and the reply tree.
type ForumService struct {
	db      *gorm.DB
	log     *zap.Logger
	ratings *RatingService
	cascade *CascadeService
}

func NewForumService(db *gorm.DB, log *zap.Logger, ratings *RatingService, cascade *CascadeService) *ForumService {
	return &ForumService{db: db, log: log, ratings: ratings, cascade: cascade}
}

// ---- channels ----

func (s *ForumService) CreateChannel(ctx context.Context, actor *models.User, name, description string) (*models.Channel, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: channel name is required", ErrBadInput)
	}

	ch := models.Channel{Name: name, Description: description, CreatedBy: actor.ID}
	if err := s.db.WithContext(ctx).Create(&ch).Error; err != nil {
		return nil, channelWriteError(err, name)
	}
	ch.Creator = actor
	return &ch, nil
}

func (s *ForumService) Channel(ctx context.Context, id uint) (*models.Channel, error) {
	var ch models.Channel
	if err := s.db.WithContext(ctx).Preload("Creator").First(&ch, id).Error; err != nil {
		return nil, notFoundOr(err, fmt.Sprintf("channel %d", id))
	}
	return &ch, nil
}

// Channels lists every channel, newest first.
func (s *ForumService) Channels(ctx context.Context) ([]models.Channel, error) {
	var channels []models.Channel
	err := s.db.WithContext(ctx).Preload("Creator").
		Order("created_at DESC, id DESC").
		Find(&channels).Error
	if err != nil {
		return nil, internal(err)
	}
	return channels, nil
}

func (s *ForumService) UpdateChannel(ctx context.Context, actor *models.User, id uint, patch ChannelPatch) (*models.Channel, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	ch, err := s.Channel(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanModify(ch.CreatedBy) {
		return nil, fmt.Errorf("%w: not the channel creator", ErrForbidden)
	}

	updates := map[string]interface{}{}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: channel name is required", ErrBadInput)
		}
		updates["name"] = name
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if len(updates) == 0 {
		return ch, nil
	}

	if err := s.db.WithContext(ctx).Model(ch).Updates(updates).Error; err != nil {
		name := ch.Name
		if n, ok := updates["name"].(string); ok {
			name = n
		}
		return nil, channelWriteError(err, name)
	}
	return s.Channel(ctx, id)
}

func (s *ForumService) DeleteChannel(ctx context.Context, actor *models.User, id uint) error {
	if actor == nil {
		return ErrUnauthenticated
	}
	ch, err := s.Channel(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanModify(ch.CreatedBy) {
		return fmt.Errorf("%w: not the channel creator", ErrForbidden)
	}
	return s.cascade.DeleteChannel(ctx, id)
}

func channelWriteError(err error, name string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: channel %q already exists", ErrBadInput, name)
	}
	return internal(err)
}

// ---- messages ----

func (s *ForumService) CreateMessage(ctx context.Context, actor *models.User, channelID uint, body, imageURL string) (*MessageView, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("%w: message content is required", ErrBadInput)
	}
	if _, err := s.Channel(ctx, channelID); err != nil {
		return nil, err
	}

	msg := models.Message{
		Content:   content.Sanitize(body),
		ImageURL:  imageURL,
		UserID:    actor.ID,
		ChannelID: channelID,
	}
	if err := s.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return nil, internal(err)
	}
	msg.User = actor
	return &MessageView{Message: msg}, nil
}

func (s *ForumService) Message(ctx context.Context, id uint) (*MessageView, error) {
	var msg models.Message
	if err := s.db.WithContext(ctx).Preload("User").First(&msg, id).Error; err != nil {
		return nil, notFoundOr(err, fmt.Sprintf("message %d", id))
	}
	tally, err := s.ratings.Tally(ctx, msg.Ref())
	if err != nil {
		return nil, err
	}
	return &MessageView{Message: msg, Tally: tally}, nil
}

// MessagesByChannel lists a channel's messages, newest first.
func (s *ForumService) MessagesByChannel(ctx context.Context, channelID uint) ([]MessageView, error) {
	if _, err := s.Channel(ctx, channelID); err != nil {
		return nil, err
	}
	var msgs []models.Message
	err := s.db.WithContext(ctx).Preload("User").
		Where("channel_id = ?", channelID).
		Order("created_at DESC, id DESC").
		Find(&msgs).Error
	if err != nil {
		return nil, internal(err)
	}
	return s.messageViews(ctx, msgs)
}

func (s *ForumService) UpdateMessage(ctx context.Context, actor *models.User, id uint, patch ContentPatch) (*MessageView, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	var msg models.Message
	if err := s.db.WithContext(ctx).First(&msg, id).Error; err != nil {
		return nil, notFoundOr(err, fmt.Sprintf("message %d", id))
	}
	if !actor.CanModify(msg.UserID) {
		return nil, fmt.Errorf("%w: not the message author", ErrForbidden)
	}

	updates, err := contentUpdates(patch)
	if err != nil {
		return nil, err
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&msg).Updates(updates).Error; err != nil {
			return nil, internal(err)
		}
	}
	return s.Message(ctx, id)
}

func (s *ForumService) DeleteMessage(ctx context.Context, actor *models.User, id uint) error {
	if actor == nil {
		return ErrUnauthenticated
	}
	var msg models.Message
	if err := s.db.WithContext(ctx).Select("id", "user_id").First(&msg, id).Error; err != nil {
		return notFoundOr(err, fmt.Sprintf("message %d", id))
	}
	if !actor.CanModify(msg.UserID) {
		return fmt.Errorf("%w: not the message author", ErrForbidden)
	}
	return s.cascade.DeleteMessage(ctx, id)
}

func (s *ForumService) messageViews(ctx context.Context, msgs []models.Message) ([]MessageView, error) {
	ids := make([]uint, len(msgs))
	for i := range msgs {
		ids[i] = msgs[i].ID
	}
	tallies, err := s.ratings.Tallies(ctx, models.KindMessage, ids)
	if err != nil {
		return nil, err
	}
	views := make([]MessageView, len(msgs))
	for i, m := range msgs {
		views[i] = MessageView{Message: m, Tally: tallies[m.ID]}
	}
	return views, nil
}

// ---- replies ----

// CreateReply attaches a reply to a message or to another reply. When a
// parent reply is given its message wins over any MessageID in the input,
// so every node of a thread shares one message.
func (s *ForumService) CreateReply(ctx context.Context, actor *models.User, in NewReply) (*ReplyView, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, fmt.Errorf("%w: reply content is required", ErrBadInput)
	}

	reply := models.Reply{
		Content:  content.Sanitize(in.Content),
		ImageURL: in.ImageURL,
		UserID:   actor.ID,
	}

	switch {
	case in.ParentReplyID != nil:
		var parent models.Reply
		err := s.db.WithContext(ctx).Select("id", "message_id").First(&parent, *in.ParentReplyID).Error
		if err != nil {
			return nil, notFoundOr(err, fmt.Sprintf("parent reply %d", *in.ParentReplyID))
		}
		reply.MessageID = parent.MessageID
		reply.ParentReplyID = &parent.ID
	case in.MessageID != nil:
		var msg models.Message
		if err := s.db.WithContext(ctx).Select("id").First(&msg, *in.MessageID).Error; err != nil {
			return nil, notFoundOr(err, fmt.Sprintf("message %d", *in.MessageID))
		}
		reply.MessageID = msg.ID
	default:
		return nil, fmt.Errorf("%w: reply needs a message or a parent reply", ErrNotFound)
	}

	if err := s.db.WithContext(ctx).Create(&reply).Error; err != nil {
		return nil, internal(err)
	}
	reply.User = actor
	return &ReplyView{Reply: reply}, nil
}

func (s *ForumService) Reply(ctx context.Context, id uint) (*ReplyView, error) {
	var reply models.Reply
	if err := s.db.WithContext(ctx).Preload("User").First(&reply, id).Error; err != nil {
		return nil, notFoundOr(err, fmt.Sprintf("reply %d", id))
	}
	tally, err := s.ratings.Tally(ctx, reply.Ref())
	if err != nil {
		return nil, err
	}
	return &ReplyView{Reply: reply, Tally: tally}, nil
}

// RepliesByMessage lists the top-level replies of a message, oldest first.
func (s *ForumService) RepliesByMessage(ctx context.Context, messageID uint) ([]ReplyView, error) {
	var msg models.Message
	if err := s.db.WithContext(ctx).Select("id").First(&msg, messageID).Error; err != nil {
		return nil, notFoundOr(err, fmt.Sprintf("message %d", messageID))
	}
	return s.replies(ctx, "message_id = ? AND parent_reply_id IS NULL", messageID)
}

// RepliesByParent lists the direct children of a reply, oldest first.
func (s *ForumService) RepliesByParent(ctx context.Context, parentID uint) ([]ReplyView, error) {
	var parent models.Reply
	if err := s.db.WithContext(ctx).Select("id").First(&parent, parentID).Error; err != nil {
		return nil, notFoundOr(err, fmt.Sprintf("reply %d", parentID))
	}
	return s.replies(ctx, "parent_reply_id = ?", parentID)
}

func (s *ForumService) replies(ctx context.Context, query string, args ...interface{}) ([]ReplyView, error) {
	var replies []models.Reply
	err := s.db.WithContext(ctx).Preload("User").
		Where(query, args...).
		Order("created_at ASC, id ASC").
		Find(&replies).Error
	if err != nil {
		return nil, internal(err)
	}

	ids := make([]uint, len(replies))
	for i := range replies {
		ids[i] = replies[i].ID
	}
	tallies, err := s.ratings.Tallies(ctx, models.KindReply, ids)
	if err != nil {
		return nil, err
	}
	views := make([]ReplyView, len(replies))
	for i, r := range replies {
		views[i] = ReplyView{Reply: r, Tally: tallies[r.ID]}
	}
	return views, nil
}

func (s *ForumService) UpdateReply(ctx context.Context, actor *models.User, id uint, patch ContentPatch) (*ReplyView, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	var reply models.Reply
	if err := s.db.WithContext(ctx).First(&reply, id).Error; err != nil {
		return nil, notFoundOr(err, fmt.Sprintf("reply %d", id))
	}
	if !actor.CanModify(reply.UserID) {
		return nil, fmt.Errorf("%w: not the reply author", ErrForbidden)
	}

	updates, err := contentUpdates(patch)
	if err != nil {
		return nil, err
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&reply).Updates(updates).Error; err != nil {
			return nil, internal(err)
		}
	}
	return s.Reply(ctx, id)
}

func (s *ForumService) DeleteReply(ctx context.Context, actor *models.User, id uint) error {
	if actor == nil {
		return ErrUnauthenticated
	}
	var reply models.Reply
	if err := s.db.WithContext(ctx).Select("id", "user_id").First(&reply, id).Error; err != nil {
		return notFoundOr(err, fmt.Sprintf("reply %d", id))
	}
	if !actor.CanModify(reply.UserID) {
		return fmt.Errorf("%w: not the reply author", ErrForbidden)
	}
	return s.cascade.DeleteReply(ctx, id)
}

func contentUpdates(patch ContentPatch) (map[string]interface{}, error) {
	updates := map[string]interface{}{}
	if patch.Content != nil {
		if strings.TrimSpace(*patch.Content) == "" {
			return nil, fmt.Errorf("%w: content cannot be empty", ErrBadInput)
		}
		updates["content"] = content.Sanitize(*patch.Content)
	}
	if patch.ImageURL != nil {
		updates["image_url"] = *patch.ImageURL
	}
	return updates, nil
}
