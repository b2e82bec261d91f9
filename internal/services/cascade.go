package services

import (
	"context"
	"fmt"
	"threadline/internal/metrics"
	"threadline/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CascadeService removes a content root together with everything that hangs
// off it. Ratings reference content without a foreign key, so they are purged
// explicitly at every level. Each call is one transaction.
type CascadeService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewCascadeService(db *gorm.DB, log *zap.Logger) *CascadeService {
	return &CascadeService{db: db, log: log}
}

// removed counts deleted rows per table for one cascade.
type removed map[string]int64

func (r removed) add(table string, n int64) {
	r[table] += n
}

func (s *CascadeService) DeleteChannel(ctx context.Context, channelID uint) error {
	return s.run(ctx, "channel", channelID, func(tx *gorm.DB, r removed) error {
		return deleteChannelTx(tx, channelID, r)
	})
}

func (s *CascadeService) DeleteMessage(ctx context.Context, messageID uint) error {
	return s.run(ctx, "message", messageID, func(tx *gorm.DB, r removed) error {
		n, err := deleteMessagesTx(tx, []uint{messageID}, r)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: message %d", ErrNotFound, messageID)
		}
		return nil
	})
}

func (s *CascadeService) DeleteReply(ctx context.Context, replyID uint) error {
	return s.run(ctx, "reply", replyID, func(tx *gorm.DB, r removed) error {
		found, err := deleteReplyTreeTx(tx, replyID, r)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%w: reply %d", ErrNotFound, replyID)
		}
		return nil
	})
}

// DeleteUser removes the user's votes, every channel, message and reply the
// user owns (with all content beneath them), and finally the user row.
func (s *CascadeService) DeleteUser(ctx context.Context, userID uint) error {
	return s.run(ctx, "user", userID, func(tx *gorm.DB, r removed) error {
		return deleteUserTx(tx, userID, r)
	})
}

func (s *CascadeService) run(ctx context.Context, root string, id uint, fn func(*gorm.DB, removed) error) error {
	r := removed{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(tx, r)
	})
	if err != nil {
		s.log.Warn("Cascade deletion rolled back",
			zap.String("root", root), zap.Uint("id", id), zap.Error(err))
		return asInternal(err)
	}

	metrics.CascadeDeletionsTotal.WithLabelValues(root).Inc()
	fields := []zap.Field{zap.String("root", root), zap.Uint("id", id)}
	for table, n := range r {
		metrics.CascadeRowsTotal.WithLabelValues(table).Add(float64(n))
		fields = append(fields, zap.Int64(table, n))
	}
	s.log.Info("Cascade deletion committed", fields...)
	return nil
}

func deleteChannelTx(tx *gorm.DB, channelID uint, r removed) error {
	var messageIDs []uint
	if err := tx.Model(&models.Message{}).Where("channel_id = ?", channelID).Pluck("id", &messageIDs).Error; err != nil {
		return err
	}
	if _, err := deleteMessagesTx(tx, messageIDs, r); err != nil {
		return err
	}

	res := tx.Delete(&models.Channel{}, channelID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: channel %d", ErrNotFound, channelID)
	}
	r.add("channels", res.RowsAffected)
	return nil
}

// deleteMessagesTx removes the messages, every reply under them and all
// ratings on either. It returns the number of message rows deleted.
func deleteMessagesTx(tx *gorm.DB, messageIDs []uint, r removed) (int64, error) {
	if len(messageIDs) == 0 {
		return 0, nil
	}

	var replyIDs []uint
	if err := tx.Model(&models.Reply{}).Where("message_id IN ?", messageIDs).Pluck("id", &replyIDs).Error; err != nil {
		return 0, err
	}
	if err := deleteRatingsTx(tx, models.KindReply, replyIDs, r); err != nil {
		return 0, err
	}
	if len(replyIDs) > 0 {
		// One statement, so parent/child order inside the set does not matter.
		res := tx.Where("message_id IN ?", messageIDs).Delete(&models.Reply{})
		if res.Error != nil {
			return 0, res.Error
		}
		r.add("replies", res.RowsAffected)
	}

	if err := deleteRatingsTx(tx, models.KindMessage, messageIDs, r); err != nil {
		return 0, err
	}
	res := tx.Where("id IN ?", messageIDs).Delete(&models.Message{})
	if res.Error != nil {
		return 0, res.Error
	}
	r.add("messages", res.RowsAffected)
	return res.RowsAffected, nil
}

// deleteReplyTreeTx deletes a reply and all its descendants in post-order,
// ratings before each row. The walk uses an explicit stack so thread depth
// cannot exhaust the goroutine stack. found is false if rootID did not exist.
func deleteReplyTreeTx(tx *gorm.DB, rootID uint, r removed) (found bool, err error) {
	type frame struct {
		id       uint
		expanded bool
	}
	stack := []frame{{id: rootID}}

	for len(stack) > 0 {
		top := len(stack) - 1
		if !stack[top].expanded {
			stack[top].expanded = true
			var children []uint
			err := tx.Model(&models.Reply{}).
				Where("parent_reply_id = ?", stack[top].id).
				Order("id DESC").
				Pluck("id", &children).Error
			if err != nil {
				return false, err
			}
			for _, child := range children {
				stack = append(stack, frame{id: child})
			}
			continue
		}

		id := stack[top].id
		stack = stack[:top]

		if err := deleteRatingsTx(tx, models.KindReply, []uint{id}, r); err != nil {
			return false, err
		}
		res := tx.Delete(&models.Reply{}, id)
		if res.Error != nil {
			return false, res.Error
		}
		r.add("replies", res.RowsAffected)
		if id == rootID {
			found = res.RowsAffected > 0
		}
	}
	return found, nil
}

func deleteRatingsTx(tx *gorm.DB, kind models.ContentKind, ids []uint, r removed) error {
	if len(ids) == 0 {
		return nil
	}
	res := tx.Where("content_type = ? AND content_id IN ?", kind, ids).Delete(&models.Rating{})
	if res.Error != nil {
		return res.Error
	}
	r.add("ratings", res.RowsAffected)
	return nil
}

func deleteUserTx(tx *gorm.DB, userID uint, r removed) error {
	res := tx.Where("user_id = ?", userID).Delete(&models.Rating{})
	if res.Error != nil {
		return res.Error
	}
	r.add("ratings", res.RowsAffected)

	var channelIDs []uint
	if err := tx.Model(&models.Channel{}).Where("created_by = ?", userID).Pluck("id", &channelIDs).Error; err != nil {
		return err
	}
	for _, id := range channelIDs {
		if err := deleteChannelTx(tx, id, r); err != nil {
			return err
		}
	}

	var messageIDs []uint
	if err := tx.Model(&models.Message{}).Where("user_id = ?", userID).Pluck("id", &messageIDs).Error; err != nil {
		return err
	}
	if _, err := deleteMessagesTx(tx, messageIDs, r); err != nil {
		return err
	}

	// Replies left now sit under other users' messages. Deleting one subtree
	// may already remove later ids in the list; those report not found.
	var replyIDs []uint
	if err := tx.Model(&models.Reply{}).Where("user_id = ?", userID).Order("id ASC").Pluck("id", &replyIDs).Error; err != nil {
		return err
	}
	for _, id := range replyIDs {
		if _, err := deleteReplyTreeTx(tx, id, r); err != nil {
			return err
		}
	}

	res = tx.Delete(&models.User{}, userID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: user %d", ErrNotFound, userID)
	}
	r.add("users", res.RowsAffected)
	return nil
}
