package services

import (
	"context"
	"errors"
	"fmt"
	"threadline/internal/metrics"
	"threadline/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Tally is the aggregate vote count for one piece of content.
type Tally struct {
	Positive int64 `json:"positive_ratings"`
	Negative int64 `json:"negative_ratings"`
}

// RatingService owns the (rater, content) -> vote relation.
type RatingService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewRatingService(db *gorm.DB, log *zap.Logger) *RatingService {
	return &RatingService{db: db, log: log}
}

// Rate records the actor's vote on a message or reply. An existing vote has
// its polarity overwritten in place; a repeated identical vote is a no-op
// update, never a removal.
func (s *RatingService) Rate(ctx context.Context, actor *models.User, contentID uint, contentType string, isPositive bool) (*models.Rating, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	kind, ok := models.ParseContentKind(contentType)
	if !ok {
		return nil, fmt.Errorf("%w: unknown content type %q", ErrBadInput, contentType)
	}
	ref := models.ContentRef{Kind: kind, ID: contentID}

	var rating models.Rating
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		authorID, err := contentAuthor(tx, ref)
		if err != nil {
			return err
		}
		if authorID == actor.ID {
			return fmt.Errorf("%w: cannot rate your own content", ErrForbidden)
		}

		err = voterScope(tx, actor.ID, ref).First(&rating).Error
		if err == nil {
			return setPolarity(tx, &rating, isPositive)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		rating = models.Rating{
			UserID:      actor.ID,
			ContentID:   ref.ID,
			ContentType: ref.Kind,
			IsPositive:  isPositive,
		}
		// Savepoint, so losing the unique-index race leaves tx usable.
		err = tx.Transaction(func(sp *gorm.DB) error {
			return sp.Create(&rating).Error
		})
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}

		s.log.Debug("Concurrent vote detected, updating existing row",
			zap.Uint("user_id", actor.ID), zap.Stringer("content", ref))
		rating = models.Rating{}
		if err := voterScope(tx, actor.ID, ref).First(&rating).Error; err != nil {
			return err
		}
		return setPolarity(tx, &rating, isPositive)
	})
	if err != nil {
		return nil, asInternal(err)
	}

	metrics.RatingsTotal.WithLabelValues(string(kind), metrics.Polarity(isPositive)).Inc()
	return &rating, nil
}

// Unrate removes the actor's vote on the content.
func (s *RatingService) Unrate(ctx context.Context, actor *models.User, contentID uint, contentType string) error {
	if actor == nil {
		return ErrUnauthenticated
	}
	kind, ok := models.ParseContentKind(contentType)
	if !ok {
		return fmt.Errorf("%w: unknown content type %q", ErrBadInput, contentType)
	}
	ref := models.ContentRef{Kind: kind, ID: contentID}

	res := voterScope(s.db.WithContext(ctx), actor.ID, ref).Delete(&models.Rating{})
	if res.Error != nil {
		return internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: no rating on %s", ErrNotFound, ref)
	}
	return nil
}

// Ratings lists the votes cast on one item, oldest first.
func (s *RatingService) Ratings(ctx context.Context, contentID uint, contentType string) ([]models.Rating, error) {
	kind, ok := models.ParseContentKind(contentType)
	if !ok {
		return nil, fmt.Errorf("%w: unknown content type %q", ErrBadInput, contentType)
	}
	var ratings []models.Rating
	err := s.db.WithContext(ctx).
		Where("content_id = ? AND content_type = ?", contentID, kind).
		Order("created_at ASC, id ASC").
		Find(&ratings).Error
	if err != nil {
		return nil, internal(err)
	}
	return ratings, nil
}

func (s *RatingService) CountPositive(ctx context.Context, ref models.ContentRef) (int64, error) {
	return s.count(ctx, ref, true)
}

func (s *RatingService) CountNegative(ctx context.Context, ref models.ContentRef) (int64, error) {
	return s.count(ctx, ref, false)
}

func (s *RatingService) count(ctx context.Context, ref models.ContentRef, isPositive bool) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Rating{}).
		Where("content_id = ? AND content_type = ? AND is_positive = ?", ref.ID, ref.Kind, isPositive).
		Count(&n).Error
	if err != nil {
		return 0, internal(err)
	}
	return n, nil
}

// Tally returns both counts for a single item.
func (s *RatingService) Tally(ctx context.Context, ref models.ContentRef) (Tally, error) {
	tallies, err := s.Tallies(ctx, ref.Kind, []uint{ref.ID})
	if err != nil {
		return Tally{}, err
	}
	return tallies[ref.ID], nil
}

// Tallies counts votes for many items of one kind in a single query. Items
// without votes are absent from the map, which reads as a zero Tally.
func (s *RatingService) Tallies(ctx context.Context, kind models.ContentKind, ids []uint) (map[uint]Tally, error) {
	out := make(map[uint]Tally, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []struct {
		ContentID  uint
		IsPositive bool
		N          int64
	}
	err := s.db.WithContext(ctx).Model(&models.Rating{}).
		Select("content_id, is_positive, COUNT(*) AS n").
		Where("content_type = ? AND content_id IN ?", kind, ids).
		Group("content_id, is_positive").
		Scan(&rows).Error
	if err != nil {
		return nil, internal(err)
	}

	for _, r := range rows {
		t := out[r.ContentID]
		if r.IsPositive {
			t.Positive = r.N
		} else {
			t.Negative = r.N
		}
		out[r.ContentID] = t
	}
	return out, nil
}

func voterScope(tx *gorm.DB, userID uint, ref models.ContentRef) *gorm.DB {
	return tx.Where("user_id = ? AND content_id = ? AND content_type = ?", userID, ref.ID, ref.Kind)
}

func setPolarity(tx *gorm.DB, rating *models.Rating, isPositive bool) error {
	if rating.IsPositive == isPositive {
		return nil
	}
	rating.IsPositive = isPositive
	return tx.Model(rating).Update("is_positive", isPositive).Error
}

// contentAuthor resolves a content reference to its author's id.
func contentAuthor(tx *gorm.DB, ref models.ContentRef) (uint, error) {
	var owner struct{ UserID uint }
	var model interface{}
	switch ref.Kind {
	case models.KindMessage:
		model = &models.Message{}
	case models.KindReply:
		model = &models.Reply{}
	default:
		return 0, fmt.Errorf("%w: unknown content type %q", ErrBadInput, ref.Kind)
	}

	err := tx.Model(model).Select("user_id").Where("id = ?", ref.ID).Take(&owner).Error
	if err != nil {
		return 0, notFoundOr(err, ref.String())
	}
	return owner.UserID, nil
}
