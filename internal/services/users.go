package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"threadline/internal/models"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	TopByPosts   = "posts"
	TopByRatings = "ratings"
)

// UserScore is one row of the leaderboard.
type UserScore struct {
	models.User
	Score int64 `json:"score"`
}

type UserPatch struct {
	DisplayName *string
	Avatar      *string
}

type UserService struct {
	db      *gorm.DB
	log     *zap.Logger
	cascade *CascadeService
}

func NewUserService(db *gorm.DB, log *zap.Logger, cascade *CascadeService) *UserService {
	return &UserService{db: db, log: log, cascade: cascade}
}

func (s *UserService) Register(ctx context.Context, username, password, displayName, avatar string) (*models.User, error) {
	username = strings.TrimSpace(username)
	displayName = strings.TrimSpace(displayName)
	if username == "" || password == "" || displayName == "" {
		return nil, fmt.Errorf("%w: username, password and display name are required", ErrBadInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, internal(err)
	}

	user := models.User{
		Username:    username,
		Password:    string(hash),
		DisplayName: displayName,
		Avatar:      avatar,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: username %q is taken", ErrBadInput, username)
		}
		return nil, internal(err)
	}
	s.log.Info("User registered", zap.Uint("user_id", user.ID), zap.String("username", username))
	return &user, nil
}

// Login checks credentials. Unknown users and wrong passwords fail the same way.
func (s *UserService) Login(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthenticated)
	}
	if err != nil {
		return nil, internal(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthenticated)
	}
	return &user, nil
}

func (s *UserService) User(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFoundOr(err, fmt.Sprintf("user %d", id))
	}
	return &user, nil
}

func (s *UserService) UserByName(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, notFoundOr(err, fmt.Sprintf("user %q", username))
	}
	return &user, nil
}

func (s *UserService) Users(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&users).Error; err != nil {
		return nil, internal(err)
	}
	return users, nil
}

func (s *UserService) UpdateUser(ctx context.Context, actor *models.User, patch UserPatch) (*models.User, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	updates := map[string]interface{}{}
	if patch.DisplayName != nil {
		name := strings.TrimSpace(*patch.DisplayName)
		if name == "" {
			return nil, fmt.Errorf("%w: display name cannot be empty", ErrBadInput)
		}
		updates["display_name"] = name
	}
	if patch.Avatar != nil {
		updates["avatar"] = *patch.Avatar
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&models.User{ID: actor.ID}).Updates(updates).Error; err != nil {
			return nil, internal(err)
		}
	}
	return s.User(ctx, actor.ID)
}

// DeleteUser removes a user and everything they own. Only the user themself
// or an admin may do this; the caller handles ending the session.
func (s *UserService) DeleteUser(ctx context.Context, actor *models.User, id uint) error {
	if actor == nil {
		return ErrUnauthenticated
	}
	if !actor.CanModify(id) {
		return fmt.Errorf("%w: cannot delete another user", ErrForbidden)
	}
	if _, err := s.User(ctx, id); err != nil {
		return err
	}
	return s.cascade.DeleteUser(ctx, id)
}

// TopUsers ranks users by authored posts or by net votes received.
func (s *UserService) TopUsers(ctx context.Context, sortBy string, limit int) ([]UserScore, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	var scoreSQL string
	switch sortBy {
	case "", TopByPosts:
		scoreSQL = `(SELECT COUNT(*) FROM messages m WHERE m.user_id = users.id)
			+ (SELECT COUNT(*) FROM replies r WHERE r.user_id = users.id)`
	case TopByRatings:
		scoreSQL = `COALESCE((SELECT SUM(CASE WHEN ra.is_positive THEN 1 ELSE -1 END)
			FROM ratings ra JOIN messages m ON ra.content_type = 'message' AND ra.content_id = m.id
			WHERE m.user_id = users.id), 0)
			+ COALESCE((SELECT SUM(CASE WHEN ra.is_positive THEN 1 ELSE -1 END)
			FROM ratings ra JOIN replies r ON ra.content_type = 'reply' AND ra.content_id = r.id
			WHERE r.user_id = users.id), 0)`
	default:
		return nil, fmt.Errorf("%w: unknown sort %q", ErrBadInput, sortBy)
	}

	var rows []UserScore
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Select("users.*, (" + scoreSQL + ") AS score").
		Order("score DESC, users.id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, internal(err)
	}
	return rows, nil
}
