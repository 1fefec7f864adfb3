package services

import (
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"qr-logo-bot/internal/constants"
	apperrors "qr-logo-bot/internal/errors"
	"qr-logo-bot/internal/models"
)

// UserStateService manages user conversation states
type UserStateService struct {
	cache  *cache.Cache
	logger *logrus.Logger
}

// NewUserStateService creates a new user state service.
// States expire after a period of inactivity, dropping users back to Idle.
func NewUserStateService(logger *logrus.Logger) *UserStateService {
	return &UserStateService{
		cache:  cache.New(constants.CacheExpiration*time.Minute, constants.CacheCleanupInterval*time.Minute),
		logger: logger,
	}
}

// GetState gets a user's state
func (s *UserStateService) GetState(userID int64) (*models.UserState, error) {
	key := fmt.Sprintf("user_state_%d", userID)

	if data, found := s.cache.Get(key); found {
		if state, ok := data.(*models.UserState); ok {
			copied := *state
			return &copied, nil
		}
		return nil, &apperrors.StateError{UserID: userID, State: "unknown", Message: fmt.Sprintf("invalid state type %T", data)}
	}

	// Return default state if not found
	return &models.UserState{State: models.Idle}, nil
}

// SetState sets a user's state
func (s *UserStateService) SetState(userID int64, state models.UserState) error {
	key := fmt.Sprintf("user_state_%d", userID)
	s.cache.Set(key, &state, cache.DefaultExpiration)
	s.logger.Debugf("Set state for user %d: %s", userID, state.State)
	return nil
}

// ClearState clears a user's state
func (s *UserStateService) ClearState(userID int64) error {
	key := fmt.Sprintf("user_state_%d", userID)
	s.cache.Delete(key)
	s.logger.Debugf("Cleared state for user %d", userID)
	return nil
}

// WithConversationState updates a user's conversation state
func (s *UserStateService) WithConversationState(userID int64, conversationState models.ConversationState) error {
	if conversationState == models.Idle {
		return s.ClearState(userID)
	}

	state, err := s.GetState(userID)
	if err != nil {
		return err
	}

	state.State = conversationState
	return s.SetState(userID, *state)
}

// IsAwaitingLogo reports whether the user's next image should become their logo
func (s *UserStateService) IsAwaitingLogo(userID int64) bool {
	state, err := s.GetState(userID)
	if err != nil {
		s.logger.Warnf("Failed to read state for user %d: %v", userID, err)
		return false
	}
	return state.State == models.AwaitingLogo
}
