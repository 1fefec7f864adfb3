package permissions

import (
	"github.com/sirupsen/logrus"
)

// AccessType represents the access level of a user
type AccessType int

const (
	// None represents no access
	None AccessType = iota
	// User represents a user allowed to generate QR codes
	User
)

// PermissionController manages user permissions
type PermissionController struct {
	allowedIDs map[int64]bool
	logger     *logrus.Logger
}

// NewController creates a new permission controller.
// An empty allow list lets everyone use the bot.
func NewController(allowedIDs []int64, logger *logrus.Logger) *PermissionController {
	// Create a map for O(1) lookup of allowed IDs
	allowedIDMap := make(map[int64]bool, len(allowedIDs))
	for _, id := range allowedIDs {
		allowedIDMap[id] = true
	}

	if len(allowedIDs) == 0 {
		logger.Info("Initialized permission controller, bot is open to everyone")
	} else {
		logger.Infof("Initialized permission controller with %d allowed users", len(allowedIDs))
	}

	return &PermissionController{
		allowedIDs: allowedIDMap,
		logger:     logger,
	}
}

// GetAccessType determines the access type of a user
func (p *PermissionController) GetAccessType(userID int64) AccessType {
	if p.IsAllowed(userID) {
		return User
	}

	// All other users have no access
	return None
}

// IsAllowed checks if a user may use the bot
func (p *PermissionController) IsAllowed(userID int64) bool {
	if len(p.allowedIDs) == 0 {
		return true
	}
	isAllowed := p.allowedIDs[userID]
	p.logger.Debugf("Checking if user %d is allowed: %v", userID, isAllowed)
	return isAllowed
}
