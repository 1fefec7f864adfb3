package services

import (
	"bytes"
	"fmt"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"qr-logo-bot/internal/constants"
	"qr-logo-bot/internal/models"
)

// LogoStore keeps one logo artifact per user as a PNG file
type LogoStore struct {
	dir    string
	cache  *cache.Cache
	mu     sync.RWMutex
	logger *logrus.Logger
}

// NewLogoStore creates a new logo store rooted at dir
func NewLogoStore(dir string, logger *logrus.Logger) (*LogoStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logo directory %s: %w", dir, err)
	}

	// Leftovers from writes interrupted by a crash
	if matches, err := filepath.Glob(filepath.Join(dir, ".*.tmp")); err == nil {
		for _, m := range matches {
			os.Remove(m)
		}
	}

	return &LogoStore{
		dir:    dir,
		cache:  cache.New(constants.CacheExpiration*time.Minute, constants.CacheCleanupInterval*time.Minute),
		logger: logger,
	}, nil
}

// Path returns the artifact path for a user
func (s *LogoStore) Path(userID int64) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s%d%s", constants.LogoFilePrefix, userID, constants.LogoFileExt))
}

// Save writes a user's artifact atomically, replacing any previous one
func (s *LogoStore) Save(userID int64, artifact *models.LogoArtifact) error {
	path := s.Path(userID)
	tmpFile := filepath.Join(s.dir, fmt.Sprintf(".%s%d.%s.tmp", constants.LogoFilePrefix, userID, uuid.NewString()))

	if err := writeFileSync(tmpFile, artifact.Data); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("failed to write logo for user %d: %w", userID, err)
	}

	// The file and the cache entry change together
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Rename(tmpFile, path); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("failed to replace logo for user %d: %w", userID, err)
	}

	s.cache.Set(cacheKey(userID), artifact, cache.DefaultExpiration)
	s.logger.Debugf("Saved logo for user %d (%dx%d %s)", userID, artifact.Width, artifact.Height, artifact.Mode)
	return nil
}

// Load returns a user's artifact, or nil when the user has none
func (s *LogoStore) Load(userID int64) (*models.LogoArtifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if data, found := s.cache.Get(cacheKey(userID)); found {
		if artifact, ok := data.(*models.LogoArtifact); ok {
			return artifact, nil
		}
	}

	data, err := os.ReadFile(s.Path(userID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read logo for user %d: %w", userID, err)
	}

	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("stored logo for user %d is not a PNG: %w", userID, err)
	}

	artifact := &models.LogoArtifact{
		Width:  cfg.Width,
		Height: cfg.Height,
		Mode:   modeOf(cfg.ColorModel),
		Data:   data,
	}

	s.cache.Set(cacheKey(userID), artifact, cache.DefaultExpiration)
	return artifact, nil
}

// Exists reports whether a user has a stored artifact
func (s *LogoStore) Exists(userID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, found := s.cache.Get(cacheKey(userID)); found {
		return true
	}
	_, err := os.Stat(s.Path(userID))
	return err == nil
}

// Delete removes a user's artifact. Deleting a missing artifact is not an error.
func (s *LogoStore) Delete(userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache.Delete(cacheKey(userID))

	if err := os.Remove(s.Path(userID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete logo for user %d: %w", userID, err)
	}

	s.logger.Debugf("Deleted logo for user %d", userID)
	return nil
}

// cacheKey builds the cache key for a user's artifact
func cacheKey(userID int64) string {
	return fmt.Sprintf("logo_%d", userID)
}

// modeOf maps a PNG color model to an artifact color mode
func modeOf(model color.Model) models.ColorMode {
	switch m := model.(type) {
	case color.Palette:
		for _, c := range m {
			if _, _, _, a := c.RGBA(); a != 0xffff {
				return models.ColorModeAlpha
			}
		}
		return models.ColorModeOpaque
	}

	switch model {
	case color.NRGBAModel, color.NRGBA64Model, color.AlphaModel, color.Alpha16Model:
		return models.ColorModeAlpha
	default:
		return models.ColorModeOpaque
	}
}

// writeFileSync writes data and flushes it to disk before returning
func writeFileSync(name string, data []byte) error {
	f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
