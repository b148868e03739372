// Package cache keeps user profiles in memory with stale-while-revalidate
// refresh from the store.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"

	"trademind/internal/errors"
	"trademind/internal/logging"
	"trademind/internal/models"
	"trademind/pkg/utils"
)

// DefaultRefreshTimeout bounds a single background refresh.
const DefaultRefreshTimeout = 10 * time.Second

// ProfileStore is the persistence the cache reads through.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (*models.User, error)
	SaveProfile(ctx context.Context, user *models.User) error
}

// Config configures a ProfileCache.
type Config struct {
	// File persists the cache between runs when set.
	File           string
	RefreshTimeout time.Duration
	Retry          utils.RetryConfig
	Logger         zerolog.Logger
	Now            func() time.Time
}

// ProfileCache serves profiles from memory and refreshes them in the
// background. At most one refresh per user runs at a time.
type ProfileCache struct {
	store   ProfileStore
	config  Config
	logger  zerolog.Logger
	mu      sync.RWMutex
	entries map[string]*models.User
	pending map[string]bool
	closed  bool
	wg      conc.WaitGroup
}

// NewProfileCache creates a cache over store, loading the cache file if
// one is configured.
func NewProfileCache(store ProfileStore, cfg Config) (*ProfileCache, error) {
	if cfg.RefreshTimeout <= 0 {
		cfg.RefreshTimeout = DefaultRefreshTimeout
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = utils.DefaultRetryConfig()
	}
	cfg.Retry.Permanent = append(cfg.Retry.Permanent, errors.ErrDataNotFound)
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	c := &ProfileCache{
		store:   store,
		config:  cfg,
		logger:  cfg.Logger.With().Str("component", "profile_cache").Logger(),
		entries: make(map[string]*models.User),
		pending: make(map[string]bool),
	}
	if err := c.load(); err != nil {
		return nil, err
	}
	return c, nil
}

func clone(u *models.User) *models.User {
	cp := *u
	return &cp
}

// Get returns the cached profile without touching the store.
func (c *ProfileCache) Get(userID string) (*models.User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	u, ok := c.entries[userID]
	if !ok {
		return nil, false
	}
	return clone(u), true
}

// Put stores a profile in the cache.
func (c *ProfileCache) Put(u *models.User) {
	if u == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[u.ID] = clone(u)
}

// Invalidate drops a cached profile.
func (c *ProfileCache) Invalidate(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
}

// Resolve returns the profile for userID. A cached profile is returned
// immediately and refreshed in the background. Otherwise the profile is
// fetched with retries; a user with no stored profile gets a default one,
// which is saved.
func (c *ProfileCache) Resolve(ctx context.Context, userID string) (*models.User, error) {
	if u, ok := c.Get(userID); ok {
		c.refreshAsync(userID)
		return u, nil
	}

	u, err := c.fetch(ctx, userID)
	if errors.Is(err, errors.ErrDataNotFound) {
		u = models.NewDefaultUser(userID, "", c.config.Now())
		if err := c.store.SaveProfile(ctx, u); err != nil {
			return nil, fmt.Errorf("failed to save default profile: %w", err)
		}
		c.logger.Info().Str("user_id", userID).Msg("Created default profile")
	} else if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrProfileUnavailable, err)
	}

	c.Put(u)
	return clone(u), nil
}

// Refresh fetches the profile synchronously and replaces the cached copy.
func (c *ProfileCache) Refresh(ctx context.Context, userID string) (*models.User, error) {
	start := time.Now()
	u, err := c.fetch(ctx, userID)
	logging.LogProfileRefresh(c.logger, userID, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh profile: %w", err)
	}
	c.Put(u)
	return clone(u), nil
}

// Update saves a changed profile and caches it.
func (c *ProfileCache) Update(ctx context.Context, u *models.User) error {
	u.UpdatedAt = c.config.Now()
	if err := c.store.SaveProfile(ctx, u); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	c.Put(u)
	return nil
}

func (c *ProfileCache) fetch(ctx context.Context, userID string) (*models.User, error) {
	return utils.RetryWithResult(ctx, c.config.Retry, func() (*models.User, error) {
		return c.store.GetProfile(ctx, userID)
	})
}

// refreshAsync schedules a background refresh unless one is already
// running for userID or the cache is closed.
func (c *ProfileCache) refreshAsync(userID string) {
	c.mu.Lock()
	if c.closed || c.pending[userID] {
		c.mu.Unlock()
		return
	}
	c.pending[userID] = true
	// Started under the lock so Close cannot begin waiting concurrently.
	defer c.mu.Unlock()

	c.wg.Go(func() {
		defer func() {
			c.mu.Lock()
			delete(c.pending, userID)
			c.mu.Unlock()
		}()

		ctx, cancel := context.WithTimeout(context.Background(), c.config.RefreshTimeout)
		defer cancel()

		start := time.Now()
		u, err := c.fetch(ctx, userID)
		logging.LogProfileRefresh(c.logger, userID, time.Since(start), err)
		if err != nil {
			// Keep serving the cached copy.
			return
		}
		c.Put(u)
	})
}

// Close waits for background refreshes and writes the cache file.
func (c *ProfileCache) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.wg.Wait()
	return c.save()
}

func (c *ProfileCache) load() error {
	if c.config.File == "" {
		return nil
	}
	data, err := os.ReadFile(c.config.File)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read profile cache: %w", err)
	}

	var entries map[string]*models.User
	if err := json.Unmarshal(data, &entries); err != nil {
		// A corrupt cache file is rebuilt from the store.
		c.logger.Warn().Err(err).Str("file", c.config.File).Msg("Ignoring unreadable profile cache")
		return nil
	}
	for id, u := range entries {
		if u != nil {
			c.entries[id] = u
		}
	}
	return nil
}

func (c *ProfileCache) save() error {
	if c.config.File == "" {
		return nil
	}

	c.mu.RLock()
	data, err := json.MarshalIndent(c.entries, "", "  ")
	c.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to encode profile cache: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(c.config.File), 0700); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	tmp := c.config.File + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write profile cache: %w", err)
	}
	if err := os.Rename(tmp, c.config.File); err != nil {
		return fmt.Errorf("failed to write profile cache: %w", err)
	}
	return nil
}
