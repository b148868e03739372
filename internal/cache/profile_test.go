package cache

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trademind/internal/errors"
	"trademind/internal/models"
	"trademind/pkg/utils"
)

type memProfiles struct {
	mu       sync.Mutex
	profiles map[string]models.User
	gets     atomic.Int32
	failures atomic.Int32
	block    chan struct{}
}

func newMemProfiles() *memProfiles {
	return &memProfiles{profiles: make(map[string]models.User)}
}

func (m *memProfiles) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	m.gets.Add(1)
	if m.block != nil {
		select {
		case <-m.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.failures.Load() > 0 {
		m.failures.Add(-1)
		return nil, errors.ErrDatabaseError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.profiles[userID]
	if !ok {
		return nil, errors.ErrDataNotFound
	}
	return &u, nil
}

func (m *memProfiles) SaveProfile(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[u.ID] = *u
	return nil
}

var cacheNow = time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC)

func testConfig() Config {
	return Config{
		Retry: utils.RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, BackoffFactor: 2},
		Now:   func() time.Time { return cacheNow },
	}
}

func TestResolve_CreatesDefaultProfile(t *testing.T) {
	profiles := newMemProfiles()
	c, err := NewProfileCache(profiles, testConfig())
	require.NoError(t, err)
	defer c.Close()

	u, err := c.Resolve(context.Background(), "abc123xyz")
	require.NoError(t, err)
	assert.Equal(t, "TM-ABC123", u.DisplayID)
	assert.Equal(t, models.UserPending, u.Status)
	assert.Equal(t, int32(1), profiles.gets.Load(), "not-found is not retried")

	stored, err := profiles.GetProfile(context.Background(), "abc123xyz")
	require.NoError(t, err)
	assert.Equal(t, u.DisplayID, stored.DisplayID)
}

func TestResolve_RetriesTransientFailures(t *testing.T) {
	profiles := newMemProfiles()
	profiles.profiles["u1"] = *models.NewDefaultUser("u1", "a@b.c", cacheNow)
	profiles.failures.Store(2)

	c, err := NewProfileCache(profiles, testConfig())
	require.NoError(t, err)
	defer c.Close()

	u, err := c.Resolve(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", u.Email)
	assert.Equal(t, int32(3), profiles.gets.Load())
}

func TestResolve_ReportsUnavailableAfterRetries(t *testing.T) {
	profiles := newMemProfiles()
	profiles.failures.Store(10)

	c, err := NewProfileCache(profiles, testConfig())
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Resolve(context.Background(), "u1")
	assert.ErrorIs(t, err, errors.ErrProfileUnavailable)
	assert.ErrorIs(t, err, errors.ErrDatabaseError)
}

func TestResolve_StaleWhileRevalidate(t *testing.T) {
	profiles := newMemProfiles()
	stored := models.NewDefaultUser("u1", "new@example.com", cacheNow)
	stored.Name = "Fresh"
	profiles.profiles["u1"] = *stored

	c, err := NewProfileCache(profiles, testConfig())
	require.NoError(t, err)

	stale := models.NewDefaultUser("u1", "old@example.com", cacheNow)
	stale.Name = "Stale"
	c.Put(stale)

	u, err := c.Resolve(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Stale", u.Name, "cached copy served immediately")

	require.NoError(t, c.Close())
	cached, ok := c.Get("u1")
	require.True(t, ok)
	assert.Equal(t, "Fresh", cached.Name, "background refresh replaced the cached copy")
}

func TestResolve_OneRefreshInFlightPerUser(t *testing.T) {
	profiles := newMemProfiles()
	profiles.profiles["u1"] = *models.NewDefaultUser("u1", "", cacheNow)
	profiles.block = make(chan struct{})

	c, err := NewProfileCache(profiles, testConfig())
	require.NoError(t, err)
	c.Put(models.NewDefaultUser("u1", "", cacheNow))

	for i := 0; i < 5; i++ {
		_, err := c.Resolve(context.Background(), "u1")
		require.NoError(t, err)
	}
	close(profiles.block)
	require.NoError(t, c.Close())

	assert.Equal(t, int32(1), profiles.gets.Load())
}

func TestResolve_FailedRefreshKeepsCachedCopy(t *testing.T) {
	profiles := newMemProfiles()
	profiles.failures.Store(10)

	c, err := NewProfileCache(profiles, testConfig())
	require.NoError(t, err)
	cached := models.NewDefaultUser("u1", "", cacheNow)
	cached.Name = "Cached"
	c.Put(cached)

	_, err = c.Resolve(context.Background(), "u1")
	require.NoError(t, err)
	require.NoError(t, c.Close())

	u, ok := c.Get("u1")
	require.True(t, ok)
	assert.Equal(t, "Cached", u.Name)
}

func TestProfileCache_PersistsToFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "cache", "profiles.json")
	cfg := testConfig()
	cfg.File = file

	c, err := NewProfileCache(newMemProfiles(), cfg)
	require.NoError(t, err)
	u := models.NewDefaultUser("u1", "me@example.com", cacheNow)
	u.IsPaid = true
	c.Put(u)
	require.NoError(t, c.Close())

	reopened, err := NewProfileCache(newMemProfiles(), cfg)
	require.NoError(t, err)
	got, ok := reopened.Get("u1")
	require.True(t, ok)
	assert.True(t, got.IsPaid)
	assert.True(t, got.JoinedAt.Equal(cacheNow))

	reopened.Invalidate("u1")
	_, ok = reopened.Get("u1")
	assert.False(t, ok)
}

func TestProfileCache_UpdateStampsAndSaves(t *testing.T) {
	profiles := newMemProfiles()
	c, err := NewProfileCache(profiles, testConfig())
	require.NoError(t, err)
	defer c.Close()

	u := models.NewDefaultUser("u1", "", cacheNow.Add(-time.Hour))
	u.Name = "Asha"
	require.NoError(t, c.Update(context.Background(), u))

	got, ok := c.Get("u1")
	require.True(t, ok)
	assert.Equal(t, "Asha", got.Name)
	assert.True(t, got.UpdatedAt.Equal(cacheNow))
	assert.Equal(t, "Asha", profiles.profiles["u1"].Name)
}

func TestProfileCache_CloseRacingResolve(t *testing.T) {
	for i := 0; i < 20; i++ {
		profiles := newMemProfiles()
		fresh := models.NewDefaultUser("u1", "", cacheNow)
		fresh.Name = "Fresh"
		profiles.profiles["u1"] = *fresh

		cfg := testConfig()
		cfg.File = filepath.Join(t.TempDir(), "profiles.json")
		c, err := NewProfileCache(profiles, cfg)
		require.NoError(t, err)
		stale := models.NewDefaultUser("u1", "", cacheNow)
		stale.Name = "Stale"
		c.Put(stale)

		var wg sync.WaitGroup
		for j := 0; j < 4; j++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for k := 0; k < 10; k++ {
					_, _ = c.Resolve(context.Background(), "u1")
				}
			}()
		}
		require.NoError(t, c.Close())
		wg.Wait()

		// No refresh may land after Close wrote the file.
		inMemory, ok := c.Get("u1")
		require.True(t, ok)
		reopened, err := NewProfileCache(newMemProfiles(), cfg)
		require.NoError(t, err)
		onDisk, ok := reopened.Get("u1")
		require.True(t, ok)
		assert.Equal(t, inMemory.Name, onDisk.Name)
	}
}
