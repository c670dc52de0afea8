package energy

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/kilianp07/focusplan/core/logger"
)

// Source returns the analysed energy profile of a user.
type Source interface {
	Profile(ctx context.Context, userID string) (Profile, error)
}

// StaticSource serves profiles from an in-memory map. Unknown users yield the
// default profile.
type StaticSource struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

// NewStaticSource returns a StaticSource seeded with the given profiles.
func NewStaticSource(profiles map[string]Profile) *StaticSource {
	cp := make(map[string]Profile, len(profiles))
	for k, v := range profiles {
		cp[k] = v
	}
	return &StaticSource{profiles: cp}
}

// Set stores or replaces the profile of a user.
func (s *StaticSource) Set(p Profile) {
	s.mu.Lock()
	s.profiles[p.UserID] = p
	s.mu.Unlock()
}

// Profile implements Source.
func (s *StaticSource) Profile(_ context.Context, userID string) (Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.profiles[userID]; ok {
		return p, nil
	}
	p := DefaultProfile()
	p.UserID = userID
	return p, nil
}

// CacheConfig bounds the profile cache.
type CacheConfig struct {
	Size       int `json:"size" yaml:"size"`
	TTLSeconds int `json:"ttl_seconds" yaml:"ttl_seconds"`
}

// SetDefaults applies a 256 entry, one hour cache.
func (c *CacheConfig) SetDefaults() {
	if c.Size <= 0 {
		c.Size = 256
	}
	if c.TTLSeconds <= 0 {
		c.TTLSeconds = 3600
	}
}

// CachedSource memoises profiles of an upstream Source in a bounded,
// time-limited cache. Failures of the upstream are logged and resolved with
// the default profile.
type CachedSource struct {
	upstream Source
	cache    *expirable.LRU[string, Profile]
	log      logger.Logger
}

// NewCachedSource wraps upstream with a cache sized by cfg.
func NewCachedSource(upstream Source, cfg CacheConfig, log logger.Logger) *CachedSource {
	cfg.SetDefaults()
	if log == nil {
		log = logger.NopLogger{}
	}
	return &CachedSource{
		upstream: upstream,
		cache:    expirable.NewLRU[string, Profile](cfg.Size, nil, time.Duration(cfg.TTLSeconds)*time.Second),
		log:      log,
	}
}

// Profile implements Source.
func (c *CachedSource) Profile(ctx context.Context, userID string) (Profile, error) {
	if p, ok := c.cache.Get(userID); ok {
		return p, nil
	}
	p, err := c.upstream.Profile(ctx, userID)
	if err != nil {
		c.log.Warnf("energy profile for %s unavailable, using default: %v", userID, err)
		p = DefaultProfile()
		p.UserID = userID
		return p, nil
	}
	c.cache.Add(userID, p)
	return p, nil
}

// Invalidate drops the cached profile of a user, typically after a new analysis.
func (c *CachedSource) Invalidate(userID string) {
	c.cache.Remove(userID)
}

// Len returns the number of cached profiles.
func (c *CachedSource) Len() int { return c.cache.Len() }
