package repositories

import (
	"context"
	"github.com/maxaizer/jobmarket/internal/entities"
	gocache "github.com/patrickmn/go-cache"
	"time"
)

type profileRepository interface {
	Get(ctx context.Context, uid string) (*entities.Profile, error)
	Save(ctx context.Context, profile entities.Profile) error
	Update(ctx context.Context, uid string, fields map[string]any) error
	Remove(ctx context.Context, uid string) error
}

// CachedProfiles keeps successful point-reads for ttl. Misses and errors are never cached.
type CachedProfiles struct {
	repo  profileRepository
	cache *gocache.Cache
}

func NewCachedProfiles(repo profileRepository, ttl time.Duration) *CachedProfiles {
	return &CachedProfiles{repo: repo, cache: gocache.New(ttl, 2*ttl)}
}

func (c *CachedProfiles) Get(ctx context.Context, uid string) (*entities.Profile, error) {
	if value, found := c.cache.Get(uid); found {
		profile := value.(entities.Profile)
		return &profile, nil
	}

	profile, err := c.repo.Get(ctx, uid)
	if err != nil {
		return nil, err
	}

	c.cache.SetDefault(uid, *profile)
	return profile, nil
}

func (c *CachedProfiles) Save(ctx context.Context, profile entities.Profile) error {
	defer c.Invalidate(profile.UID)
	return c.repo.Save(ctx, profile)
}

func (c *CachedProfiles) Update(ctx context.Context, uid string, fields map[string]any) error {
	defer c.Invalidate(uid)
	return c.repo.Update(ctx, uid, fields)
}

func (c *CachedProfiles) Remove(ctx context.Context, uid string) error {
	defer c.Invalidate(uid)
	return c.repo.Remove(ctx, uid)
}

func (c *CachedProfiles) Invalidate(uid string) {
	c.cache.Delete(uid)
}
