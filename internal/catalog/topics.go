// Package catalog holds the read and write paths behind the HTTP API:
// topic lookup with fixture fallback, scenario resolution, bookmarks and
// seeding.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/pmstandards/internal/domain"
	"github.com/MrSnakeDoc/pmstandards/internal/logger"
	"github.com/MrSnakeDoc/pmstandards/internal/sources/fixture"
	redisstore "github.com/MrSnakeDoc/pmstandards/internal/store/redis"
)

// FixtureSource provides the reference data file. Load returns (nil, nil)
// when no file is available.
type FixtureSource interface {
	Load() (*fixture.Dataset, error)
}

// TopicLookup reads topics from the store and falls back to the fixture.
type TopicLookup struct {
	store   *redisstore.Store
	fixture FixtureSource
	log     logger.Logger
}

func NewTopicLookup(store *redisstore.Store, fixture FixtureSource, log logger.Logger) *TopicLookup {
	return &TopicLookup{store: store, fixture: fixture, log: log}
}

// List returns every topic. An empty or unreachable store means the fixture
// is served instead, in file order; otherwise stored topics come ascending
// by key. With neither available the list is empty.
func (l *TopicLookup) List(ctx context.Context) ([]*domain.Topic, error) {
	n, err := l.store.Topics().Count(ctx)
	if err != nil {
		l.log.Warn("store unavailable, listing topics from fixture", logger.Error(err))
	}
	if n > 0 {
		return l.store.Topics().FindAll(ctx, redisstore.Range{})
	}

	ds, err := loadFixture(l.fixture)
	if err != nil {
		return nil, err
	}
	if ds == nil {
		return []*domain.Topic{}, nil
	}
	return ds.Topics, nil
}

// Get returns the stored topic, else the fixture topic, else a not-found
// error. Stored data always wins over the fixture. When the store fails and
// the fixture has no such key, the store error is returned.
func (l *TopicLookup) Get(ctx context.Context, key string) (*domain.Topic, error) {
	t, storeErr := l.store.Topics().Get(ctx, key)
	if storeErr == nil {
		return t, nil
	}
	if errors.Is(storeErr, domain.ErrNotFound) {
		storeErr = nil
	} else {
		l.log.Warn("store unavailable, reading topic from fixture",
			logger.String("key", key),
			logger.Error(storeErr))
	}

	ds, err := loadFixture(l.fixture)
	if err != nil {
		return nil, err
	}
	if t, ok := ds.Topic(key); ok {
		return t, nil
	}
	if storeErr != nil {
		return nil, storeErr
	}
	return nil, domain.NotFound("Topic", key)
}

func loadFixture(src FixtureSource) (*fixture.Dataset, error) {
	if src == nil {
		return nil, nil
	}
	ds, err := src.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load fixture: %w", err)
	}
	return ds, nil
}
