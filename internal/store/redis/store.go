package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/pmstandards/internal/domain"
	"github.com/redis/go-redis/v9"
)

// Store handles Redis operations for topics, scenarios and bookmarks.
//
// It assumes a single-node Redis (or a primary with replicas). The Lua
// scripts derive document keys from ARGV rather than declaring them in KEYS,
// so Redis Cluster and key-routing proxies are not supported.
type Store struct {
	client *redis.Client

	topics    *Collection[domain.Topic]
	scenarios *Collection[domain.Scenario]
	bookmarks *Collection[domain.Bookmark]
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
		topics: &Collection[domain.Topic]{
			client:   client,
			resource: "Topic",
			prefix:   KeyPrefixTopic,
			index:    KeyAllTopics,
			id:       func(t *domain.Topic) string { return t.Key },
			score:    func(*domain.Topic) float64 { return 0 },
		},
		scenarios: &Collection[domain.Scenario]{
			client:   client,
			resource: "Scenario",
			prefix:   KeyPrefixScenario,
			index:    KeyAllScenarios,
			id:       func(s *domain.Scenario) string { return s.Name },
			score:    func(*domain.Scenario) float64 { return 0 },
			hook:     scenarioLookups,
			watch:    scenarioLookupKeys(),
		},
		bookmarks: &Collection[domain.Bookmark]{
			client:   client,
			resource: "Bookmark",
			prefix:   KeyPrefixBookmark,
			index:    KeyAllBookmarks,
			id:       func(b *domain.Bookmark) string { return b.ID },
			score:    func(b *domain.Bookmark) float64 { return float64(b.CreatedAt.UnixMicro()) },
		},
	}
}

// Topics is ordered ascending by key.
func (s *Store) Topics() *Collection[domain.Topic] { return s.topics }

// Scenarios is ordered ascending by name.
func (s *Store) Scenarios() *Collection[domain.Scenario] { return s.scenarios }

// Bookmarks is ordered by creation time.
func (s *Store) Bookmarks() *Collection[domain.Bookmark] { return s.bookmarks }

// Ping checks that Redis answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// ResolveScenario finds the scenario whose type, name or title equals the
// folded needle, probing in that order. The lookup is a single script call.
func (s *Store) ResolveScenario(ctx context.Context, needle string) (*domain.Scenario, error) {
	needle = fold(needle)
	if needle == "" {
		return nil, domain.NotFound("Scenario", needle)
	}

	data, err := resolveScript.Run(ctx, s.client, scenarioLookupKeys(), needle, KeyPrefixScenario).Text()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.NotFound("Scenario", needle)
		}
		return nil, fmt.Errorf("failed to resolve scenario: %w", err)
	}

	var sc domain.Scenario
	if err := json.Unmarshal([]byte(data), &sc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scenario: %w", err)
	}
	return &sc, nil
}

// Stats holds document counts per collection.
type Stats struct {
	Topics    int64 `json:"topics"`
	Scenarios int64 `json:"scenarios"`
	Bookmarks int64 `json:"bookmarks"`
}

// Stats counts the documents of every collection in one pipeline.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	pipe := s.client.Pipeline()
	topics := pipe.ZCard(ctx, KeyAllTopics)
	scenarios := pipe.ZCard(ctx, KeyAllScenarios)
	bookmarks := pipe.ZCard(ctx, KeyAllBookmarks)

	if _, err := pipe.Exec(ctx); err != nil {
		return Stats{}, fmt.Errorf("failed to count documents: %w", err)
	}

	return Stats{
		Topics:    topics.Val(),
		Scenarios: scenarios.Val(),
		Bookmarks: bookmarks.Val(),
	}, nil
}

// ResetReference removes every topic and scenario together with their
// indexes and lookup hashes. Bookmarks are kept.
func (s *Store) ResetReference(ctx context.Context) (int, error) {
	removed := 0
	for _, pattern := range []string{KeyPrefixTopic + "*", KeyPrefixScenario + "*"} {
		iter := s.client.Scan(ctx, 0, pattern, 0).Iterator()
		for iter.Next(ctx) {
			if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
				return removed, fmt.Errorf("failed to delete %s: %w", iter.Val(), err)
			}
			removed++
		}
		if err := iter.Err(); err != nil {
			return removed, fmt.Errorf("failed to scan %s: %w", pattern, err)
		}
	}

	keys := append([]string{KeyAllTopics, KeyAllScenarios}, scenarioLookupKeys()...)
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return removed, fmt.Errorf("failed to delete indexes: %w", err)
	}
	return removed, nil
}

// RepairReport counts the dangling entries removed by Repair.
type RepairReport struct {
	Topics    int `json:"topics"`
	Scenarios int `json:"scenarios"`
	Bookmarks int `json:"bookmarks"`
	Lookups   int `json:"lookups"`
}

// Total is the number of entries removed.
func (r RepairReport) Total() int {
	return r.Topics + r.Scenarios + r.Bookmarks + r.Lookups
}

// Repair drops index and lookup entries that point at missing documents.
func (s *Store) Repair(ctx context.Context) (RepairReport, error) {
	var (
		report RepairReport
		err    error
	)

	if report.Topics, err = s.topics.Prune(ctx); err != nil {
		return report, err
	}
	if report.Scenarios, err = s.scenarios.Prune(ctx); err != nil {
		return report, err
	}
	if report.Bookmarks, err = s.bookmarks.Prune(ctx); err != nil {
		return report, err
	}

	report.Lookups, err = pruneLookupScript.Run(ctx, s.client, scenarioLookupKeys(), KeyPrefixScenario).Int()
	if err != nil {
		return report, fmt.Errorf("failed to prune scenario lookups: %w", err)
	}
	return report, nil
}
