package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/pmstandards/internal/domain"
	"github.com/redis/go-redis/v9"
)

// fold is the case-insensitive shadow of a matched field.
func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

type lookupField struct {
	key string
	get func(*domain.Scenario) string
}

var lookupFields = []lookupField{
	{key: KeyScenariosByType, get: func(s *domain.Scenario) string { return s.Type }},
	{key: KeyScenariosByName, get: func(s *domain.Scenario) string { return s.Name }},
	{key: KeyScenariosByTitle, get: func(s *domain.Scenario) string { return s.Title }},
}

// scenarioLookups keeps the by-type/by-name/by-title hashes in step with a
// scenario write. When the written scenario gives up a value it owned, the
// field passes to another stored scenario still carrying that value, first
// by name; it is dropped only when none does.
func scenarioLookups(ctx context.Context, tx *redis.Tx, old, cur *domain.Scenario) (func(redis.Pipeliner), error) {
	type hfield struct{ key, field, name string }
	var dels, sets []hfield

	var others []*domain.Scenario
	loaded := false

	for _, f := range lookupFields {
		var oldVal, curVal string
		if old != nil {
			oldVal = fold(f.get(old))
		}
		if cur != nil {
			curVal = fold(f.get(cur))
		}

		if oldVal != "" && oldVal != curVal {
			owner, err := tx.HGet(ctx, f.key, oldVal).Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				return nil, err
			}
			if owner == old.Name {
				if !loaded {
					if others, err = otherScenarios(ctx, tx, old.Name); err != nil {
						return nil, err
					}
					loaded = true
				}
				if heir := carrier(others, f, oldVal); heir != "" {
					sets = append(sets, hfield{key: f.key, field: oldVal, name: heir})
				} else {
					dels = append(dels, hfield{key: f.key, field: oldVal})
				}
			}
		}
		if curVal != "" {
			sets = append(sets, hfield{key: f.key, field: curVal, name: cur.Name})
		}
	}

	return func(pipe redis.Pipeliner) {
		for _, d := range dels {
			pipe.HDel(ctx, d.key, d.field)
		}
		for _, s := range sets {
			pipe.HSet(ctx, s.key, s.field, s.name)
		}
	}, nil
}

// otherScenarios reads every stored scenario except name, ascending by name.
func otherScenarios(ctx context.Context, tx *redis.Tx, name string) ([]*domain.Scenario, error) {
	names, err := tx.ZRange(ctx, KeyAllScenarios, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}

	keys := make([]string, 0, len(names))
	for _, n := range names {
		if n != name {
			keys = append(keys, ScenarioKey(n))
		}
	}
	if len(keys) == 0 {
		return nil, nil
	}

	vals, err := tx.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read scenarios: %w", err)
	}

	out := make([]*domain.Scenario, 0, len(vals))
	for _, v := range vals {
		data, ok := v.(string)
		if !ok {
			continue
		}
		var sc domain.Scenario
		if err := json.Unmarshal([]byte(data), &sc); err != nil {
			return nil, fmt.Errorf("failed to unmarshal scenario: %w", err)
		}
		out = append(out, &sc)
	}
	return out, nil
}

func carrier(scenarios []*domain.Scenario, f lookupField, val string) string {
	for _, sc := range scenarios {
		if fold(f.get(sc)) == val {
			return sc.Name
		}
	}
	return ""
}
