package catalog

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/MrSnakeDoc/pmstandards/internal/domain"
	redisstore "github.com/MrSnakeDoc/pmstandards/internal/store/redis"
)

// ProcessResolver turns a scenario name, type or title into its process view.
type ProcessResolver struct {
	store *redisstore.Store
}

func NewProcessResolver(store *redisstore.Store) *ProcessResolver {
	return &ProcessResolver{store: store}
}

// Resolve matches raw case-insensitively against type, then name, then
// title. On a miss the error lists what the client could ask for instead.
func (r *ProcessResolver) Resolve(ctx context.Context, raw string) (domain.Process, error) {
	needle := NormalizeScenarioName(raw)

	sc, err := r.store.ResolveScenario(ctx, needle)
	if err == nil {
		return sc.Process(), nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.Process{}, err
	}

	available, err := r.available(ctx)
	if err != nil {
		return domain.Process{}, err
	}
	return domain.Process{}, &domain.ScenarioNotFoundError{Query: needle, Available: available}
}

// Summaries lists stored scenarios ordered by name.
func (r *ProcessResolver) Summaries(ctx context.Context) ([]domain.ScenarioBrief, error) {
	scenarios, err := r.store.Scenarios().FindAll(ctx, redisstore.Range{})
	if err != nil {
		return nil, err
	}
	out := make([]domain.ScenarioBrief, 0, len(scenarios))
	for _, sc := range scenarios {
		out = append(out, sc.Brief())
	}
	return out, nil
}

func (r *ProcessResolver) available(ctx context.Context) ([]string, error) {
	scenarios, err := r.store.Scenarios().FindAll(ctx, redisstore.Range{})
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(scenarios))
	for _, sc := range scenarios {
		ids = append(ids, sc.Identifier())
	}
	return ids, nil
}

// NormalizeScenarioName percent-decodes, trims and lower-cases a path
// segment. Undecodable input is used as is.
func NormalizeScenarioName(raw string) string {
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		decoded = raw
	}
	return strings.ToLower(strings.TrimSpace(decoded))
}
