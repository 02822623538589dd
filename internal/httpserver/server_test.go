package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/pmstandards/internal/catalog"
	"github.com/MrSnakeDoc/pmstandards/internal/config"
	"github.com/MrSnakeDoc/pmstandards/internal/domain"
	"github.com/MrSnakeDoc/pmstandards/internal/httpserver/deps"
	"github.com/MrSnakeDoc/pmstandards/internal/logger"
	"github.com/MrSnakeDoc/pmstandards/internal/sources/fixture"
	redisstore "github.com/MrSnakeDoc/pmstandards/internal/store/redis"
)

const testFixture = `{
  // reference data used by the API tests
  "topics": {
    "scope_management": {
      "title": "Scope Management",
      "PMBOK": "Scope is defined by deliverables",
      "PMBOK_link": "12",
      "PRINCE2": "Product based planning",
    },
    "risk_management": {"title": "Risk Management"}
  },
  "scenarios": {
    "construction": {
      "type": "construction",
      "name": "Construction Project",
      "summary": "Warehouse build",
      "context": "A regional warehouse",
      "objective": "Deliver on budget",
      "referencedStandards": {"PMBOK": "Tailoring", "PRINCE2": "Manage by stages", "ISO": "Governance"},
      "phases": [{"name": "Initiation", "activities": ["Business case"], "deliverables": ["PID"]}],
      "tailoringJustification": "Regulated environment"
    }
  }
}`

type testEnv struct {
	srv    *httptest.Server
	mr     *miniredis.Miniredis
	store  *redisstore.Store
	seeder *catalog.Seeder
}

func setup(t *testing.T, d deps.Deps) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	path := filepath.Join(t.TempDir(), "pm_data.jsonc")
	if err := os.WriteFile(path, []byte(testFixture), 0o644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	log := logger.NewNop()
	store := redisstore.NewStore(client)
	loader := fixture.NewLoader(path)

	d.Logger = log
	d.StartTime = time.Now()
	d.Store = store
	d.Fixture = loader
	d.Topics = catalog.NewTopicLookup(store, loader, log)
	d.Processes = catalog.NewProcessResolver(store)
	d.Bookmarks = catalog.NewBookmarkManager(store)
	if d.ReloadTrigger == nil {
		d.ReloadTrigger = make(chan struct{}, 1)
	}

	srv := httptest.NewServer(NewRouter(&config.Config{RequestTimeout: 5 * time.Second}, d))
	t.Cleanup(srv.Close)

	return &testEnv{
		srv:    srv,
		mr:     mr,
		store:  store,
		seeder: catalog.NewSeeder(store, loader, log),
	}
}

func (e *testEnv) seed(t *testing.T) {
	t.Helper()
	if _, err := e.seeder.Seed(context.Background()); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
}

func (e *testEnv) do(t *testing.T, method, path, body string, out any) int {
	t.Helper()

	req, err := http.NewRequest(method, e.srv.URL+path, bytes.NewReader([]byte(body)))
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s error = %v", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: invalid JSON: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func TestTopicsEndToEnd(t *testing.T) {
	env := setup(t, deps.Deps{})

	// Empty store: served from the fixture in file order.
	var list struct {
		Topics []domain.Topic `json:"topics"`
	}
	if code := env.do(t, http.MethodGet, "/api/topics", "", &list); code != http.StatusOK {
		t.Fatalf("GET /api/topics status = %d", code)
	}
	if len(list.Topics) != 2 || list.Topics[0].Key != "scope_management" {
		t.Fatalf("fixture topics = %+v", list.Topics)
	}

	env.seed(t)

	var topic map[string]any
	if code := env.do(t, http.MethodGet, "/api/topics/scope_management", "", &topic); code != http.StatusOK {
		t.Fatalf("GET topic status = %d", code)
	}
	if topic["key"] != "scope_management" || topic["PMBOK"] != "Scope is defined by deliverables" {
		t.Errorf("topic = %v", topic)
	}
	links, _ := topic["deepLinks"].(map[string]any)
	if pm, _ := links["PMBOK"].([]any); len(pm) != 1 || pm[0] != float64(12) {
		t.Errorf("deepLinks.PMBOK = %v, want [12]", links["PMBOK"])
	}
	if iso, ok := links["ISO21502"].([]any); !ok || len(iso) != 0 {
		t.Errorf("deepLinks.ISO21502 = %#v, want []", links["ISO21502"])
	}

	var missing map[string]any
	if code := env.do(t, http.MethodGet, "/api/topics/unknown", "", &missing); code != http.StatusNotFound {
		t.Errorf("GET unknown topic status = %d, want 404", code)
	}
	if missing["error"] != "Topic not found" {
		t.Errorf("error = %v", missing["error"])
	}
}

func TestTopicKeyIsDecoded(t *testing.T) {
	env := setup(t, deps.Deps{})
	ctx := context.Background()
	for _, key := range []string{"cost/budget", "100%"} {
		if _, err := env.store.Topics().Upsert(ctx, &domain.Topic{Key: key, Title: key}, nil); err != nil {
			t.Fatalf("Upsert(%s) error = %v", key, err)
		}
	}

	tests := []struct {
		path string
		want string
	}{
		{path: "/api/topics/cost%2Fbudget", want: "cost/budget"},
		{path: "/api/topics/100%25", want: "100%"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			var topic map[string]any
			if code := env.do(t, http.MethodGet, tt.path, "", &topic); code != http.StatusOK {
				t.Fatalf("GET %s status = %d, body %v", tt.path, code, topic)
			}
			if topic["key"] != tt.want {
				t.Errorf("key = %v, want %s", topic["key"], tt.want)
			}
		})
	}
}

func TestProcessesEndToEnd(t *testing.T) {
	env := setup(t, deps.Deps{})
	env.seed(t)

	var process map[string]any
	if code := env.do(t, http.MethodGet, "/api/processes/Construction%20Project", "", &process); code != http.StatusOK {
		t.Fatalf("GET process status = %d", code)
	}
	if process["type"] != "construction" || process["title"] != "Construction Project" {
		t.Errorf("process = %v", process)
	}
	if len(process) != 7 {
		t.Errorf("process has %d fields, want exactly 7: %v", len(process), process)
	}
	if _, leaked := process["summary"]; leaked {
		t.Error("summary must not be exposed")
	}

	var notFound struct {
		Error     string   `json:"error"`
		Available []string `json:"available"`
	}
	if code := env.do(t, http.MethodGet, "/api/processes/space%20program", "", &notFound); code != http.StatusNotFound {
		t.Fatalf("GET unknown process status = %d, want 404", code)
	}
	if len(notFound.Available) != 1 || notFound.Available[0] != "construction" {
		t.Errorf("available = %v", notFound.Available)
	}

	var briefs []domain.ScenarioBrief
	if code := env.do(t, http.MethodGet, "/api/scenarios", "", &briefs); code != http.StatusOK {
		t.Fatalf("GET /api/scenarios status = %d", code)
	}
	if len(briefs) != 1 || briefs[0].Summary != "Warehouse build" {
		t.Errorf("scenarios = %+v", briefs)
	}
}

func TestBookmarksEndToEnd(t *testing.T) {
	env := setup(t, deps.Deps{})

	var errBody map[string]any
	if code := env.do(t, http.MethodPost, "/api/bookmarks", `{"topicKey":null,"standard":null}`, &errBody); code != http.StatusBadRequest {
		t.Fatalf("POST empty bookmark status = %d, want 400", code)
	}
	if code := env.do(t, http.MethodPost, "/api/bookmarks", `{"topicKey":`, nil); code != http.StatusBadRequest {
		t.Errorf("POST malformed JSON status = %d, want 400", code)
	}

	var created domain.Bookmark
	if code := env.do(t, http.MethodPost, "/api/bookmarks", `{"topicKey":"risk_management"}`, &created); code != http.StatusCreated {
		t.Fatalf("POST bookmark status = %d, want 201", code)
	}
	if created.ID == "" || created.Page != 1 || created.Note != "" || created.Standard != nil {
		t.Errorf("created = %+v", created)
	}

	var updated domain.Bookmark
	if code := env.do(t, http.MethodPatch, "/api/bookmarks/"+created.ID, `{"note":"updated"}`, &updated); code != http.StatusOK {
		t.Fatalf("PATCH status = %d", code)
	}
	if updated.Note != "updated" || updated.Page != 1 || updated.TopicKey == nil || *updated.TopicKey != "risk_management" {
		t.Errorf("updated = %+v", updated)
	}

	if code := env.do(t, http.MethodPatch, "/api/bookmarks/unknown", `{"note":"x"}`, nil); code != http.StatusNotFound {
		t.Errorf("PATCH unknown status = %d, want 404", code)
	}

	var got domain.Bookmark
	if code := env.do(t, http.MethodGet, "/api/bookmarks/"+created.ID, "", &got); code != http.StatusOK || got.Note != "updated" {
		t.Errorf("GET bookmark = %d %+v", code, got)
	}

	var list []domain.Bookmark
	if code := env.do(t, http.MethodGet, "/api/bookmarks?limit=10", "", &list); code != http.StatusOK || len(list) != 1 {
		t.Errorf("GET /api/bookmarks = %d, %d entries", code, len(list))
	}
	if code := env.do(t, http.MethodGet, "/api/bookmarks?limit=-3", "", nil); code != http.StatusBadRequest {
		t.Errorf("GET with negative limit status = %d, want 400", code)
	}

	var ok map[string]any
	for _, id := range []string{created.ID, "never-existed"} {
		if code := env.do(t, http.MethodDelete, "/api/bookmarks/"+id, "", &ok); code != http.StatusOK || ok["success"] != true {
			t.Errorf("DELETE %s = %d %v", id, code, ok)
		}
	}
}

func TestBookmarkWritesAreRateLimited(t *testing.T) {
	env := setup(t, deps.Deps{WriteBurst: 1, WriteRefillPerMin: 1})

	if code := env.do(t, http.MethodPost, "/api/bookmarks", `{"standard":"PMBOK7"}`, nil); code != http.StatusCreated {
		t.Fatalf("first POST status = %d, want 201", code)
	}
	if code := env.do(t, http.MethodPost, "/api/bookmarks", `{"standard":"PMBOK7"}`, nil); code != http.StatusTooManyRequests {
		t.Errorf("second POST status = %d, want 429", code)
	}
	if code := env.do(t, http.MethodGet, "/api/bookmarks", "", nil); code != http.StatusOK {
		t.Errorf("reads must not be limited, got %d", code)
	}
}

func TestAdminEndpoints(t *testing.T) {
	env := setup(t, deps.Deps{})
	env.seed(t)

	var ready map[string]bool
	if code := env.do(t, http.MethodGet, "/readyz", "", &ready); code != http.StatusOK || !ready["ready"] {
		t.Errorf("GET /readyz = %d %v", code, ready)
	}

	var infra struct {
		ServingMode string `json:"serving_mode"`
		Components  map[string]struct {
			OK     bool              `json:"ok"`
			Counts *redisstore.Stats `json:"counts"`
		} `json:"components"`
	}
	if code := env.do(t, http.MethodGet, "/infra", "", &infra); code != http.StatusOK {
		t.Fatalf("GET /infra status = %d", code)
	}
	if infra.ServingMode != "store" || !infra.Components["fixture"].OK {
		t.Errorf("infra = %+v", infra)
	}
	if c := infra.Components["store"].Counts; c == nil || c.Topics != 2 || c.Scenarios != 1 {
		t.Errorf("store counts = %+v", c)
	}

	if code := env.do(t, http.MethodPost, "/reload", "", nil); code != http.StatusAccepted {
		t.Errorf("POST /reload status = %d, want 202", code)
	}
	if code := env.do(t, http.MethodPost, "/reload", "", nil); code != http.StatusTooManyRequests {
		t.Errorf("second POST /reload status = %d, want 429", code)
	}

	env.mr.Close()
	if code := env.do(t, http.MethodGet, "/readyz", "", &ready); code != http.StatusServiceUnavailable || ready["ready"] {
		t.Errorf("GET /readyz with store down = %d %v", code, ready)
	}
}

func TestAdminRoutesHonourCIDRs(t *testing.T) {
	env := setup(t, deps.Deps{AllowedCIDRS: []string{"10.0.0.0/8"}})

	if code := env.do(t, http.MethodGet, "/infra", "", nil); code != http.StatusForbidden {
		t.Errorf("GET /infra from loopback = %d, want 403", code)
	}
	if code := env.do(t, http.MethodGet, "/healthz", "", nil); code != http.StatusOK {
		t.Errorf("GET /healthz = %d, liveness is not restricted", code)
	}
	if code := env.do(t, http.MethodGet, "/api/topics", "", nil); code != http.StatusOK {
		t.Errorf("GET /api/topics = %d, API routes are not restricted", code)
	}
}
