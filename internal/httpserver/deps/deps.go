package deps

import (
	"time"

	"github.com/MrSnakeDoc/pmstandards/internal/catalog"
	"github.com/MrSnakeDoc/pmstandards/internal/logger"
	"github.com/MrSnakeDoc/pmstandards/internal/scheduler"
	redisstore "github.com/MrSnakeDoc/pmstandards/internal/store/redis"
)

type Deps struct {
	Logger       logger.Logger
	StartTime    time.Time
	Version      string
	Commit       string
	BuildDate    string
	GoVersion    string
	TimeNow      func() time.Time // for testing, defaults to time.Now
	AllowedHosts []string         // Host headers allowed to reach admin routes
	AllowedCIDRS []string         // networks allowed to reach admin routes
	TrustProxy   bool             // true if running behind a trusted reverse proxy

	Store     *redisstore.Store          // document store
	Topics    *catalog.TopicLookup       // topic reads with fixture fallback
	Processes *catalog.ProcessResolver   // scenario resolution
	Bookmarks *catalog.BookmarkManager   // bookmark CRUD
	Fixture   catalog.FixtureSource      // reference data file
	Reloader  *scheduler.FixtureReloader // nil when the reloader is not running

	ReloadTrigger chan struct{} // manual re-seed, buffered 1

	CORSOrigins       []string // "*" allows any origin
	WriteBurst        int      // bookmark writes per client IP before throttling (0 = unlimited)
	WriteRefillPerMin int
}
