package fixture

import (
	"encoding/json"

	"github.com/MrSnakeDoc/pmstandards/internal/domain"
)

// TopicEntry is a topic as written in the reference data file. Every field
// is optional; the mapper fills the gaps.
type TopicEntry struct {
	Key   string         `json:"key"`
	Title domain.Content `json:"title"`

	PMBOK       domain.Content `json:"PMBOK"`
	PMBOKLink   domain.Content `json:"PMBOK_link"`
	PRINCE2     domain.Content `json:"PRINCE2"`
	PRINCE2Link domain.Content `json:"PRINCE2_link"`
	ISO21502    domain.Content `json:"ISO21502"`
	ISOLink     domain.Content `json:"ISO_link"`

	Similarities domain.Content `json:"similarities"`
	Differences  domain.Content `json:"differences"`

	// Older files call it "unique"; it wins over uniquePoints when both exist.
	Unique       *domain.Content `json:"unique"`
	UniquePoints *domain.Content `json:"uniquePoints"`

	DeepLinks DeepLinksEntry `json:"deepLinks"`
}

// DeepLinksEntry keeps nil apart from an empty list: nil means "derive from
// the *_link field".
type DeepLinksEntry struct {
	PMBOK    *domain.PageList `json:"PMBOK"`
	PRINCE2  *domain.PageList `json:"PRINCE2"`
	ISO21502 *domain.PageList `json:"ISO21502"`
}

// entry is one member of a JSON object, in file order.
type entry struct {
	key string
	raw json.RawMessage
}
