package fixture

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/MrSnakeDoc/pmstandards/internal/domain"
)

// Dataset is a parsed fixture. It is shared between callers and must not be
// modified.
type Dataset struct {
	// Topics in file order.
	Topics []*domain.Topic
	// Scenarios in file order.
	Scenarios []*domain.Scenario

	byKey map[string]*domain.Topic
}

// Topic returns the fixture topic stored under key.
func (d *Dataset) Topic(key string) (*domain.Topic, bool) {
	if d == nil {
		return nil, false
	}
	t, ok := d.byKey[key]
	return t, ok
}

// Mapper converts fixture entries into domain entities.
type Mapper struct{}

// NewMapper creates a new mapper instance
func NewMapper() *Mapper {
	return &Mapper{}
}

// Map builds a Dataset out of the topics and scenarios sections.
func (m *Mapper) Map(topics, scenarios []entry) (*Dataset, error) {
	ds := &Dataset{
		Topics:    make([]*domain.Topic, 0, len(topics)),
		Scenarios: make([]*domain.Scenario, 0, len(scenarios)),
		byKey:     make(map[string]*domain.Topic, len(topics)),
	}

	for i, e := range topics {
		var te TopicEntry
		if err := json.Unmarshal(e.raw, &te); err != nil {
			return nil, fmt.Errorf("topic %s: %w", label(e.key, i), err)
		}

		t, err := m.MapTopic(e.key, te)
		if err != nil {
			return nil, fmt.Errorf("topic %s: %w", label(e.key, i), err)
		}
		if prev, dup := ds.byKey[t.Key]; dup {
			*prev = *t
			continue
		}
		ds.byKey[t.Key] = t
		ds.Topics = append(ds.Topics, t)
	}

	for i, e := range scenarios {
		var s domain.Scenario
		if err := json.Unmarshal(e.raw, &s); err != nil {
			return nil, fmt.Errorf("scenario %s: %w", label(e.key, i), err)
		}
		if err := m.MapScenario(e.key, &s); err != nil {
			return nil, fmt.Errorf("scenario %s: %w", label(e.key, i), err)
		}
		ds.Scenarios = append(ds.Scenarios, &s)
	}

	return ds, nil
}

// MapTopic normalises one topic. The mapping key is the identity; an entry's
// own "key" is only used when the mapping has none (array sections).
func (m *Mapper) MapTopic(key string, te TopicEntry) (*domain.Topic, error) {
	if key == "" {
		key = strings.TrimSpace(te.Key)
	}
	if key == "" {
		return nil, fmt.Errorf("missing key")
	}

	title := te.Title.Text()
	if strings.TrimSpace(title) == "" {
		title = key
	}

	unique := te.UniquePoints
	if te.Unique != nil && !te.Unique.IsEmpty() {
		unique = te.Unique
	}

	t := &domain.Topic{
		Key:          key,
		Title:        title,
		PMBOK:        te.PMBOK,
		PMBOKLink:    te.PMBOKLink.Text(),
		PRINCE2:      te.PRINCE2,
		PRINCE2Link:  te.PRINCE2Link.Text(),
		ISO21502:     te.ISO21502,
		ISOLink:      te.ISOLink.Text(),
		Similarities: te.Similarities.Text(),
		Differences:  te.Differences,
		DeepLinks: domain.DeepLinks{
			PMBOK:    deepLink(te.DeepLinks.PMBOK, te.PMBOKLink.Text()),
			PRINCE2:  deepLink(te.DeepLinks.PRINCE2, te.PRINCE2Link.Text()),
			ISO21502: deepLink(te.DeepLinks.ISO21502, te.ISOLink.Text()),
		},
	}
	if unique != nil {
		t.UniquePoints = *unique
	}
	return t, nil
}

// MapScenario fills the name from the mapping key when the entry has none.
func (m *Mapper) MapScenario(key string, s *domain.Scenario) error {
	s.Name = strings.TrimSpace(s.Name)
	if s.Name == "" {
		s.Name = strings.TrimSpace(key)
	}
	if s.Name == "" {
		return fmt.Errorf("missing name")
	}
	s.Normalize()
	return nil
}

// deepLink prefers an explicit list and otherwise reads the link as a page.
func deepLink(explicit *domain.PageList, link string) domain.PageList {
	if explicit != nil {
		return *explicit
	}
	if page, ok := domain.PageFromLink(link); ok {
		return domain.PageList{page}
	}
	return domain.PageList{}
}

func label(key string, i int) string {
	if key != "" {
		return strconv.Quote(key)
	}
	return "#" + strconv.Itoa(i)
}
