package domain

import (
	"strings"
	"time"
)

const (
	// DefaultBookmarkPage is used when a bookmark is created without a page.
	DefaultBookmarkPage = 1

	// MaxBookmarkList is the hard cap on bookmark listings.
	MaxBookmarkList = 200
)

// Bookmark is a saved reference to a topic or to a page of a standard.
// There is no owner: all bookmarks live in one shared list.
type Bookmark struct {
	// ─────────────────────────────
	// Identity (store-assigned)
	// ─────────────────────────────

	// ID is a time-ordered UUID assigned at creation.
	ID string `json:"id"`

	// ─────────────────────────────
	// Target (at least one set at creation)
	// ─────────────────────────────

	// TopicKey references Topic.Key. Nil when the bookmark targets a standard.
	TopicKey *string `json:"topicKey"`

	// Standard names a standard document, e.g. PMBOK7 or PRINCE2.
	Standard *string `json:"standard"`

	// Page inside the standard's document, starting at 1.
	Page int `json:"page"`

	// Note is free text, empty by default.
	Note string `json:"note"`

	// ─────────────────────────────
	// Metadata
	// ─────────────────────────────

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookmarkInput is the body of a create request. Nil means "not supplied".
type BookmarkInput struct {
	TopicKey *string `json:"topicKey"`
	Standard *string `json:"standard"`
	Page     *int    `json:"page"`
	Note     *string `json:"note"`
}

// Validate enforces the creation invariant: a topic or a standard is required.
func (in BookmarkInput) Validate() error {
	if blank(in.TopicKey) && blank(in.Standard) {
		return Invalid("topicKey", "Bookmark must have either a topicKey or a standard.")
	}
	if in.Page != nil && *in.Page < 0 {
		return Invalid("page", "page must be a positive number")
	}
	return nil
}

// NewBookmark validates in and builds the record to persist.
func NewBookmark(id string, in BookmarkInput, now time.Time) (*Bookmark, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	page := DefaultBookmarkPage
	if in.Page != nil && *in.Page > 0 {
		page = *in.Page
	}

	note := ""
	if in.Note != nil {
		note = *in.Note
	}

	return &Bookmark{
		ID:        id,
		TopicKey:  nullable(in.TopicKey),
		Standard:  nullable(in.Standard),
		Page:      page,
		Note:      note,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// BookmarkPatch is a partial update. Only non-nil fields are applied, so a
// field is never cleared unless the caller sent an explicit empty string.
type BookmarkPatch struct {
	Note     *string `json:"note"`
	Page     *int    `json:"page"`
	Standard *string `json:"standard"`
	TopicKey *string `json:"topicKey"`
}

// IsEmpty reports whether the patch changes nothing.
func (p BookmarkPatch) IsEmpty() bool {
	return p.Note == nil && p.Page == nil && p.Standard == nil && p.TopicKey == nil
}

func (p BookmarkPatch) Validate() error {
	if p.Page != nil && *p.Page < 1 {
		return Invalid("page", "page must be a positive number")
	}
	return nil
}

// Apply writes the supplied fields onto b and bumps UpdatedAt.
func (p BookmarkPatch) Apply(b *Bookmark, now time.Time) {
	if p.Note != nil {
		b.Note = *p.Note
	}
	if p.Page != nil {
		b.Page = *p.Page
	}
	if p.Standard != nil {
		b.Standard = nullable(p.Standard)
	}
	if p.TopicKey != nil {
		b.TopicKey = nullable(p.TopicKey)
	}
	b.UpdatedAt = now
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

// nullable maps "" to nil so an absent target is always stored as null.
func nullable(s *string) *string {
	if blank(s) {
		return nil
	}
	v := *s
	return &v
}
