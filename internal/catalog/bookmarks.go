package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/pmstandards/internal/domain"
	redisstore "github.com/MrSnakeDoc/pmstandards/internal/store/redis"
)

// BookmarkManager creates, lists, edits and removes bookmarks.
type BookmarkManager struct {
	store *redisstore.Store
	now   func() time.Time
	newID func() (string, error)
}

func NewBookmarkManager(store *redisstore.Store) *BookmarkManager {
	return &BookmarkManager{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		newID: newBookmarkID,
	}
}

// newBookmarkID returns a time-ordered UUID so ids sort like creation times.
func newBookmarkID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate bookmark id: %w", err)
	}
	return id.String(), nil
}

// Create validates in, applies defaults and stores the new bookmark.
func (m *BookmarkManager) Create(ctx context.Context, in domain.BookmarkInput) (*domain.Bookmark, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	id, err := m.newID()
	if err != nil {
		return nil, err
	}

	b, err := domain.NewBookmark(id, in, m.now())
	if err != nil {
		return nil, err
	}
	if err := m.store.Bookmarks().Insert(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// List returns bookmarks newest first. limit 0 means the maximum; larger
// values are capped at domain.MaxBookmarkList.
func (m *BookmarkManager) List(ctx context.Context, limit int) ([]*domain.Bookmark, error) {
	if limit < 0 {
		return nil, domain.Invalid("limit", "limit must not be negative")
	}
	if limit == 0 || limit > domain.MaxBookmarkList {
		limit = domain.MaxBookmarkList
	}
	return m.store.Bookmarks().FindAll(ctx, redisstore.Range{Reverse: true, Limit: int64(limit)})
}

func (m *BookmarkManager) Get(ctx context.Context, id string) (*domain.Bookmark, error) {
	return m.store.Bookmarks().Get(ctx, id)
}

// Update applies the supplied fields of patch. An empty patch changes
// nothing and returns the stored bookmark.
func (m *BookmarkManager) Update(ctx context.Context, id string, patch domain.BookmarkPatch) (*domain.Bookmark, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return m.Get(ctx, id)
	}

	now := m.now()
	return m.store.Bookmarks().Update(ctx, id, func(b *domain.Bookmark) error {
		patch.Apply(b, now)
		return nil
	})
}

// Delete removes a bookmark. Unknown ids succeed.
func (m *BookmarkManager) Delete(ctx context.Context, id string) error {
	return m.store.Bookmarks().Delete(ctx, id)
}
