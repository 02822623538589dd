package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/MrSnakeDoc/pmstandards/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func newTestManager(t *testing.T) *BookmarkManager {
	t.Helper()
	m := NewBookmarkManager(setupStore(t))

	clock := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	m.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	seq := 0
	m.newID = func() (string, error) {
		seq++
		return fmt.Sprintf("bm-%03d", seq), nil
	}
	return m
}

func TestBookmarkCreateDefaults(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	b, err := m.Create(ctx, domain.BookmarkInput{TopicKey: ptr("risk_management")})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if b.Page != 1 || b.Note != "" || b.Standard != nil {
		t.Errorf("Create() = %+v, want page 1, empty note, null standard", b)
	}

	stored, err := m.Get(ctx, b.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if *stored.TopicKey != "risk_management" {
		t.Errorf("stored TopicKey = %q", *stored.TopicKey)
	}
}

func TestBookmarkCreateRequiresTarget(t *testing.T) {
	m := newTestManager(t)

	_, err := m.Create(context.Background(), domain.BookmarkInput{})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("Create() error = %v, want ValidationError", err)
	}
	if ve.Message != "Bookmark must have either a topicKey or a standard." {
		t.Errorf("message = %q", ve.Message)
	}
}

func TestBookmarkListNewestFirst(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		if _, err := m.Create(ctx, domain.BookmarkInput{Standard: ptr("PRINCE2"), Page: ptr(i + 1)}); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	all, err := m.List(ctx, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 4 || all[0].ID != "bm-004" || all[3].ID != "bm-001" {
		t.Errorf("List() order = %v", ids(all))
	}

	two, err := m.List(ctx, 2)
	if err != nil {
		t.Fatalf("List(2) error = %v", err)
	}
	if len(two) != 2 || two[0].ID != "bm-004" {
		t.Errorf("List(2) = %v", ids(two))
	}

	if _, err := m.List(ctx, -1); err == nil {
		t.Error("List(-1) should fail")
	}
}

func TestBookmarkUpdate(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	b, err := m.Create(ctx, domain.BookmarkInput{TopicKey: ptr("risk_management"), Page: ptr(5), Note: ptr("first")})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	updated, err := m.Update(ctx, b.ID, domain.BookmarkPatch{Note: ptr("updated")})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Note != "updated" || updated.Page != 5 || *updated.TopicKey != "risk_management" {
		t.Errorf("Update() = %+v, want only note changed", updated)
	}
	if !updated.UpdatedAt.After(b.UpdatedAt) {
		t.Errorf("UpdatedAt = %v, want after %v", updated.UpdatedAt, b.UpdatedAt)
	}
	if !updated.CreatedAt.Equal(b.CreatedAt) {
		t.Errorf("CreatedAt changed to %v", updated.CreatedAt)
	}

	if _, err := m.Update(ctx, "unknown", domain.BookmarkPatch{Note: ptr("x")}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Update(unknown) error = %v, want ErrNotFound", err)
	}

	var ve *domain.ValidationError
	if _, err := m.Update(ctx, b.ID, domain.BookmarkPatch{Page: ptr(0)}); !errors.As(err, &ve) {
		t.Errorf("Update(page 0) error = %v, want ValidationError", err)
	}

	same, err := m.Update(ctx, b.ID, domain.BookmarkPatch{})
	if err != nil {
		t.Fatalf("Update(empty) error = %v", err)
	}
	if !same.UpdatedAt.Equal(updated.UpdatedAt) {
		t.Error("an empty patch should not touch the bookmark")
	}
}

func TestBookmarkDeleteIsIdempotent(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	b, _ := m.Create(ctx, domain.BookmarkInput{Standard: ptr("ISO21502")})
	if err := m.Delete(ctx, b.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := m.Delete(ctx, "never-existed"); err != nil {
		t.Errorf("Delete(unknown) error = %v", err)
	}
	if _, err := m.Get(ctx, b.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
}

func TestNewBookmarkIDIsTimeOrdered(t *testing.T) {
	a, err := newBookmarkID()
	if err != nil {
		t.Fatalf("newBookmarkID() error = %v", err)
	}
	b, _ := newBookmarkID()
	if a == b {
		t.Error("ids should be unique")
	}
	if a > b {
		t.Errorf("ids should sort by creation: %s > %s", a, b)
	}
}

func ids(bs []*domain.Bookmark) []string {
	out := make([]string, 0, len(bs))
	for _, b := range bs {
		out = append(out, b.ID)
	}
	return out
}
