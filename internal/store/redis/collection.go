package redis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/MrSnakeDoc/pmstandards/internal/domain"
	"github.com/redis/go-redis/v9"
)

// maxTxAttempts bounds optimistic transaction retries under contention.
const maxTxAttempts = 16

// errSkip aborts a mutation without writing anything.
var errSkip = errors.New("skip write")

// Range selects a slice of a collection's index.
type Range struct {
	// Reverse walks the index from the highest score down.
	Reverse bool
	// Limit caps the number of documents; 0 means all.
	Limit int64
}

// Outcome reports what an upsert did.
type Outcome int

const (
	Unchanged Outcome = iota
	Created
	Updated
)

func (o Outcome) String() string {
	switch o {
	case Created:
		return "created"
	case Updated:
		return "updated"
	default:
		return "unchanged"
	}
}

// indexHook maintains secondary keys next to a document. It runs inside the
// transaction, may read through tx, and returns the writes to queue.
type indexHook[T any] func(ctx context.Context, tx *redis.Tx, old, cur *T) (func(redis.Pipeliner), error)

// Collection stores JSON documents under prefix+id and keeps their ids in a
// sorted set. All mutations are single WATCH/MULTI/EXEC transactions.
type Collection[T any] struct {
	client   *redis.Client
	resource string
	prefix   string
	index    string
	id       func(*T) string
	score    func(*T) float64

	hook  indexHook[T]
	watch []string
}

func (c *Collection[T]) key(id string) string {
	return c.prefix + id
}

// Count returns the number of stored documents.
func (c *Collection[T]) Count(ctx context.Context) (int64, error) {
	n, err := c.client.ZCard(ctx, c.index).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count %s documents: %w", c.resource, err)
	}
	return n, nil
}

// FindAll returns documents in index order in one round trip.
func (c *Collection[T]) FindAll(ctx context.Context, r Range) ([]*T, error) {
	stop := int64(-1)
	if r.Limit > 0 {
		stop = r.Limit - 1
	}
	reverse := "0"
	if r.Reverse {
		reverse = "1"
	}

	vals, err := listScript.Run(ctx, c.client, []string{c.index}, c.prefix, reverse, strconv.FormatInt(stop, 10)).Slice()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []*T{}, nil
		}
		return nil, fmt.Errorf("failed to list %s documents: %w", c.resource, err)
	}

	docs := make([]*T, 0, len(vals))
	for _, v := range vals {
		s, ok := v.(string)
		if !ok {
			// Index entry whose document is gone.
			continue
		}
		doc, err := c.decode([]byte(s))
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Prune removes index entries whose document is gone, for example after a
// manual DEL or an eviction. It runs as one script, so it cannot race with a
// concurrent insert of the same id.
func (c *Collection[T]) Prune(ctx context.Context) (int, error) {
	n, err := pruneScript.Run(ctx, c.client, []string{c.index}, c.prefix).Int()
	if err != nil {
		return 0, fmt.Errorf("failed to prune %s index: %w", c.resource, err)
	}
	return n, nil
}

// FindOne returns the first document, in index order, accepted by match.
func (c *Collection[T]) FindOne(ctx context.Context, match func(*T) bool) (*T, error) {
	docs, err := c.FindAll(ctx, Range{})
	if err != nil {
		return nil, err
	}
	for _, doc := range docs {
		if match(doc) {
			return doc, nil
		}
	}
	return nil, domain.NotFound(c.resource, "")
}

// Get retrieves a document by id.
func (c *Collection[T]) Get(ctx context.Context, id string) (*T, error) {
	data, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.NotFound(c.resource, id)
		}
		return nil, fmt.Errorf("failed to get %s %s: %w", c.resource, id, err)
	}
	return c.decode(data)
}

// Insert stores a new document and fails with domain.ErrConflict when the
// id is taken.
func (c *Collection[T]) Insert(ctx context.Context, doc *T) error {
	id := c.id(doc)
	_, _, err := c.mutate(ctx, id, func(old *T) (*T, error) {
		if old != nil {
			return nil, fmt.Errorf("%s %s: %w", c.resource, id, domain.ErrConflict)
		}
		return doc, nil
	})
	return err
}

// Upsert stores doc under its id. merge, if set, sees the stored version
// (nil when absent) before doc is written. Nothing is written when the
// merged document is byte-identical to the stored one.
func (c *Collection[T]) Upsert(ctx context.Context, doc *T, merge func(old, cur *T)) (Outcome, error) {
	outcome := Unchanged
	_, _, err := c.mutate(ctx, c.id(doc), func(old *T) (*T, error) {
		if merge != nil {
			merge(old, doc)
		}
		if old == nil {
			outcome = Created
			return doc, nil
		}
		same, err := sameDocument(old, doc)
		if err != nil {
			return nil, err
		}
		if same {
			outcome = Unchanged
			return nil, errSkip
		}
		outcome = Updated
		return doc, nil
	})
	if err != nil {
		return Unchanged, err
	}
	return outcome, nil
}

// Update loads the document, applies fn and stores the result.
func (c *Collection[T]) Update(ctx context.Context, id string, fn func(*T) error) (*T, error) {
	cur, _, err := c.mutate(ctx, id, func(old *T) (*T, error) {
		if old == nil {
			return nil, domain.NotFound(c.resource, id)
		}
		if err := fn(old); err != nil {
			return nil, err
		}
		return old, nil
	})
	if err != nil {
		return nil, err
	}
	return cur, nil
}

// Delete removes a document. Missing ids are not an error.
func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	_, _, err := c.mutate(ctx, id, func(old *T) (*T, error) {
		if old == nil {
			return nil, errSkip
		}
		return nil, nil
	})
	return err
}

// mutate runs fn against the stored version of id inside an optimistic
// transaction. fn returns the document to store, nil to delete it, or
// errSkip to leave everything as is.
func (c *Collection[T]) mutate(ctx context.Context, id string, fn func(old *T) (*T, error)) (*T, *T, error) {
	key := c.key(id)
	watched := append([]string{key, c.index}, c.watch...)

	var old, cur *T
	txf := func(tx *redis.Tx) error {
		var err error
		old, err = c.read(ctx, tx, key)
		if err != nil {
			return err
		}

		cur, err = fn(old)
		if err != nil {
			return err
		}

		var extra func(redis.Pipeliner)
		if c.hook != nil {
			if extra, err = c.hook(ctx, tx, old, cur); err != nil {
				return err
			}
		}

		var data []byte
		if cur != nil {
			if data, err = json.Marshal(cur); err != nil {
				return fmt.Errorf("failed to marshal %s: %w", c.resource, err)
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if cur == nil {
				pipe.Del(ctx, key)
				pipe.ZRem(ctx, c.index, id)
			} else {
				pipe.Set(ctx, key, data, 0)
				pipe.ZAdd(ctx, c.index, redis.Z{Score: c.score(cur), Member: id})
			}
			if extra != nil {
				extra(pipe)
			}
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		err := c.client.Watch(ctx, txf, watched...)
		switch {
		case err == nil:
			return cur, old, nil
		case errors.Is(err, errSkip):
			return old, old, nil
		case errors.Is(err, redis.TxFailedErr):
			continue
		default:
			return nil, nil, err
		}
	}
	return nil, nil, fmt.Errorf("failed to write %s %s: too much contention", c.resource, id)
}

func (c *Collection[T]) read(ctx context.Context, tx *redis.Tx, key string) (*T, error) {
	data, err := tx.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", c.resource, err)
	}
	return c.decode(data)
}

func (c *Collection[T]) decode(data []byte) (*T, error) {
	var doc T
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", c.resource, err)
	}
	return &doc, nil
}

func sameDocument[T any](a, b *T) (bool, error) {
	ab, err := json.Marshal(a)
	if err != nil {
		return false, err
	}
	bb, err := json.Marshal(b)
	if err != nil {
		return false, err
	}
	return bytes.Equal(ab, bb), nil
}
