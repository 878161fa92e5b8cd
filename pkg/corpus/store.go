package corpus

import (
	"context"
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/DougThompson1976/i-love-emily/pkg/kv"
)

// Version is the persisted database format.
const Version = 1

// Key layout (relative to the database prefix):
//
//	{prefix}:meta          → msgpack-encoded meta
//	{prefix}:beat:{seq}    → msgpack-encoded BeatRecord
//
// seq is the zero-padded insertion position, so listing the beat prefix
// returns records in the order they were built and a loaded Database makes
// the same random choices as the one that was saved.

type meta struct {
	Version int `msgpack:"version"`
	Beats   int `msgpack:"beats"`
}

func metaKey(prefix kv.Key) kv.Key {
	return append(prefix[:len(prefix):len(prefix)], "meta")
}

func beatPrefix(prefix kv.Key) kv.Key {
	return append(prefix[:len(prefix):len(prefix)], "beat")
}

func beatKey(prefix kv.Key, seq int) kv.Key {
	return append(beatPrefix(prefix), fmt.Sprintf("%08d", seq))
}

// Save writes db under prefix, replacing any database stored there before.
func Save(ctx context.Context, store kv.Store, prefix kv.Key, db *Database) error {
	stale, err := existingBeats(ctx, store, prefix)
	if err != nil {
		return err
	}

	entries := make([]kv.Entry, 0, db.Len()+1)
	for seq, id := range db.ids {
		data, err := msgpack.Marshal(db.records[id])
		if err != nil {
			return fmt.Errorf("corpus: encode %s: %w", id, err)
		}
		key := beatKey(prefix, seq)
		entries = append(entries, kv.Entry{Key: key, Value: data})
		delete(stale, key.String())
	}
	data, err := msgpack.Marshal(meta{Version: Version, Beats: db.Len()})
	if err != nil {
		return fmt.Errorf("corpus: encode meta: %w", err)
	}
	entries = append(entries, kv.Entry{Key: metaKey(prefix), Value: data})

	if err := store.BatchSet(ctx, entries); err != nil {
		return fmt.Errorf("corpus: save: %w", err)
	}
	if len(stale) == 0 {
		return nil
	}
	keys := make([]kv.Key, 0, len(stale))
	for _, k := range stale {
		keys = append(keys, k)
	}
	if err := store.BatchDelete(ctx, keys); err != nil {
		return fmt.Errorf("corpus: delete stale beats: %w", err)
	}
	return nil
}

func existingBeats(ctx context.Context, store kv.Store, prefix kv.Key) (map[string]kv.Key, error) {
	keys := make(map[string]kv.Key)
	for e, err := range store.List(ctx, beatPrefix(prefix)) {
		if err != nil {
			return nil, fmt.Errorf("corpus: list beats: %w", err)
		}
		keys[e.Key.String()] = e.Key
	}
	return keys, nil
}

// Load reads the database stored under prefix.
func Load(ctx context.Context, store kv.Store, prefix kv.Key) (*Database, error) {
	raw, err := store.Get(ctx, metaKey(prefix))
	if errors.Is(err, kv.ErrNotFound) {
		return nil, fmt.Errorf("%w under %q", ErrNoDatabase, prefix.String())
	}
	if err != nil {
		return nil, fmt.Errorf("corpus: load meta: %w", err)
	}
	var m meta
	if err := msgpack.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("corpus: decode meta: %w", err)
	}
	if m.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, m.Version)
	}

	db := newDatabase()
	for e, err := range store.List(ctx, beatPrefix(prefix)) {
		if err != nil {
			return nil, fmt.Errorf("corpus: list beats: %w", err)
		}
		var rec BeatRecord
		if err := msgpack.Unmarshal(e.Value, &rec); err != nil {
			return nil, fmt.Errorf("corpus: decode %s: %w", e.Key, err)
		}
		if !db.insert(&rec) {
			return nil, fmt.Errorf("corpus: duplicate beat %q in store", rec.ID)
		}
	}
	if db.Len() != m.Beats {
		return nil, fmt.Errorf("corpus: store holds %d beats, meta says %d", db.Len(), m.Beats)
	}
	return db, nil
}
