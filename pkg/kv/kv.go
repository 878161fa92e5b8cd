// Package kv is the key-value layer under emily's persisted beat databases.
// Keys are hierarchical paths such as {"chorales", "beat", "00000042"} that
// are joined with a separator byte (':' by default) for storage, so listing a
// prefix returns one database's records in key order.
//
// Badger is the on-disk backend; Memory is a map-backed store for tests and
// throwaway sessions.
package kv

import (
	"bytes"
	"context"
	"errors"
	"iter"
	"strings"
)

// ErrNotFound is returned by Get when a key has no value.
var ErrNotFound = errors.New("kv: not found")

// Key is a hierarchical path of segments. Segments must not contain the
// store's separator.
type Key []string

// String joins the segments with ':' for display.
func (k Key) String() string {
	return strings.Join(k, ":")
}

// Entry is one key-value pair.
type Entry struct {
	Key   Key
	Value []byte
}

// Store is a key-value store with path keys.
type Store interface {
	// Get returns the value at key, or ErrNotFound.
	Get(ctx context.Context, key Key) ([]byte, error)

	// Set stores value at key, overwriting what was there.
	Set(ctx context.Context, key Key, value []byte) error

	// List yields every entry strictly under prefix in lexicographic order
	// of the encoded key. A nil prefix lists the whole store.
	List(ctx context.Context, prefix Key) iter.Seq2[Entry, error]

	// BatchSet stores all entries. Large batches may be committed in several
	// transactions, so a failure can leave a prefix of entries written.
	BatchSet(ctx context.Context, entries []Entry) error

	// BatchDelete removes all keys, with the same commit behaviour as
	// BatchSet. Missing keys are ignored.
	BatchDelete(ctx context.Context, keys []Key) error

	// Close releases the store.
	Close() error
}

// DefaultSeparator joins key segments when no Options are given.
const DefaultSeparator byte = ':'

// Options configures key encoding.
type Options struct {
	// Separator joins key segments. Zero means DefaultSeparator.
	Separator byte
}

func (o *Options) sep() byte {
	if o == nil || o.Separator == 0 {
		return DefaultSeparator
	}
	return o.Separator
}

func (o *Options) encode(k Key) []byte {
	return []byte(strings.Join(k, string(o.sep())))
}

func (o *Options) decode(b []byte) Key {
	parts := bytes.Split(b, []byte{o.sep()})
	k := make(Key, len(parts))
	for i, p := range parts {
		k[i] = string(p)
	}
	return k
}

// scanPrefix is the byte prefix List matches for prefix. A trailing separator
// keeps {"db"} from matching {"db2", ...}.
func (o *Options) scanPrefix(prefix Key) []byte {
	if len(prefix) == 0 {
		return nil
	}
	return append(o.encode(prefix), o.sep())
}
