// Package kvconfig implements a line-oriented key=value configuration codec.
//
// A Codec drives a FieldSet: it decodes a multi-line blob into per-field updates,
// encodes the fields back into a blob, and resets them to their defaults. Malformed
// lines, unknown keys and unconvertible values are skipped one at a time; a single
// bad line never fails the whole blob.
//
// Field sets are usually built from a Table of typed fields:
//
//	type Config struct {
//	    Port int
//	    *kvconfig.Table
//	}
//
//	cfg := &Config{}
//	cfg.Table = kvconfig.NewTable(kvconfig.Int("port", &cfg.Port, 8080))
//	codec := kvconfig.New(cfg, kvconfig.NoLock)
package kvconfig

import (
	"iter"
	"sync"
)

// FieldSet is the extension contract a concrete configuration type implements.
type FieldSet interface {
	// Apply assigns value to the field named key. It reports whether the key was
	// recognized and the value converted; otherwise the field is left untouched.
	Apply(key, value string) bool

	// Fields yields every field as a key and its encoded value, in a stable order.
	Fields() iter.Seq2[string, string]

	// Clear returns every field to the unset baseline.
	Clear()

	// SetDefaults assigns the declared default to every field still unset.
	SetDefaults()
}

// Locker guards a Codec's field set. Lock is called before any state is touched
// and Unlock on every exit path.
type Locker interface {
	Lock() error
	Unlock() error
}

type noLock struct{}

func (noLock) Lock() error   { return nil }
func (noLock) Unlock() error { return nil }

// NoLock performs no locking. A Codec built with it must not be shared between goroutines.
var NoLock Locker = noLock{}

// Mutex is an in-process Locker backed by sync.Mutex.
type Mutex struct {
	mu sync.Mutex
}

// NewMutex returns an unlocked Mutex.
func NewMutex() *Mutex {
	return &Mutex{}
}

// Lock acquires the mutex.
func (m *Mutex) Lock() error {
	m.mu.Lock()
	return nil
}

// Unlock releases the mutex.
func (m *Mutex) Unlock() error {
	m.mu.Unlock()
	return nil
}
