package kvconfig

import (
	"io"
	"strings"
	"sync/atomic"

	"github.com/samber/oops"
	"github.com/sirupsen/logrus"
)

// Codec serializes a FieldSet to and from key=value blobs.
type Codec struct {
	fields FieldSet
	locker Locker
	log    *logrus.Entry
	cached atomic.Pointer[string]
}

// New returns a Codec over fields guarded by locker. Pass NoLock explicitly when the
// Codec is confined to a single goroutine. It panics if either argument is nil.
func New(fields FieldSet, locker Locker) *Codec {
	if fields == nil || locker == nil {
		panic("kvconfig: New requires a field set and a locker")
	}
	return &Codec{
		fields: fields,
		locker: locker,
		log:    discardLogger(),
	}
}

func discardLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// WithLogger attaches a logger that receives debug entries for skipped lines.
func (c *Codec) WithLogger(entry *logrus.Entry) *Codec {
	if entry != nil {
		c.log = entry
	}
	return c
}

// Decode clears every field, applies each key=value line of blob, then fills
// defaults for the fields the blob did not set. Only locking can make it fail.
func (c *Codec) Decode(blob string) error {
	return c.locked("decode", func() {
		c.fields.Clear()
		for line := range strings.Lines(blob) {
			c.applyLine(line)
		}
		c.fields.SetDefaults()
	})
}

// Encode writes every field as a key=value line, caches the result and returns it.
func (c *Codec) Encode() (string, error) {
	var out string
	err := c.locked("encode", func() {
		var b strings.Builder
		for key, value := range c.fields.Fields() {
			b.WriteString(key)
			b.WriteByte('=')
			b.WriteString(value)
			b.WriteByte('\n')
		}
		out = b.String()
		c.cached.Store(&out)
	})
	if err != nil {
		return "", err
	}
	return out, nil
}

// String returns the blob cached by the last Encode. It does not re-encode.
func (c *Codec) String() string {
	if s := c.cached.Load(); s != nil {
		return *s
	}
	return ""
}

// Reset returns every field to its default.
func (c *Codec) Reset() error {
	return c.locked("reset", func() {
		c.fields.Clear()
		c.fields.SetDefaults()
	})
}

// Update applies a single key and value without clearing other fields.
// An empty value is treated as absent, exactly as in Decode.
func (c *Codec) Update(key, value string) error {
	key, value = trim(key), trim(value)
	if key == "" || value == "" {
		return nil
	}
	return c.locked("update", func() {
		c.apply(key, value)
	})
}

// UpdateLine applies one key=value line without clearing other fields.
func (c *Codec) UpdateLine(line string) error {
	return c.locked("update", func() {
		c.applyLine(line)
	})
}

// locked runs fn between Lock and Unlock. Unlock runs even if fn panics.
func (c *Codec) locked(op string, fn func()) (err error) {
	if err := c.locker.Lock(); err != nil {
		return oops.In("kvconfig").With("op", op).Wrapf(err, "failed to acquire lock")
	}
	defer func() {
		if uerr := c.locker.Unlock(); uerr != nil && err == nil {
			err = oops.In("kvconfig").With("op", op).Wrapf(uerr, "failed to release lock")
		}
	}()
	fn()
	return nil
}

func (c *Codec) applyLine(line string) {
	key, value, ok := SplitLine(line)
	if !ok {
		if trim(line) != "" {
			c.log.WithField("line", trim(line)).Debug("Skipping line without key or value")
		}
		return
	}
	c.apply(key, value)
}

func (c *Codec) apply(key, value string) {
	if !c.fields.Apply(key, value) {
		c.log.WithFields(logrus.Fields{
			"key":   key,
			"value": value,
		}).Debug("Ignoring unknown key or unconvertible value")
	}
}

// SplitLine splits line on its first '=' and trims both sides. It reports false when
// there is no '=' or when the key or the value is empty after trimming.
func SplitLine(line string) (key, value string, ok bool) {
	key, value, found := strings.Cut(line, "=")
	if !found {
		return "", "", false
	}
	key, value = trim(key), trim(value)
	if key == "" || value == "" {
		return "", "", false
	}
	return key, value, true
}
