//go:build unit

package kvconfig

import (
	"errors"
	"iter"
	"sync"
	"testing"

	"golang-kvconfig/internal/pkg/ipv4"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mode int

const (
	modeOne mode = iota
	modeTwo
	modeThree
)

type testConfig struct {
	Str    string
	Bool   bool
	Int    int
	Float  float32
	Double float64
	IP     ipv4.Address
	Mode   mode
	*Table
}

func newTestConfig() *testConfig {
	c := &testConfig{}
	c.Table = NewTable(
		String("str_cfg", &c.Str, "default"),
		Bool("bool_cfg", &c.Bool, false),
		Int("int_cfg", &c.Int, 7),
		Float("float_cfg", &c.Float, 1.5),
		Float("double_cfg", &c.Double, 2.25),
		IPv4("ip_cfg", &c.IP, "192.168.0.1/24"),
		Enum("enum_cfg", &c.Mode, modeOne, "enum1", "enum2", "enum3"),
	)
	return c
}

// countingLocker records lock traffic and can be told to fail.
type countingLocker struct {
	locks, unlocks int
	held           bool
	lockErr        error
	unlockErr      error
}

func (l *countingLocker) Lock() error {
	if l.lockErr != nil {
		return l.lockErr
	}
	l.locks++
	l.held = true
	return nil
}

func (l *countingLocker) Unlock() error {
	l.unlocks++
	l.held = false
	return l.unlockErr
}

// panicFieldSet panics from Apply.
type panicFieldSet struct{}

func (panicFieldSet) Apply(string, string) bool          { panic("boom") }
func (panicFieldSet) Fields() iter.Seq2[string, string] { return func(func(string, string) bool) {} }
func (panicFieldSet) Clear()                             {}
func (panicFieldSet) SetDefaults()                       {}

func TestNew(t *testing.T) {
	t.Run("NilFieldSet", func(t *testing.T) {
		assert.Panics(t, func() { New(nil, NoLock) })
	})

	t.Run("NilLocker", func(t *testing.T) {
		assert.Panics(t, func() { New(newTestConfig(), nil) })
	})
}

func TestCodec_Decode(t *testing.T) {
	t.Run("AllFields", func(t *testing.T) {
		cfg := newTestConfig()
		codec := New(cfg, NoLock)

		blob := "str_cfg=hello\nbool_cfg=1\nint_cfg=42\nfloat_cfg=3.14\ndouble_cfg=3.14159\nip_cfg=127.0.0.1\nenum_cfg=1\n"
		require.NoError(t, codec.Decode(blob))

		assert.Equal(t, "hello", cfg.Str)
		assert.True(t, cfg.Bool)
		assert.Equal(t, 42, cfg.Int)
		assert.Equal(t, float32(3.14), cfg.Float)
		assert.Equal(t, 3.14159, cfg.Double)
		assert.Equal(t, "127.0.0.1", cfg.IP.String())
		assert.Equal(t, modeTwo, cfg.Mode)
	})

	t.Run("UnknownKeyIgnored", func(t *testing.T) {
		cfg := newTestConfig()
		codec := New(cfg, NoLock)

		require.NoError(t, codec.Decode("bogus_key=1\nint_cfg=2"))
		assert.Equal(t, 2, cfg.Int)
		assert.True(t, cfg.IsSet("int_cfg"))
		assert.False(t, cfg.IsSet("bogus_key"))
	})

	t.Run("MissingFieldsGetDefaults", func(t *testing.T) {
		cfg := newTestConfig()
		codec := New(cfg, NoLock)

		require.NoError(t, codec.Decode("int_cfg=3"))
		assert.Equal(t, 3, cfg.Int)
		assert.Equal(t, "default", cfg.Str)
		assert.Equal(t, "192.168.0.1/24", cfg.IP.String())
		assert.Equal(t, modeOne, cfg.Mode)
	})

	t.Run("BadValuesFallBackToDefaults", func(t *testing.T) {
		cfg := newTestConfig()
		codec := New(cfg, NoLock)
		require.NoError(t, codec.Decode("int_cfg=100"))

		require.NoError(t, codec.Decode("int_cfg=12abc\nip_cfg=300.1.1.1\nenum_cfg=9\nbool_cfg=maybe"))
		assert.Equal(t, 7, cfg.Int)
		assert.Equal(t, "192.168.0.1/24", cfg.IP.String())
		assert.Equal(t, modeOne, cfg.Mode)
		assert.False(t, cfg.Bool)
	})

	t.Run("WhitespaceAndBlankLines", func(t *testing.T) {
		cfg := newTestConfig()
		codec := New(cfg, NoLock)

		blob := "\n\n   str_cfg \t=  hello world \r\n\t\n  int_cfg=  5\t\n\n"
		require.NoError(t, codec.Decode(blob))
		assert.Equal(t, "hello world", cfg.Str)
		assert.Equal(t, 5, cfg.Int)
	})

	t.Run("MalformedLinesSkipped", func(t *testing.T) {
		cfg := newTestConfig()
		codec := New(cfg, NoLock)

		require.NoError(t, codec.Decode("no equals sign\n=orphan\nstr_cfg=\nstr_cfg=   \nint_cfg=9"))
		assert.Equal(t, "default", cfg.Str)
		assert.False(t, cfg.IsSet("str_cfg"))
		assert.Equal(t, 9, cfg.Int)
	})

	t.Run("EqualsInValuePreserved", func(t *testing.T) {
		cfg := newTestConfig()
		codec := New(cfg, NoLock)

		require.NoError(t, codec.Decode("str_cfg=a=b=c"))
		assert.Equal(t, "a=b=c", cfg.Str)
	})

	t.Run("DuplicateKeyLastWins", func(t *testing.T) {
		cfg := newTestConfig()
		codec := New(cfg, NoLock)

		require.NoError(t, codec.Decode("int_cfg=1\nint_cfg=2\nint_cfg=oops"))
		assert.Equal(t, 2, cfg.Int)
	})

	t.Run("EnumByName", func(t *testing.T) {
		cfg := newTestConfig()
		codec := New(cfg, NoLock)

		require.NoError(t, codec.Decode("enum_cfg=enum3"))
		assert.Equal(t, modeThree, cfg.Mode)
	})
}

func TestCodec_Encode(t *testing.T) {
	cfg := newTestConfig()
	codec := New(cfg, NoLock)
	require.NoError(t, codec.Reset())

	assert.Empty(t, codec.String())

	cfg.Str = "hello"
	cfg.Bool = true
	cfg.Int = 42
	cfg.Float = 3.14
	cfg.Double = 3.14159
	cfg.IP = ipv4.MustParse("127.0.0.1")
	cfg.Mode = modeTwo

	out, err := codec.Encode()
	require.NoError(t, err)

	expected := "str_cfg=hello\nbool_cfg=true\nint_cfg=42\nfloat_cfg=3.14\ndouble_cfg=3.14159\nip_cfg=127.0.0.1\nenum_cfg=1\n"
	assert.Equal(t, expected, out)
	assert.Equal(t, expected, codec.String())

	t.Run("CacheNotRefreshedUntilEncode", func(t *testing.T) {
		cfg.Int = 43
		assert.Equal(t, expected, codec.String())

		out, err := codec.Encode()
		require.NoError(t, err)
		assert.Contains(t, out, "int_cfg=43\n")
		assert.Equal(t, out, codec.String())
	})
}

func TestCodec_RoundTrip(t *testing.T) {
	src := newTestConfig()
	srcCodec := New(src, NoLock)
	require.NoError(t, srcCodec.Reset())

	require.NoError(t, srcCodec.Update("str_cfg", "round trip"))
	require.NoError(t, srcCodec.Update("float_cfg", "0.1"))
	require.NoError(t, srcCodec.Update("double_cfg", "-1e-9"))
	require.NoError(t, srcCodec.Update("ip_cfg", "10.1.2.3/30"))
	require.NoError(t, srcCodec.UpdateLine("enum_cfg=2"))
	require.NoError(t, srcCodec.UpdateLine("int_cfg=-17"))

	blob, err := srcCodec.Encode()
	require.NoError(t, err)

	dst := newTestConfig()
	dstCodec := New(dst, NoLock)
	require.NoError(t, dstCodec.Decode(blob))

	assert.Equal(t, src.Str, dst.Str)
	assert.Equal(t, src.Bool, dst.Bool)
	assert.Equal(t, src.Int, dst.Int)
	assert.Equal(t, src.Float, dst.Float)
	assert.Equal(t, src.Double, dst.Double)
	assert.Equal(t, src.IP, dst.IP)
	assert.Equal(t, src.Mode, dst.Mode)

	again, err := dstCodec.Encode()
	require.NoError(t, err)
	assert.Equal(t, blob, again)
}

func TestCodec_Reset(t *testing.T) {
	decoded := newTestConfig()
	require.NoError(t, New(decoded, NoLock).Decode(""))

	reset := newTestConfig()
	reset.Int = 99
	reset.Str = "dirty"
	require.NoError(t, New(reset, NoLock).Reset())

	assert.Equal(t, decoded.Str, reset.Str)
	assert.Equal(t, decoded.Int, reset.Int)
	assert.Equal(t, decoded.Float, reset.Float)
	assert.Equal(t, decoded.Double, reset.Double)
	assert.Equal(t, decoded.IP, reset.IP)
	assert.Equal(t, decoded.Mode, reset.Mode)
	assert.Equal(t, decoded.Bool, reset.Bool)
}

func TestCodec_Update(t *testing.T) {
	t.Run("LastWriteWins", func(t *testing.T) {
		cfg := newTestConfig()
		codec := New(cfg, NoLock)
		require.NoError(t, codec.Reset())

		require.NoError(t, codec.Update("int_cfg", "1"))
		_, err := codec.Encode()
		require.NoError(t, err)
		require.NoError(t, codec.Update("int_cfg", "2"))
		assert.Equal(t, 2, cfg.Int)
	})

	t.Run("TrimsInputs", func(t *testing.T) {
		cfg := newTestConfig()
		codec := New(cfg, NoLock)

		require.NoError(t, codec.Update("  str_cfg\t", "  padded \n"))
		assert.Equal(t, "padded", cfg.Str)
	})

	t.Run("EmptyValueIgnored", func(t *testing.T) {
		cfg := newTestConfig()
		codec := New(cfg, NoLock)
		require.NoError(t, codec.Update("str_cfg", "kept"))

		require.NoError(t, codec.Update("str_cfg", "   "))
		assert.Equal(t, "kept", cfg.Str)
	})

	t.Run("BadValueKeepsPrevious", func(t *testing.T) {
		cfg := newTestConfig()
		codec := New(cfg, NoLock)
		require.NoError(t, codec.Update("int_cfg", "5"))

		require.NoError(t, codec.Update("int_cfg", "five"))
		assert.Equal(t, 5, cfg.Int)
	})

	t.Run("UpdateLineDoesNotClear", func(t *testing.T) {
		cfg := newTestConfig()
		codec := New(cfg, NoLock)
		require.NoError(t, codec.Decode("int_cfg=5\nstr_cfg=x"))

		require.NoError(t, codec.UpdateLine("int_cfg = 6 "))
		require.NoError(t, codec.UpdateLine("not a pair"))
		assert.Equal(t, 6, cfg.Int)
		assert.Equal(t, "x", cfg.Str)
		assert.True(t, cfg.IsSet("str_cfg"))
	})
}

func TestCodec_Locking(t *testing.T) {
	t.Run("EveryOperationLocksOnce", func(t *testing.T) {
		locker := &countingLocker{}
		codec := New(newTestConfig(), locker)

		require.NoError(t, codec.Decode("int_cfg=1"))
		_, err := codec.Encode()
		require.NoError(t, err)
		require.NoError(t, codec.Reset())
		require.NoError(t, codec.Update("int_cfg", "2"))
		require.NoError(t, codec.UpdateLine("int_cfg=3"))

		assert.Equal(t, 5, locker.locks)
		assert.Equal(t, 5, locker.unlocks)
		assert.False(t, locker.held)
	})

	t.Run("LockFailureLeavesStateUntouched", func(t *testing.T) {
		cfg := newTestConfig()
		locker := &countingLocker{}
		codec := New(cfg, locker)
		require.NoError(t, codec.Decode("int_cfg=1"))

		locker.lockErr = errors.New("busy")
		err := codec.Decode("int_cfg=2")
		require.Error(t, err)
		assert.ErrorIs(t, err, locker.lockErr)
		assert.Contains(t, err.Error(), "failed to acquire lock")
		assert.Equal(t, 1, cfg.Int)

		_, err = codec.Encode()
		assert.Error(t, err)
	})

	t.Run("UnlockFailureReported", func(t *testing.T) {
		locker := &countingLocker{unlockErr: errors.New("stale")}
		codec := New(newTestConfig(), locker)

		err := codec.Reset()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to release lock")
	})

	t.Run("ReleasedOnPanic", func(t *testing.T) {
		locker := &countingLocker{}
		codec := New(panicFieldSet{}, locker)

		assert.Panics(t, func() { _ = codec.Decode("a=b") })
		assert.False(t, locker.held)
		assert.Equal(t, 1, locker.unlocks)
	})

	t.Run("MutexSerializesWriters", func(t *testing.T) {
		cfg := newTestConfig()
		codec := New(cfg, NewMutex())
		require.NoError(t, codec.Reset())

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = codec.Update("str_cfg", "concurrent")
				_, _ = codec.Encode()
				_ = codec.String()
			}()
		}
		wg.Wait()

		assert.Equal(t, "concurrent", cfg.Str)
		assert.Contains(t, codec.String(), "str_cfg=concurrent\n")
	})
}

func TestCodec_WithLogger(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	codec := New(newTestConfig(), NoLock).WithLogger(logrus.NewEntry(logger))
	require.NoError(t, codec.Decode("bogus=1\njunk line\nint_cfg=2"))

	entries := hook.AllEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, "Ignoring unknown key or unconvertible value", entries[0].Message)
	assert.Equal(t, "bogus", entries[0].Data["key"])
	assert.Equal(t, "Skipping line without key or value", entries[1].Message)
}

func TestSplitLine(t *testing.T) {
	cases := []struct {
		line       string
		key, value string
		ok         bool
	}{
		{"a=b", "a", "b", true},
		{"  a \t= b c \r\n", "a", "b c", true},
		{"a=b=c", "a", "b=c", true},
		{"a=", "", "", false},
		{"=b", "", "", false},
		{"ab", "", "", false},
		{"", "", "", false},
	}
	for _, tc := range cases {
		key, value, ok := SplitLine(tc.line)
		assert.Equal(t, tc.ok, ok, tc.line)
		assert.Equal(t, tc.key, key, tc.line)
		assert.Equal(t, tc.value, value, tc.line)
	}
}
