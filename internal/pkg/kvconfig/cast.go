package kvconfig

import (
	"math"
	"strconv"
	"strings"
	"unsafe"
)

// cutset is the whitespace trimmed from keys, values and cast input.
const cutset = " \t\n\r\f\v"

// Integer is the set of integer types CastInt accepts, including named enum types.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Floating is the set of floating point types CastFloat accepts.
type Floating interface {
	~float32 | ~float64
}

func trim(s string) string {
	return strings.Trim(s, cutset)
}

// token strips surrounding whitespace and rejects empty or multi-word input.
func token(s string) (string, bool) {
	t := trim(s)
	if t == "" || strings.ContainsAny(t, cutset) {
		return "", false
	}
	return t, true
}

func bits[T any]() int {
	var zero T
	return int(unsafe.Sizeof(zero)) * 8
}

// CastInt converts the whole of s to a decimal integer of type T.
// Surrounding whitespace is tolerated; anything else left over fails the cast.
// On failure out is left untouched.
func CastInt[T Integer](s string, out *T) bool {
	t, ok := token(s)
	if !ok {
		return false
	}

	if ^T(0) < 0 {
		n, err := strconv.ParseInt(t, 10, bits[T]())
		if err != nil {
			return false
		}
		*out = T(n)
		return true
	}

	n, err := strconv.ParseUint(strings.TrimPrefix(t, "+"), 10, bits[T]())
	if err != nil {
		return false
	}
	*out = T(n)
	return true
}

// CastFloat converts the whole of s to a finite floating point value of type T.
func CastFloat[T Floating](s string, out *T) bool {
	t, ok := token(s)
	if !ok {
		return false
	}
	if isHex(t) {
		return false
	}
	f, err := strconv.ParseFloat(t, bits[T]())
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return false
	}
	*out = T(f)
	return true
}

// isHex reports a 0x prefix after an optional sign. ParseFloat takes hex
// mantissas, the decimal stream parser does not.
func isHex(t string) bool {
	t = strings.TrimLeft(t, "+-")
	return len(t) > 1 && t[0] == '0' && (t[1] == 'x' || t[1] == 'X')
}

// CastBool converts the whole of s using strconv.ParseBool spellings (1, true, 0, false, ...).
func CastBool[T ~bool](s string, out *T) bool {
	t, ok := token(s)
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(t)
	if err != nil {
		return false
	}
	*out = T(b)
	return true
}

func formatInt[T Integer](v T) string {
	if v < 0 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatUint(uint64(v), 10)
}

func formatFloat[T Floating](v T) string {
	return strconv.FormatFloat(float64(v), 'g', -1, bits[T]())
}
