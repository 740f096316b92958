// Package ipv4 provides a strict IPv4 address value with an optional CIDR mask width.
//
// Addresses are written as A.B.C.D or A.B.C.D/M where every octet is in 0..255 and the
// mask width M is in 1..32. Parsing never panics; a rejected input produces an Address
// whose Valid method reports false and whose String is empty.
package ipv4

import (
	"encoding/binary"
	"fmt"
	"net"
	"net/netip"
	"strconv"
	"strings"
)

// DefaultSubnet is the mask width reported by Subnet when no mask was given.
const DefaultSubnet = 24

// maxMask is the widest accepted mask.
const maxMask = 32

// Address is an IPv4 address with an optional mask width. The zero value is invalid.
type Address struct {
	octets [4]byte
	mask   uint8
	valid  bool
	str    string
}

// Parse parses s as A.B.C.D or A.B.C.D/M. On failure it returns an invalid Address
// together with an error wrapping one of the package sentinels.
func Parse(s string) (Address, error) {
	octets, mask, err := scan(s)
	if err != nil {
		return Address{}, fmt.Errorf("parse %q: %w", s, err)
	}
	return build(octets, mask), nil
}

// FromString parses s and reports failures only through the validity flag.
func FromString(s string) Address {
	a, _ := Parse(s)
	return a
}

// MustParse is like Parse but panics on invalid input. Intended for constants and tests.
func MustParse(s string) Address {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// FromOctets builds an Address from raw octets and a mask width, 0 meaning unset.
// Octets need no range check; a mask wider than 32 yields an invalid Address.
func FromOctets(octets [4]byte, mask uint8) Address {
	if mask > maxMask {
		return Address{}
	}
	return build(octets, mask)
}

func build(octets [4]byte, mask uint8) Address {
	a := Address{octets: octets, mask: mask, valid: true}
	a.str = a.format()
	return a
}

// scan walks s once: four octets separated by '.', then optionally '/' and a mask.
// It stops at the first violation.
func scan(s string) ([4]byte, uint8, error) {
	var octets [4]byte
	if s == "" {
		return octets, 0, ErrEmpty
	}

	pos := 0
	for i := range octets {
		if i > 0 {
			if pos >= len(s) || s[pos] != '.' {
				return octets, 0, fmt.Errorf("%w after octet %d", ErrDelimiter, i)
			}
			pos++
		}
		v, next, ok := number(s, pos)
		if !ok || v > 255 {
			return octets, 0, fmt.Errorf("%w at position %d", ErrOctet, pos)
		}
		octets[i] = byte(v)
		pos = next
	}

	if pos == len(s) {
		return octets, 0, nil
	}
	if s[pos] != '/' {
		return octets, 0, fmt.Errorf("%w %q at position %d", ErrDelimiter, s[pos], pos)
	}
	pos++

	v, next, ok := number(s, pos)
	if !ok || v == 0 || v > maxMask {
		return octets, 0, fmt.Errorf("%w at position %d", ErrMask, pos)
	}
	if next != len(s) {
		return octets, 0, fmt.Errorf("%w at position %d", ErrTrailing, next)
	}
	return octets, uint8(v), nil
}

// number reads a run of decimal digits starting at pos. The returned value saturates
// above 1000, which is out of range for every caller anyway.
func number(s string, pos int) (int, int, bool) {
	start := pos
	v := 0
	for pos < len(s) && s[pos] >= '0' && s[pos] <= '9' {
		if v <= 1000 {
			v = v*10 + int(s[pos]-'0')
		}
		pos++
	}
	return v, pos, pos > start
}

func (a Address) format() string {
	var b strings.Builder
	for i, o := range a.octets {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(strconv.Itoa(int(o)))
	}
	if a.mask != 0 {
		b.WriteByte('/')
		b.WriteString(strconv.Itoa(int(a.mask)))
	}
	return b.String()
}

// Valid reports whether the address was parsed or constructed successfully.
func (a Address) Valid() bool {
	return a.valid
}

// String returns the canonical form, or "" for an invalid address.
func (a Address) String() string {
	return a.str
}

// Octets returns the four address bytes. Meaningless unless Valid.
func (a Address) Octets() [4]byte {
	return a.octets
}

// Mask returns the stored mask width, 0 when none was given.
func (a Address) Mask() uint8 {
	return a.mask
}

// Subnet returns the mask width, falling back to DefaultSubnet when unset.
func (a Address) Subnet() uint8 {
	if a.mask != 0 {
		return a.mask
	}
	return DefaultSubnet
}

// SubnetMask returns Subnet() leading one-bits as four bytes, most significant first.
func (a Address) SubnetMask() [4]byte {
	var sn [4]byte
	binary.BigEndian.PutUint32(sn[:], ^uint32(0)<<(32-uint32(a.Subnet())))
	return sn
}

// Take moves the value out of a, leaving a as the zero (invalid) Address.
func (a *Address) Take() Address {
	v := *a
	*a = Address{}
	return v
}

// Addr converts a to a netip.Addr. Invalid addresses yield the zero Addr.
func (a Address) Addr() netip.Addr {
	if !a.valid {
		return netip.Addr{}
	}
	return netip.AddrFrom4(a.octets)
}

// Prefix converts a to a netip.Prefix using Subnet as the length.
func (a Address) Prefix() netip.Prefix {
	if !a.valid {
		return netip.Prefix{}
	}
	return netip.PrefixFrom(a.Addr(), int(a.Subnet()))
}

// IPNet converts a to a *net.IPNet using Subnet as the mask. Returns nil when invalid.
func (a Address) IPNet() *net.IPNet {
	if !a.valid {
		return nil
	}
	return &net.IPNet{
		IP:   net.IPv4(a.octets[0], a.octets[1], a.octets[2], a.octets[3]).To4(),
		Mask: net.CIDRMask(int(a.Subnet()), 32),
	}
}

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.str), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Empty text yields the zero Address.
func (a *Address) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*a = Address{}
		return nil
	}
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*a = v
	return nil
}
