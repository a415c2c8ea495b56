// Package identity derives stable numeric identities for opaque server ids.
//
// Cart lines and wishlist entries are keyed by a uint32 that must stay the
// same for a given server id forever: it is the only link between a server
// record and state persisted by older releases. The derivation is 32-bit
// FNV-1a over the UTF-16 code units of the id, folded into the non-negative
// int32 range.
package identity

import (
	"strconv"
	"unicode/utf16"
)

const (
	offsetBasis uint32 = 2166136261
	prime       uint32 = 16777619
)

// StableIdentity returns the numeric identity of id. It is pure and never
// fails; the empty string maps to 2128831035. Distinct ids may collide.
func StableIdentity(id string) uint32 {
	acc := offsetBasis
	for _, r := range id {
		if r < 0x10000 {
			acc = (acc ^ uint32(r)) * prime
			continue
		}
		hi, lo := utf16.EncodeRune(r)
		acc = (acc ^ uint32(hi)) * prime
		acc = (acc ^ uint32(lo)) * prime
	}
	return fold(acc)
}

// fold interprets acc as a signed 32-bit value and returns its magnitude.
func fold(acc uint32) uint32 {
	v := int32(acc)
	if v < 0 {
		return uint32(-int64(v))
	}
	return uint32(v)
}

// Parse reads a decimal identity as produced by String. It is used to accept
// identities from URL paths.
func Parse(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

// String formats an identity in decimal.
func String(id uint32) string { return strconv.FormatUint(uint64(id), 10) }
