// Package icp holds Internet Computer helpers: principal text format
// validation and the account identifier derivation used for wallets.
package icp

import (
	"crypto/sha256"
	"encoding/base32"
	"encoding/hex"
	"hash/crc32"
	"strings"

	"github.com/picha-labs/picha/types"
)

// principals use base32 lowercase without padding, grouped by dashes
var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// DecodePrincipal parses the dash-grouped text form of a principal and
// returns its raw bytes. The leading 4 bytes of the decoded value are a
// big-endian CRC32 of the remainder and must match.
func DecodePrincipal(text string) ([]byte, error) {
	compact := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(text), "-", ""))
	if compact == "" {
		return nil, types.AppErrInvalidPrincipal
	}
	raw, err := encoding.DecodeString(compact)
	if err != nil || len(raw) < 4 {
		return nil, types.AppErrInvalidPrincipal
	}
	sum := crc32.ChecksumIEEE(raw[4:])
	check := uint32(raw[0])<<24 | uint32(raw[1])<<16 | uint32(raw[2])<<8 | uint32(raw[3])
	if sum != check {
		return nil, types.AppErrInvalidPrincipal
	}
	return raw[4:], nil
}

// ValidatePrincipal reports whether the text is a well-formed principal.
func ValidatePrincipal(text string) error {
	_, err := DecodePrincipal(text)
	return err
}

// AccountId derives the default ledger account identifier for a
// principal, hex encoded with its CRC32 prefix.
func AccountId(principalText string) (string, error) {
	principal, err := DecodePrincipal(principalText)
	if err != nil {
		return "", err
	}
	h := sha256.New224()
	h.Write([]byte("\x0Aaccount-id"))
	h.Write(principal)
	var subaccount [32]byte // default subaccount, all zero
	h.Write(subaccount[:])
	digest := h.Sum(nil)

	sum := crc32.ChecksumIEEE(digest)
	out := make([]byte, 0, 4+len(digest))
	out = append(out, byte(sum>>24), byte(sum>>16), byte(sum>>8), byte(sum))
	out = append(out, digest...)
	return hex.EncodeToString(out), nil
}
