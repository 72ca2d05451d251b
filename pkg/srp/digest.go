package srp

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"math/big"
	"strings"

	"golang.org/x/crypto/hkdf"
)

// SessionKeySize is the length of the derived session key in bytes.
const SessionKeySize = 16

// derivedKeyInfo is the HKDF info string. HKDF appends the 0x01 block counter itself.
var derivedKeyInfo = []byte("Caldera Derived Key")

// SHA256 hashes raw bytes.
func SHA256(data []byte) [sha256.Size]byte {
	return sha256.Sum256(data)
}

// HexHash decodes s as hex, hashes the bytes and returns the digest as upper-case hex.
// Callers concatenate padded hex values before hashing them as one input.
func HexHash(s string) (string, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFormat, err)
	}
	sum := sha256.Sum256(raw)
	return strings.ToUpper(hex.EncodeToString(sum[:])), nil
}

// HKDFExpand derives SessionKeySize bytes from ikm: HKDF-Extract with salt, then a single
// HKDF-Expand block over "Caldera Derived Key" || 0x01.
func HKDFExpand(ikm, salt []byte) ([]byte, error) {
	out := make([]byte, SessionKeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, ikm, salt, derivedKeyInfo), out); err != nil {
		return nil, fmt.Errorf("%w: hkdf: %v", ErrCryptoFailure, err)
	}
	return out, nil
}

// hashHexInt is HexHash followed by parsing the digest as an integer.
func hashHexInt(s string) (*big.Int, error) {
	digest, err := HexHash(s)
	if err != nil {
		return nil, err
	}
	return HexToInteger(digest)
}

// decodePadded returns the bytes of PadHex(v).
func decodePadded(v HexValue) []byte {
	// PadHex output of a valid integer is always even-length hex.
	raw, _ := hex.DecodeString(PadHex(v))
	return raw
}
