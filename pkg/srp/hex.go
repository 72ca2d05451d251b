package srp

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
)

// HexValue is the input to PadHex: either an integer (Int) or a hex string that is already
// formatted (Hex).
type HexValue interface {
	rawHex() string
}

type intValue struct {
	v *big.Int
}

func (i intValue) rawHex() string {
	return IntegerToHex(i.v)
}

type hexValue string

func (h hexValue) rawHex() string {
	return string(h)
}

// Int wraps a non-negative integer for PadHex.
func Int(v *big.Int) HexValue {
	return intValue{v: v}
}

// Hex wraps a pre-formatted hex string for PadHex. The string is not validated.
func Hex(s string) HexValue {
	return hexValue(s)
}

// PadHex returns the canonical hash-input form of v.
//
// An odd-length string gets one leading "0". Otherwise, if the first digit has its high bit
// set (8-F), a "00" byte is prepended so the value cannot be read as negative. The empty
// string stays empty.
func PadHex(v HexValue) string {
	s := v.rawHex()
	switch {
	case s == "":
		return s
	case len(s)%2 == 1:
		return "0" + s
	case strings.ContainsRune("89ABCDEFabcdef", rune(s[0])):
		return "00" + s
	default:
		return s
	}
}

// IntegerToHex formats v as upper-case hex without padding.
func IntegerToHex(v *big.Int) string {
	return strings.ToUpper(v.Text(16))
}

// HexToInteger parses an unsigned hex string. Signs, prefixes and separators are rejected.
func HexToInteger(s string) (*big.Int, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty hex string", ErrFormat)
	}
	for i := 0; i < len(s); i++ {
		if !isHexDigit(s[i]) {
			return nil, fmt.Errorf("%w: invalid hex digit %q at offset %d", ErrFormat, s[i], i)
		}
	}

	v, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return nil, fmt.Errorf("%w: cannot parse hex integer", ErrFormat)
	}
	return v, nil
}

func isHexDigit(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

// bytesToHex encodes raw bytes as upper-case hex.
func bytesToHex(b []byte) string {
	return strings.ToUpper(hex.EncodeToString(b))
}
