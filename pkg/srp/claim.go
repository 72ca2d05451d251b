package srp

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

// TimestampLayout is the identity provider's claim timestamp format. The day of month is not
// zero-padded and the zone is always UTC.
const TimestampLayout = "Mon Jan 2 15:04:05 UTC 2006"

// PasswordClaim is the PASSWORD_VERIFIER answer derived from the session key.
type PasswordClaim struct {
	SecretBlock string
	Timestamp   string
	Signature   string
}

// PoolName returns the part of a user pool id after the region prefix,
// e.g. "us-east-1_AbCdEf" becomes "AbCdEf". An id without "_" is returned unchanged.
func PoolName(userPoolID string) string {
	if _, name, ok := strings.Cut(userPoolID, "_"); ok {
		return name
	}
	return userPoolID
}

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ComputeClaimSignature returns
// base64(HMAC-SHA256(key, poolName | userID | base64decode(secretBlock) | timestamp)).
func ComputeClaimSignature(key []byte, poolName, userID, secretBlock, timestamp string) (string, error) {
	block, err := base64.StdEncoding.DecodeString(secretBlock)
	if err != nil {
		return "", fmt.Errorf("%w: secret block: %v", ErrFormat, err)
	}

	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(poolName))
	mac.Write([]byte(userID))
	mac.Write(block)
	mac.Write([]byte(timestamp))

	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}
