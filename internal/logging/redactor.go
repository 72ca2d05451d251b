package logging

import (
	"strings"
)

const redactedValue = "[REDACTED]"

// Redactor handles secret redaction in log fields.
type Redactor struct {
	sensitiveKeys map[string]bool
}

// NewRedactor creates a new Redactor with default sensitive keys.
func NewRedactor() *Redactor {
	return &Redactor{
		sensitiveKeys: map[string]bool{
			// Credentials
			"password":      true,
			"secret":        true,
			"client_secret": true,
			"secret_hash":   true,
			"authorization": true,

			// SRP values that are secret or let an observer test password guesses
			"a":           true, // client private ephemeral
			"b":           true, // server private ephemeral
			"x":           true,
			"s":           true, // shared secret
			"k":           true,
			"key":         true,
			"session_key": true,
			"verifier":    true,
			"salt":        true,
			"proof":       true,
			"m1":          true,
			"m2":          true,
			"srp_m1":      true,
			"srp_m2":      true,

			// Password claim
			"secret_block":                true,
			"signature":                   true,
			"password_claim_secret_block": true,
			"password_claim_signature":    true,

			// Identity provider session and tokens
			"session":       true,
			"token":         true,
			"tokens":        true,
			"access_token":  true,
			"id_token":      true,
			"refresh_token": true,
			"accesstoken":   true,
			"idtoken":       true,
			"refreshtoken":  true,
		},
	}
}

// AddSensitiveKey adds a custom key to the redaction list.
func (r *Redactor) AddSensitiveKey(key string) {
	r.sensitiveKeys[strings.ToLower(key)] = true
}

// RemoveSensitiveKey removes a key from the redaction list.
func (r *Redactor) RemoveSensitiveKey(key string) {
	delete(r.sensitiveKeys, strings.ToLower(key))
}

// RedactFields redacts sensitive values from a map of fields, including nested parameter maps.
func (r *Redactor) RedactFields(fields map[string]any) map[string]any {
	if fields == nil {
		return nil
	}

	redacted := make(map[string]any, len(fields))

	for k, v := range fields {
		switch nested := v.(type) {
		case map[string]any:
			if r.isSensitiveKey(k) {
				redacted[k] = redactedValue
			} else {
				redacted[k] = r.RedactFields(nested)
			}
		case map[string]string:
			if r.isSensitiveKey(k) {
				redacted[k] = redactedValue
			} else {
				redacted[k] = r.redactParams(nested)
			}
		default:
			if r.isSensitiveKey(k) {
				redacted[k] = redactedValue
			} else {
				redacted[k] = v
			}
		}
	}

	return redacted
}

func (r *Redactor) redactParams(params map[string]string) map[string]string {
	out := make(map[string]string, len(params))
	for k, v := range params {
		if r.isSensitiveKey(k) {
			out[k] = redactedValue
		} else {
			out[k] = v
		}
	}
	return out
}

// RedactString redacts a whole string when it looks like it carries a sensitive key.
func (r *Redactor) RedactString(s string) string {
	lower := strings.ToLower(s)

	for key := range r.sensitiveKeys {
		// Single letters would match almost anything.
		if len(key) < 3 {
			continue
		}

		patterns := []string{
			key + "=",
			key + ": ",
			"\"" + key + "\":",
		}

		for _, pattern := range patterns {
			if strings.Contains(lower, pattern) {
				return redactedValue
			}
		}
	}

	return s
}

// isSensitiveKey checks if a field key is marked as sensitive (case-insensitive exact match).
func (r *Redactor) isSensitiveKey(key string) bool {
	return r.sensitiveKeys[strings.ToLower(key)]
}
