package logging_test

import (
	"testing"

	"github.com/fzdarsky/cognito-srp/internal/logging"
	"github.com/stretchr/testify/assert"
)

func TestRedactor_RedactFields(t *testing.T) {
	r := logging.NewRedactor()

	got := r.RedactFields(map[string]any{
		"username":    "alice",
		"Password":    "hunter2",
		"session_key": []byte{1, 2, 3},
		"request": map[string]any{
			"client_id": "abc",
			"secret":    "shh",
		},
		"challenge_parameters": map[string]string{
			"SRP_B":        "376E",
			"SALT":         "BEB2",
			"SECRET_BLOCK": "b3Bh",
			"USERNAME":     "alice",
		},
	})

	assert.Equal(t, "alice", got["username"])
	assert.Equal(t, "[REDACTED]", got["Password"])
	assert.Equal(t, "[REDACTED]", got["session_key"])
	assert.Equal(t, map[string]any{"client_id": "abc", "secret": "[REDACTED]"}, got["request"])
	assert.Equal(t, map[string]string{
		"SRP_B":        "376E",
		"SALT":         "[REDACTED]",
		"SECRET_BLOCK": "[REDACTED]",
		"USERNAME":     "alice",
	}, got["challenge_parameters"])

	assert.Nil(t, r.RedactFields(nil))
}

func TestRedactor_CustomKeys(t *testing.T) {
	r := logging.NewRedactor()

	r.AddSensitiveKey("Device_ID")
	assert.Equal(t, "[REDACTED]", r.RedactFields(map[string]any{"device_id": "x"})["device_id"])

	r.RemoveSensitiveKey("salt")
	assert.Equal(t, "BEB2", r.RedactFields(map[string]any{"salt": "BEB2"})["salt"])
}

func TestRedactor_RedactString(t *testing.T) {
	r := logging.NewRedactor()

	assert.Equal(t, "[REDACTED]", r.RedactString(`{"AccessToken":"eyJ"}`))
	assert.Equal(t, "[REDACTED]", r.RedactString("password=hunter2"))
	assert.Equal(t, "user not found", r.RedactString("user not found"))
	assert.Equal(t, "a=1 b=2", r.RedactString("a=1 b=2"))
}
