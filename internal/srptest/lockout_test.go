package srptest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLockout_Disabled(t *testing.T) {
	l := newLockout(0, time.Minute, time.Now)

	for range 10 {
		l.recordFailure("alice")
	}
	assert.Nil(t, l.check("alice"))
	assert.Equal(t, 0, l.failures("alice"))
}

func TestLockout_ThresholdAndExpiry(t *testing.T) {
	now := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	l := newLockout(3, 30*time.Second, func() time.Time { return now })

	l.recordFailure("alice")
	l.recordFailure("alice")
	assert.Nil(t, l.check("alice"))
	assert.Equal(t, 2, l.failures("alice"))

	l.recordFailure("alice")
	if se := l.check("alice"); assert.NotNil(t, se) {
		assert.Equal(t, 400, se.StatusCode)
	}
	assert.Nil(t, l.check("bob"), "other users are unaffected")

	now = now.Add(29 * time.Second)
	assert.NotNil(t, l.check("alice"))

	now = now.Add(time.Second)
	assert.Nil(t, l.check("alice"))
}

func TestLockout_RecordSuccess(t *testing.T) {
	l := newLockout(2, time.Minute, time.Now)

	l.recordFailure("alice")
	l.recordSuccess("alice")
	assert.Equal(t, 0, l.failures("alice"))

	l.recordFailure("alice")
	assert.Nil(t, l.check("alice"))
}
