package srptest

import (
	"sync"
	"time"

	"github.com/fzdarsky/cognito-srp/pkg/protocol"
)

// attemptTracker tracks failed password claims for a single user.
type attemptTracker struct {
	count       int       // consecutive failed claims
	lockedUntil time.Time // zero if not locked
}

// lockout refuses InitiateAuth for a user after repeated failed claims, the way the hosted
// provider answers "Password attempts exceeded". A zero threshold disables it.
type lockout struct {
	mu        sync.Mutex
	attempts  map[string]*attemptTracker
	threshold int
	duration  time.Duration
	now       func() time.Time
}

func newLockout(threshold int, duration time.Duration, now func() time.Time) *lockout {
	return &lockout{
		attempts:  make(map[string]*attemptTracker),
		threshold: threshold,
		duration:  duration,
		now:       now,
	}
}

// check returns a NotAuthorizedException while username is locked out.
func (l *lockout) check(username string) *protocol.ServiceError {
	l.mu.Lock()
	defer l.mu.Unlock()

	tracker, ok := l.attempts[username]
	if !ok || !l.now().Before(tracker.lockedUntil) {
		return nil
	}
	return serviceError(protocol.ExceptionNotAuthorized, "Password attempts exceeded")
}

// recordFailure counts a failed claim and locks the user once the threshold is reached.
func (l *lockout) recordFailure(username string) {
	if l.threshold <= 0 {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	tracker, ok := l.attempts[username]
	if !ok {
		tracker = &attemptTracker{}
		l.attempts[username] = tracker
	}

	tracker.count++
	if tracker.count >= l.threshold {
		tracker.lockedUntil = l.now().Add(l.duration)
		tracker.count = 0
	}
}

// recordSuccess clears the failure count for username.
func (l *lockout) recordSuccess(username string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.attempts, username)
}

// failures returns the current consecutive failure count for username.
func (l *lockout) failures(username string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if tracker, ok := l.attempts[username]; ok {
		return tracker.count
	}
	return 0
}
