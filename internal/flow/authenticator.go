package flow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/fzdarsky/cognito-srp/internal/logging"
	"github.com/fzdarsky/cognito-srp/pkg/protocol"
	"github.com/fzdarsky/cognito-srp/pkg/srp"
)

const (
	defaultMaxAttempts = 3
	defaultTimeout     = 30 * time.Second
)

// Challenger is the identity provider side of USER_SRP_AUTH.
type Challenger interface {
	// Initiate sends A and returns the PASSWORD_VERIFIER challenge.
	Initiate(ctx context.Context, username, srpA string) (*protocol.Challenge, error)
	// Respond answers the challenge and returns the issued tokens.
	Respond(ctx context.Context, resp *protocol.ChallengeResponse) (*protocol.AuthenticationResult, error)
}

// Result is the outcome of a successful authentication.
type Result struct {
	Tokens *protocol.AuthenticationResult

	// SessionKey is set only when the provider proved knowledge of it with M2.
	SessionKey     srp.SessionKey
	ServerVerified bool

	// Username is the SRP user id the provider assigned, which may differ from the login name.
	Username string
	Attempts int
}

// Authenticator runs USER_SRP_AUTH against a Challenger.
type Authenticator struct {
	challenger  Challenger
	poolName    string
	group       *srp.Group
	maxAttempts int
	timeout     time.Duration
	random      io.Reader
	now         func() time.Time
	logger      *logging.Logger
}

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithGroup replaces the default 3072-bit group.
func WithGroup(group *srp.Group) Option {
	return func(a *Authenticator) {
		a.group = group
	}
}

// WithMaxAttempts sets how many fresh sessions are tried after SRP safety-check failures.
func WithMaxAttempts(n int) Option {
	return func(a *Authenticator) {
		if n > 0 {
			a.maxAttempts = n
		}
	}
}

// WithTimeout bounds each attempt, both round trips included.
func WithTimeout(timeout time.Duration) Option {
	return func(a *Authenticator) {
		if timeout > 0 {
			a.timeout = timeout
		}
	}
}

// WithRandom sets the source for the private ephemeral values.
func WithRandom(r io.Reader) Option {
	return func(a *Authenticator) {
		a.random = r
	}
}

// WithClock sets the time used for password claim timestamps.
func WithClock(now func() time.Time) Option {
	return func(a *Authenticator) {
		a.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(a *Authenticator) {
		a.logger = logger
	}
}

// NewAuthenticator creates an Authenticator for the pool whose name prefixes the SRP identity.
func NewAuthenticator(challenger Challenger, poolName string, opts ...Option) *Authenticator {
	a := &Authenticator{
		challenger:  challenger,
		poolName:    poolName,
		maxAttempts: defaultMaxAttempts,
		timeout:     defaultTimeout,
		now:         time.Now,
		logger:      logging.Discard(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Authenticate logs username in with password. Attempts that fail an SRP safety check
// (ErrProtocol) are retried with a new session; every other error is returned at once.
func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (*Result, error) {
	var lastErr error

	for attempt := 1; attempt <= a.maxAttempts; attempt++ {
		log := a.logger.WithFields(map[string]any{
			"attempt_id": uuid.NewString(),
			"attempt":    attempt,
			"username":   username,
		})

		result, err := a.attempt(ctx, log, username, password)
		if err == nil {
			result.Attempts = attempt
			log.Info("authentication succeeded", map[string]any{
				"server_verified": result.ServerVerified,
			})
			return result, nil
		}

		lastErr = err
		if !errors.Is(err, srp.ErrProtocol) || ctx.Err() != nil {
			log.Warn("authentication failed", map[string]any{"error": err.Error()})
			return nil, err
		}

		log.Warn("attempt failed safety check, retrying", map[string]any{"error": err.Error()})
	}

	return nil, fmt.Errorf("giving up after %d attempts: %w", a.maxAttempts, lastErr)
}

func (a *Authenticator) attempt(ctx context.Context, log *logging.ContextLogger, username, password string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	opts := []srp.Option{srp.WithPoolName(a.poolName)}
	if a.random != nil {
		opts = append(opts, srp.WithRandom(a.random))
	}
	session := srp.NewSession(username, password, a.group, opts...)

	srpA, err := session.GenerateEphemeral()
	if err != nil {
		return nil, err
	}

	log.Debug("initiating auth")
	challenge, err := a.challenger.Initiate(ctx, username, srpA)
	if err != nil {
		return nil, err
	}

	err = session.AcceptChallenge(challenge.SRPB, challenge.Salt, srp.WithUserIDForSRP(challenge.UserIDForSRP))
	if err != nil {
		return nil, err
	}

	m1, err := session.DeriveKeyAndProof()
	if err != nil {
		return nil, err
	}

	claim, err := session.PasswordClaim(challenge.SecretBlock, a.now())
	if err != nil {
		return nil, err
	}

	// The provider expects USER_ID_FOR_SRP as USERNAME, and SECRET_HASH is computed over it.
	respondAs := session.Username()
	if respondAs == "" {
		respondAs = challenge.Username
	}

	log.Debug("answering password verifier", map[string]any{"srp_user_id": session.Username()})
	tokens, err := a.challenger.Respond(ctx, &protocol.ChallengeResponse{
		Session:     challenge.Session,
		Username:    respondAs,
		SecretBlock: claim.SecretBlock,
		Timestamp:   claim.Timestamp,
		Signature:   claim.Signature,
		ClientProof: m1,
	})
	if err != nil {
		return nil, err
	}

	result := &Result{
		Tokens:   tokens,
		Username: session.Username(),
	}

	if tokens.ServerProof != "" {
		key, err := session.VerifyServerProof(tokens.ServerProof)
		if err != nil {
			return nil, err
		}
		result.SessionKey = key
		result.ServerVerified = true
	}

	return result, nil
}
