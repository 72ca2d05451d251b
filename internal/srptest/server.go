// Package srptest provides an in-process identity provider that answers USER_SRP_AUTH the way
// the hosted service does. It keeps a verifier per user, so tests and the selftest command can
// run complete exchanges without network access.
package srptest

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fzdarsky/cognito-srp/pkg/protocol"
	"github.com/fzdarsky/cognito-srp/pkg/srp"
)

const (
	defaultPoolName   = "TestPool"
	defaultSessionTTL = 3 * time.Minute
	maxClockSkew      = 5 * time.Minute
	saltSize          = 16
	secretBlockSize   = 64
	tokenLifetime     = 3600
)

// account is a registered user: salt and verifier v = g^x mod N.
type account struct {
	userID   string
	salt     *big.Int
	verifier *big.Int
}

// Server is the provider half of SRP-6a. It is safe for concurrent use.
type Server struct {
	group      *srp.Group
	poolName   string
	random     io.Reader
	now        func() time.Time
	fixedB     *big.Int
	sendProof  bool
	sessionTTL time.Duration

	clientID     string
	clientSecret string

	mu       sync.RWMutex
	accounts map[string]*account

	sessions *sessionStore

	lockoutThreshold int
	lockoutDuration  time.Duration
	lockout          *lockout
}

// Option configures a Server.
type Option func(*Server)

// WithGroup replaces the default 3072-bit group.
func WithGroup(group *srp.Group) Option {
	return func(s *Server) {
		s.group = group
	}
}

// WithPoolName sets the pool name mixed into x and the password claim.
func WithPoolName(name string) Option {
	return func(s *Server) {
		s.poolName = name
	}
}

// WithRandom sets the source for salts, secret blocks and private ephemerals.
func WithRandom(r io.Reader) Option {
	return func(s *Server) {
		s.random = r
	}
}

// WithClock sets the time source used to check claim timestamps and session expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// WithPrivateEphemeral pins b, for replaying reference exchanges.
func WithPrivateEphemeral(b *big.Int) Option {
	return func(s *Server) {
		s.fixedB = new(big.Int).Set(b)
	}
}

// WithServerProof makes the provider return M2 in SRP_M2 alongside the tokens.
func WithServerProof() Option {
	return func(s *Server) {
		s.sendProof = true
	}
}

// WithSessionTTL sets how long a challenge stays answerable.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Server) {
		s.sessionTTL = ttl
	}
}

// WithClient restricts the provider to one app client. A non-empty secret makes SECRET_HASH
// mandatory.
func WithClient(clientID, clientSecret string) Option {
	return func(s *Server) {
		s.clientID = clientID
		s.clientSecret = clientSecret
	}
}

// WithLockout refuses a user for duration after threshold consecutive failed password claims.
func WithLockout(threshold int, duration time.Duration) Option {
	return func(s *Server) {
		s.lockoutThreshold = threshold
		s.lockoutDuration = duration
	}
}

// NewServer creates an empty provider.
func NewServer(opts ...Option) *Server {
	s := &Server{
		group:      srp.DefaultGroup(),
		poolName:   defaultPoolName,
		random:     rand.Reader,
		now:        time.Now,
		sessionTTL: defaultSessionTTL,
		accounts:   make(map[string]*account),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.sessions = newSessionStore(s.sessionTTL, s.now)
	s.lockout = newLockout(s.lockoutThreshold, s.lockoutDuration, s.now)
	return s
}

// PoolName returns the pool name clients must use.
func (s *Server) PoolName() string {
	return s.poolName
}

// AddUser registers username with a random salt. The SRP user id equals the username.
func (s *Server) AddUser(username, password string) error {
	raw := make([]byte, saltSize)
	if _, err := io.ReadFull(s.random, raw); err != nil {
		return fmt.Errorf("%w: salt: %v", srp.ErrCryptoFailure, err)
	}
	return s.AddUserWithSalt(username, username, password, srp.IntegerToHex(new(big.Int).SetBytes(raw)))
}

// AddUserWithSalt registers username under userIDForSRP with a fixed hex salt.
func (s *Server) AddUserWithSalt(username, userIDForSRP, password, saltHex string) error {
	salt, err := srp.HexToInteger(saltHex)
	if err != nil {
		return fmt.Errorf("invalid salt: %w", err)
	}

	verifier, err := ComputeVerifier(s.group, s.poolName+userIDForSRP, password, saltHex)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[username] = &account{
		userID:   userIDForSRP,
		salt:     salt,
		verifier: verifier,
	}
	return nil
}

// ComputeVerifier returns v = g^x mod N with x = H(pad(salt) | H(identity | ":" | password)).
func ComputeVerifier(group *srp.Group, identity, password, saltHex string) (*big.Int, error) {
	x, err := srp.ComputeX(saltHex, identity, password)
	if err != nil {
		return nil, fmt.Errorf("failed to compute verifier: %w", err)
	}
	return srp.ModPow(group.G(), x, group.N()), nil
}

// Initiate answers InitiateAuth: it checks A, draws b and returns the PASSWORD_VERIFIER challenge.
func (s *Server) Initiate(ctx context.Context, username, srpA string) (*protocol.Challenge, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	acct, ok := s.accounts[username]
	s.mu.RUnlock()
	if !ok {
		return nil, serviceError(protocol.ExceptionUserNotFound, "User does not exist.")
	}
	if se := s.lockout.check(username); se != nil {
		return nil, se
	}

	A, err := srp.HexToInteger(srpA)
	if err != nil {
		return nil, serviceError(protocol.ExceptionInvalidParameter, "SRP_A is not a hex value")
	}
	n := s.group.N()
	if new(big.Int).Mod(A, n).Sign() == 0 {
		return nil, serviceError(protocol.ExceptionInvalidParameter, "SRP_A mod N must not be zero")
	}

	b, B, err := s.serverEphemeral(acct.verifier)
	if err != nil {
		return nil, err
	}

	block := make([]byte, secretBlockSize)
	if _, err := io.ReadFull(s.random, block); err != nil {
		return nil, fmt.Errorf("%w: secret block: %v", srp.ErrCryptoFailure, err)
	}
	secretBlock := base64.StdEncoding.EncodeToString(block)

	id := s.sessions.put(&pendingSession{
		account:     acct,
		username:    username,
		clientA:     A,
		b:           b,
		serverB:     B,
		secretBlock: secretBlock,
	})

	return &protocol.Challenge{
		Session:      id,
		SRPB:         srp.IntegerToHex(B),
		Salt:         srp.IntegerToHex(acct.salt),
		SecretBlock:  secretBlock,
		Username:     username,
		UserIDForSRP: acct.userID,
	}, nil
}

// serverEphemeral draws b and computes B = (k*v + g^b) mod N.
func (s *Server) serverEphemeral(v *big.Int) (b, B *big.Int, err error) {
	n := s.group.N()

	b = s.fixedB
	if b == nil {
		if b, err = srp.RandomExponent(s.random, n); err != nil {
			return nil, nil, err
		}
	}

	B = new(big.Int).Mul(s.group.K(), v)
	B.Add(B, srp.ModPow(s.group.G(), b, n))
	B.Mod(B, n)

	if B.Sign() == 0 {
		return nil, nil, fmt.Errorf("%w: B mod N == 0 (regenerate b)", srp.ErrProtocol)
	}
	return b, B, nil
}

// Respond answers RespondToAuthChallenge. It recomputes the session key, checks the password
// claim (and M1 when sent) and issues tokens.
func (s *Server) Respond(ctx context.Context, resp *protocol.ChallengeResponse) (*protocol.AuthenticationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pending := s.sessions.take(resp.Session)
	if pending == nil {
		return nil, serviceError(protocol.ExceptionNotAuthorized, "Invalid session for the user, session is expired.")
	}
	acct := pending.account

	if resp.Username != pending.username && resp.Username != acct.userID {
		return nil, s.reject(pending.username)
	}
	if resp.SecretBlock != pending.secretBlock {
		return nil, s.reject(pending.username)
	}
	if err := s.checkTimestamp(resp.Timestamp); err != nil {
		return nil, err
	}

	key, err := s.sessionKey(pending)
	if err != nil {
		return nil, err
	}
	defer clear(key)

	expected, err := srp.ComputeClaimSignature(key, s.poolName, acct.userID, pending.secretBlock, resp.Timestamp)
	if err != nil {
		return nil, err
	}
	if !hmac.Equal([]byte(expected), []byte(resp.Signature)) {
		return nil, s.reject(pending.username)
	}

	m1 := srp.ComputeClientProof(s.group, acct.userID, acct.salt, pending.clientA, pending.serverB, key)
	if resp.ClientProof != "" {
		got, err := hex.DecodeString(resp.ClientProof)
		if err != nil || !hmac.Equal(m1, got) {
			return nil, s.reject(pending.username)
		}
	}
	s.lockout.recordSuccess(pending.username)

	result := &protocol.AuthenticationResult{
		AccessToken:  uuid.NewString(),
		IDToken:      uuid.NewString(),
		RefreshToken: uuid.NewString(),
		TokenType:    "Bearer",
		ExpiresIn:    tokenLifetime,
	}
	if s.sendProof {
		result.ServerProof = fmt.Sprintf("%X", srp.ComputeServerProof(pending.clientA, m1, key))
	}
	return result, nil
}

// sessionKey computes u, S = (A * v^u)^b mod N and K.
func (s *Server) sessionKey(p *pendingSession) ([]byte, error) {
	n := s.group.N()

	u, err := srp.ComputeU(p.clientA, p.serverB)
	if err != nil {
		return nil, err
	}

	S := srp.ModPow(p.account.verifier, u, n)
	S.Mul(S, p.clientA)
	S.Mod(S, n)
	S = srp.ModPow(S, p.b, n)

	return srp.DeriveSessionKey(S, u)
}

func (s *Server) checkTimestamp(timestamp string) error {
	ts, err := time.Parse(srp.TimestampLayout, timestamp)
	if err != nil {
		return serviceError(protocol.ExceptionInvalidParameter, "TIMESTAMP format is invalid")
	}
	skew := s.now().Sub(ts)
	if skew > maxClockSkew || skew < -maxClockSkew {
		return serviceError(protocol.ExceptionNotAuthorized, "TIMESTAMP is outside the allowed clock skew")
	}
	return nil
}

// FailedAttempts returns the consecutive failed password claims recorded for username.
func (s *Server) FailedAttempts(username string) int {
	return s.lockout.failures(username)
}

// reject records a failed claim for username and returns the generic credentials error.
func (s *Server) reject(username string) error {
	s.lockout.recordFailure(username)
	return serviceError(protocol.ExceptionNotAuthorized, "Incorrect username or password.")
}

// PendingSessions returns the number of unanswered challenges.
func (s *Server) PendingSessions() int {
	return s.sessions.count()
}

func serviceError(kind, message string) *protocol.ServiceError {
	return &protocol.ServiceError{
		StatusCode: 400,
		Type:       kind,
		Message:    message,
	}
}
