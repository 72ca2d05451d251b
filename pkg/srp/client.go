package srp

import (
	"encoding/hex"
	"fmt"
	"io"
	"math/big"
	"time"
)

// maxEphemeralAttempts caps how often GenerateEphemeral redraws a when A ≡ 0 (mod N).
const maxEphemeralAttempts = 3

// ErrInvalidState is returned when an operation is called out of order or on a finished
// session. It wraps ErrProtocol.
var ErrInvalidState = fmt.Errorf("%w: operation not valid in current session state", ErrProtocol)

// State is the position of a Session in the exchange.
type State int

// Session states, in protocol order. Verified and Failed are terminal.
const (
	StateInitialized State = iota
	StateEphemeralGenerated
	StateChallengeReceived
	StateSecretComputed
	StateKeyDerived
	StateProofReady
	StateVerified
	StateFailed
)

var stateNames = [...]string{
	StateInitialized:        "Initialized",
	StateEphemeralGenerated: "EphemeralGenerated",
	StateChallengeReceived:  "ChallengeReceived",
	StateSecretComputed:     "SecretComputed",
	StateKeyDerived:         "KeyDerived",
	StateProofReady:         "ProofReady",
	StateVerified:           "Verified",
	StateFailed:             "Failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateVerified || s == StateFailed
}

// SessionKey is the 16-byte key derived from the shared secret. It never prints its contents.
type SessionKey [SessionKeySize]byte

// Bytes returns a copy of the key material.
func (k SessionKey) Bytes() []byte {
	out := make([]byte, len(k))
	copy(out, k[:])
	return out
}

func (k SessionKey) String() string {
	return "[REDACTED]"
}

// GoString keeps %#v from dumping the key.
func (k SessionKey) GoString() string {
	return "srp.SessionKey([REDACTED])"
}

// Option configures a Session.
type Option func(*Session)

// WithPoolName sets the pool name that prefixes the identity inside x.
func WithPoolName(name string) Option {
	return func(s *Session) {
		s.poolName = name
	}
}

// WithRandom replaces crypto/rand as the source for the private ephemeral value.
// The reader must be cryptographically secure.
func WithRandom(r io.Reader) Option {
	return func(s *Session) {
		s.random = r
	}
}

// ChallengeOption adjusts how a server challenge is interpreted.
type ChallengeOption func(*Session)

// WithUserIDForSRP replaces the username used in x, in the client proof and in the password
// claim. The identity provider sends it as USER_ID_FOR_SRP.
func WithUserIDForSRP(userID string) ChallengeOption {
	return func(s *Session) {
		if userID != "" {
			s.userID = userID
		}
	}
}

// Session holds one authentication attempt. Each attempt needs a new Session; a Session must
// not be used from multiple goroutines.
type Session struct {
	group    *Group
	poolName string
	userID   string
	password string
	random   io.Reader

	newExponent func() (*big.Int, error)

	state State
	err   error

	a    *big.Int // client private ephemeral
	bigA *big.Int // client public ephemeral
	bigB *big.Int // server public ephemeral
	salt *big.Int
	key  []byte
	m1   []byte
}

// NewSession starts an attempt for username/password in group. A nil group selects
// DefaultGroup.
func NewSession(username, password string, group *Group, opts ...Option) *Session {
	if group == nil {
		group = DefaultGroup()
	}

	s := &Session{
		group:    group,
		userID:   username,
		password: password,
		state:    StateInitialized,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.newExponent = func() (*big.Int, error) {
		return RandomExponent(s.random, s.group.n)
	}

	return s
}

// State returns the current state.
func (s *Session) State() State {
	return s.state
}

// Err returns the error that moved the session to Failed, or nil.
func (s *Session) Err() error {
	return s.err
}

// Username returns the SRP user id in effect, which may have been replaced by the challenge.
func (s *Session) Username() string {
	return s.userID
}

// GenerateEphemeral draws a and returns A = g^a mod N as upper-case hex.
func (s *Session) GenerateEphemeral() (string, error) {
	if err := s.expect(StateInitialized, "GenerateEphemeral"); err != nil {
		return "", err
	}

	for range maxEphemeralAttempts {
		a, err := s.newExponent()
		if err != nil {
			return "", s.fail(err)
		}

		A := ModPow(s.group.g, a, s.group.n)
		if A.Sign() == 0 {
			wipeInt(a)
			continue
		}

		s.a = a
		s.bigA = A
		s.state = StateEphemeralGenerated
		return IntegerToHex(A), nil
	}

	return "", s.fail(fmt.Errorf("%w: A mod N was zero after %d attempts", ErrProtocol, maxEphemeralAttempts))
}

// AcceptChallenge records the server value B and the user's salt, both hex encoded.
// Malformed hex returns ErrFormat and leaves the session untouched; B ≡ 0 (mod N) fails the
// session with ErrProtocol.
func (s *Session) AcceptChallenge(serverB, salt string, opts ...ChallengeOption) error {
	if err := s.expect(StateEphemeralGenerated, "AcceptChallenge"); err != nil {
		return err
	}

	B, err := HexToInteger(serverB)
	if err != nil {
		return fmt.Errorf("invalid server value B: %w", err)
	}
	saltInt, err := HexToInteger(salt)
	if err != nil {
		return fmt.Errorf("invalid salt: %w", err)
	}

	if s.group.isZeroMod(B) {
		return s.fail(fmt.Errorf("%w: server value B mod N is zero", ErrProtocol))
	}

	for _, opt := range opts {
		opt(s)
	}

	s.bigB = B
	s.salt = saltInt
	s.state = StateChallengeReceived
	return nil
}

// DeriveKeyAndProof computes u, x and S, derives the session key and returns the client
// proof M1 as upper-case hex. S, x and a are wiped before it returns.
func (s *Session) DeriveKeyAndProof() (string, error) {
	if err := s.expect(StateChallengeReceived, "DeriveKeyAndProof"); err != nil {
		return "", err
	}

	u, err := ComputeU(s.bigA, s.bigB)
	if err != nil {
		return "", s.fail(err)
	}

	x, err := ComputeX(IntegerToHex(s.salt), s.poolName+s.userID, s.password)
	s.password = ""
	if err != nil {
		return "", s.fail(err)
	}

	S, err := ComputeS(s.group, s.bigB, x, s.a, u)
	wipeInt(x)
	wipeInt(s.a)
	s.a = nil
	if err != nil {
		return "", s.fail(err)
	}
	s.state = StateSecretComputed

	key, err := DeriveSessionKey(S, u)
	wipeInt(S)
	if err != nil {
		return "", s.fail(err)
	}
	s.key = key
	s.state = StateKeyDerived

	s.m1 = ComputeClientProof(s.group, s.userID, s.salt, s.bigA, s.bigB, s.key)
	s.state = StateProofReady

	return bytesToHex(s.m1), nil
}

// PasswordClaim signs the provider's secret block with the session key for the
// PASSWORD_VERIFIER challenge. The session stays in ProofReady.
func (s *Session) PasswordClaim(secretBlock string, now time.Time) (*PasswordClaim, error) {
	if err := s.expect(StateProofReady, "PasswordClaim"); err != nil {
		return nil, err
	}

	timestamp := FormatTimestamp(now)
	signature, err := ComputeClaimSignature(s.key, s.poolName, s.userID, secretBlock, timestamp)
	if err != nil {
		return nil, err
	}

	return &PasswordClaim{
		SecretBlock: secretBlock,
		Timestamp:   timestamp,
		Signature:   signature,
	}, nil
}

// VerifyServerProof checks the server proof M2 (hex) in constant time. On success the session
// is Verified and the session key is returned; any mismatch, including malformed input, fails
// the session with ErrAuthentication.
func (s *Session) VerifyServerProof(serverProof string) (SessionKey, error) {
	var key SessionKey
	if err := s.expect(StateProofReady, "VerifyServerProof"); err != nil {
		return key, err
	}

	expected := ComputeServerProof(s.bigA, s.m1, s.key)
	actual, decodeErr := hex.DecodeString(serverProof)

	if !proofsEqual(expected, actual) || decodeErr != nil {
		return key, s.fail(fmt.Errorf("%w: server proof mismatch", ErrAuthentication))
	}

	copy(key[:], s.key)
	s.wipe()
	s.state = StateVerified
	return key, nil
}

// expect fails the session unless it is in the wanted state. Terminal sessions stay as they
// are.
func (s *Session) expect(want State, op string) error {
	if s.state == want {
		return nil
	}
	err := fmt.Errorf("%w: %s in state %s", ErrInvalidState, op, s.state)
	if s.state.Terminal() {
		return err
	}
	return s.fail(err)
}

func (s *Session) fail(err error) error {
	s.wipe()
	s.state = StateFailed
	s.err = err
	return err
}

// wipe drops every secret and intermediate value.
func (s *Session) wipe() {
	s.password = ""
	wipeInt(s.a)
	s.a = nil
	clear(s.key)
	s.key = nil
	clear(s.m1)
	s.m1 = nil
	s.bigA = nil
	s.bigB = nil
	s.salt = nil
}
