package srptest_test

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/fzdarsky/cognito-srp/internal/srptest"
	"github.com/fzdarsky/cognito-srp/pkg/protocol"
	"github.com/fzdarsky/cognito-srp/pkg/srp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testPool     = "ExamplePool"
	testUser     = "alice"
	testPassword = "correct horse battery staple"
	testSalt     = "BEB25379D1A8581EB5A727673A2441EE"
	testB        = "E487CB59D31AC550471E81F00F6928E01DDA08E974A004F49E61F5D105284D20"
)

var testNow = time.Date(2018, time.September, 4, 18, 27, 52, 0, time.UTC)

func newServer(t *testing.T, opts ...srptest.Option) *srptest.Server {
	t.Helper()
	opts = append([]srptest.Option{
		srptest.WithPoolName(testPool),
		srptest.WithClock(func() time.Time { return testNow }),
	}, opts...)
	srv := srptest.NewServer(opts...)
	require.NoError(t, srv.AddUserWithSalt(testUser, testUser, testPassword, testSalt))
	return srv
}

// exchange runs one client attempt against srv up to the challenge response.
func exchange(t *testing.T, srv *srptest.Server, password string) (*srp.Session, *protocol.ChallengeResponse) {
	t.Helper()
	ctx := context.Background()

	session := srp.NewSession(testUser, password, nil, srp.WithPoolName(srv.PoolName()))
	A, err := session.GenerateEphemeral()
	require.NoError(t, err)

	challenge, err := srv.Initiate(ctx, testUser, A)
	require.NoError(t, err)
	require.NoError(t, session.AcceptChallenge(challenge.SRPB, challenge.Salt, srp.WithUserIDForSRP(challenge.UserIDForSRP)))

	m1, err := session.DeriveKeyAndProof()
	require.NoError(t, err)
	claim, err := session.PasswordClaim(challenge.SecretBlock, testNow)
	require.NoError(t, err)

	return session, &protocol.ChallengeResponse{
		Session:     challenge.Session,
		Username:    session.Username(),
		SecretBlock: claim.SecretBlock,
		Timestamp:   claim.Timestamp,
		Signature:   claim.Signature,
		ClientProof: m1,
	}
}

func TestServer_ReferenceChallenge(t *testing.T) {
	b, ok := new(big.Int).SetString(testB, 16)
	require.True(t, ok)
	srv := newServer(t, srptest.WithPrivateEphemeral(b))

	challenge, err := srv.Initiate(context.Background(), testUser, "02")
	require.NoError(t, err)

	assert.Equal(t, testSalt, challenge.Salt)
	assert.Equal(t, testUser, challenge.UserIDForSRP)
	assert.Equal(t, "376E618D91357CAFF5B122BB7148F4151611D14EE69BED8FB74A9DACD4A6513A", challenge.SRPB[:64])
	assert.Len(t, challenge.SRPB, 768)
	assert.NotEmpty(t, challenge.SecretBlock)
	assert.NotEmpty(t, challenge.Session)
	assert.Equal(t, 1, srv.PendingSessions())
}

func TestServer_FullExchange(t *testing.T) {
	srv := newServer(t, srptest.WithServerProof())

	session, resp := exchange(t, srv, testPassword)
	result, err := srv.Respond(context.Background(), resp)
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.Equal(t, "Bearer", result.TokenType)
	require.NotEmpty(t, result.ServerProof)

	key, err := session.VerifyServerProof(result.ServerProof)
	require.NoError(t, err)
	assert.Len(t, key.Bytes(), srp.SessionKeySize)
	assert.Equal(t, srp.StateVerified, session.State())
	assert.Equal(t, 0, srv.PendingSessions())
}

func TestServer_WithoutClientProof(t *testing.T) {
	srv := newServer(t)

	_, resp := exchange(t, srv, testPassword)
	resp.ClientProof = ""
	result, err := srv.Respond(context.Background(), resp)
	require.NoError(t, err)
	assert.Empty(t, result.ServerProof)
}

func TestServer_SubstitutedUserID(t *testing.T) {
	srv := srptest.NewServer(srptest.WithPoolName(testPool), srptest.WithClock(func() time.Time { return testNow }), srptest.WithServerProof())
	require.NoError(t, srv.AddUserWithSalt(testUser, "0f4e7a52-9b1d-4c1e-8a55-3a2b9c0d1e2f", testPassword, testSalt))

	session, resp := exchange(t, srv, testPassword)
	assert.Equal(t, "0f4e7a52-9b1d-4c1e-8a55-3a2b9c0d1e2f", resp.Username)

	result, err := srv.Respond(context.Background(), resp)
	require.NoError(t, err)
	_, err = session.VerifyServerProof(result.ServerProof)
	require.NoError(t, err)
}

func TestServer_RandomSalt(t *testing.T) {
	srv := srptest.NewServer(srptest.WithClock(func() time.Time { return testNow }))
	require.NoError(t, srv.AddUser(testUser, testPassword))

	_, resp := exchange(t, srv, testPassword)
	_, err := srv.Respond(context.Background(), resp)
	require.NoError(t, err)
}

func TestServer_WrongPassword(t *testing.T) {
	srv := newServer(t)

	_, resp := exchange(t, srv, "wrong password")
	_, err := srv.Respond(context.Background(), resp)
	require.Error(t, err)
	assert.ErrorIs(t, err, srp.ErrAuthentication)

	var se *protocol.ServiceError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, protocol.ExceptionNotAuthorized, se.Kind())
}

func TestServer_TamperedClientProof(t *testing.T) {
	srv := newServer(t)

	_, resp := exchange(t, srv, testPassword)
	first := "0"
	if resp.ClientProof[0] == '0' {
		first = "1"
	}
	resp.ClientProof = first + resp.ClientProof[1:]
	_, err := srv.Respond(context.Background(), resp)
	assert.ErrorIs(t, err, srp.ErrAuthentication)
}

func TestServer_SessionIsSingleUse(t *testing.T) {
	srv := newServer(t)

	_, resp := exchange(t, srv, testPassword)
	_, err := srv.Respond(context.Background(), resp)
	require.NoError(t, err)

	_, err = srv.Respond(context.Background(), resp)
	assert.ErrorIs(t, err, srp.ErrAuthentication)
}

func TestServer_SessionExpires(t *testing.T) {
	now := testNow
	srv := srptest.NewServer(
		srptest.WithPoolName(testPool),
		srptest.WithClock(func() time.Time { return now }),
		srptest.WithSessionTTL(time.Minute),
	)
	require.NoError(t, srv.AddUserWithSalt(testUser, testUser, testPassword, testSalt))

	_, resp := exchange(t, srv, testPassword)
	now = now.Add(2 * time.Minute)

	_, err := srv.Respond(context.Background(), resp)
	var se *protocol.ServiceError
	require.True(t, errors.As(err, &se))
	assert.Contains(t, se.Message, "expired")
}

func TestServer_TimestampSkew(t *testing.T) {
	srv := newServer(t)

	_, resp := exchange(t, srv, testPassword)
	resp.Timestamp = srp.FormatTimestamp(testNow.Add(-time.Hour))
	_, err := srv.Respond(context.Background(), resp)
	assert.Error(t, err)

	_, resp = exchange(t, srv, testPassword)
	resp.Timestamp = "2018-09-04T18:27:52Z"
	_, err = srv.Respond(context.Background(), resp)
	var se *protocol.ServiceError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, protocol.ExceptionInvalidParameter, se.Kind())
}

func TestServer_InitiateErrors(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		srpA     string
		wantKind string
	}{
		{name: "unknown user", username: "bob", srpA: "02", wantKind: protocol.ExceptionUserNotFound},
		{name: "malformed A", username: testUser, srpA: "not-hex", wantKind: protocol.ExceptionInvalidParameter},
		{name: "zero A", username: testUser, srpA: "0", wantKind: protocol.ExceptionInvalidParameter},
		{name: "A equal to N", username: testUser, srpA: srp.IntegerToHex(srp.DefaultGroup().N()), wantKind: protocol.ExceptionInvalidParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := srv.Initiate(ctx, tt.username, tt.srpA)
			var se *protocol.ServiceError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.wantKind, se.Kind())
		})
	}
	assert.Equal(t, 0, srv.PendingSessions())
}

func TestServer_CanceledContext(t *testing.T) {
	srv := newServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := srv.Initiate(ctx, testUser, "02")
	assert.ErrorIs(t, err, context.Canceled)
	_, err = srv.Respond(ctx, &protocol.ChallengeResponse{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestComputeVerifier(t *testing.T) {
	group := srp.DefaultGroup()
	v, err := srptest.ComputeVerifier(group, testPool+testUser, testPassword, testSalt)
	require.NoError(t, err)

	x, err := srp.ComputeX(testSalt, testPool+testUser, testPassword)
	require.NoError(t, err)
	assert.Equal(t, 0, new(big.Int).Exp(group.G(), x, group.N()).Cmp(v))

	_, err = srptest.ComputeVerifier(group, testUser, testPassword, "zz")
	assert.ErrorIs(t, err, srp.ErrFormat)
}

func TestServer_Lockout(t *testing.T) {
	now := testNow
	srv := newServer(t,
		srptest.WithClock(func() time.Time { return now }),
		srptest.WithLockout(2, time.Minute),
	)
	ctx := context.Background()

	_, resp := exchange(t, srv, "wrong password")
	_, err := srv.Respond(ctx, resp)
	require.ErrorIs(t, err, srp.ErrAuthentication)
	assert.Equal(t, 1, srv.FailedAttempts(testUser))

	_, resp = exchange(t, srv, "wrong password")
	_, err = srv.Respond(ctx, resp)
	require.ErrorIs(t, err, srp.ErrAuthentication)

	// Locked: even the right password cannot start an exchange.
	_, err = srv.Initiate(ctx, testUser, "0A")
	var se *protocol.ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, protocol.ExceptionNotAuthorized, se.Kind())
	assert.Equal(t, "Password attempts exceeded", se.Message)

	now = now.Add(time.Minute)
	_, resp = exchange(t, srv, testPassword)
	_, err = srv.Respond(ctx, resp)
	require.NoError(t, err)
	assert.Equal(t, 0, srv.FailedAttempts(testUser))
}

func TestServer_SuccessResetsFailures(t *testing.T) {
	srv := newServer(t, srptest.WithLockout(3, time.Minute))
	ctx := context.Background()

	_, resp := exchange(t, srv, "wrong password")
	_, err := srv.Respond(ctx, resp)
	require.Error(t, err)
	assert.Equal(t, 1, srv.FailedAttempts(testUser))

	_, resp = exchange(t, srv, testPassword)
	_, err = srv.Respond(ctx, resp)
	require.NoError(t, err)
	assert.Equal(t, 0, srv.FailedAttempts(testUser))
}
