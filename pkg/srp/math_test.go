package srp_test

import (
	"bytes"
	"crypto/rand"
	"errors"
	"math/big"
	"testing"

	"github.com/fzdarsky/cognito-srp/pkg/srp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustHex(t *testing.T, s string) *big.Int {
	t.Helper()
	v, err := srp.HexToInteger(s)
	require.NoError(t, err)
	return v
}

func mustDec(t *testing.T, s string) *big.Int {
	t.Helper()
	v, ok := new(big.Int).SetString(s, 10)
	require.True(t, ok)
	return v
}

func TestComputeU(t *testing.T) {
	u, err := srp.ComputeU(big.NewInt(123), big.NewInt(456))
	require.NoError(t, err)
	assert.Equal(t, 0, u.Cmp(mustDec(t, "111107538766589913434873047715306230301105682089803398192367409276144360002523")))

	u, err = srp.ComputeU(
		mustDec(t, "123212123123345345345345345"),
		mustDec(t, "45636345345345345345345345345345345"),
	)
	require.NoError(t, err)
	assert.Equal(t, 0, u.Cmp(mustDec(t, "17514626659148735040093355417193195988959136054689477767575367834973296020833")))
}

func TestComputeU_OrderMatters(t *testing.T) {
	ab, err := srp.ComputeU(big.NewInt(123), big.NewInt(456))
	require.NoError(t, err)
	ba, err := srp.ComputeU(big.NewInt(456), big.NewInt(123))
	require.NoError(t, err)

	assert.NotEqual(t, 0, ab.Cmp(ba))
	assert.Equal(t, 0, ba.Cmp(mustDec(t, "45102992840946182467651845826281585009304368810058583599246066651313924117396")))
}

func TestComputeK(t *testing.T) {
	group := srp.DefaultGroup()

	k, err := srp.ComputeK(group.N(), group.G())
	require.NoError(t, err)
	assert.Equal(t, "538282C4354742D7CBBDE2359FCF67F9F5B3A6B08791E5011B43B8A5B66D9EE6", srp.IntegerToHex(k))
	assert.Equal(t, 0, k.Cmp(group.K()))
}

func TestComputeX(t *testing.T) {
	x, err := srp.ComputeX(vecSalt, vecPool+vecUser, vecPassword)
	require.NoError(t, err)
	assert.Equal(t, vecX, srp.IntegerToHex(x))

	// Empty credentials are hashed like any other byte sequence.
	_, err = srp.ComputeX("01", "", "")
	require.NoError(t, err)
}

func TestComputeX_InvalidSalt(t *testing.T) {
	_, err := srp.ComputeX("not-hex", "user", "pass")
	assert.ErrorIs(t, err, srp.ErrFormat)
}

func TestModPow_MatchesMathBig(t *testing.T) {
	group := srp.DefaultGroup()
	n := group.N()

	for range 4 {
		base, err := rand.Int(rand.Reader, n)
		require.NoError(t, err)
		exp, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 600))
		require.NoError(t, err)

		want := new(big.Int).Exp(base, exp, n)
		assert.Equal(t, 0, want.Cmp(srp.ModPow(base, exp, n)))
	}

	// Exponent wider than the modulus.
	wide := new(big.Int).Lsh(big.NewInt(3), uint(n.BitLen()+40))
	assert.Equal(t, 0, new(big.Int).Exp(group.G(), wide, n).Cmp(srp.ModPow(group.G(), wide, n)))

	// Even modulus.
	assert.Equal(t, int64(0), srp.ModPow(big.NewInt(2), big.NewInt(5), big.NewInt(8)).Int64())
	assert.Equal(t, int64(4), srp.ModPow(big.NewInt(3), big.NewInt(3), big.NewInt(23)).Int64())
}

func TestRandomExponent(t *testing.T) {
	n := srp.DefaultGroup().N()

	a, err := srp.RandomExponent(nil, n)
	require.NoError(t, err)
	assert.Equal(t, 1, a.Sign())
	assert.Equal(t, -1, a.Cmp(n))

	b, err := srp.RandomExponent(rand.Reader, n)
	require.NoError(t, err)
	assert.NotEqual(t, 0, a.Cmp(b))

	// A zero reader still yields the lower bound, never zero.
	small, err := srp.RandomExponent(bytes.NewReader(make([]byte, 512)), big.NewInt(1000))
	require.NoError(t, err)
	assert.Equal(t, int64(1), small.Int64())
}

func TestRandomExponent_ReaderFailure(t *testing.T) {
	_, err := srp.RandomExponent(failingReader{}, srp.DefaultGroup().N())
	assert.ErrorIs(t, err, srp.ErrCryptoFailure)
}

func TestComputeS_MatchesServerSide(t *testing.T) {
	group := srp.DefaultGroup()
	n, g, k := group.N(), group.G(), group.K()

	a := mustHex(t, vecSmallA)
	b := mustHex(t, vecSmallB)
	x := mustHex(t, vecX)

	A := new(big.Int).Exp(g, a, n)
	v := new(big.Int).Exp(g, x, n)
	B := new(big.Int).Mul(k, v)
	B.Add(B, new(big.Int).Exp(g, b, n))
	B.Mod(B, n)
	assert.Equal(t, vecA, srp.IntegerToHex(A))
	assert.Equal(t, vecB, srp.IntegerToHex(B))

	u, err := srp.ComputeU(A, B)
	require.NoError(t, err)
	assert.Equal(t, vecU, srp.IntegerToHex(u))

	clientS, err := srp.ComputeS(group, B, x, a, u)
	require.NoError(t, err)

	// Server: S = (A * v^u)^b mod N
	serverS := new(big.Int).Exp(v, u, n)
	serverS.Mul(serverS, A).Mod(serverS, n)
	serverS.Exp(serverS, b, n)
	assert.Equal(t, 0, clientS.Cmp(serverS))

	key, err := srp.DeriveSessionKey(clientS, u)
	require.NoError(t, err)
	assert.Equal(t, vecKey, srp.IntegerToHex(new(big.Int).SetBytes(key)))
}

func TestComputeS_MatchesMathBig(t *testing.T) {
	group := srp.DefaultGroup()
	n, g, k := group.N(), group.G(), group.K()
	digestMax := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

	reference := func(b, x, a, u *big.Int) *big.Int {
		base := new(big.Int).Exp(g, x, n)
		base.Mul(base, k).Mod(base, n)
		base.Sub(b, base).Mod(base, n)
		exponent := new(big.Int).Mul(u, x)
		exponent.Add(exponent, a)
		return base.Exp(base, exponent, n)
	}

	tests := []struct {
		name       string
		b, x, a, u *big.Int
	}{
		{name: "small values", b: big.NewInt(5), x: big.NewInt(7), a: big.NewInt(11), u: big.NewInt(13)},
		{name: "largest exponent", b: new(big.Int).Sub(n, big.NewInt(2)), x: digestMax, a: new(big.Int).Sub(n, big.NewInt(1)), u: digestMax},
		{name: "B wider than N", b: new(big.Int).Add(n, big.NewInt(9)), x: big.NewInt(3), a: big.NewInt(2), u: big.NewInt(1)},
	}
	for range 3 {
		b, err := rand.Int(rand.Reader, n)
		require.NoError(t, err)
		a, err := srp.RandomExponent(rand.Reader, n)
		require.NoError(t, err)
		x, err := rand.Int(rand.Reader, digestMax)
		require.NoError(t, err)
		u, err := rand.Int(rand.Reader, digestMax)
		require.NoError(t, err)
		tests = append(tests, struct {
			name       string
			b, x, a, u *big.Int
		}{name: "random", b: b.Add(b, big.NewInt(1)), x: x, a: a, u: u.Add(u, big.NewInt(1))})
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := srp.ComputeS(group, tt.b, tt.x, tt.a, tt.u)
			require.NoError(t, err)
			assert.Equal(t, 0, reference(tt.b, tt.x, tt.a, tt.u).Cmp(got))
		})
	}
}

func TestComputeS_RejectsZero(t *testing.T) {
	group := srp.DefaultGroup()
	one := big.NewInt(1)

	_, err := srp.ComputeS(group, big.NewInt(0), one, one, one)
	assert.ErrorIs(t, err, srp.ErrProtocol)

	_, err = srp.ComputeS(group, group.N(), one, one, one)
	assert.ErrorIs(t, err, srp.ErrProtocol)

	_, err = srp.ComputeS(group, new(big.Int).Lsh(group.N(), 1), one, one, one)
	assert.ErrorIs(t, err, srp.ErrProtocol)

	_, err = srp.ComputeS(group, big.NewInt(5), one, one, big.NewInt(0))
	assert.ErrorIs(t, err, srp.ErrProtocol)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("entropy source unavailable")
}
