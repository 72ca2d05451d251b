package srp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"math/big"

	"github.com/cronokirby/saferith"
)

var one = big.NewInt(1)

// RandomExponent draws a uniformly random exponent in [1, N) from r.
// A nil reader selects crypto/rand.
func RandomExponent(r io.Reader, n *big.Int) (*big.Int, error) {
	if r == nil {
		r = rand.Reader
	}
	if n.Cmp(big.NewInt(2)) < 0 {
		return nil, fmt.Errorf("%w: modulus too small for an exponent", ErrProtocol)
	}

	v, err := rand.Int(r, new(big.Int).Sub(n, one))
	if err != nil {
		return nil, fmt.Errorf("%w: random exponent: %v", ErrCryptoFailure, err)
	}
	return v.Add(v, one), nil
}

// ModPow returns base^exponent mod modulus for a non-negative exponent.
//
// For odd moduli the exponentiation runs in time that depends only on the bit sizes of the
// modulus and the exponent's announced width, never on the exponent's bits. Exponents wider
// than the modulus are announced at their own width.
func ModPow(base, exponent, modulus *big.Int) *big.Int {
	if modulus.Bit(0) == 0 {
		// Montgomery reduction needs an odd modulus; even moduli only occur in custom groups.
		return new(big.Int).Exp(base, exponent, modulus)
	}

	size := modulus.BitLen()
	m := saferith.ModulusFromBytes(modulus.Bytes())
	b := new(saferith.Nat).SetBig(new(big.Int).Mod(base, modulus), size)
	e := new(saferith.Nat).SetBig(exponent, max(size+1, exponent.BitLen()))

	return new(saferith.Nat).Exp(b, e, m).Big()
}

// exponentBits is the width announced for a + u*x: a < N, and u and x are SHA-256 digests.
func exponentBits(modulusBits int) int {
	return modulusBits + 2*sha256.Size*8 + 1
}

// ComputeK returns the multiplier k = H(pad(N) | pad(g)).
func ComputeK(n, g *big.Int) (*big.Int, error) {
	return hashHexInt(PadHex(Int(n)) + PadHex(Int(g)))
}

// ComputeU returns the scrambling parameter u = H(pad(A) | pad(B)).
// A zero u fails the exchange with ErrProtocol.
func ComputeU(a, b *big.Int) (*big.Int, error) {
	u, err := hashHexInt(PadHex(Int(a)) + PadHex(Int(b)))
	if err != nil {
		return nil, err
	}
	if u.Sign() == 0 {
		return nil, fmt.Errorf("%w: scrambling parameter u is zero", ErrProtocol)
	}
	return u, nil
}

// ComputeX returns the private key x = H(pad(salt) | H(identity | ":" | password)).
// identity is the pool name followed by the SRP user id; any byte sequence is accepted.
func ComputeX(saltHex, identity, password string) (*big.Int, error) {
	salt, err := HexToInteger(saltHex)
	if err != nil {
		return nil, fmt.Errorf("invalid salt: %w", err)
	}

	inner := sha256.New()
	inner.Write([]byte(identity))
	inner.Write([]byte(":"))
	inner.Write([]byte(password))
	digest := inner.Sum(nil)

	return hashHexInt(PadHex(Int(salt)) + bytesToHex(digest))
}

// ComputeS returns the client shared secret S = (B - k*g^x)^(a + u*x) mod N.
// B ≡ 0 (mod N) and u == 0 are rejected before any exponentiation.
func ComputeS(group *Group, b, x, a, u *big.Int) (*big.Int, error) {
	if group.isZeroMod(b) {
		return nil, fmt.Errorf("%w: server value B mod N is zero", ErrProtocol)
	}
	if u.Sign() == 0 {
		return nil, fmt.Errorf("%w: scrambling parameter u is zero", ErrProtocol)
	}

	if group.n.Bit(0) == 0 {
		return computeSVarTime(group, b, x, a, u), nil
	}

	size := group.n.BitLen()
	expSize := exponentBits(size)
	m := saferith.ModulusFromBytes(group.n.Bytes())
	reduced := func(v *big.Int) *saferith.Nat {
		return new(saferith.Nat).SetBig(new(big.Int).Mod(v, group.n), size)
	}

	xNat := new(saferith.Nat).SetBig(x, expSize)

	gx := new(saferith.Nat).Exp(reduced(group.g), xNat, m)
	kgx := new(saferith.Nat).ModMul(reduced(group.k), gx, m)
	base := new(saferith.Nat).ModSub(reduced(b), kgx, m)

	ux := new(saferith.Nat).Mul(new(saferith.Nat).SetBig(u, expSize), xNat, expSize)
	exponent := new(saferith.Nat).Add(ux, new(saferith.Nat).SetBig(a, expSize), expSize)

	return new(saferith.Nat).Exp(base, exponent, m).Big(), nil
}

// computeSVarTime is ComputeS on math/big for groups with an even modulus.
func computeSVarTime(group *Group, b, x, a, u *big.Int) *big.Int {
	gx := new(big.Int).Exp(group.g, x, group.n)
	kgx := new(big.Int).Mul(group.k, gx)
	kgx.Mod(kgx, group.n)

	base := new(big.Int).Sub(b, kgx)
	base.Mod(base, group.n)

	exponent := new(big.Int).Mul(u, x)
	exponent.Add(exponent, a)

	s := new(big.Int).Exp(base, exponent, group.n)

	wipeInt(gx)
	wipeInt(kgx)
	wipeInt(base)
	wipeInt(exponent)

	return s
}

// DeriveSessionKey turns the shared secret into the session key:
// HKDF(ikm = bytes(pad(S)), salt = bytes(pad(u))).
func DeriveSessionKey(s, u *big.Int) ([]byte, error) {
	ikm := decodePadded(Int(s))
	defer clear(ikm)

	return HKDFExpand(ikm, decodePadded(Int(u)))
}

// ComputeClientProof returns M1 = H(H(pad N) xor H(pad g) | H(I) | pad(s) | pad(A) | pad(B) | K).
func ComputeClientProof(group *Group, username string, salt, a, b *big.Int, key []byte) []byte {
	hashN := sha256.Sum256(decodePadded(Hex(group.paddedN)))
	hashG := sha256.Sum256(decodePadded(Hex(group.paddedG)))
	hashI := sha256.Sum256([]byte(username))

	var hashNXorG [sha256.Size]byte
	for i := range hashNXorG {
		hashNXorG[i] = hashN[i] ^ hashG[i]
	}

	h := sha256.New()
	h.Write(hashNXorG[:])
	h.Write(hashI[:])
	h.Write(decodePadded(Int(salt)))
	h.Write(decodePadded(Int(a)))
	h.Write(decodePadded(Int(b)))
	h.Write(key)
	return h.Sum(nil)
}

// ComputeServerProof returns M2 = H(pad(A) | M1 | K).
func ComputeServerProof(a *big.Int, m1, key []byte) []byte {
	h := sha256.New()
	h.Write(decodePadded(Int(a)))
	h.Write(m1)
	h.Write(key)
	return h.Sum(nil)
}

// proofsEqual compares two proofs in constant time.
func proofsEqual(expected, actual []byte) bool {
	return hmac.Equal(expected, actual)
}

// wipeInt zeroes the words backing x.
func wipeInt(x *big.Int) {
	if x == nil {
		return
	}
	clear(x.Bits())
	x.SetInt64(0)
}
