// Package srp provides the client side of SRP-6a as spoken by the Cognito user pool
// USER_SRP_AUTH flow.
//
// All values that enter a hash are canonical hex strings (see PadHex), so a session only
// interoperates with a server that applies the identical padding rule.
package srp

import (
	"fmt"
	"math/big"
	"strings"
	"sync"
)

// nHex is the 3072-bit safe prime from RFC 3526 section 4, used by the identity provider.
const nHex = "FFFFFFFFFFFFFFFFC90FDAA22168C234C4C6628B80DC1CD1" +
	"29024E088A67CC74020BBEA63B139B22514A08798E3404DD" +
	"EF9519B3CD3A431B302B0A6DF25F14374FE1356D6D51C245" +
	"E485B576625E7EC6F44C42E9A637ED6B0BFF5CB6F406B7ED" +
	"EE386BFB5A899FA5AE9F24117C4B1FE649286651ECE45B3D" +
	"C2007CB8A163BF0598DA48361C55D39A69163FA8FD24CF5F" +
	"83655D23DCA3AD961C62F356208552BB9ED529077096966D" +
	"670C354E4ABC9804F1746C08CA18217C32905E462E36CE3B" +
	"E39E772C180E86039B2783A2EC07A28FB5C55DF06F4C52C9" +
	"DE2BCBF6955817183995497CEA956AE515D2261898FA0510" +
	"15728E5A8AAAC42DAD33170D04507A33A85521ABDF1CBA64" +
	"ECFB850458DBEF0A8AEA71575D060C7DB3970F85A6E1E4C7" +
	"ABF5AE8CDB0933D71E8C94E04A25619DCEE3D2261AD2EE6B" +
	"F12FFA06D98A0864D87602733EC86A64521F2B18177B200C" +
	"BBE117577A615D6C770988C0BAD946E208E24FA074E5AB31" +
	"43DB5BFCE0FD108E4B82D120A93AD2CAFFFFFFFFFFFFFFFF"

// gValue is the generator paired with nHex.
const gValue = 2

// Group holds the SRP group parameters N, g and the derived multiplier k = H(pad(N) | pad(g)).
// A Group is immutable once constructed and safe for concurrent use.
type Group struct {
	n *big.Int
	g *big.Int
	k *big.Int

	// hash inputs, computed once
	paddedN string
	paddedG string
}

var defaultGroup = sync.OnceValue(func() *Group {
	group, err := NewGroup(nHex, gValue)
	if err != nil {
		panic(fmt.Sprintf("srp: invalid built-in group: %v", err))
	}
	return group
})

// DefaultGroup returns the 3072-bit group used by the identity provider.
func DefaultGroup() *Group {
	return defaultGroup()
}

// NewGroup builds a group from a hex modulus and a small generator.
// It does not test N for primality; callers own that guarantee for custom groups.
func NewGroup(modulusHex string, generator int64) (*Group, error) {
	n, err := HexToInteger(strings.Join(strings.Fields(modulusHex), ""))
	if err != nil {
		return nil, fmt.Errorf("invalid modulus: %w", err)
	}
	if n.Cmp(big.NewInt(3)) < 0 {
		return nil, fmt.Errorf("%w: modulus must be greater than 2", ErrProtocol)
	}

	g := big.NewInt(generator)
	if g.Cmp(big.NewInt(2)) < 0 || g.Cmp(n) >= 0 {
		return nil, fmt.Errorf("%w: generator must be in [2, N)", ErrProtocol)
	}

	k, err := ComputeK(n, g)
	if err != nil {
		return nil, err
	}

	return &Group{
		n:       n,
		g:       g,
		k:       k,
		paddedN: PadHex(Int(n)),
		paddedG: PadHex(Int(g)),
	}, nil
}

// N returns a copy of the modulus.
func (gr *Group) N() *big.Int {
	return new(big.Int).Set(gr.n)
}

// G returns a copy of the generator.
func (gr *Group) G() *big.Int {
	return new(big.Int).Set(gr.g)
}

// K returns a copy of the multiplier k.
func (gr *Group) K() *big.Int {
	return new(big.Int).Set(gr.k)
}

// BitLen returns the size of the modulus in bits.
func (gr *Group) BitLen() int {
	return gr.n.BitLen()
}

// isZeroMod reports whether v ≡ 0 (mod N).
func (gr *Group) isZeroMod(v *big.Int) bool {
	return new(big.Int).Mod(v, gr.n).Sign() == 0
}
