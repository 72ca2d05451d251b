package srp

import "math/big"

// SetExponentSource replaces the private ephemeral generator so tests can replay fixed vectors.
func SetExponentSource(s *Session, next func() (*big.Int, error)) {
	s.newExponent = next
}
