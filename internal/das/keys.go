package das

import (
	"github.com/cockroachdb/errors"
	"github.com/mr-tron/base58"
)

// solanaKeyLength is the decoded size of a Solana public key.
const solanaKeyLength = 32

// ValidateKey checks that s is a base58-encoded 32-byte Solana public
// key. The check runs before any network call so a malformed key never
// reaches the node.
func ValidateKey(s string) error {
	if s == "" {
		return errors.New("public key must not be empty")
	}
	decoded, err := base58.Decode(s)
	if err != nil {
		return errors.Wrapf(err, "public key %q is not valid base58", s)
	}
	if len(decoded) != solanaKeyLength {
		return errors.Newf("public key %q decodes to %d bytes, want %d", s, len(decoded), solanaKeyLength)
	}
	return nil
}
