package config

import (
	"github.com/zalando/go-keyring"
)

// Keyring coordinates for the RPC API-key fallback. Operators who do not
// want the key in the environment or a config file can store it with:
//
//	keyring set assetgate rpc_api_key
const (
	keyringService = "assetgate"
	keyringUser    = "rpc_api_key"
)

// apiKeyFromKeyring looks the RPC API key up in the OS keyring. A missing
// entry or an unavailable keyring backend is not an error worth failing
// startup over; callers treat any error as "no key".
func apiKeyFromKeyring() (string, error) {
	return keyring.Get(keyringService, keyringUser)
}
