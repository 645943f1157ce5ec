package ebay

import (
	"fmt"
	"strings"
)

// Environment identifies one of the two independent eBay platform instances.
// The API shape is identical across environments but identifier spaces are
// disjoint: tokens, policies, and listing IDs never cross over.
type Environment string

// Environment constants.
const (
	Production Environment = "production"
	Sandbox    Environment = "sandbox"
)

// ParseEnvironment converts a config string into an Environment.
func ParseEnvironment(s string) (Environment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "production":
		return Production, nil
	case "sandbox":
		return Sandbox, nil
	default:
		return "", fmt.Errorf("unknown environment %q (want production or sandbox)", s)
	}
}

// Valid reports whether e is a known environment.
func (e Environment) Valid() bool {
	return e == Production || e == Sandbox
}

// APIBaseURL returns the Sell API base URL for the environment.
func (e Environment) APIBaseURL() string {
	if e == Sandbox {
		return "https://api.sandbox.ebay.com"
	}
	return "https://api.ebay.com"
}

// TokenURL returns the OAuth2 token endpoint for the environment.
func (e Environment) TokenURL() string {
	if e == Sandbox {
		return "https://api.sandbox.ebay.com/identity/v1/oauth2/token"
	}
	return "https://api.ebay.com/identity/v1/oauth2/token"
}

// AuthorizeURL returns the user consent endpoint for the environment.
func (e Environment) AuthorizeURL() string {
	if e == Sandbox {
		return "https://auth.sandbox.ebay.com/oauth2/authorize"
	}
	return "https://auth.ebay.com/oauth2/authorize"
}

// TokenFileName returns the deterministic per-environment refresh token
// file name.
func (e Environment) TokenFileName() string {
	return string(e) + "_refresh_token.txt"
}

func (e Environment) String() string {
	return string(e)
}
