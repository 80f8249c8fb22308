// Package gate implements the shared-secret ("canary") header check that
// guards the data endpoint.
package gate

import "crypto/subtle"

// DeadCanaryMessage is the body message returned when the check fails.
const DeadCanaryMessage = "Dead Canary!"

// Gate holds the header name and the accepted secrets.
type Gate struct {
	headerKey string
	secrets   [][]byte
}

// New creates a gate. Empty secrets are dropped, so they can never match.
func New(headerKey string, secrets []string) *Gate {
	g := &Gate{headerKey: headerKey}
	for _, s := range secrets {
		if s != "" {
			g.secrets = append(g.secrets, []byte(s))
		}
	}
	return g
}

// HeaderKey returns the name of the header carrying the secret.
func (g *Gate) HeaderKey() string {
	return g.headerKey
}

// Accept reports whether value is non-empty and equal to one of the
// configured secrets. A gate without a header key accepts nothing. Every
// secret is compared so the time taken does not depend on which one matched.
func (g *Gate) Accept(value string) bool {
	if value == "" || g.headerKey == "" {
		return false
	}
	candidate := []byte(value)
	matched := 0
	for _, secret := range g.secrets {
		matched |= subtle.ConstantTimeCompare(candidate, secret)
	}
	return matched == 1
}
