package web

import (
	"github.com/gofiber/fiber/v3"
)

// Authenticator resolves the caller identity for a request. Session and
// token management live outside this service; deployments plug in
// whatever scheme their gateway uses.
type Authenticator interface {
	// Identify returns the authenticated owner email for the request, or
	// an empty string when the request carries no identity.
	Identify(c fiber.Ctx) string
}

// HeaderAuthenticator trusts an identity header set by the fronting
// gateway. Suitable behind a proxy that strips the header from outside
// traffic.
type HeaderAuthenticator struct {
	Header string
}

// NewHeaderAuthenticator creates an authenticator reading the given
// header, defaulting to X-User-Email.
func NewHeaderAuthenticator(header string) *HeaderAuthenticator {
	if header == "" {
		header = "X-User-Email"
	}

	return &HeaderAuthenticator{Header: header}
}

func (a *HeaderAuthenticator) Identify(c fiber.Ctx) string {
	return c.Get(a.Header)
}
