package certbridge

import (
	"github.com/breml/rootcerts/embedded"
)

// MozillaHandles returns foreign handles for the embedded Mozilla CA
// certificate bundle, in bundle order. This is a convenience source
// for seeding a platform store; no trust decision is implied.
func MozillaHandles() (Chain, error) {
	return HandlesFromPEM([]byte(embedded.MozillaCACertificatesPEM()))
}
