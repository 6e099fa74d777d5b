package certstore

import (
	"bytes"
	"crypto/x509"
	"fmt"
	"sync"

	"github.com/sensiblebit/certbridge"
)

// NativeStore is the reference platform certificate store. Its
// constructor applies strict stdlib X.509 parsing, so certificates the
// lenient foreign parser tolerates can still be rejected here. The
// store tracks every handle it has issued until the handle is
// released, which makes ownership bugs observable.
type NativeStore struct {
	mu   sync.Mutex
	live map[*NativeCertificate]struct{}
}

// NativeCertificate is a platform certificate handle issued by a
// NativeStore. It is exclusively owned by whoever holds it; Release
// returns it to the store. Release is idempotent.
type NativeCertificate struct {
	store    *NativeStore
	cert     *x509.Certificate
	der      []byte
	released bool
}

// NewNativeStore creates an empty native store.
func NewNativeStore() *NativeStore {
	return &NativeStore{live: make(map[*NativeCertificate]struct{})}
}

// CertificateFromDER constructs a new platform certificate from
// canonical DER bytes. Every call issues a fresh handle, even for
// bytes the store has seen before — deduplication is a catalog
// concern, not a handle concern.
func (s *NativeStore) CertificateFromDER(der []byte) (certbridge.PlatformCertificate, error) {
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, fmt.Errorf("parsing certificate: %w", err)
	}
	nc := &NativeCertificate{
		store: s,
		cert:  cert,
		der:   bytes.Clone(der),
	}
	s.mu.Lock()
	s.live[nc] = struct{}{}
	s.mu.Unlock()
	return nc, nil
}

// Live returns the number of issued handles not yet released.
func (s *NativeStore) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live)
}

// DER returns the handle's canonical encoding.
func (c *NativeCertificate) DER() []byte {
	return c.der
}

// Release frees the handle and removes it from the store's live set.
func (c *NativeCertificate) Release() {
	if c.released {
		return
	}
	c.released = true
	c.store.mu.Lock()
	delete(c.store.live, c)
	c.store.mu.Unlock()
}

// Certificate returns the parsed certificate backing the handle.
// The returned value is shared with the handle and must be treated
// as read-only.
func (c *NativeCertificate) Certificate() *x509.Certificate {
	return c.cert
}
