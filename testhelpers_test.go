package certbridge

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"sync"
	"testing"
	"time"
)

// testCert holds a generated certificate and its signing key.
type testCert struct {
	cert *x509.Certificate
	der  []byte
	key  *ecdsa.PrivateKey
}

// newTestCA generates a self-signed CA certificate.
func newTestCA(t *testing.T, cn string) *testCert {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	template := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: cn},
		NotBefore:             time.Now().Add(-1 * time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		IsCA:                  true,
		BasicConstraintsValid: true,
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		t.Fatal(err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatal(err)
	}
	return &testCert{cert: cert, der: der, key: key}
}

// newTestLeaf generates a leaf certificate signed by the given CA.
func newTestLeaf(t *testing.T, ca *testCert, cn string, serial int64) *testCert {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	template := &x509.Certificate{
		SerialNumber: big.NewInt(serial),
		Subject:      pkix.Name{CommonName: cn},
		DNSNames:     []string{cn},
		NotBefore:    time.Now().Add(-1 * time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
	der, err := x509.CreateCertificate(rand.Reader, template, ca.cert, &key.PublicKey, ca.key)
	if err != nil {
		t.Fatal(err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatal(err)
	}
	return &testCert{cert: cert, der: der, key: key}
}

// certPEM encodes a certificate as a PEM CERTIFICATE block.
func certPEM(der []byte) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
}

// mustParseHandle wraps ParseHandle with a test failure on error.
func mustParseHandle(t *testing.T, der []byte) *Handle {
	t.Helper()
	h, err := ParseHandle(der)
	if err != nil {
		t.Fatalf("ParseHandle: %v", err)
	}
	return h
}

// fakePlatform is a strict in-test platform store that tracks live
// handles so conversion tests can assert nothing leaks on failure paths.
type fakePlatform struct {
	mu   sync.Mutex
	live map[*fakeCertificate]struct{}
}

type fakeCertificate struct {
	p        *fakePlatform
	der      []byte
	released bool
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{live: make(map[*fakeCertificate]struct{})}
}

func (p *fakePlatform) CertificateFromDER(der []byte) (PlatformCertificate, error) {
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, fmt.Errorf("platform parse: %w", err)
	}
	if !bytes.Equal(cert.Raw, der) {
		return nil, fmt.Errorf("platform parse: non-canonical encoding")
	}
	fc := &fakeCertificate{p: p, der: bytes.Clone(der)}
	p.mu.Lock()
	p.live[fc] = struct{}{}
	p.mu.Unlock()
	return fc, nil
}

func (p *fakePlatform) liveCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.live)
}

func (c *fakeCertificate) DER() []byte { return c.der }

func (c *fakeCertificate) Release() {
	if c.released {
		return
	}
	c.released = true
	c.p.mu.Lock()
	delete(c.p.live, c)
	c.p.mu.Unlock()
}
