// Package certbridge converts certificates parsed by a lenient,
// OpenSSL-grade X.509 parser into handles owned by a platform
// certificate store.
//
// The package has two halves. Handle construction wraps certificates
// from PEM, DER, PKCS#7, PKCS#12, and JKS sources in opaque foreign
// handles, using the certificate-transparency-go fork of crypto/x509
// so that the same slightly-malformed certificates OpenSSL tolerates
// are accepted here. Convert and ConvertChain then re-encode those
// handles through a Platform implementation, which applies its own
// (usually stricter) parsing and owns the resulting certificates.
//
// The bridge itself is stateless: it never retains a reference to an
// input handle or an output certificate after a call returns.
package certbridge

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/pem"
	"errors"
	"fmt"
	"time"

	ctx509 "github.com/google/certificate-transparency-go/x509"
	"golang.org/x/crypto/cryptobyte"
	cryptobyte_asn1 "golang.org/x/crypto/cryptobyte/asn1"
)

// Handle is an opaque reference to one certificate parsed by the
// foreign (lenient) X.509 parser. A Handle is immutable after
// construction. Callers lend it to Convert for the duration of a
// call; the bridge never keeps it.
type Handle struct {
	der  []byte
	cert *ctx509.Certificate
}

// Chain is an ordered sequence of foreign certificate handles,
// typically leaf first.
type Chain []*Handle

// ParseHandle parses a single DER-encoded certificate into a foreign
// handle. Non-fatal parse findings (the kind OpenSSL silently
// tolerates, such as out-of-range validity times) are accepted;
// only structurally fatal errors are reported.
func ParseHandle(der []byte) (*Handle, error) {
	if len(der) == 0 {
		return nil, errors.New("empty certificate data")
	}
	cert, err := ctx509.ParseCertificate(der)
	if ctx509.IsFatal(err) {
		return nil, fmt.Errorf("parsing certificate: %w", err)
	}
	return &Handle{der: bytes.Clone(der), cert: cert}, nil
}

// HandleFromPEM parses the first CERTIFICATE block from PEM data.
func HandleFromPEM(pemData []byte) (*Handle, error) {
	chain, err := HandlesFromPEM(pemData)
	if err != nil {
		return nil, err
	}
	return chain[0], nil
}

// HandlesFromPEM parses all CERTIFICATE blocks from a PEM bundle,
// preserving their order. Non-certificate blocks are skipped.
func HandlesFromPEM(pemData []byte) (Chain, error) {
	var chain Chain
	rest := pemData
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		h, err := ParseHandle(block.Bytes)
		if err != nil {
			return nil, err
		}
		chain = append(chain, h)
	}
	if len(chain) == 0 {
		return nil, errors.New("no certificates found in PEM data")
	}
	return chain, nil
}

// ParseHandlesAny attempts to parse certificates from raw bytes, trying
// DER encoding first (single cert, most common for .cer files), then
// PEM (may contain multiple certs), then PKCS#7/P7C.
func ParseHandlesAny(data []byte) (Chain, error) {
	h, derErr := ParseHandle(data)
	if derErr == nil {
		return Chain{h}, nil
	}
	chain, pemErr := HandlesFromPEM(data)
	if pemErr == nil {
		return chain, nil
	}
	chain, p7Err := HandlesFromPKCS7(data)
	if p7Err == nil {
		return chain, nil
	}
	return nil, fmt.Errorf("not DER (%v) or PEM (%v) or PKCS#7 (%v)", derErr, pemErr, p7Err)
}

// IsPEM returns true if the data appears to contain PEM-encoded content.
func IsPEM(data []byte) bool {
	return bytes.Contains(data, []byte("-----BEGIN"))
}

// EncodedDER returns a copy of the handle's canonical DER encoding.
// The encoding must be exactly one ASN.1 SEQUENCE element with no
// trailing data; anything else means the foreign object cannot
// produce a canonical encoding.
func (h *Handle) EncodedDER() ([]byte, error) {
	if h == nil || len(h.der) == 0 {
		return nil, errors.New("handle holds no encoded certificate")
	}
	input := cryptobyte.String(h.der)
	var element cryptobyte.String
	if !input.ReadASN1Element(&element, cryptobyte_asn1.SEQUENCE) {
		return nil, errors.New("encoding is not an ASN.1 SEQUENCE")
	}
	if !input.Empty() {
		return nil, errors.New("trailing data after certificate")
	}
	return bytes.Clone(element), nil
}

// SubjectCN returns the subject common name, or "" if the handle is
// empty or the foreign parser produced no subject.
func (h *Handle) SubjectCN() string {
	if h == nil || h.cert == nil {
		return ""
	}
	return h.cert.Subject.CommonName
}

// Fingerprint returns the SHA-256 fingerprint of the handle's encoding
// as a lowercase hex string, or "" for an empty handle.
func (h *Handle) Fingerprint() string {
	if h == nil || len(h.der) == 0 {
		return ""
	}
	sum := sha256.Sum256(h.der)
	return hex.EncodeToString(sum[:])
}

// Kind reports whether the certificate is a root, intermediate, or leaf.
func (h *Handle) Kind() string {
	if h == nil || h.cert == nil {
		return ""
	}
	if h.cert.IsCA {
		if bytes.Equal(h.cert.RawIssuer, h.cert.RawSubject) {
			return "root"
		}
		return "intermediate"
	}
	return "leaf"
}

// NotBefore returns the start of the certificate's validity period.
// Zero for an empty handle.
func (h *Handle) NotBefore() time.Time {
	if h == nil || h.cert == nil {
		return time.Time{}
	}
	return h.cert.NotBefore
}

// NotAfter returns the end of the certificate's validity period.
// Zero for an empty handle.
func (h *Handle) NotAfter() time.Time {
	if h == nil || h.cert == nil {
		return time.Time{}
	}
	return h.cert.NotAfter
}

// DefaultPasswords returns the list of passwords tried by default when
// decrypting PKCS#12 and JKS containers. Returns a fresh copy each call.
func DefaultPasswords() []string {
	return []string{"", "password", "changeit", "keypassword"}
}

// DeduplicatePasswords merges additional passwords with the defaults and
// removes duplicates while preserving order. Defaults come first, followed
// by any extra passwords not already in the list.
func DeduplicatePasswords(extra []string) []string {
	all := append(DefaultPasswords(), extra...)
	seen := make(map[string]bool, len(all))
	result := make([]string, 0, len(all))
	for _, p := range all {
		if !seen[p] {
			seen[p] = true
			result = append(result, p)
		}
	}
	return result
}
