package certstore

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/x509"
	"fmt"
	"path/filepath"
	"strings"
)

// derExtensions contains file extensions that may hold ASN.1/DER-encoded
// certificate data (certificates, PKCS#7, PKCS#12). Only files with these
// extensions are tried as DER to avoid feeding arbitrary binary files to
// ASN.1 parsers.
var derExtensions = map[string]bool{
	// Certificates
	".der":  true,
	".cer":  true,
	".crt":  true,
	".cert": true,
	".ca":   true,
	".pem":  true, // sometimes DER despite extension

	// PKCS#12
	".p12": true,
	".pfx": true,

	// PKCS#7
	".p7b": true,
	".p7c": true,
	".p7":  true,
	".spc": true, // Software Publisher Certificate

	// Combined / misc
	".x509":      true,
	".chain":     true,
	".bundle":    true,
	".ca-bundle": true,
}

// jksExtensions contains file extensions for Java KeyStore files.
var jksExtensions = map[string]bool{
	".jks":        true,
	".keystore":   true,
	".truststore": true,
}

// HasBinaryExtension reports whether the file path has a recognized DER
// or JKS extension. The extension is matched case-insensitively.
func HasBinaryExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return derExtensions[ext] || jksExtensions[ext]
}

// HasJKSExtension reports whether the file path looks like a Java
// KeyStore.
func HasJKSExtension(path string) bool {
	return jksExtensions[strings.ToLower(filepath.Ext(path))]
}

// GetKeyType returns a human-readable description of the certificate's
// public key type, including bit length for RSA and curve name for
// ECDSA.
func GetKeyType(cert *x509.Certificate) string {
	switch pub := cert.PublicKey.(type) {
	case *rsa.PublicKey:
		return fmt.Sprintf("RSA %d bits", pub.N.BitLen())
	case *ecdsa.PublicKey:
		return fmt.Sprintf("ECDSA %s", pub.Curve.Params().Name)
	case ed25519.PublicKey:
		return "Ed25519"
	default:
		return fmt.Sprintf("unknown key type: %T", pub)
	}
}

// FormatCN returns the common name of the certificate for display.
// Falls back to the first DNS SAN, then to "serial:<decimal>" if no CN
// or SAN is present.
func FormatCN(cert *x509.Certificate) string {
	if cert.Subject.CommonName != "" {
		return cert.Subject.CommonName
	}
	if len(cert.DNSNames) > 0 {
		return cert.DNSNames[0]
	}
	return fmt.Sprintf("serial:%s", cert.SerialNumber.String())
}

// certType reports whether a certificate is a root, intermediate, or
// leaf, matching the classification the foreign handle side uses.
func certType(cert *x509.Certificate) string {
	if cert.IsCA {
		if string(cert.RawIssuer) == string(cert.RawSubject) {
			return "root"
		}
		return "intermediate"
	}
	return "leaf"
}
