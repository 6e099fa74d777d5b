// Package certstore provides the platform side of the certificate
// bridge: a strict in-memory native store implementing
// certbridge.Platform, a SQLite-backed catalog of imported
// certificates, and the file ingestion pipeline that feeds both.
package certstore

import "time"

// CatalogRecord describes one imported certificate as stored in the
// catalog.
type CatalogRecord struct {
	Fingerprint string    // SHA-256 of the DER, lowercase hex
	SubjectCN   string
	CertType    string // "root", "intermediate", "leaf"
	KeyType     string // e.g. "RSA 2048 bits", "ECDSA P-256"
	NotBefore   time.Time
	NotAfter    time.Time
	SANs        []string
	DER         []byte
	Source      string // file that contributed this cert
	ImportedAt  time.Time
}

// CatalogSummary holds aggregate counts of cataloged certificates.
type CatalogSummary struct {
	Roots         int
	Intermediates int
	Leaves        int
	Expired       int
}
