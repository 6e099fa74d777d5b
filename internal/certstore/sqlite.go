package certstore

import (
	"crypto/sha256"
	"crypto/x509"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	_ "modernc.org/sqlite"
)

// catalogRow maps a row in the certificates table.
type catalogRow struct {
	Fingerprint string         `db:"fingerprint"`
	SubjectCN   sql.NullString `db:"subject_cn"`
	CertType    string         `db:"cert_type"`
	KeyType     string         `db:"key_type"`
	NotBefore   time.Time      `db:"not_before"`
	Expiry      time.Time      `db:"expiry"`
	SANsJSON    types.JSONText `db:"sans"`
	DER         []byte         `db:"der"`
	Source      string         `db:"source"`
	ImportedAt  time.Time      `db:"imported_at"`
}

// Catalog is a SQLite-backed record of successfully converted
// certificates. All operations run in-memory for performance; use
// SaveToDisk/LoadFromDisk to persist or restore.
type Catalog struct {
	db *sqlx.DB
}

// NewCatalog creates an in-memory catalog with an initialized schema.
func NewCatalog() (*Catalog, error) {
	// Pin to a single connection — each :memory: connection is a
	// separate database, so connection pooling must be disabled.
	// PRAGMAs are set via the DSN so they apply to reconnections.
	dsn := "file::memory:?_pragma=temp_store(2)&_pragma=journal_mode(off)&_pragma=synchronous(off)"
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	c := &Catalog{db: db}
	if err := c.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	slog.Debug("catalog initialized")
	return c, nil
}

func (c *Catalog) initSchema() error {
	_, err := c.db.Exec(`
		CREATE TABLE IF NOT EXISTS certificates (
			fingerprint  text PRIMARY KEY,
			subject_cn   text,
			cert_type    text NOT NULL,
			key_type     text NOT NULL,
			not_before   timestamp,
			expiry       timestamp,
			sans         text,
			der          blob NOT NULL,
			source       text NOT NULL,
			imported_at  timestamp NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating certificates table: %w", err)
	}

	_, err = c.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_certificates_cert_type ON certificates (cert_type);
	`)
	if err != nil {
		return fmt.Errorf("creating cert_type index: %w", err)
	}
	return nil
}

// Close releases the underlying database connection.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Add records a converted certificate. Duplicate fingerprints are
// silently ignored (INSERT OR IGNORE semantics). Returns true when a
// new row was inserted.
func (c *Catalog) Add(cert *x509.Certificate, source string) (bool, error) {
	if cert == nil {
		return false, errors.New("certificate is nil")
	}
	sum := sha256.Sum256(cert.Raw)
	fingerprint := hex.EncodeToString(sum[:])

	sans, err := json.Marshal(cert.DNSNames)
	if err != nil {
		return false, fmt.Errorf("marshaling SANs: %w", err)
	}

	res, err := c.db.Exec(`
		INSERT OR IGNORE INTO certificates
			(fingerprint, subject_cn, cert_type, key_type, not_before, expiry, sans, der, source, imported_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		fingerprint,
		cert.Subject.CommonName,
		certType(cert),
		GetKeyType(cert),
		cert.NotBefore,
		cert.NotAfter,
		types.JSONText(sans),
		cert.Raw,
		source,
		time.Now().UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("inserting certificate: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking insert result: %w", err)
	}
	return n > 0, nil
}

// Count returns the number of cataloged certificates.
func (c *Catalog) Count() (int, error) {
	var n int
	if err := c.db.Get(&n, "SELECT COUNT(*) FROM certificates"); err != nil {
		return 0, fmt.Errorf("counting certificates: %w", err)
	}
	return n, nil
}

// All returns every cataloged certificate, newest import first.
func (c *Catalog) All() ([]CatalogRecord, error) {
	var rows []catalogRow
	err := c.db.Select(&rows, "SELECT * FROM certificates ORDER BY imported_at DESC, fingerprint")
	if err != nil {
		return nil, fmt.Errorf("reading certificates: %w", err)
	}
	records := make([]CatalogRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.toRecord())
	}
	return records, nil
}

// ByFingerprint returns the cataloged certificate with the given
// SHA-256 fingerprint, or nil if not present.
func (c *Catalog) ByFingerprint(fingerprint string) (*CatalogRecord, error) {
	var row catalogRow
	err := c.db.Get(&row, "SELECT * FROM certificates WHERE fingerprint = ?", fingerprint)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting certificate by fingerprint: %w", err)
	}
	rec := row.toRecord()
	return &rec, nil
}

// Summary returns aggregate counts of cataloged certificates.
func (c *Catalog) Summary() (CatalogSummary, error) {
	records, err := c.All()
	if err != nil {
		return CatalogSummary{}, err
	}
	var summary CatalogSummary
	now := time.Now()
	for _, rec := range records {
		switch rec.CertType {
		case "root":
			summary.Roots++
		case "intermediate":
			summary.Intermediates++
		case "leaf":
			summary.Leaves++
		}
		if now.After(rec.NotAfter) {
			summary.Expired++
		}
	}
	return summary, nil
}

// SaveToDisk writes the in-memory catalog to a file at the given path.
// Uses VACUUM INTO which produces a clean, compact copy in a single
// operation.
func (c *Catalog) SaveToDisk(path string) error {
	_, err := c.db.Exec("VACUUM INTO ?", path)
	if err != nil {
		return fmt.Errorf("saving catalog to %s: %w", path, err)
	}
	slog.Info("catalog saved to disk", "path", path)
	return nil
}

// LoadFromDisk merges certificates from an on-disk catalog into the
// in-memory catalog. The file is read once and then detached.
func (c *Catalog) LoadFromDisk(path string) error {
	_, err := c.db.Exec("ATTACH DATABASE ? AS diskdb", path)
	if err != nil {
		return fmt.Errorf("attaching database %s: %w", path, err)
	}
	defer func() {
		if _, detachErr := c.db.Exec("DETACH DATABASE diskdb"); detachErr != nil {
			slog.Warn("detaching database", "path", path, "error", detachErr)
		}
	}()

	_, err = c.db.Exec("INSERT OR IGNORE INTO certificates SELECT * FROM diskdb.certificates")
	if err != nil {
		return fmt.Errorf("loading certificates from %s: %w", path, err)
	}

	slog.Info("catalog loaded from disk", "path", path)
	return nil
}

func (row catalogRow) toRecord() CatalogRecord {
	var sans []string
	if len(row.SANsJSON) > 0 {
		if err := json.Unmarshal(row.SANsJSON, &sans); err != nil {
			slog.Debug("unparseable SANs column", "fingerprint", row.Fingerprint, "error", err)
		}
	}
	return CatalogRecord{
		Fingerprint: row.Fingerprint,
		SubjectCN:   row.SubjectCN.String,
		CertType:    row.CertType,
		KeyType:     row.KeyType,
		NotBefore:   row.NotBefore,
		NotAfter:    row.Expiry,
		SANs:        sans,
		DER:         row.DER,
		Source:      row.Source,
		ImportedAt:  row.ImportedAt,
	}
}
