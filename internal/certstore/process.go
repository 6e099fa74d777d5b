package certstore

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/sensiblebit/certbridge"
)

// ImportInput holds parameters for ImportData.
type ImportInput struct {
	Data      []byte   // raw file content
	Path      string   // path for logging and extension detection
	Passwords []string // passwords to try for encrypted containers
	Store     *NativeStore
	Catalog   *Catalog
}

// ImportStats reports what one import produced.
type ImportStats struct {
	Converted int // certificates converted to platform handles
	Added     int // new catalog rows (duplicates excluded)
}

// ImportData parses all certificates from one file's content, converts
// them through the bridge into the native store, and catalogs the
// results. The conversion is all-or-nothing per file: if any
// certificate in the file fails, nothing from the file is cataloged
// and no platform handle stays live.
func ImportData(input ImportInput) (ImportStats, error) {
	if len(input.Data) == 0 {
		return ImportStats{}, nil
	}

	chain, err := parseHandles(input.Data, input.Path, input.Passwords)
	if err != nil {
		return ImportStats{}, err
	}
	return ImportChain(chain, input.Path, input.Store, input.Catalog)
}

// ImportChain converts a chain of foreign handles into the native
// store and catalogs each resulting certificate under the given
// source label. Platform handles are released once cataloged; the
// catalog keeps its own copy of the encoding.
func ImportChain(chain certbridge.Chain, source string, store *NativeStore, catalog *Catalog) (ImportStats, error) {
	converted, err := certbridge.ConvertChain(store, chain)
	if err != nil {
		return ImportStats{}, fmt.Errorf("converting %s: %w", source, err)
	}

	stats := ImportStats{Converted: len(converted)}
	for _, pc := range converted {
		nc, ok := pc.(*NativeCertificate)
		if !ok {
			pc.Release()
			return stats, fmt.Errorf("unexpected platform certificate type %T", pc)
		}
		added, err := catalog.Add(nc.Certificate(), source)
		if err != nil {
			slog.Warn("cataloging certificate", "source", source, "error", err)
		} else if added {
			stats.Added++
		}
		pc.Release()
	}
	return stats, nil
}

// parseHandles extracts foreign certificate handles from file content,
// detecting the container format. PEM is detected by content; binary
// formats are tried in priority order, gated on recognized extensions
// so arbitrary binary files are not fed to ASN.1 parsers.
func parseHandles(data []byte, path string, passwords []string) (certbridge.Chain, error) {
	if certbridge.IsPEM(data) {
		slog.Debug("processing as PEM format", "path", path)
		return certbridge.HandlesFromPEM(data)
	}

	if !HasBinaryExtension(path) {
		return nil, fmt.Errorf("%s: unrecognized file type", path)
	}

	if HasJKSExtension(path) {
		slog.Debug("processing as JKS format", "path", path)
		return handlesFromJKSWithPasswords(data, passwords)
	}

	slog.Debug("processing as binary crypto format", "path", path)
	if chain, err := certbridge.ParseHandlesAny(data); err == nil {
		return chain, nil
	}
	if chain, err := certbridge.HandlesFromPKCS12(data, passwords); err == nil {
		return chain, nil
	}
	if chain, err := handlesFromJKSWithPasswords(data, passwords); err == nil {
		return chain, nil
	}
	return nil, fmt.Errorf("%s: no certificates found in any known format", path)
}

// handlesFromJKSWithPasswords tries each password against a JKS store.
func handlesFromJKSWithPasswords(data []byte, passwords []string) (certbridge.Chain, error) {
	var lastErr error
	for _, password := range passwords {
		chain, err := certbridge.HandlesFromJKS(data, password)
		if err == nil {
			return chain, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errors.New("no passwords to try")
	}
	return nil, fmt.Errorf("loading JKS with any provided password: %w", lastErr)
}
