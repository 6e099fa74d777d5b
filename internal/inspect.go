package internal

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sensiblebit/certbridge"
	"github.com/sensiblebit/certbridge/internal/certstore"
)

// InspectResult holds the inspection details for one certificate found
// in a file, including whether it survives conversion to the native
// platform.
type InspectResult struct {
	Subject      string `json:"subject"`
	CertType     string `json:"cert_type"`
	NotBefore    string `json:"not_before"`
	NotAfter     string `json:"not_after"`
	SHA256       string `json:"sha256_fingerprint"`
	Converts     bool   `json:"converts"`
	ConvertError string `json:"convert_error,omitempty"`
}

// InspectFile reads a file, parses every certificate the foreign
// parser finds, and trial-converts each one through a throwaway
// native store. Nothing is cataloged.
func InspectFile(path string, passwords []string) ([]InspectResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var chain certbridge.Chain
	if certbridge.IsPEM(data) {
		chain, err = certbridge.HandlesFromPEM(data)
	} else {
		chain, err = certbridge.ParseHandlesAny(data)
		if err != nil {
			if p12Chain, p12Err := certbridge.HandlesFromPKCS12(data, passwords); p12Err == nil {
				chain, err = p12Chain, nil
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("no certificates found in %s: %w", path, err)
	}

	store := certstore.NewNativeStore()
	results := make([]InspectResult, 0, len(chain))
	for _, h := range chain {
		result := InspectResult{
			Subject:   h.SubjectCN(),
			CertType:  h.Kind(),
			NotBefore: h.NotBefore().Format(time.RFC3339),
			NotAfter:  h.NotAfter().Format(time.RFC3339),
			SHA256:    h.Fingerprint(),
		}
		pc, convErr := certbridge.Convert(store, h)
		if convErr != nil {
			result.ConvertError = convErr.Error()
		} else {
			result.Converts = true
			pc.Release()
		}
		results = append(results, result)
	}
	return results, nil
}

// FormatInspectResults renders inspection results as text or JSON.
func FormatInspectResults(results []InspectResult, format string) (string, error) {
	switch format {
	case "json":
		out, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return "", fmt.Errorf("encoding results: %w", err)
		}
		return string(out) + "\n", nil
	case "text":
		var b strings.Builder
		for i, r := range results {
			if i > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "Certificate: %s\n", r.Subject)
			fmt.Fprintf(&b, "  Type:        %s\n", r.CertType)
			fmt.Fprintf(&b, "  Not Before:  %s\n", r.NotBefore)
			fmt.Fprintf(&b, "  Not After:   %s\n", r.NotAfter)
			fmt.Fprintf(&b, "  SHA-256:     %s\n", r.SHA256)
			if r.Converts {
				b.WriteString("  Converts:    yes\n")
			} else {
				fmt.Fprintf(&b, "  Converts:    no (%s)\n", r.ConvertError)
			}
		}
		return b.String(), nil
	default:
		return "", fmt.Errorf("unknown format %q (want text or json)", format)
	}
}
