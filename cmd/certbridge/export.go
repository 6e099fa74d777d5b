package main

import (
	"encoding/pem"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sensiblebit/certbridge"
)

var (
	exportFormat   string
	exportPassword string
)

var exportCmd = &cobra.Command{
	Use:   "export <out-file>",
	Short: "Export the catalog as a certificate bundle",
	Long:  "Re-encode every cataloged certificate into a PEM bundle, a certs-only PKCS#7, or a JKS truststore.",
	Example: `  certbridge export --db catalog.db bundle.pem
  certbridge export --db catalog.db --format p7b bundle.p7b
  certbridge export --db catalog.db --format jks --jks-password changeit trust.jks`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "pem", "Output format: pem, p7b, or jks")
	exportCmd.Flags().StringVar(&exportPassword, "jks-password", "changeit", "Store password for JKS output")

	registerCompletion(exportCmd, completionInput{
		flagName:     "format",
		completeFunc: fixedCompletion("pem", "p7b", "jks"),
	})
}

func runExport(cmd *cobra.Command, args []string) error {
	if dbPath == "" {
		return fmt.Errorf("--db is required for export")
	}
	catalog, err := openCatalog()
	if err != nil {
		return err
	}
	defer catalog.Close()

	records, err := catalog.All()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("catalog is empty, nothing to export")
	}

	var data []byte
	switch exportFormat {
	case "pem":
		for _, rec := range records {
			data = append(data, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: rec.DER})...)
		}
	case "p7b", "jks":
		chain := make(certbridge.Chain, 0, len(records))
		for _, rec := range records {
			h, err := certbridge.ParseHandle(rec.DER)
			if err != nil {
				return fmt.Errorf("re-parsing cataloged certificate %s: %w", rec.Fingerprint, err)
			}
			chain = append(chain, h)
		}
		if exportFormat == "p7b" {
			data, err = certbridge.EncodeHandlesPKCS7(chain)
		} else {
			data, err = certbridge.EncodeHandlesJKS(chain, exportPassword)
		}
		if err != nil {
			return fmt.Errorf("encoding %s: %w", exportFormat, err)
		}
	default:
		return fmt.Errorf("unknown format %q (want pem, p7b, or jks)", exportFormat)
	}

	if err := os.WriteFile(args[0], data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", args[0], err)
	}
	fmt.Printf("Exported %d certificates to %s\n", len(records), args[0])
	return nil
}
