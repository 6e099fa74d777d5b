package main

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sensiblebit/certbridge"
	"github.com/sensiblebit/certbridge/internal"
	"github.com/sensiblebit/certbridge/internal/certstore"
)

var (
	importSeedMozilla bool
	importConfigPath  string
	importProfileName string
)

var importCmd = &cobra.Command{
	Use:   "import [<path>...]",
	Short: "Convert and catalog certificates",
	Long: "Convert certificates from files or directories into the platform store and catalog them. " +
		"Each file is converted all-or-nothing; files that fail are logged and skipped. Use - to read from stdin.",
	Example: `  certbridge import certs/ --db catalog.db
  certbridge import bundle.p7b server.pfx -p secret
  certbridge import --seed-mozilla --db catalog.db
  certbridge import --config profiles.yaml --profile corp`,
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolVar(&importSeedMozilla, "seed-mozilla", false, "Also import the embedded Mozilla CA bundle")
	importCmd.Flags().StringVarP(&importConfigPath, "config", "c", "", "Path to import profiles YAML")
	importCmd.Flags().StringVar(&importProfileName, "profile", "", "Named profile from the config file to run")

	registerCompletion(importCmd, completionInput{
		flagName:     "config",
		completeFunc: fileCompletion,
	})
}

func runImport(cmd *cobra.Command, args []string) error {
	passwords, err := internal.ProcessPasswords(passwordList, passwordFile)
	if err != nil {
		return fmt.Errorf("loading passwords: %w", err)
	}

	sources := args
	seedMozilla := importSeedMozilla

	if importProfileName != "" {
		if importConfigPath == "" {
			return fmt.Errorf("--profile requires --config")
		}
		profiles, err := internal.LoadImportProfiles(importConfigPath)
		if err != nil {
			return fmt.Errorf("loading import profiles: %w", err)
		}
		profile, err := internal.FindProfile(profiles, importProfileName)
		if err != nil {
			return err
		}
		sources = append(sources, profile.Sources...)
		passwords = certbridge.DeduplicatePasswords(append(profile.Passwords, passwords...))
		seedMozilla = seedMozilla || profile.SeedMozilla
	}

	if len(sources) == 0 && !seedMozilla {
		return fmt.Errorf("nothing to import: give paths, --seed-mozilla, or a profile")
	}

	catalog, err := openCatalog()
	if err != nil {
		return err
	}
	defer catalog.Close()

	store := certstore.NewNativeStore()
	var total certstore.ImportStats

	if seedMozilla {
		chain, err := certbridge.MozillaHandles()
		if err != nil {
			return fmt.Errorf("loading Mozilla bundle: %w", err)
		}
		stats, err := certstore.ImportChain(chain, "mozilla-bundle", store, catalog)
		if err != nil {
			return fmt.Errorf("importing Mozilla bundle: %w", err)
		}
		total.Converted += stats.Converted
		total.Added += stats.Added
	}

	for _, source := range sources {
		stats, err := importSource(source, passwords, store, catalog)
		if err != nil {
			slog.Warn("skipping source", "path", source, "error", err)
			continue
		}
		total.Converted += stats.Converted
		total.Added += stats.Added
	}

	if dbPath != "" {
		if err := saveCatalog(catalog); err != nil {
			return err
		}
	}

	summary, err := catalog.Summary()
	if err != nil {
		return fmt.Errorf("generating summary: %w", err)
	}
	fmt.Printf("Converted %d certificates, %d new\n", total.Converted, total.Added)
	fmt.Printf("Catalog: %d roots, %d intermediates, %d leaves", summary.Roots, summary.Intermediates, summary.Leaves)
	if summary.Expired > 0 {
		fmt.Printf(" (%d expired)", summary.Expired)
	}
	fmt.Println()
	return nil
}

// importSource imports one path: stdin, a single file, or a directory
// walked recursively. Per-file failures inside a directory are logged
// and skipped.
func importSource(source string, passwords []string, store *certstore.NativeStore, catalog *certstore.Catalog) (certstore.ImportStats, error) {
	if source == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return certstore.ImportStats{}, fmt.Errorf("reading stdin: %w", err)
		}
		return certstore.ImportData(certstore.ImportInput{
			Data: data, Path: "-", Passwords: passwords, Store: store, Catalog: catalog,
		})
	}

	info, err := os.Stat(source)
	if err != nil {
		return certstore.ImportStats{}, err
	}
	if !info.IsDir() {
		return importFile(source, passwords, store, catalog)
	}

	var total certstore.ImportStats
	err = filepath.WalkDir(source, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		stats, err := importFile(path, passwords, store, catalog)
		if err != nil {
			slog.Warn("skipping file", "path", path, "error", err)
			return nil
		}
		total.Converted += stats.Converted
		total.Added += stats.Added
		return nil
	})
	if err != nil {
		return total, fmt.Errorf("walking %s: %w", source, err)
	}
	return total, nil
}

func importFile(path string, passwords []string, store *certstore.NativeStore, catalog *certstore.Catalog) (certstore.ImportStats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return certstore.ImportStats{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return certstore.ImportData(certstore.ImportInput{
		Data: data, Path: path, Passwords: passwords, Store: store, Catalog: catalog,
	})
}

// openCatalog creates the in-memory catalog and, when --db names an
// existing file, merges its contents.
func openCatalog() (*certstore.Catalog, error) {
	catalog, err := certstore.NewCatalog()
	if err != nil {
		return nil, fmt.Errorf("initializing catalog: %w", err)
	}
	if dbPath != "" {
		if _, err := os.Stat(dbPath); err == nil {
			if err := catalog.LoadFromDisk(dbPath); err != nil {
				_ = catalog.Close()
				return nil, err
			}
		}
	}
	return catalog, nil
}

// saveCatalog persists the catalog to --db. VACUUM INTO refuses to
// overwrite, so an existing file (already merged in openCatalog) is
// replaced.
func saveCatalog(catalog *certstore.Catalog) error {
	if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("replacing %s: %w", dbPath, err)
	}
	return catalog.SaveToDisk(dbPath)
}
