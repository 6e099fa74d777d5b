package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var listType string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List cataloged certificates",
	Long:  "Print the certificates in the catalog, newest import first.",
	Example: `  certbridge list --db catalog.db
  certbridge list --db catalog.db --type root`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVarP(&listType, "type", "t", "", "Only show this certificate type: root, intermediate, or leaf")

	registerCompletion(listCmd, completionInput{
		flagName:     "type",
		completeFunc: fixedCompletion("root", "intermediate", "leaf"),
	})
}

func runList(cmd *cobra.Command, args []string) error {
	if dbPath == "" {
		return fmt.Errorf("--db is required for list")
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

	// Aligned columns on a terminal, plain tab-separated when piped.
	var out *tabwriter.Writer
	if isatty.IsTerminal(os.Stdout.Fd()) {
		out = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	} else {
		out = tabwriter.NewWriter(os.Stdout, 0, 0, 1, '\t', 0)
	}

	fmt.Fprintln(out, "SUBJECT\tTYPE\tKEY\tEXPIRES\tFINGERPRINT\tSOURCE")
	for _, rec := range records {
		if listType != "" && rec.CertType != listType {
			continue
		}
		subject := rec.SubjectCN
		if subject == "" {
			subject = "-"
		}
		fmt.Fprintf(out, "%s\t%s\t%s\t%s\t%s\t%s\n",
			subject,
			rec.CertType,
			rec.KeyType,
			rec.NotAfter.Format(time.DateOnly),
			rec.Fingerprint[:16],
			rec.Source)
	}
	return out.Flush()
}
