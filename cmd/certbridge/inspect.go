package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sensiblebit/certbridge/internal"
)

var inspectFormat string

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Show certificates in a file and whether they convert",
	Long:  "Parse a file with the lenient foreign parser, show each certificate found, and trial-convert each one against the platform store without cataloging anything.",
	Example: `  certbridge inspect cert.pem
  certbridge inspect bundle.p7b --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().StringVar(&inspectFormat, "format", "text", "Output format: text or json")

	registerCompletion(inspectCmd, completionInput{
		flagName:     "format",
		completeFunc: fixedCompletion("text", "json"),
	})
}

func runInspect(cmd *cobra.Command, args []string) error {
	passwords, err := internal.ProcessPasswords(passwordList, passwordFile)
	if err != nil {
		return fmt.Errorf("loading passwords: %w", err)
	}

	results, err := internal.InspectFile(args[0], passwords)
	if err != nil {
		return err
	}

	output, err := internal.FormatInspectResults(results, inspectFormat)
	if err != nil {
		return err
	}

	fmt.Print(output)
	return nil
}
