package main

import (
	"github.com/spf13/cobra"

	"github.com/sensiblebit/certbridge/internal"
)

var (
	logLevel     string
	dbPath       string
	passwordList string
	passwordFile string
)

var rootCmd = &cobra.Command{
	Use:   "certbridge",
	Short: "Certificate conversion bridge",
	Long:  "Convert certificates from OpenSSL-tolerant sources (PEM, DER, PKCS#7, PKCS#12, JKS) into a strict platform certificate store and catalog the results.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetupLogger(logLevel)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Catalog database path (default: in-memory)")
	rootCmd.PersistentFlags().StringVarP(&passwordList, "passwords", "p", "", "Comma-separated passwords for encrypted containers")
	rootCmd.PersistentFlags().StringVar(&passwordFile, "password-file", "", "File containing passwords, one per line")

	registerCompletion(rootCmd, completionInput{
		flagName:     "log-level",
		completeFunc: fixedCompletion("debug", "info", "warn", "error"),
	})

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(exportCmd)
}
