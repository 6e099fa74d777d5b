package internal

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/sensiblebit/certbridge"
)

// LoadPasswordsFromFile loads passwords from a file, one password per
// line. Blank lines are skipped.
func LoadPasswordsFromFile(filename string) ([]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var passwords []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if pwd := strings.TrimSpace(scanner.Text()); pwd != "" {
			passwords = append(passwords, pwd)
		}
	}
	return passwords, scanner.Err()
}

// ProcessPasswords merges the default password list with a
// comma-separated flag value and an optional password file, removing
// duplicates while preserving order.
func ProcessPasswords(passwordList, passwordFile string) ([]string, error) {
	var extra []string

	if passwordList != "" {
		for _, pwd := range strings.Split(passwordList, ",") {
			extra = append(extra, strings.TrimSpace(pwd))
		}
	}

	if passwordFile != "" {
		filePasswords, err := LoadPasswordsFromFile(passwordFile)
		if err != nil {
			return nil, fmt.Errorf("loading passwords from file: %w", err)
		}
		extra = append(extra, filePasswords...)
	}

	return certbridge.DeduplicatePasswords(extra), nil
}
