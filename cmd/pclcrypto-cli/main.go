// Package main is the entry point for the pclcrypto-cli application.
// It initializes the root command and registers the key sub-commands
// (generate-key, convert-key, inspect-key), then executes the
// command-line interface.
package main

import (
	"fmt"
	"log"

	commands "github.com/ftenafmar/PCLCrypto/cmd/pclcrypto-cli/internal/commands"

	"github.com/spf13/cobra"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run() error {
	rootCmd := &cobra.Command{
		Use:   "pclcrypto-cli",
		Short: "RSA key blob translation CLI tool",
		Long: `pclcrypto-cli is a command-line tool for translating RSA key material
between wire encodings. It reads and writes PKCS#1, PKCS#8, SubjectPublicKeyInfo
and legacy CAPI key blobs, completes partial parameter sets, and generates fresh
key pairs through the platform key store.`,
	}

	if err := commands.InitKeyCommands(rootCmd); err != nil {
		return fmt.Errorf("failed to initialize commands: %w", err)
	}

	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("command execution failed: %w", err)
	}

	return nil
}
