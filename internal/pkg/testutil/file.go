package testutil

import (
	"fmt"
	"os"
)

// CreateTestFile writes a fixture file, typically a key blob for the
// file-based helpers.
func CreateTestFile(fileName string, content []byte) error {
	err := os.WriteFile(fileName, content, 0600)
	if err != nil {
		return fmt.Errorf("failed to create test file: %w", err)
	}
	return nil
}
