package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ftenafmar/PCLCrypto/internal/domain/keys"
	"github.com/ftenafmar/PCLCrypto/internal/infrastructure/codec"
	"github.com/ftenafmar/PCLCrypto/internal/pkg/config"
	"github.com/ftenafmar/PCLCrypto/internal/pkg/logger"
)

func setupLogger() (logger.Logger, error) {
	settings := &config.LoggerSettings{
		LogLevel: "info",
		LogType:  "console",
		FilePath: "",
	}

	if err := logger.InitLogger(settings); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	loggerInstance, err := logger.GetLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to get logger instance: %w", err)
	}

	return loggerInstance, nil
}

// readKeyBlob loads a key file and strips PEM armor when present.
func readKeyBlob(path string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}
	return codec.DecodePem(data), nil
}

// writeKeyBlob stores an encoded key. DER formats go out PEM-armored; the
// legacy CAPI blob has no PEM convention and is written raw.
func writeKeyBlob(path string, blob []byte, format keys.BlobFormat, private bool) error {
	out := blob
	if format != keys.FormatCapi {
		armored, err := codec.EncodePem(blob, format, private)
		if err != nil {
			return fmt.Errorf("failed to armor key: %w", err)
		}
		out = armored
	}
	if err := os.WriteFile(path, out, 0600); err != nil {
		return fmt.Errorf("failed to write key file: %w", err)
	}
	return nil
}
