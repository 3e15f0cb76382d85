package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ftenafmar/PCLCrypto/internal/domain/keys"
	"github.com/ftenafmar/PCLCrypto/internal/infrastructure/codec"
	"github.com/ftenafmar/PCLCrypto/internal/infrastructure/platform"
	"github.com/ftenafmar/PCLCrypto/internal/pkg/logger"
)

// KeyCommandHandler encapsulates logic for handling key operations via CLI.
type KeyCommandHandler struct {
	registry *codec.Registry
	store    keys.PlatformKeyStore
	logger   logger.Logger
}

// NewKeyCommandHandler initializes a new KeyCommandHandler with logging, the
// codec registry and the platform key store.
func NewKeyCommandHandler() (*KeyCommandHandler, error) {
	loggerInstance, err := setupLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to setup logger: %w", err)
	}

	store, err := platform.NewSoftwareKeyStore(loggerInstance)
	if err != nil {
		return nil, fmt.Errorf("failed to create platform key store: %w", err)
	}

	return &KeyCommandHandler{
		registry: codec.NewRegistry(),
		store:    store,
		logger:   loggerInstance,
	}, nil
}

// GenerateKeyCmd generates an RSA key pair and persists both halves in a
// selected directory.
func (commandHandler *KeyCommandHandler) GenerateKeyCmd(cmd *cobra.Command, _ []string) {
	keySize, err := cmd.Flags().GetInt("key-size")
	if err != nil {
		commandHandler.logger.Error("invalid key-size flag: ", err)
		return
	}
	keyDir, err := cmd.Flags().GetString("key-dir")
	if err != nil {
		commandHandler.logger.Error("invalid key-dir flag: ", err)
		return
	}

	handle, err := commandHandler.store.GenerateKeyPair(context.Background(), keySize)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}
	defer func() {
		if err := handle.Close(); err != nil {
			commandHandler.logger.Warn("handle cleanup: ", err)
		}
	}()

	params, err := handle.Export(true)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	uniqueID := uuid.New()

	privateBlob, err := commandHandler.encode(params, keys.FormatPkcs8, true)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}
	privateKeyFilePath := fmt.Sprintf("%s/%s-private-key.pem", keyDir, uniqueID.String())
	if err := writeKeyBlob(privateKeyFilePath, privateBlob, keys.FormatPkcs8, true); err != nil {
		commandHandler.logger.Error(err)
		return
	}

	publicBlob, err := commandHandler.encode(params, keys.FormatSubjectPublicKeyInfo, false)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}
	publicKeyFilePath := fmt.Sprintf("%s/%s-public-key.pem", keyDir, uniqueID.String())
	if err := writeKeyBlob(publicKeyFilePath, publicBlob, keys.FormatSubjectPublicKeyInfo, false); err != nil {
		commandHandler.logger.Error(err)
		return
	}

	commandHandler.logger.Info("Generated key pair at ", privateKeyFilePath, " and ", publicKeyFilePath)
}

// ConvertKeyCmd re-encodes a key file from one blob format into another.
func (commandHandler *KeyCommandHandler) ConvertKeyCmd(cmd *cobra.Command, _ []string) {
	inputFile, err := cmd.Flags().GetString("input-file")
	if err != nil {
		commandHandler.logger.Error("invalid input-file flag: ", err)
		return
	}
	outputFile, err := cmd.Flags().GetString("output-file")
	if err != nil {
		commandHandler.logger.Error("invalid output-file flag: ", err)
		return
	}
	fromName, err := cmd.Flags().GetString("from")
	if err != nil {
		commandHandler.logger.Error("invalid from flag: ", err)
		return
	}
	toName, err := cmd.Flags().GetString("to")
	if err != nil {
		commandHandler.logger.Error("invalid to flag: ", err)
		return
	}
	private, err := cmd.Flags().GetBool("private")
	if err != nil {
		commandHandler.logger.Error("invalid private flag: ", err)
		return
	}

	params, _, err := commandHandler.decodeFile(inputFile, fromName, private)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	toFormat, err := keys.ParseBlobFormat(toName)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	completed, err := keys.Complete(*params)
	if err != nil {
		commandHandler.logger.Error("failed to complete key material: ", err)
		return
	}

	blob, err := commandHandler.encode(completed, toFormat, private)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	if err := writeKeyBlob(outputFile, blob, toFormat, private); err != nil {
		commandHandler.logger.Error(err)
		return
	}

	commandHandler.logger.Info("Converted ", fromName, " key to ", toName, " at ", outputFile)
}

// InspectKeyCmd prints the decoded fields of a key file.
func (commandHandler *KeyCommandHandler) InspectKeyCmd(cmd *cobra.Command, _ []string) {
	inputFile, err := cmd.Flags().GetString("input-file")
	if err != nil {
		commandHandler.logger.Error("invalid input-file flag: ", err)
		return
	}
	fromName, err := cmd.Flags().GetString("format")
	if err != nil {
		commandHandler.logger.Error("invalid format flag: ", err)
		return
	}
	private, err := cmd.Flags().GetBool("private")
	if err != nil {
		commandHandler.logger.Error("invalid private flag: ", err)
		return
	}

	params, format, err := commandHandler.decodeFile(inputFile, fromName, private)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	kind := "public key"
	if params.HasFullPrivateKeyData() {
		kind = "private key (CRT)"
	} else if params.HasPrivateKey() {
		kind = "private key"
	}

	commandHandler.logger.Info("Format: ", format)
	commandHandler.logger.Info("Kind: ", kind)
	commandHandler.logger.Info("Modulus: ", params.ModulusBitLength(), " bit")
	commandHandler.logger.Info("Public exponent: ", fmt.Sprintf("%x", params.PublicExponent))
	commandHandler.logger.Info("Legacy-compatible as encoded: ", codec.IsCapiCompatible(params))
}

// decodeFile reads and decodes a key file in the declared format.
func (commandHandler *KeyCommandHandler) decodeFile(path, formatName string, private bool) (*keys.Parameters, keys.BlobFormat, error) {
	format, err := keys.ParseBlobFormat(formatName)
	if err != nil {
		return nil, format, err
	}

	c, err := commandHandler.registry.ForFormat(format)
	if err != nil {
		return nil, format, err
	}

	blob, err := readKeyBlob(path)
	if err != nil {
		return nil, format, err
	}

	var params keys.Parameters
	if private {
		params, err = c.DecodePrivate(blob)
	} else {
		params, err = c.DecodePublic(blob)
	}
	if err != nil {
		return nil, format, fmt.Errorf("failed to decode %s key: %w", format, err)
	}
	return &params, format, nil
}

// encode serializes a parameter set into the requested format, running the
// legacy length negotiation first when the target is the CAPI blob.
func (commandHandler *KeyCommandHandler) encode(params keys.Parameters, format keys.BlobFormat, private bool) ([]byte, error) {
	c, err := commandHandler.registry.ForFormat(format)
	if err != nil {
		return nil, err
	}

	if format == keys.FormatCapi {
		params, err = codec.NegotiateCapi(&params)
		if err != nil {
			return nil, fmt.Errorf("legacy format negotiation failed: %w", err)
		}
	}

	if private {
		return c.EncodePrivate(params)
	}
	return c.EncodePublic(params)
}

// InitKeyCommands registers key-related commands
func InitKeyCommands(rootCmd *cobra.Command) error {
	handler, err := NewKeyCommandHandler()
	if err != nil {
		return fmt.Errorf("failed to create key command handler %w", err)
	}

	var generateKeyCmd = &cobra.Command{
		Use:   "generate-key",
		Short: "Generate an RSA key pair",
		Run:   handler.GenerateKeyCmd,
	}
	generateKeyCmd.Flags().IntP("key-size", "", 2048, "RSA key size in bits")
	generateKeyCmd.Flags().StringP("key-dir", "", "", "Directory to store the key files")
	rootCmd.AddCommand(generateKeyCmd)

	var convertKeyCmd = &cobra.Command{
		Use:   "convert-key",
		Short: "Convert a key file between blob formats",
		Run:   handler.ConvertKeyCmd,
	}
	convertKeyCmd.Flags().StringP("input-file", "", "", "Path to the input key file")
	convertKeyCmd.Flags().StringP("output-file", "", "", "Path to the converted output file")
	convertKeyCmd.Flags().StringP("from", "", "", "Input blob format (pkcs1, pkcs8, spki, capi)")
	convertKeyCmd.Flags().StringP("to", "", "", "Output blob format (pkcs1, pkcs8, spki, capi)")
	convertKeyCmd.Flags().BoolP("private", "", false, "Treat the key as a private key")
	rootCmd.AddCommand(convertKeyCmd)

	var inspectKeyCmd = &cobra.Command{
		Use:   "inspect-key",
		Short: "Print the decoded fields of a key file",
		Run:   handler.InspectKeyCmd,
	}
	inspectKeyCmd.Flags().StringP("input-file", "", "", "Path to the key file")
	inspectKeyCmd.Flags().StringP("format", "", "", "Blob format (pkcs1, pkcs8, spki, capi)")
	inspectKeyCmd.Flags().BoolP("private", "", false, "Treat the key as a private key")
	rootCmd.AddCommand(inspectKeyCmd)

	return nil
}
