package v1

import (
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ftenafmar/PCLCrypto/internal/domain/keys"
	"github.com/ftenafmar/PCLCrypto/internal/infrastructure/codec"
)

// KeyHandler defines the interface for handling key-related operations
type KeyHandler interface {
	ImportKey(ctx *gin.Context)
	GenerateKey(ctx *gin.Context)
	ListMetadata(ctx *gin.Context)
	GetMetadataByID(ctx *gin.Context)
	ExportByID(ctx *gin.Context)
	DeleteByID(ctx *gin.Context)
}

// keyHandler struct holds the services
type keyHandler struct {
	importService   keys.KeyImportService
	exportService   keys.KeyExportService
	metadataService keys.KeyMetadataService
}

// NewKeyHandler creates a new KeyHandler
func NewKeyHandler(importService keys.KeyImportService, exportService keys.KeyExportService, metadataService keys.KeyMetadataService) KeyHandler {
	return &keyHandler{
		importService:   importService,
		exportService:   exportService,
		metadataService: metadataService,
	}
}

// ImportKey handles the POST request to import an RSA key blob
// @Summary Import an RSA key blob
// @Description Decode a base64 key blob in the declared format and register it with the platform key store.
// @Tags Key
// @Accept json
// @Produce json
// @Param requestBody body ImportKeyRequest true "Key blob and format"
// @Success 201 {object} KeyMetaResponse
// @Failure 400 {object} ErrorResponse
// @Router /keys [post]
func (handler *keyHandler) ImportKey(ctx *gin.Context) {
	var request ImportKeyRequest

	if err := ctx.ShouldBindJSON(&request); err != nil {
		var errorResponse ErrorResponse
		errorResponse.Message = fmt.Sprintf("invalid key data: %v", err.Error())
		ctx.JSON(http.StatusBadRequest, errorResponse)
		return
	}

	if err := request.Validate(); err != nil {
		var errorResponse ErrorResponse
		errorResponse.Message = fmt.Sprintf("validation failed: %v", err.Error())
		ctx.JSON(http.StatusBadRequest, errorResponse)
		return
	}

	blob, err := base64.StdEncoding.DecodeString(request.Blob)
	if err != nil {
		var errorResponse ErrorResponse
		errorResponse.Message = fmt.Sprintf("invalid base64 blob: %v", err.Error())
		ctx.JSON(http.StatusBadRequest, errorResponse)
		return
	}

	format, err := keys.ParseBlobFormat(request.Format)
	if err != nil {
		var errorResponse ErrorResponse
		errorResponse.Message = fmt.Sprintf("invalid format: %v", err.Error())
		ctx.JSON(http.StatusBadRequest, errorResponse)
		return
	}

	var meta *keys.KeyMeta
	if request.Type == keys.KeyTypePrivate {
		meta, err = handler.importService.ImportPrivate(ctx, blob, format)
	} else {
		meta, err = handler.importService.ImportPublic(ctx, blob, format)
	}
	if err != nil {
		var errorResponse ErrorResponse
		errorResponse.Message = fmt.Sprintf("error importing key: %v", err.Error())
		ctx.JSON(http.StatusBadRequest, errorResponse)
		return
	}

	ctx.JSON(http.StatusCreated, newKeyMetaResponse(meta))
}

// GenerateKey handles the POST request to generate a fresh RSA key pair
// @Summary Generate an RSA key pair
// @Description Generate a key pair of the requested size through the platform key store.
// @Tags Key
// @Accept json
// @Produce json
// @Param requestBody body GenerateKeyRequest true "Key size in bits"
// @Success 201 {object} KeyMetaResponse
// @Failure 400 {object} ErrorResponse
// @Router /keys/generate [post]
func (handler *keyHandler) GenerateKey(ctx *gin.Context) {
	var request GenerateKeyRequest

	if err := ctx.ShouldBindJSON(&request); err != nil {
		var errorResponse ErrorResponse
		errorResponse.Message = fmt.Sprintf("invalid key data: %v", err.Error())
		ctx.JSON(http.StatusBadRequest, errorResponse)
		return
	}

	if err := request.Validate(); err != nil {
		var errorResponse ErrorResponse
		errorResponse.Message = fmt.Sprintf("validation failed: %v", err.Error())
		ctx.JSON(http.StatusBadRequest, errorResponse)
		return
	}

	meta, err := handler.importService.CreateKeyPair(ctx, request.KeySize)
	if err != nil {
		var errorResponse ErrorResponse
		errorResponse.Message = fmt.Sprintf("error generating key pair: %v", err.Error())
		ctx.JSON(http.StatusBadRequest, errorResponse)
		return
	}

	ctx.JSON(http.StatusCreated, newKeyMetaResponse(meta))
}

// ListMetadata handles the GET request to list key metadata
// @Summary List key metadata
// @Description Fetch the metadata of every imported or generated key.
// @Tags Key
// @Produce json
// @Success 200 {array} KeyMetaResponse
// @Failure 404 {object} ErrorResponse
// @Router /keys [get]
func (handler *keyHandler) ListMetadata(ctx *gin.Context) {
	metas, err := handler.metadataService.List(ctx)
	if err != nil {
		var errorResponse ErrorResponse
		errorResponse.Message = fmt.Sprintf("list query failed: %v", err.Error())
		ctx.JSON(http.StatusNotFound, errorResponse)
		return
	}

	var listResponse = []KeyMetaResponse{}
	for _, meta := range metas {
		listResponse = append(listResponse, newKeyMetaResponse(meta))
	}

	ctx.JSON(http.StatusOK, listResponse)
}

// GetMetadataByID handles the GET request to retrieve key metadata by ID
// @Summary Retrieve key metadata by ID
// @Description Fetch the metadata of a key by ID, including its size, source format and capability.
// @Tags Key
// @Produce json
// @Param id path string true "Key ID"
// @Success 200 {object} KeyMetaResponse
// @Failure 404 {object} ErrorResponse
// @Router /keys/{id} [get]
func (handler *keyHandler) GetMetadataByID(ctx *gin.Context) {
	keyID := ctx.Param("id")

	meta, err := handler.metadataService.GetByID(ctx, keyID)
	if err != nil {
		var errorResponse ErrorResponse
		errorResponse.Message = fmt.Sprintf("key with id %s not found", keyID)
		ctx.JSON(http.StatusNotFound, errorResponse)
		return
	}

	ctx.JSON(http.StatusOK, newKeyMetaResponse(meta))
}

// ExportByID handles the GET request to export the public half of a key
// @Summary Export the public half of a key by ID
// @Description Re-encode the public key material into the requested format. Private halves never leave over REST.
// @Tags Key
// @Produce application/x-pem-file
// @Param id path string true "Key ID"
// @Param format query string false "Blob format (pkcs1, spki, capi); defaults to spki"
// @Success 200 {file} file "Encoded public key"
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /keys/{id}/export [get]
func (handler *keyHandler) ExportByID(ctx *gin.Context) {
	keyID := ctx.Param("id")

	if _, err := handler.metadataService.GetByID(ctx, keyID); err != nil {
		ctx.JSON(http.StatusNotFound, ErrorResponse{
			Message: fmt.Sprintf("key with id %s not found", keyID),
		})
		return
	}

	formatName := ctx.DefaultQuery("format", string(keys.FormatSubjectPublicKeyInfo))
	format, err := keys.ParseBlobFormat(formatName)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Message: fmt.Sprintf("invalid format: %v", err.Error()),
		})
		return
	}

	blob, err := handler.exportService.Export(ctx, keyID, format, false)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Message: fmt.Sprintf("could not export key with id %s: %v", keyID, err.Error()),
		})
		return
	}

	// The legacy blob is raw binary; the DER formats go out PEM-armored.
	if format == keys.FormatCapi {
		filename := fmt.Sprintf("%s-public-key.blob", keyID)
		ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
		ctx.Data(http.StatusOK, "application/octet-stream", blob)
		return
	}

	armored, err := codec.EncodePem(blob, format, false)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Message: fmt.Sprintf("could not armor key with id %s: %v", keyID, err.Error()),
		})
		return
	}

	filename := fmt.Sprintf("%s-public-key.pem", keyID)
	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	ctx.Data(http.StatusOK, "application/x-pem-file", armored)
}

// DeleteByID handles the DELETE request to remove a key
// @Summary Delete a key by ID
// @Description Close the key's platform handle and remove its metadata.
// @Tags Key
// @Produce json
// @Param id path string true "Key ID"
// @Success 204 "No Content"
// @Failure 404 {object} ErrorResponse
// @Router /keys/{id} [delete]
func (handler *keyHandler) DeleteByID(ctx *gin.Context) {
	keyID := ctx.Param("id")

	if err := handler.metadataService.DeleteByID(ctx, keyID); err != nil {
		var errorResponse ErrorResponse
		errorResponse.Message = fmt.Sprintf("key with id %s not found", keyID)
		ctx.JSON(http.StatusNotFound, errorResponse)
		return
	}

	ctx.Status(http.StatusNoContent)
}
