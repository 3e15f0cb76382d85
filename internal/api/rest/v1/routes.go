package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/ftenafmar/PCLCrypto/internal/domain/keys"
)

// SetupRoutes sets up all the API routes for version 1.
func SetupRoutes(r *gin.Engine,
	importService keys.KeyImportService,
	exportService keys.KeyExportService,
	metadataService keys.KeyMetadataService) {

	v1 := r.Group(BasePath) // lookup in version file

	keyHandler := NewKeyHandler(importService, exportService, metadataService)
	v1.POST("/keys", keyHandler.ImportKey)
	v1.POST("/keys/generate", keyHandler.GenerateKey)
	v1.GET("/keys", keyHandler.ListMetadata)
	v1.GET("/keys/:id", keyHandler.GetMetadataByID)
	v1.GET("/keys/:id/export", keyHandler.ExportByID)
	v1.DELETE("/keys/:id", keyHandler.DeleteByID)
}
