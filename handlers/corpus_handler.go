package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"nyayasahaya-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// DocumentIndexer indexes a stored corpus document
type DocumentIndexer interface {
	IngestDocument(ctx context.Context, path string) (int, error)
}

// ChunkRemover drops the indexed chunks of a corpus document
type ChunkRemover interface {
	DeleteByDocument(ctx context.Context, sourceDocument string) (int64, error)
}

// CorpusHandler handles HTTP requests for statute corpus documents
type CorpusHandler struct {
	storage     storage.Storage
	indexer     DocumentIndexer
	chunks      ChunkRemover
	logger      *zap.Logger
	maxFileSize int64
	allowedExts map[string]bool
}

// NewCorpusHandler creates a new corpus handler. indexer may be nil,
// in which case uploads wait for the next index build.
func NewCorpusHandler(storage storage.Storage, indexer DocumentIndexer, chunks ChunkRemover, logger *zap.Logger) *CorpusHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CorpusHandler{
		storage:     storage,
		indexer:     indexer,
		chunks:      chunks,
		logger:      logger.With(zap.String("component", "corpus_handler")),
		maxFileSize: 10 * 1024 * 1024, // 10MB
		allowedExts: map[string]bool{
			".txt": true,
		},
	}
}

// UploadDocument handles POST /api/corpus
func (h *CorpusHandler) UploadDocument(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_FILE",
				"message": "File is required",
			},
		})
		return
	}

	if fileHeader.Size > h.maxFileSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FILE_TOO_LARGE",
				"message": fmt.Sprintf("File size exceeds maximum of %d bytes", h.maxFileSize),
			},
		})
		return
	}

	if !h.allowedExts[strings.ToLower(filepath.Ext(fileHeader.Filename))] {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_FILE_TYPE",
				"message": "File type not allowed. Allowed types: TXT",
			},
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("failed to open upload", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FILE_OPEN_ERROR",
				"message": msgInternalError,
			},
		})
		return
	}
	defer file.Close()

	storagePath, err := h.storage.Upload(c.Request.Context(), uuid.New(), fileHeader.Filename, file)
	if err != nil {
		h.logger.Error("failed to store corpus document", zap.String("filename", fileHeader.Filename), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPLOAD_FAILED",
				"message": msgInternalError,
			},
		})
		return
	}

	data := gin.H{
		"path":     storagePath,
		"filename": fileHeader.Filename,
		"size":     fileHeader.Size,
		"indexed":  false,
	}

	if h.indexer != nil {
		chunks, err := h.indexer.IngestDocument(c.Request.Context(), storagePath)
		if err != nil {
			// The document stays in storage and is picked up by the next index build
			h.logger.Error("failed to index corpus document", zap.String("path", storagePath), zap.Error(err))
		} else {
			data["indexed"] = true
			data["chunks"] = chunks
		}
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    data,
	})
}

// ListDocuments handles GET /api/corpus
func (h *CorpusHandler) ListDocuments(c *gin.Context) {
	paths, err := h.storage.List(c.Request.Context(), c.Query("prefix"))
	if err != nil {
		h.logger.Error("failed to list corpus", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "LIST_FAILED",
				"message": msgInternalError,
			},
		})
		return
	}

	documents := make([]gin.H, 0, len(paths))
	for _, p := range paths {
		documents = append(documents, gin.H{
			"path": p,
			"name": storage.DocumentName(p),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    documents,
	})
}

// DeleteDocument handles DELETE /api/corpus/*path
func (h *CorpusHandler) DeleteDocument(c *gin.Context) {
	storagePath, err := storage.CleanPath(c.Param("path"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_PATH",
				"message": "Invalid document path",
			},
		})
		return
	}

	var removed int64
	if h.chunks != nil {
		// Unindex first so a failed storage delete never leaves dangling chunks
		removed, err = h.chunks.DeleteByDocument(c.Request.Context(), storagePath)
		if err != nil {
			h.logger.Error("failed to remove indexed chunks", zap.String("path", storagePath), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UNINDEX_FAILED",
					"message": msgInternalError,
				},
			})
			return
		}
	}

	if err := h.storage.Delete(c.Request.Context(), storagePath); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NOT_FOUND",
					"message": "Document not found",
				},
			})
			return
		}
		h.logger.Error("failed to delete corpus document", zap.String("path", storagePath), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DELETE_FAILED",
				"message": msgInternalError,
			},
		})
		return
	}

	h.logger.Info("deleted corpus document", zap.String("path", storagePath), zap.Int64("chunks_removed", removed))
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"path":           storagePath,
			"chunks_removed": removed,
		},
	})
}

// RequireAdminToken rejects requests whose bearer token does not match the bcrypt hash
func RequireAdminToken(tokenHash string) gin.HandlerFunc {
	hash := []byte(tokenHash)
	return func(c *gin.Context) {
		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || token == "" || bcrypt.CompareHashAndPassword(hash, []byte(token)) != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "Invalid or missing admin token",
				},
			})
			return
		}
		c.Next()
	}
}
