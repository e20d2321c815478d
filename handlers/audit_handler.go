package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"readily-backend/models"
	"readily-backend/service"
	"readily-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// auditFileStore is the slice of the audit file repository the handler
// needs. Satisfied by *repository.AuditFileRepository.
type auditFileStore interface {
	Create(ctx context.Context, file *models.AuditFile) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.AuditFile, error)
	ListRecent(ctx context.Context, limit int) ([]*models.AuditFile, error)
}

// AuditHandler handles HTTP requests for audit analysis
type AuditHandler struct {
	auditService *service.AuditService
	fileRepo     auditFileStore
	storage      storage.Storage
	maxFileSize  int64
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(auditService *service.AuditService, fileRepo auditFileStore, store storage.Storage) *AuditHandler {
	return &AuditHandler{
		auditService: auditService,
		fileRepo:     fileRepo,
		storage:      store,
		maxFileSize:  20 * 1024 * 1024, // 20MB
	}
}

// UploadAudit handles POST /api/audits/upload. It runs the full analysis
// pipeline on the uploaded questionnaire PDF and returns the compliance
// report. The upload is archived best-effort after a successful analysis.
func (h *AuditHandler) UploadAudit(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_FILE",
				"message": "A PDF file is required",
			},
		})
		return
	}

	if fileHeader.Filename == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_FILE",
				"message": "No file selected",
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

	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".pdf") {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_FILE_TYPE",
				"message": "Only PDF files are accepted",
			},
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FILE_OPEN_ERROR",
				"message": err.Error(),
			},
		})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FILE_READ_ERROR",
				"message": err.Error(),
			},
		})
		return
	}

	report, err := h.auditService.AnalyzePDF(c.Request.Context(), data)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExtractionFailed):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "EXTRACTION_FAILED",
					"message": "Could not extract text from the uploaded PDF",
				},
			})
		case errors.Is(err, service.ErrRetrievalFailed):
			c.JSON(http.StatusBadGateway, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "RETRIEVAL_FAILED",
					"message": "The policy document store is unreachable",
				},
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "ANALYSIS_FAILED",
					"message": err.Error(),
				},
			})
		}
		return
	}

	h.archiveUpload(c, fileHeader.Filename, fileHeader.Size, data)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    report,
	})
}

// archiveUpload keeps a copy of the analyzed questionnaire. Failures are
// logged and never surface to the user: the report already exists.
func (h *AuditHandler) archiveUpload(c *gin.Context, filename string, size int64, data []byte) {
	if h.storage == nil || h.fileRepo == nil {
		return
	}

	fileID := uuid.New()
	storagePath, err := h.storage.Upload(c.Request.Context(), fileID, filename, bytes.NewReader(data))
	if err != nil {
		log.Printf("Warning: failed to archive upload %s: %v", filename, err)
		return
	}

	record := &models.AuditFile{
		ID:          fileID,
		Filename:    filename,
		MimeType:    "application/pdf",
		Size:        size,
		StoragePath: storagePath,
	}
	if err := h.fileRepo.Create(c.Request.Context(), record); err != nil {
		log.Printf("Warning: failed to save archive record for %s: %v", filename, err)
		h.storage.Delete(c.Request.Context(), storagePath)
	}
}

// ListFiles handles GET /api/files, returning the most recently archived
// questionnaires. Accepts an optional limit query parameter (default 20).
func (h *AuditHandler) ListFiles(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_LIMIT",
					"message": "limit must be an integer between 1 and 100",
				},
			})
			return
		}
		limit = parsed
	}

	files, err := h.fileRepo.ListRecent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "LIST_FAILED",
				"message": "Failed to list archived files",
			},
		})
		return
	}
	if files == nil {
		files = []*models.AuditFile{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    files,
	})
}

// GetFile handles GET /api/files/:id, returning an archived questionnaire
func (h *AuditHandler) GetFile(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid file ID format",
			},
		})
		return
	}

	file, err := h.fileRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "File not found",
			},
		})
		return
	}

	reader, err := h.storage.Download(c.Request.Context(), file.StoragePath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DOWNLOAD_FAILED",
				"message": fmt.Sprintf("Failed to download file: %v", err),
			},
		})
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.DataFromReader(http.StatusOK, file.Size, file.MimeType, reader, nil)
}
