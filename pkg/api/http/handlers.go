package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/aescanero/dagoc/internal/application/graphspec"
	"github.com/aescanero/dagoc/pkg/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// maxSourceBytes caps uploaded CSV sources.
const maxSourceBytes = 10 << 20

// Response headers set on bundle responses.
const (
	headerBundleHash = "X-Dagoc-Bundle-Hash"
	headerCache      = "X-Dagoc-Cache"
	headerWarnings   = "X-Dagoc-Parse-Warnings"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail represents error details
type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// BundleListResponse lists cached bundle hashes.
type BundleListResponse struct {
	Bundles []string `json:"bundles"`
	Total   int      `json:"total"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks": gin.H{
			"compiler": "ok",
			"codec":    s.compiler.Codec().Name(),
			"workers":  s.compiler.PoolStatus(),
		},
	})
}

func (s *Server) readRows(c *gin.Context) ([]graphspec.Row, bool) {
	body := http.MaxBytesReader(c.Writer, c.Request.Body, maxSourceBytes)
	rows, err := graphspec.ReadRows(body)
	if err != nil {
		s.logger.Warn("invalid graph source", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: ErrorDetail{
				Code:    "INVALID_SOURCE",
				Message: err.Error(),
			},
		})
		return nil, false
	}
	return rows, true
}

// handleCompile compiles one graph from a CSV body and returns the bundle
// document.
func (s *Server) handleCompile(c *gin.Context) {
	name := c.Param("name")
	rows, ok := s.readRows(c)
	if !ok {
		return
	}

	result, err := s.compiler.Compile(c.Request.Context(), rows, name)
	if err != nil {
		s.writeCompileError(c, name, err)
		return
	}

	cache := "miss"
	if result.CacheHit {
		cache = "hit"
	}
	c.Header(headerBundleHash, result.Bundle.Hash)
	c.Header(headerCache, cache)
	c.Header(headerWarnings, strconv.Itoa(len(result.Warnings)))
	c.Data(http.StatusOK, s.compiler.Codec().ContentType(), result.Data)
}

func (s *Server) writeCompileError(c *gin.Context, name string, err error) {
	switch {
	case errors.Is(err, domain.ErrGraphNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: ErrorDetail{
				Code:    "GRAPH_NOT_FOUND",
				Message: err.Error(),
			},
		})
	case errors.Is(err, domain.ErrConfiguration), errors.Is(err, domain.ErrReferential):
		issues := make([]domain.Issue, 0)
		for _, e := range multierr.Errors(errors.Unwrap(err)) {
			issues = append(issues, domain.IssueFromError(e))
		}
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error: ErrorDetail{
				Code:    "INVALID_GRAPH",
				Message: "graph " + name + " is invalid",
				Details: issues,
			},
		})
	default:
		s.logger.Error("compilation failed", zap.String("graph", name), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: ErrorDetail{
				Code:    "COMPILATION_FAILED",
				Message: err.Error(),
			},
		})
	}
}

// handleValidate returns the validation report; 422 when the graph is invalid.
func (s *Server) handleValidate(c *gin.Context) {
	rows, ok := s.readRows(c)
	if !ok {
		return
	}

	report := s.compiler.Validate(rows, c.Param("name"))
	status := http.StatusOK
	if !report.Valid {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, report)
}

func (s *Server) handleListBundles(c *gin.Context) {
	hashes, err := s.compiler.Bundles(c.Request.Context())
	if err != nil {
		s.logger.Error("failed to list bundles", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: ErrorDetail{
				Code:    "STORAGE_ERROR",
				Message: err.Error(),
			},
		})
		return
	}
	if hashes == nil {
		hashes = []string{}
	}
	c.JSON(http.StatusOK, BundleListResponse{Bundles: hashes, Total: len(hashes)})
}

func (s *Server) handleGetBundle(c *gin.Context) {
	hash := c.Param("hash")

	_, data, err := s.compiler.Bundle(c.Request.Context(), hash)
	switch {
	case err == nil:
		c.Header(headerBundleHash, hash)
		c.Data(http.StatusOK, s.compiler.Codec().ContentType(), data)
	case errors.Is(err, domain.ErrBundleNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: ErrorDetail{
				Code:    "NOT_FOUND",
				Message: "Bundle not found",
			},
		})
	case errors.Is(err, domain.ErrDecode), errors.Is(err, domain.ErrCacheConsistency):
		s.logger.Warn("stored bundle is unusable", zap.String("hash", hash), zap.Error(err))
		c.JSON(http.StatusConflict, ErrorResponse{
			Error: ErrorDetail{
				Code:    "BUNDLE_UNUSABLE",
				Message: err.Error(),
			},
		})
	default:
		s.logger.Error("failed to get bundle", zap.String("hash", hash), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: ErrorDetail{
				Code:    "STORAGE_ERROR",
				Message: err.Error(),
			},
		})
	}
}

func (s *Server) handleDeleteBundle(c *gin.Context) {
	if err := s.compiler.Invalidate(c.Request.Context(), c.Param("hash")); err != nil {
		s.logger.Error("failed to delete bundle", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: ErrorDetail{
				Code:    "STORAGE_ERROR",
				Message: err.Error(),
			},
		})
		return
	}
	c.Status(http.StatusNoContent)
}
