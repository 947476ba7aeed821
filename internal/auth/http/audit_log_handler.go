package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authDomain "github.com/allisson/warden/internal/auth/domain"
	"github.com/allisson/warden/internal/auth/http/dto"
	authUseCase "github.com/allisson/warden/internal/auth/usecase"
	"github.com/allisson/warden/internal/httputil"
)

// AuditLogHandler handles HTTP requests for audit log operations.
type AuditLogHandler struct {
	auditLogUseCase authUseCase.AuditLogUseCase
	logger          *slog.Logger
}

// NewAuditLogHandler creates a new audit log handler with required dependencies.
func NewAuditLogHandler(
	auditLogUseCase authUseCase.AuditLogUseCase,
	logger *slog.Logger,
) *AuditLogHandler {
	return &AuditLogHandler{
		auditLogUseCase: auditLogUseCase,
		logger:          logger,
	}
}

func parseTimeQuery(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s format: must be RFC3339 (e.g., 2026-02-01T00:00:00Z)", name)
	}
	utc := parsed.UTC()
	return &utc, nil
}

func optionalQuery(c *gin.Context, name string) *string {
	if value := c.Query(name); value != "" {
		return &value
	}
	return nil
}

// ListHandler retrieves audit logs newest first.
// GET /v1/audit-logs?subject_id=&action=&resource_type=&resource_id=&created_at_from=&created_at_to=&offset=&limit=
// Requires admin:audit. Time bounds are RFC3339, converted to UTC and inclusive.
func (h *AuditLogHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	filter := &authDomain.AuditLogFilter{
		Action:       optionalQuery(c, "action"),
		ResourceType: optionalQuery(c, "resource_type"),
		ResourceID:   optionalQuery(c, "resource_id"),
		Offset:       offset,
		Limit:        limit,
	}

	if raw := c.Query("subject_id"); raw != "" {
		subjectID, err := uuid.Parse(raw)
		if err != nil {
			httputil.HandleValidationErrorGin(c,
				fmt.Errorf("invalid subject_id format: must be a valid UUID"), h.logger)
			return
		}
		filter.SubjectID = &subjectID
	}

	if filter.CreatedAtFrom, err = parseTimeQuery(c, "created_at_from"); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if filter.CreatedAtTo, err = parseTimeQuery(c, "created_at_to"); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if filter.CreatedAtFrom != nil && filter.CreatedAtTo != nil && filter.CreatedAtFrom.After(*filter.CreatedAtTo) {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("created_at_from must be before or equal to created_at_to"), h.logger)
		return
	}

	auditLogs, err := h.auditLogUseCase.List(c.Request.Context(), filter)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAuditLogsToListResponse(auditLogs))
}
