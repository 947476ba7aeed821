package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/warden/internal/auth/domain"
	authService "github.com/allisson/warden/internal/auth/service"
	"github.com/allisson/warden/internal/database"
	apperrors "github.com/allisson/warden/internal/errors"
)

const verifyBatchSize = 500

// AuditLogConfig holds the audit sink settings.
type AuditLogConfig struct {
	// SigningKey is the root HMAC key. An empty key stores records unsigned.
	SigningKey []byte
	// KeyID is stored with each signature.
	KeyID string
	// StoreTimeout bounds each write.
	StoreTimeout time.Duration
}

// auditLogUseCase implements AuditLogUseCase on top of an append-only repository.
type auditLogUseCase struct {
	auditLogRepo AuditLogRepository
	signer       authService.AuditSigner
	config       AuditLogConfig
	logger       *slog.Logger
	now          func() time.Time
}

// Record builds an entry from event and the request info in ctx, signs it and appends it.
// The write is detached from ctx cancellation so a client disconnect does not lose the record.
func (a *auditLogUseCase) Record(ctx context.Context, event *authDomain.AuditEvent) {
	info, _ := authDomain.RequestInfoFrom(ctx)

	correlationID := info.CorrelationID
	if correlationID == "" {
		correlationID = uuid.Must(uuid.NewV7()).String()
	}

	auditLog := &authDomain.AuditLog{
		ID:            uuid.Must(uuid.NewV7()),
		CorrelationID: correlationID,
		SubjectID:     event.SubjectID,
		Action:        event.Action,
		ResourceType:  event.ResourceType,
		ResourceID:    event.ResourceID,
		HTTPMethod:    info.HTTPMethod,
		Path:          info.Path,
		StatusCode:    event.StatusCode,
		IPAddress:     info.IPAddress,
		UserAgent:     info.UserAgent,
		Metadata:      event.Metadata,
		CreatedAt:     a.now().UTC().Truncate(time.Microsecond),
	}

	if len(a.config.SigningKey) > 0 {
		auditLog.KeyID = a.config.KeyID
		signature, err := a.signer.Sign(a.config.SigningKey, auditLog)
		if err != nil {
			a.logger.Error("failed to sign audit log",
				slog.String("correlation_id", correlationID),
				slog.String("action", event.Action),
				slog.Any("error", err),
			)
			auditLog.KeyID = ""
		} else {
			auditLog.Signature = signature
		}
	}

	storeCtx, cancel := database.StoreContext(context.WithoutCancel(ctx), a.config.StoreTimeout)
	defer cancel()

	if err := a.auditLogRepo.Create(storeCtx, auditLog); err != nil {
		a.logger.Error("failed to record audit log",
			slog.String("correlation_id", correlationID),
			slog.String("action", event.Action),
			slog.String("resource_type", event.ResourceType),
			slog.Any("error", err),
		)
	}
}

// List retrieves audit logs ordered by created_at descending (newest first). Both time
// boundaries are inclusive. Returns an empty slice if no audit logs are found.
func (a *auditLogUseCase) List(
	ctx context.Context,
	filter *authDomain.AuditLogFilter,
) ([]*authDomain.AuditLog, error) {
	auditLogs, err := database.WithStore(ctx, a.config.StoreTimeout, func(ctx context.Context) ([]*authDomain.AuditLog, error) {
		return a.auditLogRepo.List(ctx, filter)
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit logs")
	}
	return auditLogs, nil
}

// VerifyBatch checks the signature of every log matching filter, walking all pages.
// Offset and Limit of filter are ignored. Without an upper CreatedAtTo bound, only logs created
// before the call are checked. Records signed under another key id count as invalid.
func (a *auditLogUseCase) VerifyBatch(
	ctx context.Context,
	filter *authDomain.AuditLogFilter,
) (*authDomain.AuditVerificationReport, error) {
	if len(a.config.SigningKey) == 0 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "audit signing key is not configured")
	}

	page := authDomain.AuditLogFilter{}
	if filter != nil {
		page = *filter
	}
	page.Offset = 0
	page.Limit = verifyBatchSize
	// Logs written while paging would shift the offsets of a newest-first listing.
	if page.CreatedAtTo == nil {
		startedAt := a.now().UTC()
		page.CreatedAtTo = &startedAt
	}

	report := &authDomain.AuditVerificationReport{InvalidIDs: make([]uuid.UUID, 0)}
	for {
		auditLogs, err := a.auditLogRepo.List(ctx, &page)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to list audit logs")
		}

		for _, auditLog := range auditLogs {
			report.TotalChecked++

			switch {
			case !auditLog.IsSigned():
				report.Unsigned++
			case auditLog.KeyID != a.config.KeyID:
				report.Invalid++
				report.InvalidIDs = append(report.InvalidIDs, auditLog.ID)
			case a.signer.Verify(a.config.SigningKey, auditLog) != nil:
				report.Invalid++
				report.InvalidIDs = append(report.InvalidIDs, auditLog.ID)
			default:
				report.Valid++
			}
		}

		if len(auditLogs) < page.Limit {
			break
		}
		page.Offset += page.Limit
	}

	return report, nil
}

// NewAuditLogUseCase creates a new AuditLogUseCase with the provided dependencies.
func NewAuditLogUseCase(
	auditLogRepo AuditLogRepository,
	signer authService.AuditSigner,
	config AuditLogConfig,
	logger *slog.Logger,
) AuditLogUseCase {
	return &auditLogUseCase{
		auditLogRepo: auditLogRepo,
		signer:       signer,
		config:       config,
		logger:       logger,
		now:          time.Now,
	}
}
