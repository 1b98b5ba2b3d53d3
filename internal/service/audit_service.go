package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/saju-admin-api/internal/models"
	"github.com/noah-isme/saju-admin-api/pkg/jobs"
	"github.com/noah-isme/saju-admin-api/pkg/middleware/requestid"
)

const auditJobType = "audit_log"

type auditStore interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// AuditService persists audit rows off the request path through a worker queue.
type AuditService struct {
	store   auditStore
	queue   *jobs.Queue
	metrics *MetricsService
	logger  *zap.Logger
}

// NewAuditService wires the queue; call Start before recording.
func NewAuditService(store auditStore, metrics *MetricsService, logger *zap.Logger, cfg jobs.QueueConfig) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &AuditService{store: store, metrics: metrics, logger: logger}
	cfg.Logger = logger
	cfg.OnDrop = func(job jobs.Job, err error) {
		svc.metrics.RecordAuditDropped()
	}
	svc.queue = jobs.NewQueue("audit", svc.handle, cfg)
	return svc
}

// Start launches the audit workers.
func (s *AuditService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop flushes buffered records and stops the workers.
func (s *AuditService) Stop() {
	s.queue.Stop()
}

// Record queues a row. When the queue cannot take it the row is written inline
// so that reviews are never left unaudited.
func (s *AuditService) Record(ctx context.Context, log *models.AuditLog) {
	if s == nil || log == nil {
		return
	}
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	err := s.queue.Enqueue(jobs.Job{ID: log.ID, Type: auditJobType, Payload: log})
	if err == nil {
		return
	}
	fields := []zap.Field{zap.String("action", log.Action), zap.String("request_id", requestid.FromContext(ctx))}
	s.logger.Warn("audit queue unavailable, writing inline", append(fields, zap.Error(err))...)
	if err := s.store.CreateAuditLog(ctx, log); err != nil {
		s.metrics.RecordAuditDropped()
		s.logger.Error("failed to persist audit log", append(fields, zap.Error(err))...)
	}
}

func (s *AuditService) handle(ctx context.Context, job jobs.Job) error {
	log, ok := job.Payload.(*models.AuditLog)
	if !ok {
		return fmt.Errorf("unexpected audit payload %T", job.Payload)
	}
	return s.store.CreateAuditLog(ctx, log)
}
