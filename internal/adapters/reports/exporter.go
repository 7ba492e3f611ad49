package reports

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"auditdesk/internal/blob"
)

// ExportStatus describes the lifecycle stage of an export request.
type ExportStatus string

const (
	ExportStatusQueued    ExportStatus = "queued"
	ExportStatusRunning   ExportStatus = "running"
	ExportStatusSucceeded ExportStatus = "succeeded"
	ExportStatusFailed    ExportStatus = "failed"
)

// QueueDepth bounds the number of exports waiting for the worker.
const QueueDepth = 32

// ErrQueueFull is returned when the worker cannot accept another export.
var ErrQueueFull = errors.New("export queue full")

// ErrExportNotFound is returned for unknown export or artifact lookups.
var ErrExportNotFound = errors.New("export not found")

// ExportArtifact captures a stored report artifact.
type ExportArtifact struct {
	Key         string    `json:"key"`
	Format      Format    `json:"format"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	ETag        string    `json:"etag,omitempty"`
	URL         string    `json:"url,omitempty"`
	Rows        int       `json:"rows"`
	CreatedAt   time.Time `json:"created_at"`
}

// ExportRecord tracks an export request and resulting artifacts.
type ExportRecord struct {
	ID          string           `json:"id"`
	Report      Report           `json:"report"`
	Formats     []Format         `json:"formats"`
	Status      ExportStatus     `json:"status"`
	Error       string           `json:"error,omitempty"`
	Artifacts   []ExportArtifact `json:"artifacts,omitempty"`
	RequestedBy string           `json:"requested_by"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
}

// ExportInput represents an enqueue request for the worker.
type ExportInput struct {
	Report      Report
	Formats     []Format
	RequestedBy string
}

// ExportScheduler queues report exports and exposes status.
type ExportScheduler interface {
	EnqueueExport(ctx context.Context, input ExportInput) (ExportRecord, error)
	GetExport(id string) (ExportRecord, bool)
	OpenArtifact(ctx context.Context, id string, format Format) (ExportArtifact, io.ReadCloser, error)
	ListArtifacts(ctx context.Context, id string) ([]blob.Info, error)
}

// Option configures a Worker.
type Option func(*Worker)

// WithLogger sets the worker logger.
func WithLogger(logger *zap.Logger) Option {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithAuditLogger sets the audit trail sink.
func WithAuditLogger(audit AuditLogger) Option {
	return func(w *Worker) { w.audit = audit }
}

// WithClock overrides the worker clock.
func WithClock(now func() time.Time) Option {
	return func(w *Worker) {
		if now != nil {
			w.now = now
		}
	}
}

// WithURLExpiry sets the lifetime of pre-signed artifact URLs.
func WithURLExpiry(d time.Duration) Option {
	return func(w *Worker) { w.urlExpiry = d }
}

// Worker executes report exports asynchronously.
type Worker struct {
	source    Source
	store     blob.Store
	audit     AuditLogger
	logger    *zap.Logger
	now       func() time.Time
	urlExpiry time.Duration

	queue chan string
	mu    sync.RWMutex
	jobs  map[string]*ExportRecord

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWorker constructs an export worker writing artifacts to store.
func NewWorker(source Source, store blob.Store, opts ...Option) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	w := &Worker{
		source:    source,
		store:     store,
		logger:    zap.NewNop(),
		now:       func() time.Time { return time.Now().UTC() },
		urlExpiry: 15 * time.Minute,
		queue:     make(chan string, QueueDepth),
		jobs:      make(map[string]*ExportRecord),
		ctx:       ctx,
		cancel:    cancel,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins processing export requests.
func (w *Worker) Start() {
	w.wg.Add(1)
	go w.loop()
}

// Stop signals the worker to halt and waits for completion.
func (w *Worker) Stop(ctx context.Context) error {
	w.cancel()
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run starts the worker and blocks until ctx is done, then stops it within
// the grace period.
func (w *Worker) Run(ctx context.Context, grace time.Duration) error {
	w.Start()
	<-ctx.Done()
	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), grace)
	defer cancel()
	return w.Stop(stopCtx)
}

func (w *Worker) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case id := <-w.queue:
			w.process(id)
		}
	}
}

// EnqueueExport schedules an export job and returns the queued record.
func (w *Worker) EnqueueExport(ctx context.Context, input ExportInput) (ExportRecord, error) {
	if w.source == nil {
		return ExportRecord{}, fmt.Errorf("export source not configured")
	}
	report := Report(strings.TrimSpace(string(input.Report)))
	if report == "" {
		return ExportRecord{}, fmt.Errorf("report required")
	}
	if !ValidReport(report) {
		return ExportRecord{}, fmt.Errorf("report %s not found", report)
	}

	formats := input.Formats
	if len(formats) == 0 {
		formats = DefaultFormats
	}
	uniqFormats := make([]Format, 0, len(formats))
	seen := make(map[Format]struct{})
	for _, format := range formats {
		if _, duplicate := seen[format]; duplicate {
			continue
		}
		if format != FormatCSV && format != FormatJSON {
			return ExportRecord{}, fmt.Errorf("format %s not supported", format)
		}
		uniqFormats = append(uniqFormats, format)
		seen[format] = struct{}{}
	}

	id := uuid.NewString()
	now := w.now()
	record := ExportRecord{
		ID:          id,
		Report:      report,
		Formats:     uniqFormats,
		Status:      ExportStatusQueued,
		RequestedBy: input.RequestedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	w.mu.Lock()
	w.jobs[id] = &record
	queuedSnapshot := record.copy()
	w.mu.Unlock()

	w.record(ctx, id, ExportStatusQueued, now, nil)
	select {
	case w.queue <- id:
	default:
		w.record(ctx, id, ExportStatusFailed, now, map[string]string{"error": ErrQueueFull.Error()})
		w.mu.Lock()
		delete(w.jobs, id)
		w.mu.Unlock()
		return ExportRecord{}, ErrQueueFull
	}
	w.logger.Info("export queued", zap.String("export_id", id), zap.String("report", string(report)))
	return queuedSnapshot, nil
}

// GetExport returns a snapshot of the export record.
func (w *Worker) GetExport(id string) (ExportRecord, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	record, ok := w.jobs[id]
	if !ok {
		return ExportRecord{}, false
	}
	return record.copy(), true
}

// OpenArtifact streams the stored artifact of a finished export.
func (w *Worker) OpenArtifact(ctx context.Context, id string, format Format) (ExportArtifact, io.ReadCloser, error) {
	record, ok := w.GetExport(id)
	if !ok {
		return ExportArtifact{}, nil, ErrExportNotFound
	}
	for _, artifact := range record.Artifacts {
		if artifact.Format != format {
			continue
		}
		info, err := w.store.Head(ctx, artifact.Key)
		if err != nil {
			return ExportArtifact{}, nil, fmt.Errorf("open artifact: %w", err)
		}
		artifact.SizeBytes = info.Size
		if info.ContentType != "" {
			artifact.ContentType = info.ContentType
		}
		_, body, err := w.store.Get(ctx, artifact.Key)
		if err != nil {
			return ExportArtifact{}, nil, fmt.Errorf("open artifact: %w", err)
		}
		return artifact, body, nil
	}
	return ExportArtifact{}, nil, ErrExportNotFound
}

func (w *Worker) process(id string) {
	record, ok := w.GetExport(id)
	if !ok {
		return
	}
	w.updateStatus(id, ExportStatusRunning)

	ds, err := Load(w.ctx, w.source, record.Report)
	if err != nil {
		w.fail(id, fmt.Sprintf("load report failed: %v", err))
		return
	}

	artifacts := make([]ExportArtifact, 0, len(record.Formats))
	for _, format := range record.Formats {
		artifact, err := w.storeArtifact(record, ds, format)
		if err != nil {
			w.discardArtifacts(id)
			w.fail(id, err.Error())
			return
		}
		artifacts = append(artifacts, artifact)
	}
	w.complete(id, artifacts)
}

// ArtifactKey is the blob key of one export artifact.
func ArtifactKey(id string, report Report, format Format) string {
	return fmt.Sprintf("%s%s.%s", ArtifactPrefix(id), report, format)
}

// ArtifactPrefix is the blob key prefix shared by every artifact of an export.
func ArtifactPrefix(id string) string {
	return "exports/" + id + "/"
}

// ListArtifacts returns the blobs currently stored for an export.
func (w *Worker) ListArtifacts(ctx context.Context, id string) ([]blob.Info, error) {
	if _, ok := w.GetExport(id); !ok {
		return nil, ErrExportNotFound
	}
	return w.store.List(ctx, ArtifactPrefix(id))
}

// discardArtifacts removes whatever a failed export managed to store.
func (w *Worker) discardArtifacts(id string) {
	ctx := context.WithoutCancel(w.ctx)
	infos, err := w.store.List(ctx, ArtifactPrefix(id))
	if err != nil {
		w.logger.Warn("list partial artifacts", zap.String("export_id", id), zap.Error(err))
		return
	}
	for _, info := range infos {
		if _, err := w.store.Delete(ctx, info.Key); err != nil {
			w.logger.Warn("delete partial artifact", zap.String("key", info.Key), zap.Error(err))
		}
	}
}

func (w *Worker) storeArtifact(record ExportRecord, ds Dataset, format Format) (ExportArtifact, error) {
	payload, err := ds.Render(format)
	if err != nil {
		return ExportArtifact{}, err
	}
	key := ArtifactKey(record.ID, record.Report, format)
	info, err := w.store.Put(w.ctx, key, bytes.NewReader(payload), blob.PutOptions{
		ContentType: format.ContentType(),
		Metadata: map[string]string{
			"report":       string(record.Report),
			"requested_by": record.RequestedBy,
		},
	})
	if err != nil {
		return ExportArtifact{}, fmt.Errorf("store artifact failed: %w", err)
	}
	artifact := ExportArtifact{
		Key:         info.Key,
		Format:      format,
		ContentType: info.ContentType,
		SizeBytes:   info.Size,
		ETag:        info.ETag,
		Rows:        len(ds.Rows),
		CreatedAt:   info.LastModified,
	}
	if artifact.ContentType == "" {
		artifact.ContentType = format.ContentType()
	}
	if artifact.SizeBytes == 0 {
		artifact.SizeBytes = int64(len(payload))
	}
	if artifact.CreatedAt.IsZero() {
		artifact.CreatedAt = w.now()
	}
	url, err := w.store.PresignURL(w.ctx, key, blob.SignedURLOptions{Method: "GET", Expiry: w.urlExpiry})
	switch {
	case err == nil:
		artifact.URL = url
	case errors.Is(err, blob.ErrUnsupported):
	default:
		w.logger.Warn("presign artifact", zap.String("key", key), zap.Error(err))
	}
	return artifact, nil
}

func (w *Worker) updateStatus(id string, status ExportStatus) {
	now := w.now()
	w.mu.Lock()
	if record, ok := w.jobs[id]; ok {
		record.Status = status
		record.Error = ""
		record.UpdatedAt = now
	}
	w.mu.Unlock()
	w.record(w.ctx, id, status, now, nil)
}

func (w *Worker) complete(id string, artifacts []ExportArtifact) {
	now := w.now()
	w.mu.Lock()
	if record, ok := w.jobs[id]; ok {
		record.Status = ExportStatusSucceeded
		record.Error = ""
		record.Artifacts = artifacts
		record.UpdatedAt = now
		record.CompletedAt = &now
	}
	w.mu.Unlock()
	w.record(w.ctx, id, ExportStatusSucceeded, now, map[string]string{"artifacts": fmt.Sprint(len(artifacts))})
	w.logger.Info("export succeeded", zap.String("export_id", id), zap.Int("artifacts", len(artifacts)))
}

func (w *Worker) fail(id, reason string) {
	now := w.now()
	w.mu.Lock()
	if record, ok := w.jobs[id]; ok {
		record.Status = ExportStatusFailed
		record.Error = reason
		record.UpdatedAt = now
		record.CompletedAt = &now
	}
	w.mu.Unlock()
	w.record(w.ctx, id, ExportStatusFailed, now, map[string]string{"error": reason})
	w.logger.Error("export failed", zap.String("export_id", id), zap.String("error", reason))
}

func (w *Worker) record(ctx context.Context, id string, status ExportStatus, at time.Time, metadata map[string]string) {
	if w.audit == nil {
		return
	}
	w.mu.RLock()
	var actor string
	var report Report
	if record, ok := w.jobs[id]; ok {
		actor = record.RequestedBy
		report = record.Report
	}
	w.mu.RUnlock()
	w.audit.Record(ctx, AuditEntry{
		ID:         uuid.NewString(),
		ExportID:   id,
		Action:     "report_export",
		Actor:      actor,
		Report:     report,
		Status:     status,
		Metadata:   metadata,
		OccurredAt: at,
	})
}

func (r ExportRecord) copy() ExportRecord {
	dup := r
	dup.Formats = append([]Format(nil), r.Formats...)
	if len(r.Artifacts) > 0 {
		dup.Artifacts = append([]ExportArtifact(nil), r.Artifacts...)
	}
	if r.CompletedAt != nil {
		completed := *r.CompletedAt
		dup.CompletedAt = &completed
	}
	return dup
}
