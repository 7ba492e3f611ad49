package core

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.uber.org/zap"

	"auditdesk/internal/infra/persistence/memory"
	"auditdesk/pkg/domain"
)

const (
	opList   = "list"
	opGet    = "get"
	opCreate = "create"
	opUpdate = "update"
	opDelete = "delete"
)

// Service is the data-access layer the dashboard calls. Every operation waits
// out the configured latency before it touches the store.
type Service struct {
	store   PersistentStore
	sleeper Sleeper
	latency LatencyProfile
	logger  *zap.Logger
	metrics MetricsRecorder
	tracer  Tracer
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSleeper replaces the latency sleeper.
func WithSleeper(sleeper Sleeper) Option {
	return func(s *Service) {
		if sleeper != nil {
			s.sleeper = sleeper
		}
	}
}

// WithLatency replaces the per-operation delays.
func WithLatency(profile LatencyProfile) Option {
	return func(s *Service) {
		if profile != nil {
			s.latency = profile
		}
	}
}

// WithMetricsRecorder sets the metrics sink.
func WithMetricsRecorder(rec MetricsRecorder) Option {
	return func(s *Service) {
		if rec != nil {
			s.metrics = rec
		}
	}
}

// WithTracer sets the span factory.
func WithTracer(tracer Tracer) Option {
	return func(s *Service) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithClock overrides the clock used for duration measurement.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService constructs a service backed by the supplied store.
func NewService(store PersistentStore, opts ...Option) *Service {
	s := &Service{
		store:   store,
		sleeper: ContextSleeper{},
		latency: DefaultLatency(),
		logger:  zap.NewNop(),
		metrics: noopMetricsRecorder{},
		tracer:  noopTracer{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewInMemoryService creates a service over a fresh in-memory store.
func NewInMemoryService(engine *RulesEngine, opts ...Option) *Service {
	return NewService(memory.NewStore(engine), opts...)
}

// Store returns the underlying storage implementation.
func (s *Service) Store() PersistentStore {
	return s.store
}

func (s *Service) run(ctx context.Context, entity EntityType, action, id string, fn func(context.Context) error) error {
	op := action + "_" + string(entity)
	start := s.now()
	ctx, span := s.tracer.Start(ctx, op)
	err := s.sleeper.Sleep(ctx, s.latency.delay(entity, action))
	if err == nil {
		err = fn(ctx)
	}
	span.End(err)
	s.metrics.Observe(ctx, op, err == nil, s.now().Sub(start))
	s.logOutcome(action, op, id, err)
	return err
}

func (s *Service) logOutcome(action, op, id string, err error) {
	fields := []zap.Field{zap.String("operation", op)}
	if id != "" {
		fields = append(fields, zap.String("id", id))
	}
	var violation RuleViolationError
	switch {
	case err == nil:
		if action != opList && action != opGet {
			s.logger.Debug("record mutated", fields...)
		}
	case errors.Is(err, ErrNotFound):
		s.logger.Info("record not found", append(fields, zap.Error(err))...)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		s.logger.Info("operation cancelled", append(fields, zap.Error(err))...)
	case errors.As(err, &violation):
		s.logger.Warn("write blocked by rules", append(fields, zap.Int("violations", len(violation.Result.Violations)))...)
	default:
		s.logger.Error("operation failed", append(fields, zap.Error(err))...)
	}
}

// numericID coerces a raw identifier. Input without a leading integer can
// never match and is reported as not found.
func numericID(entity EntityType, raw string) (int, error) {
	n, ok := domain.ParseNumericID(raw)
	if !ok {
		return 0, NotFoundError{Entity: entity, ID: raw}
	}
	return n, nil
}

// Audits ---------------------------------------------------------------------

// ListAudits returns every audit in insertion order.
func (s *Service) ListAudits(ctx context.Context) ([]Audit, error) {
	var out []Audit
	err := s.run(ctx, EntityAudit, opList, "", func(ctx context.Context) error {
		return s.store.View(ctx, func(v TransactionView) error {
			out = v.ListAudits()
			return nil
		})
	})
	return out, err
}

// GetAudit returns the audit whose identifier equals id exactly.
func (s *Service) GetAudit(ctx context.Context, id string) (Audit, error) {
	var out Audit
	err := s.run(ctx, EntityAudit, opGet, id, func(ctx context.Context) error {
		var found Audit
		var ok bool
		if err := s.store.View(ctx, func(v TransactionView) error {
			found, ok = v.FindAudit(id)
			return nil
		}); err != nil {
			return err
		}
		if !ok {
			return NotFoundError{Entity: EntityAudit, ID: id}
		}
		out = found
		return nil
	})
	return out, err
}

// CreateAudit appends an audit under the next AUD identifier. Any identifier
// carried by the input is replaced.
func (s *Service) CreateAudit(ctx context.Context, audit Audit) (Audit, Result, error) {
	var created Audit
	var res Result
	err := s.run(ctx, EntityAudit, opCreate, "", func(ctx context.Context) error {
		audit.ID = ""
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			created, err = tx.CreateAudit(audit)
			return err
		})
		return err
	})
	return created, res, err
}

// UpdateAudit applies patch to the audit with identifier id.
func (s *Service) UpdateAudit(ctx context.Context, id string, patch AuditPatch) (Audit, Result, error) {
	var updated Audit
	var res Result
	err := s.run(ctx, EntityAudit, opUpdate, id, func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			updated, err = tx.UpdateAudit(id, func(a *Audit) error {
				patch.Apply(a)
				return nil
			})
			return err
		})
		return err
	})
	return updated, res, err
}

// DeleteAudit removes the audit with identifier id.
func (s *Service) DeleteAudit(ctx context.Context, id string) (Result, error) {
	var res Result
	err := s.run(ctx, EntityAudit, opDelete, id, func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			return tx.DeleteAudit(id)
		})
		return err
	})
	return res, err
}

// Exceptions -----------------------------------------------------------------

// ListExceptions returns every exception in insertion order.
func (s *Service) ListExceptions(ctx context.Context) ([]Exception, error) {
	var out []Exception
	err := s.run(ctx, EntityException, opList, "", func(ctx context.Context) error {
		return s.store.View(ctx, func(v TransactionView) error {
			out = v.ListExceptions()
			return nil
		})
	})
	return out, err
}

// GetException returns the exception whose identifier matches the leading
// integer of rawID.
func (s *Service) GetException(ctx context.Context, rawID string) (Exception, error) {
	var out Exception
	err := s.run(ctx, EntityException, opGet, rawID, func(ctx context.Context) error {
		id, err := numericID(EntityException, rawID)
		if err != nil {
			return err
		}
		var found Exception
		var ok bool
		if err := s.store.View(ctx, func(v TransactionView) error {
			found, ok = v.FindException(id)
			return nil
		}); err != nil {
			return err
		}
		if !ok {
			return NotFoundError{Entity: EntityException, ID: strconv.Itoa(id)}
		}
		out = found
		return nil
	})
	return out, err
}

// CreateException appends an exception under the next integer identifier.
func (s *Service) CreateException(ctx context.Context, exception Exception) (Exception, Result, error) {
	var created Exception
	var res Result
	err := s.run(ctx, EntityException, opCreate, "", func(ctx context.Context) error {
		exception.ID = 0
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			created, err = tx.CreateException(exception)
			return err
		})
		return err
	})
	return created, res, err
}

// UpdateException applies patch to the exception identified by rawID.
func (s *Service) UpdateException(ctx context.Context, rawID string, patch ExceptionPatch) (Exception, Result, error) {
	var updated Exception
	var res Result
	err := s.run(ctx, EntityException, opUpdate, rawID, func(ctx context.Context) error {
		id, err := numericID(EntityException, rawID)
		if err != nil {
			return err
		}
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			updated, err = tx.UpdateException(id, func(e *Exception) error {
				patch.Apply(e)
				return nil
			})
			return err
		})
		return err
	})
	return updated, res, err
}

// DeleteException removes the exception identified by rawID.
func (s *Service) DeleteException(ctx context.Context, rawID string) (Result, error) {
	var res Result
	err := s.run(ctx, EntityException, opDelete, rawID, func(ctx context.Context) error {
		id, err := numericID(EntityException, rawID)
		if err != nil {
			return err
		}
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			return tx.DeleteException(id)
		})
		return err
	})
	return res, err
}

// KPIs -----------------------------------------------------------------------

// ListKPIs returns every KPI in insertion order.
func (s *Service) ListKPIs(ctx context.Context) ([]KPI, error) {
	var out []KPI
	err := s.run(ctx, EntityKPI, opList, "", func(ctx context.Context) error {
		return s.store.View(ctx, func(v TransactionView) error {
			out = v.ListKPIs()
			return nil
		})
	})
	return out, err
}

// GetKPI returns the KPI identified by rawID.
func (s *Service) GetKPI(ctx context.Context, rawID string) (KPI, error) {
	var out KPI
	err := s.run(ctx, EntityKPI, opGet, rawID, func(ctx context.Context) error {
		id, err := numericID(EntityKPI, rawID)
		if err != nil {
			return err
		}
		var found KPI
		var ok bool
		if err := s.store.View(ctx, func(v TransactionView) error {
			found, ok = v.FindKPI(id)
			return nil
		}); err != nil {
			return err
		}
		if !ok {
			return NotFoundError{Entity: EntityKPI, ID: strconv.Itoa(id)}
		}
		out = found
		return nil
	})
	return out, err
}

// CreateKPI appends a KPI under the next integer identifier.
func (s *Service) CreateKPI(ctx context.Context, kpi KPI) (KPI, Result, error) {
	var created KPI
	var res Result
	err := s.run(ctx, EntityKPI, opCreate, "", func(ctx context.Context) error {
		kpi.ID = 0
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			created, err = tx.CreateKPI(kpi)
			return err
		})
		return err
	})
	return created, res, err
}

// UpdateKPI applies patch to the KPI identified by rawID.
func (s *Service) UpdateKPI(ctx context.Context, rawID string, patch KPIPatch) (KPI, Result, error) {
	var updated KPI
	var res Result
	err := s.run(ctx, EntityKPI, opUpdate, rawID, func(ctx context.Context) error {
		id, err := numericID(EntityKPI, rawID)
		if err != nil {
			return err
		}
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			updated, err = tx.UpdateKPI(id, func(k *KPI) error {
				patch.Apply(k)
				return nil
			})
			return err
		})
		return err
	})
	return updated, res, err
}

// DeleteKPI removes the KPI identified by rawID.
func (s *Service) DeleteKPI(ctx context.Context, rawID string) (Result, error) {
	var res Result
	err := s.run(ctx, EntityKPI, opDelete, rawID, func(ctx context.Context) error {
		id, err := numericID(EntityKPI, rawID)
		if err != nil {
			return err
		}
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			return tx.DeleteKPI(id)
		})
		return err
	})
	return res, err
}

// Stores ---------------------------------------------------------------------

// ListStores returns every store in insertion order.
func (s *Service) ListStores(ctx context.Context) ([]Store, error) {
	var out []Store
	err := s.run(ctx, EntityStore, opList, "", func(ctx context.Context) error {
		return s.store.View(ctx, func(v TransactionView) error {
			out = v.ListStores()
			return nil
		})
	})
	return out, err
}

// GetStore returns the store identified by rawID.
func (s *Service) GetStore(ctx context.Context, rawID string) (Store, error) {
	var out Store
	err := s.run(ctx, EntityStore, opGet, rawID, func(ctx context.Context) error {
		id, err := numericID(EntityStore, rawID)
		if err != nil {
			return err
		}
		var found Store
		var ok bool
		if err := s.store.View(ctx, func(v TransactionView) error {
			found, ok = v.FindStore(id)
			return nil
		}); err != nil {
			return err
		}
		if !ok {
			return NotFoundError{Entity: EntityStore, ID: strconv.Itoa(id)}
		}
		out = found
		return nil
	})
	return out, err
}

// CreateStore appends a store under the next integer identifier.
func (s *Service) CreateStore(ctx context.Context, store Store) (Store, Result, error) {
	var created Store
	var res Result
	err := s.run(ctx, EntityStore, opCreate, "", func(ctx context.Context) error {
		store.ID = 0
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			created, err = tx.CreateStore(store)
			return err
		})
		return err
	})
	return created, res, err
}

// UpdateStore applies patch to the store identified by rawID.
func (s *Service) UpdateStore(ctx context.Context, rawID string, patch StorePatch) (Store, Result, error) {
	var updated Store
	var res Result
	err := s.run(ctx, EntityStore, opUpdate, rawID, func(ctx context.Context) error {
		id, err := numericID(EntityStore, rawID)
		if err != nil {
			return err
		}
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			updated, err = tx.UpdateStore(id, func(st *Store) error {
				patch.Apply(st)
				return nil
			})
			return err
		})
		return err
	})
	return updated, res, err
}

// DeleteStore removes the store identified by rawID.
func (s *Service) DeleteStore(ctx context.Context, rawID string) (Result, error) {
	var res Result
	err := s.run(ctx, EntityStore, opDelete, rawID, func(ctx context.Context) error {
		id, err := numericID(EntityStore, rawID)
		if err != nil {
			return err
		}
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			return tx.DeleteStore(id)
		})
		return err
	})
	return res, err
}
