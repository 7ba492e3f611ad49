// Package memory provides an in-memory implementation of the core persistence
// store used for tests and ephemeral environments.
package memory

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"auditdesk/pkg/domain"
)

// Compile-time contract assertions ensuring memory.Store adheres to the domain persistence interfaces.
var _ domain.PersistentStore = (*Store)(nil)

// Store provides an in-memory transactional store for the audit domain.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	engine *domain.RulesEngine
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *domain.RulesEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		state:  newMemoryState(),
		engine: engine,
	}
}

// ExportState clones the current store state for external persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromMemoryState(s.state)
}

// ImportState replaces the store state with the provided snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = memoryStateFromSnapshot(migrateSnapshot(snapshot))
}

type transaction struct {
	state   memoryState
	changes []domain.Change
}

type transactionView struct {
	state *memoryState
}

func newTransactionView(state *memoryState) domain.TransactionView {
	return transactionView{state: state}
}

func (v transactionView) ListAudits() []domain.Audit {
	return v.state.audits.list(cloneAudit)
}

func (v transactionView) ListExceptions() []domain.Exception {
	return v.state.exceptions.list(identity[domain.Exception])
}

func (v transactionView) ListKPIs() []domain.KPI {
	return v.state.kpis.list(identity[domain.KPI])
}

func (v transactionView) ListStores() []domain.Store {
	return v.state.stores.list(identity[domain.Store])
}

func (v transactionView) FindAudit(id string) (domain.Audit, bool) {
	a, ok := v.state.audits.get(id)
	return cloneAudit(a), ok
}

func (v transactionView) FindException(id int) (domain.Exception, bool) {
	return v.state.exceptions.get(id)
}

func (v transactionView) FindKPI(id int) (domain.KPI, bool) {
	return v.state.kpis.get(id)
}

func (v transactionView) FindStore(id int) (domain.Store, bool) {
	return v.state.stores.get(id)
}

// RunInTransaction executes fn within a transactional copy of the store state.
// The copy replaces the committed state only when fn succeeds and no blocking
// rule violation is reported.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx domain.Transaction) error) (domain.Result, error) {
	if err := ctx.Err(); err != nil {
		return domain.Result{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{state: s.state.clone()}
	if err := fn(tx); err != nil {
		return domain.Result{}, err
	}

	var result domain.Result
	if s.engine != nil {
		res, err := s.engine.Evaluate(ctx, newTransactionView(&tx.state), tx.changes)
		if err != nil {
			return domain.Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only snapshot of the committed state. The
// snapshot is detached from the store, so it may outlive fn.
func (s *Store) View(ctx context.Context, fn func(domain.TransactionView) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	snapshot := s.state.clone()
	s.mu.RUnlock()
	return fn(newTransactionView(&snapshot))
}

func (tx *transaction) recordChange(change domain.Change) {
	tx.changes = append(tx.changes, change)
}

// CreateAudit stores a new audit, assigning the next AUD identifier when none is set.
func (tx *transaction) CreateAudit(a domain.Audit) (domain.Audit, error) {
	if a.ID == "" {
		tx.state.seq.Audit++
		a.ID = domain.FormatAuditID(tx.state.seq.Audit)
	} else if n, ok := domain.AuditSequence(a.ID); ok && n > tx.state.seq.Audit {
		tx.state.seq.Audit = n
	}
	if _, exists := tx.state.audits.get(a.ID); exists {
		return domain.Audit{}, fmt.Errorf("audit %q already exists", a.ID)
	}
	tx.state.audits.put(a.ID, cloneAudit(a))
	tx.recordChange(domain.Change{Entity: domain.EntityAudit, Action: domain.ActionCreate, After: cloneAudit(a)})
	return cloneAudit(a), nil
}

// UpdateAudit mutates an audit in place. The identifier cannot be changed.
func (tx *transaction) UpdateAudit(id string, mutator func(*domain.Audit) error) (domain.Audit, error) {
	current, ok := tx.state.audits.get(id)
	if !ok {
		return domain.Audit{}, domain.NotFoundError{Entity: domain.EntityAudit, ID: id}
	}
	before := cloneAudit(current)
	current = cloneAudit(current)
	if err := mutator(&current); err != nil {
		return domain.Audit{}, err
	}
	current.ID = id
	tx.state.audits.put(id, cloneAudit(current))
	tx.recordChange(domain.Change{Entity: domain.EntityAudit, Action: domain.ActionUpdate, Before: before, After: cloneAudit(current)})
	return cloneAudit(current), nil
}

// DeleteAudit removes an audit from the transaction state.
func (tx *transaction) DeleteAudit(id string) error {
	current, ok := tx.state.audits.get(id)
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityAudit, ID: id}
	}
	tx.state.audits.remove(id)
	tx.recordChange(domain.Change{Entity: domain.EntityAudit, Action: domain.ActionDelete, Before: cloneAudit(current)})
	return nil
}

// CreateException stores a new exception.
func (tx *transaction) CreateException(e domain.Exception) (domain.Exception, error) {
	e.ID = nextID(&tx.state.seq.Exception, e.ID)
	if _, exists := tx.state.exceptions.get(e.ID); exists {
		return domain.Exception{}, fmt.Errorf("exception %d already exists", e.ID)
	}
	tx.state.exceptions.put(e.ID, e)
	tx.recordChange(domain.Change{Entity: domain.EntityException, Action: domain.ActionCreate, After: e})
	return e, nil
}

// UpdateException mutates an exception in place.
func (tx *transaction) UpdateException(id int, mutator func(*domain.Exception) error) (domain.Exception, error) {
	current, ok := tx.state.exceptions.get(id)
	if !ok {
		return domain.Exception{}, notFound(domain.EntityException, id)
	}
	before := current
	if err := mutator(&current); err != nil {
		return domain.Exception{}, err
	}
	current.ID = id
	tx.state.exceptions.put(id, current)
	tx.recordChange(domain.Change{Entity: domain.EntityException, Action: domain.ActionUpdate, Before: before, After: current})
	return current, nil
}

// DeleteException removes an exception.
func (tx *transaction) DeleteException(id int) error {
	current, ok := tx.state.exceptions.get(id)
	if !ok {
		return notFound(domain.EntityException, id)
	}
	tx.state.exceptions.remove(id)
	tx.recordChange(domain.Change{Entity: domain.EntityException, Action: domain.ActionDelete, Before: current})
	return nil
}

// CreateKPI stores a new KPI.
func (tx *transaction) CreateKPI(k domain.KPI) (domain.KPI, error) {
	k.ID = nextID(&tx.state.seq.KPI, k.ID)
	if _, exists := tx.state.kpis.get(k.ID); exists {
		return domain.KPI{}, fmt.Errorf("kpi %d already exists", k.ID)
	}
	tx.state.kpis.put(k.ID, k)
	tx.recordChange(domain.Change{Entity: domain.EntityKPI, Action: domain.ActionCreate, After: k})
	return k, nil
}

// UpdateKPI mutates a KPI in place.
func (tx *transaction) UpdateKPI(id int, mutator func(*domain.KPI) error) (domain.KPI, error) {
	current, ok := tx.state.kpis.get(id)
	if !ok {
		return domain.KPI{}, notFound(domain.EntityKPI, id)
	}
	before := current
	if err := mutator(&current); err != nil {
		return domain.KPI{}, err
	}
	current.ID = id
	tx.state.kpis.put(id, current)
	tx.recordChange(domain.Change{Entity: domain.EntityKPI, Action: domain.ActionUpdate, Before: before, After: current})
	return current, nil
}

// DeleteKPI removes a KPI.
func (tx *transaction) DeleteKPI(id int) error {
	current, ok := tx.state.kpis.get(id)
	if !ok {
		return notFound(domain.EntityKPI, id)
	}
	tx.state.kpis.remove(id)
	tx.recordChange(domain.Change{Entity: domain.EntityKPI, Action: domain.ActionDelete, Before: current})
	return nil
}

// CreateStore stores a new retail store.
func (tx *transaction) CreateStore(st domain.Store) (domain.Store, error) {
	st.ID = nextID(&tx.state.seq.Store, st.ID)
	if _, exists := tx.state.stores.get(st.ID); exists {
		return domain.Store{}, fmt.Errorf("store %d already exists", st.ID)
	}
	tx.state.stores.put(st.ID, st)
	tx.recordChange(domain.Change{Entity: domain.EntityStore, Action: domain.ActionCreate, After: st})
	return st, nil
}

// UpdateStore mutates a retail store in place.
func (tx *transaction) UpdateStore(id int, mutator func(*domain.Store) error) (domain.Store, error) {
	current, ok := tx.state.stores.get(id)
	if !ok {
		return domain.Store{}, notFound(domain.EntityStore, id)
	}
	before := current
	if err := mutator(&current); err != nil {
		return domain.Store{}, err
	}
	current.ID = id
	tx.state.stores.put(id, current)
	tx.recordChange(domain.Change{Entity: domain.EntityStore, Action: domain.ActionUpdate, Before: before, After: current})
	return current, nil
}

// DeleteStore removes a retail store.
func (tx *transaction) DeleteStore(id int) error {
	current, ok := tx.state.stores.get(id)
	if !ok {
		return notFound(domain.EntityStore, id)
	}
	tx.state.stores.remove(id)
	tx.recordChange(domain.Change{Entity: domain.EntityStore, Action: domain.ActionDelete, Before: current})
	return nil
}

// nextID returns preset when positive, lifting the counter past it, and
// otherwise advances the counter.
func nextID(seq *int, preset int) int {
	if preset > 0 {
		*seq = max(*seq, preset)
		return preset
	}
	*seq++
	return *seq
}

func notFound(entity domain.EntityType, id int) error {
	return domain.NotFoundError{Entity: entity, ID: strconv.Itoa(id)}
}
