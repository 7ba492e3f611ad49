package domain

import "context"

// Transaction exposes the domain operations that a persistence implementation
// must support within an atomic scope. Create assigns the next identity when
// the record carries none; a record that already carries an identity keeps it
// (used when seeding fixtures) and advances the collection counter past it.
type Transaction interface {
	CreateAudit(Audit) (Audit, error)
	UpdateAudit(id string, mutator func(*Audit) error) (Audit, error)
	DeleteAudit(id string) error
	CreateException(Exception) (Exception, error)
	UpdateException(id int, mutator func(*Exception) error) (Exception, error)
	DeleteException(id int) error
	CreateKPI(KPI) (KPI, error)
	UpdateKPI(id int, mutator func(*KPI) error) (KPI, error)
	DeleteKPI(id int) error
	CreateStore(Store) (Store, error)
	UpdateStore(id int, mutator func(*Store) error) (Store, error)
	DeleteStore(id int) error
}

// TransactionView provides read-only access to snapshot data for rules and
// for reads through PersistentStore.View.
type TransactionView interface {
	RuleView
}

// PersistentStore is a minimal abstraction over durable backends. Writes go
// through RunInTransaction and reads through View; view List methods return
// records in insertion order.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
}
