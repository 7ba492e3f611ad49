package memory

import (
	"auditdesk/pkg/domain"
)

// table keeps rows keyed by identity while remembering insertion order.
type table[K comparable, V any] struct {
	order []K
	rows  map[K]V
}

func newTable[K comparable, V any]() table[K, V] {
	return table[K, V]{rows: make(map[K]V)}
}

func (t table[K, V]) get(id K) (V, bool) {
	v, ok := t.rows[id]
	return v, ok
}

func (t *table[K, V]) put(id K, v V) {
	if _, ok := t.rows[id]; !ok {
		t.order = append(t.order, id)
	}
	t.rows[id] = v
}

func (t *table[K, V]) remove(id K) {
	if _, ok := t.rows[id]; !ok {
		return
	}
	delete(t.rows, id)
	for i, k := range t.order {
		if k == id {
			t.order = append(t.order[:i:i], t.order[i+1:]...)
			break
		}
	}
}

func (t table[K, V]) list(cloneFn func(V) V) []V {
	out := make([]V, 0, len(t.order))
	for _, k := range t.order {
		out = append(out, cloneFn(t.rows[k]))
	}
	return out
}

func (t table[K, V]) clone(cloneFn func(V) V) table[K, V] {
	cp := table[K, V]{
		order: append([]K(nil), t.order...),
		rows:  make(map[K]V, len(t.rows)),
	}
	for k, v := range t.rows {
		cp.rows[k] = cloneFn(v)
	}
	return cp
}

// Sequences records the last identity handed out per collection. Counters
// never move backwards, so a deleted identity is not reissued.
type Sequences struct {
	Audit     int `json:"audit"`
	Exception int `json:"exception"`
	KPI       int `json:"kpi"`
	Store     int `json:"store"`
}

type memoryState struct {
	audits     table[string, domain.Audit]
	exceptions table[int, domain.Exception]
	kpis       table[int, domain.KPI]
	stores     table[int, domain.Store]
	seq        Sequences
}

// Snapshot captures a point-in-time clone of the store state. Collections are
// kept in insertion order.
type Snapshot struct {
	Audits     []domain.Audit     `json:"audits"`
	Exceptions []domain.Exception `json:"exceptions"`
	KPIs       []domain.KPI       `json:"kpis"`
	Stores     []domain.Store     `json:"stores"`
	Sequences  Sequences          `json:"sequences"`
}

func newMemoryState() memoryState {
	return memoryState{
		audits:     newTable[string, domain.Audit](),
		exceptions: newTable[int, domain.Exception](),
		kpis:       newTable[int, domain.KPI](),
		stores:     newTable[int, domain.Store](),
	}
}

func (s memoryState) clone() memoryState {
	return memoryState{
		audits:     s.audits.clone(cloneAudit),
		exceptions: s.exceptions.clone(identity[domain.Exception]),
		kpis:       s.kpis.clone(identity[domain.KPI]),
		stores:     s.stores.clone(identity[domain.Store]),
		seq:        s.seq,
	}
}

func snapshotFromMemoryState(state memoryState) Snapshot {
	return Snapshot{
		Audits:     state.audits.list(cloneAudit),
		Exceptions: state.exceptions.list(identity[domain.Exception]),
		KPIs:       state.kpis.list(identity[domain.KPI]),
		Stores:     state.stores.list(identity[domain.Store]),
		Sequences:  state.seq,
	}
}

func memoryStateFromSnapshot(s Snapshot) memoryState {
	state := newMemoryState()
	for _, a := range s.Audits {
		state.audits.put(a.ID, cloneAudit(a))
	}
	for _, e := range s.Exceptions {
		state.exceptions.put(e.ID, e)
	}
	for _, k := range s.KPIs {
		state.kpis.put(k.ID, k)
	}
	for _, st := range s.Stores {
		state.stores.put(st.ID, st)
	}
	state.seq = s.Sequences
	return state
}

// migrateSnapshot drops records without an identity and lifts each sequence to
// at least the highest identity present, so snapshots written before counters
// were persisted keep issuing fresh identities.
func migrateSnapshot(snapshot Snapshot) Snapshot {
	audits := snapshot.Audits[:0:0]
	for _, a := range snapshot.Audits {
		if a.ID == "" {
			continue
		}
		audits = append(audits, a)
		if n, ok := domain.AuditSequence(a.ID); ok && n > snapshot.Sequences.Audit {
			snapshot.Sequences.Audit = n
		}
	}
	snapshot.Audits = audits

	exceptions := snapshot.Exceptions[:0:0]
	for _, e := range snapshot.Exceptions {
		if e.ID <= 0 {
			continue
		}
		exceptions = append(exceptions, e)
		snapshot.Sequences.Exception = max(snapshot.Sequences.Exception, e.ID)
	}
	snapshot.Exceptions = exceptions

	kpis := snapshot.KPIs[:0:0]
	for _, k := range snapshot.KPIs {
		if k.ID <= 0 {
			continue
		}
		kpis = append(kpis, k)
		snapshot.Sequences.KPI = max(snapshot.Sequences.KPI, k.ID)
	}
	snapshot.KPIs = kpis

	stores := snapshot.Stores[:0:0]
	for _, st := range snapshot.Stores {
		if st.ID <= 0 {
			continue
		}
		stores = append(stores, st)
		snapshot.Sequences.Store = max(snapshot.Sequences.Store, st.ID)
	}
	snapshot.Stores = stores
	return snapshot
}

func identity[V any](v V) V { return v }

func cloneAudit(a domain.Audit) domain.Audit {
	cp := a
	if a.Responses != nil {
		cp.Responses = append([]domain.AuditResponse(nil), a.Responses...)
	}
	return cp
}
