package core

import (
	"context"
	"time"
)

// Sleeper waits out simulated network latency.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// ContextSleeper blocks on a timer and gives up when the context is done.
type ContextSleeper struct{}

// Sleep waits for d or returns ctx.Err() when the context ends first.
func (ContextSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// NoopSleeper returns immediately unless the context is already done.
type NoopSleeper struct{}

// Sleep implements Sleeper.
func (NoopSleeper) Sleep(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

// Latencies holds the simulated delay for each CRUD operation on one entity.
type Latencies struct {
	List   time.Duration
	Get    time.Duration
	Create time.Duration
	Update time.Duration
	Delete time.Duration
}

// LatencyProfile maps each entity to its operation delays.
type LatencyProfile map[EntityType]Latencies

// DefaultLatency returns the delays the dashboard's mock backend used.
func DefaultLatency() LatencyProfile {
	ms := time.Millisecond
	return LatencyProfile{
		EntityAudit:     {List: 400 * ms, Get: 200 * ms, Create: 600 * ms, Update: 500 * ms, Delete: 300 * ms},
		EntityException: {List: 450 * ms, Get: 200 * ms, Create: 500 * ms, Update: 400 * ms, Delete: 300 * ms},
		EntityKPI:       {List: 300 * ms, Get: 200 * ms, Create: 400 * ms, Update: 400 * ms, Delete: 300 * ms},
		EntityStore:     {List: 350 * ms, Get: 200 * ms, Create: 500 * ms, Update: 400 * ms, Delete: 300 * ms},
	}
}

// Scale returns a copy with every delay multiplied by f. A factor of zero or
// less disables all delays.
func (p LatencyProfile) Scale(f float64) LatencyProfile {
	out := make(LatencyProfile, len(p))
	for entity, l := range p {
		if f <= 0 {
			out[entity] = Latencies{}
			continue
		}
		out[entity] = Latencies{
			List:   scaleDuration(l.List, f),
			Get:    scaleDuration(l.Get, f),
			Create: scaleDuration(l.Create, f),
			Update: scaleDuration(l.Update, f),
			Delete: scaleDuration(l.Delete, f),
		}
	}
	return out
}

func scaleDuration(d time.Duration, f float64) time.Duration {
	return time.Duration(float64(d) * f)
}

func (p LatencyProfile) delay(entity EntityType, action string) time.Duration {
	l, ok := p[entity]
	if !ok {
		return 0
	}
	switch action {
	case opList:
		return l.List
	case opGet:
		return l.Get
	case opCreate:
		return l.Create
	case opUpdate:
		return l.Update
	case opDelete:
		return l.Delete
	}
	return 0
}
