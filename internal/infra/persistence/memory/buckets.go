package memory

import (
	"encoding/json"
	"fmt"
)

// Buckets names the snapshot partitions written by durable backends, one row each.
var Buckets = []string{"audits", "exceptions", "kpis", "stores", "sequences"}

func (s *Snapshot) bucketTarget(bucket string) (any, bool) {
	switch bucket {
	case "audits":
		return &s.Audits, true
	case "exceptions":
		return &s.Exceptions, true
	case "kpis":
		return &s.KPIs, true
	case "stores":
		return &s.Stores, true
	case "sequences":
		return &s.Sequences, true
	}
	return nil, false
}

// EncodeBucket renders one snapshot partition as JSON.
func (s Snapshot) EncodeBucket(bucket string) ([]byte, error) {
	target, ok := s.bucketTarget(bucket)
	if !ok {
		return nil, fmt.Errorf("unknown bucket %q", bucket)
	}
	return json.Marshal(target)
}

// DecodeBucket fills one snapshot partition from JSON. Unknown buckets are
// ignored so older tables with retired partitions still load.
func (s *Snapshot) DecodeBucket(bucket string, payload []byte) error {
	target, ok := s.bucketTarget(bucket)
	if !ok || len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, target); err != nil {
		return fmt.Errorf("decode %s: %w", bucket, err)
	}
	return nil
}
