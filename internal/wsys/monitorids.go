package wsys

import "github.com/1broseidon/sash/internal/idgen"

// MonitorIDs hands out monitor ids keyed by a backend's native output
// handle, so the same output keeps its id across snapshots. The zero value
// is ready to use. It is not safe for concurrent use.
type MonitorIDs struct {
	ids map[string]MonitorID
}

// For returns the id of the output named key, minting one the first time
// key is seen.
func (t *MonitorIDs) For(key string) MonitorID {
	if id, ok := t.ids[key]; ok {
		return id
	}
	if t.ids == nil {
		t.ids = make(map[string]MonitorID)
	}
	id := MonitorID(idgen.Process().NextNonZero())
	t.ids[key] = id
	return id
}

// Forget drops key, so an output that comes back later gets a fresh id.
func (t *MonitorIDs) Forget(key string) {
	delete(t.ids, key)
}
