package beacon

// Deduplicator admits each BSSID once. It belongs to a single pipeline run
// and is not safe for concurrent use.
type Deduplicator struct {
	seen map[string]struct{}
}

// NewDeduplicator creates an empty Deduplicator.
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{seen: make(map[string]struct{})}
}

// Admit returns true the first time bssid is presented and false afterwards.
func (d *Deduplicator) Admit(bssid string) bool {
	if _, ok := d.seen[bssid]; ok {
		return false
	}
	d.seen[bssid] = struct{}{}
	return true
}

// Len returns the number of admitted identities.
func (d *Deduplicator) Len() int {
	return len(d.seen)
}
