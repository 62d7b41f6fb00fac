package keys

import "context"

// Cache holds the last successful search result. Every search is issued a
// sequence number; only the newest one may replace the list.
type Cache struct {
	records []Record
	seq     uint64
	applied uint64
	loaded  bool
	cancel  context.CancelFunc
}

// Records returns the cached list.
func (c *Cache) Records() []Record {
	return c.records
}

// Loaded reports whether a search has ever succeeded.
func (c *Cache) Loaded() bool {
	return c.loaded
}

// Pending reports whether the newest search is still outstanding.
func (c *Cache) Pending() bool {
	return c.seq != c.applied
}

// Begin starts a new search, cancelling the one before it.
func (c *Cache) Begin(parent context.Context) (context.Context, uint64) {
	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	c.cancel = cancel
	c.seq++
	return ctx, c.seq
}

// Current returns the newest sequence number.
func (c *Cache) Current() uint64 {
	return c.seq
}

// Settle marks seq as finished without replacing the list. Stale sequence
// numbers are ignored.
func (c *Cache) Settle(seq uint64) {
	if seq != c.seq {
		return
	}
	c.applied = seq
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// Replace swaps the whole list for seq's response. It returns the number of
// records dropped for having no client name, and false if seq is stale.
func (c *Cache) Replace(seq uint64, records []Record) (int, bool) {
	if seq != c.seq {
		return 0, false
	}
	kept := make([]Record, 0, len(records))
	for _, r := range records {
		if !r.hasName() {
			continue
		}
		kept = append(kept, r)
	}
	c.records = kept
	c.loaded = true
	c.Settle(seq)
	return len(records) - len(kept), true
}

// Append adds r at the end of the list.
func (c *Cache) Append(r Record) {
	c.records = append(c.records, r)
}

// Upsert replaces the record with r's identifier in place, or appends r.
func (c *Cache) Upsert(r Record) {
	if id := r.ID(); id != "" {
		for i := range c.records {
			if c.records[i].ID() == id {
				c.records[i] = r
				return
			}
		}
	}
	c.Append(r)
}

// Close cancels any outstanding search.
func (c *Cache) Close() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}
