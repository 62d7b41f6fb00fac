package keys

// FilterState is the free-text query and boolean toggles entered by the user.
// The zero value has every toggle off.
type FilterState struct {
	query   string
	enabled [attrCount]bool
}

// Query returns the free-text query as typed.
func (f FilterState) Query() string {
	return f.query
}

// SetQuery replaces the free-text query.
func (f *FilterState) SetQuery(q string) {
	f.query = q
}

// Enabled reports whether the filter for a is on.
func (f FilterState) Enabled(a Attribute) bool {
	if a < 0 || a >= attrCount {
		return false
	}
	return f.enabled[a]
}

// Set turns the filter for a on or off.
func (f *FilterState) Set(a Attribute, on bool) {
	if a < 0 || a >= attrCount {
		return
	}
	f.enabled[a] = on
}

// Toggle flips the filter for a.
func (f *FilterState) Toggle(a Attribute) {
	f.Set(a, !f.Enabled(a))
}

// Clear turns every toggle off. The query is kept.
func (f *FilterState) Clear() {
	f.enabled = [attrCount]bool{}
}

// Active returns the number of enabled toggles.
func (f FilterState) Active() int {
	n := 0
	for _, on := range f.enabled {
		if on {
			n++
		}
	}
	return n
}

// Criteria snapshots the filter as a predicate.
func (f FilterState) Criteria() Criteria {
	return Criteria{Query: f.query, Required: f.enabled}
}
