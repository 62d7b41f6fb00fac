package keys

import "encoding/json"

// TriState is the search endpoint's per-attribute flag. Only two of the three
// states are expressible from the console: there is no "require false".
type TriState int

const (
	RequireTrue TriState = 1
	DontCare    TriState = -1
)

// SearchQuery is the parameter set sent to the remote search.
type SearchQuery struct {
	ClientName string
	Flags      [attrCount]TriState
}

// Flag returns the encoded value for a.
func (q SearchQuery) Flag(a Attribute) TriState {
	if a < 0 || a >= attrCount {
		return DontCare
	}
	return q.Flags[a]
}

// MarshalJSON encodes the query as {"clientName": ..., "isActive": 1, ...}.
func (q SearchQuery) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(Attributes)+1)
	out["clientName"] = q.ClientName
	for _, a := range Attributes {
		out[a.Name()] = int(q.Flag(a))
	}
	return json.Marshal(out)
}

// Translate encodes the filter for the remote search. The query text is
// passed through as typed.
func Translate(f FilterState) SearchQuery {
	return TranslateCriteria(f.Criteria())
}

// TranslateCriteria encodes a predicate for the remote search.
func TranslateCriteria(c Criteria) SearchQuery {
	q := SearchQuery{ClientName: c.Query}
	for _, a := range Attributes {
		if c.Required[a] {
			q.Flags[a] = RequireTrue
		} else {
			q.Flags[a] = DontCare
		}
	}
	return q
}
