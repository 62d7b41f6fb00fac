package keys

import "strings"

// Attribute names one of the boolean flags carried by every record.
type Attribute int

const (
	AttrActive Attribute = iota
	AttrIPCheck
	AttrCountryCheck
	AttrRegionCheck
	attrCount
)

// Attributes lists every attribute in display order.
var Attributes = []Attribute{AttrActive, AttrIPCheck, AttrCountryCheck, AttrRegionCheck}

var attrNames = [attrCount]string{"isActive", "isIpCheck", "isCountryCheck", "isRegionCheck"}
var attrLabels = [attrCount]string{"Active", "IP Check", "Country Check", "Region Check"}

// Name returns the wire name used by the search endpoint.
func (a Attribute) Name() string {
	if a < 0 || a >= attrCount {
		return ""
	}
	return attrNames[a]
}

// Label returns the human label.
func (a Attribute) Label() string {
	if a < 0 || a >= attrCount {
		return ""
	}
	return attrLabels[a]
}

func (a Attribute) String() string {
	return a.Name()
}

// Of reads the attribute from a record.
func (a Attribute) Of(r Record) bool {
	switch a {
	case AttrActive:
		return r.IsActive
	case AttrIPCheck:
		return r.IsIPCheck
	case AttrCountryCheck:
		return r.IsCountryCheck
	case AttrRegionCheck:
		return r.IsRegionCheck
	}
	return false
}

// Set writes the attribute on a record.
func (a Attribute) Set(r *Record, v bool) {
	switch a {
	case AttrActive:
		r.IsActive = v
	case AttrIPCheck:
		r.IsIPCheck = v
	case AttrCountryCheck:
		r.IsCountryCheck = v
	case AttrRegionCheck:
		r.IsRegionCheck = v
	}
}

// ParseAttribute resolves a wire name or label, case-insensitively.
func ParseAttribute(s string) (Attribute, bool) {
	s = strings.TrimSpace(s)
	for _, a := range Attributes {
		if strings.EqualFold(s, a.Name()) || strings.EqualFold(s, a.Label()) {
			return a, true
		}
	}
	return 0, false
}

// --- Criteria ---

// Criteria is the predicate shared by the remote query encoder and the
// local projector. Keeping one value for both means they cannot drift.
type Criteria struct {
	Query    string
	Required [attrCount]bool
}

// Requires reports whether records must have a true.
func (c Criteria) Requires(a Attribute) bool {
	if a < 0 || a >= attrCount {
		return false
	}
	return c.Required[a]
}

// Match is the conjunctive record predicate.
func (c Criteria) Match(r Record) bool {
	if !strings.Contains(strings.ToLower(r.ClientName), strings.ToLower(c.Query)) {
		return false
	}
	for _, a := range Attributes {
		if c.Required[a] && !a.Of(r) {
			return false
		}
	}
	return true
}
