package keys

// Record is a managed API key as shown in the console.
//
// APIKey is nil until the server has confirmed the key.
type Record struct {
	APIKey         *string `json:"apiKey"`
	ClientName     string  `json:"clientName" validate:"required"`
	IsActive       bool    `json:"isActive"`
	IsIPCheck      bool    `json:"isIpCheck"`
	IsCountryCheck bool    `json:"isCountryCheck"`
	IsRegionCheck  bool    `json:"isRegionCheck"`
}

// Confirmed reports whether the record carries a server-assigned key.
func (r Record) Confirmed() bool {
	return r.APIKey != nil && *r.APIKey != ""
}

// ID returns the key identifier or "" when unconfirmed.
func (r Record) ID() string {
	if r.APIKey == nil {
		return ""
	}
	return *r.APIKey
}

// Clone returns a copy that shares no pointers with r.
func (r Record) Clone() Record {
	out := r
	if r.APIKey != nil {
		id := *r.APIKey
		out.APIKey = &id
	}
	return out
}

// Equal compares all fields, treating a nil and an empty identifier alike.
func (r Record) Equal(o Record) bool {
	return r.ID() == o.ID() &&
		r.ClientName == o.ClientName &&
		r.IsActive == o.IsActive &&
		r.IsIPCheck == o.IsIPCheck &&
		r.IsCountryCheck == o.IsCountryCheck &&
		r.IsRegionCheck == o.IsRegionCheck
}

func (r Record) hasName() bool {
	return r.ClientName != ""
}

// StringPtr returns nil for an empty string.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
