package model

import "time"

// Visitor is a browser known to the web front end. Backend cookies and the
// last search snapshot are stored against its ID.
type Visitor struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	LastSeen  time.Time `json:"last_seen"`
}

// IsExpired reports whether the visitor has been idle longer than ttl.
func (v *Visitor) IsExpired(ttl time.Duration) bool {
	return time.Since(v.LastSeen) > ttl
}

// SearchSnapshot is the persisted copy of the last search, restored when
// the home page is opened again.
type SearchSnapshot struct {
	Results  []Business `json:"results"`
	Searched bool       `json:"searched"`
	Location string     `json:"location,omitempty"`
	Type     string     `json:"type,omitempty"`
}
