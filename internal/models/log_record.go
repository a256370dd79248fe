package models

import "time"

// LogRecord is the stored entity behind one public identifier.
type LogRecord struct {
	ID             string    `json:"id" msgpack:"id"`
	Body           []byte    `json:"-" msgpack:"-"`
	CreatedAt      time.Time `json:"createdAt" msgpack:"createdAt"`
	LastAccessedAt time.Time `json:"lastAccessedAt" msgpack:"lastAccessedAt"`
}

// Size returns the body length in bytes.
func (r *LogRecord) Size() int {
	return len(r.Body)
}

// ExpiresAt returns the moment the record becomes eligible for the expiry sweep.
func (r *LogRecord) ExpiresAt(retention time.Duration) time.Time {
	return r.LastAccessedAt.Add(retention)
}
