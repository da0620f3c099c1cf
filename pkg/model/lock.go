package model

import "time"

// SessionLock is the stored form of a distributed lock: one document per
// resource name, owned by whoever wrote the token. The TTL index on
// expires_at reaps abandoned locks so a crashed holder cannot wedge a
// resource past its lease.
type SessionLock struct {
	Resource  string    `bson:"_id" json:"resource"`
	Token     string    `bson:"token" json:"token"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
