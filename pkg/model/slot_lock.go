package model

import "time"

// SlotLock is an advisory lock document serializing booking creation for one
// location under the per-location create policy. A TTL index on ExpiresAt
// clears locks abandoned by crashed requests.
type SlotLock struct {
	ID        string    `bson:"_id" json:"id"`
	Owner     string    `bson:"owner" json:"owner"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
