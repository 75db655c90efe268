package models

import "time"

// CircleInvite is a single-use token that lets a user join an
// invite-only circle. Expired invites are swept by a background job.
type CircleInvite struct {
	ID        int       `json:"id" db:"id"`
	CircleID  int       `json:"circle_id" db:"circle_id"`
	Token     string    `json:"-" db:"token"`
	CreatedBy int       `json:"created_by" db:"created_by"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
