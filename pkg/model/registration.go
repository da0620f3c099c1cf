package model

import "time"

type RegistrationStatus string

const (
	RegistrationConfirmed RegistrationStatus = "confirmed"
	RegistrationPending   RegistrationStatus = "pending"
	RegistrationCancelled RegistrationStatus = "cancelled"
)

// Registration links a participant to a session. The admission controller
// consults it only when the session requires registration.
type Registration struct {
	ID            string             `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ParticipantID string             `json:"participant_id" bson:"participant_id" validate:"required,min=1,max=64"`
	SessionID     string             `json:"session_id" bson:"session_id" validate:"required,mongodb"`
	Status        RegistrationStatus `json:"status" bson:"status" validate:"required,oneof=confirmed pending cancelled"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" bson:"updated_at"`
}
