package event

import "time"

// Metadata carries who triggered an event and how it correlates to a request.
type Metadata struct {
	UserID        string    `json:"user_id,omitempty"        bson:"user_id,omitempty"`
	CorrelationID string    `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
	Timestamp     time.Time `json:"timestamp,omitempty"      bson:"timestamp,omitempty"`
}

// NewMetadata creates metadata stamped with the current time.
func NewMetadata(userID, correlationID string) Metadata {
	return Metadata{
		UserID:        userID,
		CorrelationID: correlationID,
		Timestamp:     time.Now(),
	}
}
