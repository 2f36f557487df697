package domain

import "time"

// ResultClassifiedEvent is published once a watched result leaves the pending state.
type ResultClassifiedEvent struct {
	FileID          string              `json:"fileId"`
	State           ClassificationState `json:"state"`
	Kind            FailureKind         `json:"kind,omitempty"`
	Message         string              `json:"message,omitempty"`
	Category        string              `json:"category,omitempty"`
	ConfidenceScore float64             `json:"confidenceScore"`
	EntityCount     int                 `json:"entityCount"`
	TableCount      int                 `json:"tableCount"`
	ClassifiedAt    time.Time           `json:"classifiedAt"`
}
