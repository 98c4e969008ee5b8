package ingestion

import "fmt"

// SyncError reports a failed metadata upsert. The object written in the
// preceding step is deliberately left in place; there is no compensating
// delete because the two stores share no transaction boundary.
type SyncError struct {
	Status  int
	Message string
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("metadata sync failed (status %d): %s", e.Status, e.Message)
}

// DispatchError reports a failed transcription submission. Both the stored
// object and the metadata record remain committed; only the job is missing.
type DispatchError struct {
	Status int
	Body   string
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("transcription dispatch failed (status %d): %s", e.Status, e.Body)
}
