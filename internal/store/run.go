package store

import (
	"time"

	"github.com/google/uuid"

	"modcompat/internal/modversion"
	"modcompat/internal/report"
)

// Run is one stored comparison of a module pair.
type Run struct {
	ID         string          `json:"id"`
	CreatedAt  time.Time       `json:"createdAt"`
	Module     string          `json:"module"`
	OldVersion string          `json:"oldVersion,omitempty"`
	NewVersion string          `json:"newVersion,omitempty"`
	OldDigest  string          `json:"oldDigest,omitempty"`
	NewDigest  string          `json:"newDigest,omitempty"`
	Required   modversion.Bump `json:"requiredBump"`
	// Sufficient is nil when either version was unknown.
	Sufficient *bool          `json:"sufficient,omitempty"`
	EntryCount int            `json:"entryCount"`
	Entries    []report.Entry `json:"entries,omitempty"`
}

// NewRun captures r for storage. The digests identify the compared snapshots.
func NewRun(r *report.Report, oldDigest, newDigest string) *Run {
	run := &Run{
		ID:         newRunID(),
		CreatedAt:  time.Now().UTC(),
		Module:     r.Module,
		OldVersion: r.Old,
		NewVersion: r.New,
		OldDigest:  oldDigest,
		NewDigest:  newDigest,
		Required:   r.Summary.Required,
		EntryCount: len(r.Entries),
		Entries:    r.Entries,
	}
	if r.Verdict != nil {
		ok := r.Verdict.Sufficient
		run.Sufficient = &ok
	}
	return run
}

func newRunID() string {
	return uuid.New().String()
}
