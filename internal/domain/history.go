package domain

import "time"

// RunEntry is one line of the run history.
type RunEntry struct {
	RunID      string `json:"run_id"`
	Timestamp  string `json:"timestamp"`
	CommitHash string `json:"commit_hash,omitempty"`
	Descriptor string `json:"descriptor"`
	Target     Target `json:"target"`
	DryRun     bool   `json:"dry_run"`
	Changed    int    `json:"changed"`
	Formatted  int    `json:"formatted"`
	Failed     int    `json:"failed"`
}

// EntryFor summarizes a report for the history.
func EntryFor(r *MigrationReport) RunEntry {
	return RunEntry{
		RunID:      r.RunID,
		Timestamp:  r.Timestamp.Format(time.RFC3339),
		CommitHash: r.CommitHash,
		Descriptor: r.Descriptor,
		Target:     r.Target,
		DryRun:     r.DryRun,
		Changed:    r.Summary.Changed,
		Formatted:  r.Summary.Formatted,
		Failed:     r.Summary.Failed,
	}
}
