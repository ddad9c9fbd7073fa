package models

import "time"

// SyncResult is the aggregate outcome of one reconciliation pass.
// It is the only summary the reconciler reports by default.
type SyncResult struct {
	// Success is the number of entries replayed and removed.
	Success int `json:"success"`

	// Failed is the number of entries dropped after reaching the retry ceiling.
	Failed int `json:"failed"`
}

// DroppedMutation is emitted on the reconciler's event channel whenever an
// entry is discarded after its final failed replay.
type DroppedMutation struct {
	Mutation QueuedMutation `json:"mutation"`
	Err      string         `json:"error"`
	At       time.Time      `json:"at"`
}
