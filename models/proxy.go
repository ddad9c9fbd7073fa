package models

// WorkerState is the lifecycle state of a caching proxy worker.
type WorkerState string

const (
	WorkerInstalling WorkerState = "installing"
	WorkerWaiting    WorkerState = "waiting"
	WorkerActive     WorkerState = "active"
	WorkerRedundant  WorkerState = "redundant"
)

// RegistrationState is a snapshot of the background context.
type RegistrationState struct {
	ActiveVersion  string      `json:"active_version,omitempty"`
	ActiveState    WorkerState `json:"active_state,omitempty"`
	WaitingVersion string      `json:"waiting_version,omitempty"`
	Clients        int         `json:"clients"`
	CacheNames     []string    `json:"cache_names"`
}

// ClientInfo describes an open page connected to the background context.
type ClientInfo struct {
	ID  string `json:"id"`
	URL string `json:"url"`

	// Focused is true for the page that currently has user focus.
	Focused bool `json:"focused"`

	// Controller is the cache version of the worker controlling the page.
	// Empty for pages that loaded before any worker was active.
	Controller string `json:"controller,omitempty"`
}
