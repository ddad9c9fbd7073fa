package models

// ConnectivityRequest is the platform online/offline signal posted to the
// gateway. Online is required.
type ConnectivityRequest struct {
	Online *bool `json:"online"`
}

// ConnectivityResponse reports the monitor state after a signal.
type ConnectivityResponse struct {
	Online bool `json:"online"`

	// Changed is false when the signal matched the current state.
	Changed bool `json:"changed"`
}

// PermissionRequest records the user's notification decision.
type PermissionRequest struct {
	Permission PushPermission `json:"permission"`
}

// PushStateResponse is the registrar state as seen by a page.
type PushStateResponse struct {
	State RegistrarState `json:"state"`
}

// SessionRequest stores a new bearer token.
type SessionRequest struct {
	Token string `json:"token"`
}

// QueueResponse lists pending mutations in replay order.
type QueueResponse struct {
	Mutations []QueuedMutation `json:"mutations"`
	Length    int              `json:"length"`
}

// FailedMutationsResponse lists dropped mutations, newest first.
type FailedMutationsResponse struct {
	Mutations []FailedMutation `json:"mutations"`
	Length    int              `json:"length"`
}

// HelloMessage is the first message on a page channel.
type HelloMessage struct {
	ClientID string `json:"client_id"`
}
