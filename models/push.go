package models

import "time"

// PushKeys holds the subscription key material shared with the application
// server. Both values are base64url encoded without padding.
type PushKeys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

// PushSubscription is a platform-issued push handle mirrored into the
// backend's subscription store.
type PushSubscription struct {
	Endpoint       string     `json:"endpoint"`
	ExpirationTime *time.Time `json:"expirationTime"`
	Keys           PushKeys   `json:"keys"`
}

// LocalPushSubscription is the platform side of a subscription. It carries
// the private key needed to decrypt inbound push messages and never leaves
// the device.
type LocalPushSubscription struct {
	PushSubscription

	// PrivateKey is the raw P-256 private scalar.
	PrivateKey []byte `json:"-"`

	// AuthSecret is the raw 16-byte authentication secret.
	AuthSecret []byte `json:"-"`

	// ApplicationServerKey is the VAPID key the subscription was created for.
	ApplicationServerKey string `json:"-"`

	// Persisted is set once the backend has stored the subscription.
	Persisted bool `json:"-"`

	CreatedAt time.Time `json:"-"`
}

// PushPermission is the user's decision about notifications.
type PushPermission string

const (
	PermissionDefault PushPermission = "default"
	PermissionGranted PushPermission = "granted"
	PermissionDenied  PushPermission = "denied"
)

// RegistrarState is the lifecycle state of the push registrar.
type RegistrarState string

const (
	RegistrarUnsupported  RegistrarState = "unsupported"
	RegistrarUnregistered RegistrarState = "unregistered"
	RegistrarSubscribing  RegistrarState = "subscribing"
	RegistrarSubscribed   RegistrarState = "subscribed"
	RegistrarBlocked      RegistrarState = "blocked"
)
