package models

import "encoding/json"

// NotificationPayload is the backend-controlled push message body.
// Every field is optional; absent fields take documented defaults when the
// notification is built.
type NotificationPayload struct {
	Title              *string              `json:"title,omitempty"`
	Body               *string              `json:"body,omitempty"`
	Icon               *string              `json:"icon,omitempty"`
	Badge              *string              `json:"badge,omitempty"`
	Image              *string              `json:"image,omitempty"`
	Tag                *string              `json:"tag,omitempty"`
	Renotify           *bool                `json:"renotify,omitempty"`
	Vibrate            []int                `json:"vibrate,omitempty"`
	RequireInteraction *bool                `json:"requireInteraction,omitempty"`
	Silent             *bool                `json:"silent,omitempty"`
	Actions            []NotificationAction `json:"actions,omitempty"`
	Data               json.RawMessage      `json:"data,omitempty"`
	Timestamp          *int64               `json:"timestamp,omitempty"`
}

// NotificationAction is a button shown on a rendered notification.
type NotificationAction struct {
	Action string `json:"action"`
	Title  string `json:"title"`
	Icon   string `json:"icon,omitempty"`
}

// Notification is a fully defaulted notification ready to be shown.
type Notification struct {
	Title              string               `json:"title"`
	Body               string               `json:"body"`
	Icon               string               `json:"icon"`
	Badge              string               `json:"badge"`
	Image              string               `json:"image,omitempty"`
	Tag                string               `json:"tag,omitempty"`
	Renotify           bool                 `json:"renotify"`
	Vibrate            []int                `json:"vibrate"`
	RequireInteraction bool                 `json:"requireInteraction"`
	Silent             bool                 `json:"silent"`
	Actions            []NotificationAction `json:"actions,omitempty"`
	Data               json.RawMessage      `json:"data,omitempty"`
	Timestamp          int64                `json:"timestamp"`
}

// NotificationClick is delivered when the user clicks a shown notification.
type NotificationClick struct {
	Notification Notification `json:"notification"`
	Action       string       `json:"action,omitempty"`
}

// ClientMessage is posted to an open page over its message channel.
type ClientMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}
