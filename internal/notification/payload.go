package notification

import (
	"encoding/json"

	"github.com/MKhiriev/go-fit-offline/models"
)

// DefaultVibrate is the vibration pattern used when the payload has none.
var DefaultVibrate = []int{100, 50, 100}

// DefaultClickPath is opened when a clicked notification names no path.
const DefaultClickPath = "/"

// ParsePayload decodes a push body. It never fails: malformed or empty
// input yields the zero payload.
func ParsePayload(raw []byte) models.NotificationPayload {
	var p models.NotificationPayload
	if len(raw) == 0 {
		return p
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		// a body of the wrong shape may still carry usable fields
		return parseLoose(raw)
	}
	return p
}

// parseLoose keeps every field that decodes on its own.
func parseLoose(raw []byte) models.NotificationPayload {
	var fields map[string]json.RawMessage
	var p models.NotificationPayload
	if err := json.Unmarshal(raw, &fields); err != nil {
		return p
	}

	str := func(key string) *string {
		var s string
		if v, ok := fields[key]; ok && json.Unmarshal(v, &s) == nil {
			return &s
		}
		return nil
	}
	boolean := func(key string) *bool {
		var b bool
		if v, ok := fields[key]; ok && json.Unmarshal(v, &b) == nil {
			return &b
		}
		return nil
	}

	p.Title = str("title")
	p.Body = str("body")
	p.Icon = str("icon")
	p.Badge = str("badge")
	p.Image = str("image")
	p.Tag = str("tag")
	p.Renotify = boolean("renotify")
	p.RequireInteraction = boolean("requireInteraction")
	p.Silent = boolean("silent")
	if v, ok := fields["vibrate"]; ok {
		_ = json.Unmarshal(v, &p.Vibrate)
	}
	if v, ok := fields["actions"]; ok {
		_ = json.Unmarshal(v, &p.Actions)
	}
	if v, ok := fields["timestamp"]; ok {
		var ts int64
		if json.Unmarshal(v, &ts) == nil {
			p.Timestamp = &ts
		}
	}
	p.Data = fields["data"]
	return p
}

// ClickPath returns data.path when it is a plain string, otherwise "/".
func ClickPath(data json.RawMessage) string {
	var d struct {
		Path json.RawMessage `json:"path"`
	}
	if len(data) == 0 || json.Unmarshal(data, &d) != nil {
		return DefaultClickPath
	}

	var path string
	if json.Unmarshal(d.Path, &path) != nil || path == "" {
		return DefaultClickPath
	}
	return path
}
