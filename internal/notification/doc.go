// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package notification turns inbound push deliveries into shown
// notifications and routes notification clicks to open pages.
//
// Payloads are backend-controlled and parsed tolerantly: a malformed or
// absent body still yields a notification built from defaults.
package notification
