// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package proxy implements the background caching proxy.
//
// A [Registration] owns at most one active and one waiting [Worker]. Each
// worker is an [http.RoundTripper] bound to one cache version: it seeds its
// cache on install, evicts every other version on activation, and answers
// intercepted requests with a route-based strategy chosen by [Router].
//
// Control messages ([SkipWaiting], [CacheURLs]) and push events reach the
// registration through [Registration.Send] and are handled one at a time
// by [Registration.Run]. Open pages are tracked by [Clients].
package proxy
