// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client assembles the offline layer that runs next to the fitness
// app on the user's device.
//
// It wires local storage, the caching proxy, the mutation queue and its
// reconciler, push handling and the local gateway into a single process
// lifecycle driven by one context.
package client
