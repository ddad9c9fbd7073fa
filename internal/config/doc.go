// Package config provides configuration loading, merging, and validation
// facilities for the offline layer.
//
// Configuration is assembled from multiple sources in the following priority
// order (later sources override earlier non-zero fields):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON config file
//
// Anything left unset afterwards takes the value from [Defaults]. The main
// entry point is [GetStructuredConfig]; the resulting value is constructed
// once per process and handed to every component, so cache names and queue
// storage keys never live in package-level globals.
package config
