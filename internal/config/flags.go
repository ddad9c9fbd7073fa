package config

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"strconv"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// ParseFlags parses configuration flags from args into a sparse
// [StructuredConfig]; unset flags stay zero so that merging keeps values
// from other sources.
//
// Flags:
//
//	-a local gateway address in format [host]:[port]
//	-b backend address (e.g. https://api.example.com)
//	-api-base path prefix for queued endpoints
//	-d database DSN
//	-c/-config json file path with configs
//	-cache-version current cache version token
//	-request-timeout outbound request timeout (e.g., "15s")
//	-settle-delay delay before draining after reconnection (e.g., "1s")
//	-queue-capacity mutation queue capacity
//	-hash-key HMAC key for the integrity header
//	-push-endpoint push relay origin
//	-log-level minimum log level (debug, info, warn, error)
func ParseFlags(args []string) (*StructuredConfig, error) {
	fs := flag.NewFlagSet("go-fit-offline", flag.ContinueOnError)

	var listenAddress NetAddress
	var backendAddress string
	var apiBase string
	var databaseDSN string
	var jsonConfigPath string
	var cacheVersion string
	var requestTimeout time.Duration
	var settleDelay time.Duration
	var queueCapacity int
	var hashKey string
	var pushEndpoint string
	var logLevel string

	fs.Var(&listenAddress, "a", "Local gateway address host:port")
	fs.StringVar(&backendAddress, "b", "", "Backend address")
	fs.StringVar(&apiBase, "api-base", "", "API base path")
	fs.StringVar(&databaseDSN, "d", "", "Database DSN")
	fs.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	fs.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	fs.StringVar(&cacheVersion, "cache-version", "", "Current cache version")
	fs.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 15s)")
	fs.DurationVar(&settleDelay, "settle-delay", 0, "Settle delay after reconnection (e.g., 1s)")
	fs.IntVar(&queueCapacity, "queue-capacity", 0, "Mutation queue capacity")
	fs.StringVar(&hashKey, "hash-key", "", "Security hash key")
	fs.StringVar(&pushEndpoint, "push-endpoint", "", "Push relay origin")
	fs.StringVar(&logLevel, "log-level", "", "Minimum log level")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	return &StructuredConfig{
		App: App{
			CacheVersion: cacheVersion,
			HashKey:      hashKey,
			LogLevel:     logLevel,
		},
		Storage: Storage{
			DB: DB{DSN: databaseDSN},
		},
		Adapter: Adapter{
			HTTPAddress:    backendAddress,
			APIBase:        apiBase,
			RequestTimeout: requestTimeout,
		},
		Proxy: Proxy{
			ListenAddress: listenAddress.String(),
		},
		Queue: Queue{
			Capacity: queueCapacity,
		},
		Workers: Workers{
			SettleDelay: settleDelay,
		},
		Push: Push{
			EndpointBase: pushEndpoint,
		},
		JSONFilePath: jsonConfigPath,
	}, nil
}

// String returns the address as host:port, bracketing IPv6 hosts. An unset
// address is the empty string.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return net.JoinHostPort(a.Host, strconv.Itoa(a.Port))
}

// Set parses host:port. The host is "localhost" or a literal IP (IPv6 in
// brackets) since the gateway only listens on local interfaces.
func (a *NetAddress) Set(s string) error {
	host, rawPort, err := net.SplitHostPort(s)
	if err != nil {
		return fmt.Errorf("need address in a form `host:port`: %w", err)
	}

	port, err := strconv.Atoi(rawPort)
	if err != nil {
		return err
	}
	if port < 1 || port > 65535 {
		return errors.New("port number must be in 1..65535")
	}

	if host != "localhost" && net.ParseIP(host) == nil {
		return errors.New("incorrect IP-address provided")
	}

	a.Host = host
	a.Port = port
	return nil
}
