// Package config loads, normalizes, and validates pcbwatch configuration.
//
// Configuration lives in a TOML file (default ~/.config/pcbwatch/config.toml)
// and is decoded into a Config value with all path fields expanded to
// absolute locations. Every artifact path the daemon touches is derived from
// the configured data directory so callers never assemble paths by hand.
package config
