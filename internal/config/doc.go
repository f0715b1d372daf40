// Package config loads, validates and persists YAML settings for the
// alarm-registry binary: shell prompt, expiry-poll interval and log level.
// A missing file at the default path is not an error; defaults apply.
package config
