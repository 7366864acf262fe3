// Package config loads runtime configuration from multiple sources (YAML files,
// profile-specific YAML overlays, environment variables, CLI flags) with
// precedence: CLI flags > Environment variables > Profile YAML > YAML config >
// Defaults. It exposes strongly typed settings to the rest of the application
// and the named properties rendered in the startup trace.
package config
