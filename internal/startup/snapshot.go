package startup

import "strings"

// Property names understood by the formatter.
const (
	PropertyApplicationName    = "app.name"
	PropertyServerPort         = "server.port"
	PropertyKeyStore           = "server.tls.key_store"
	PropertyContextPath        = "server.context_path"
	PropertyConfigServerStatus = "config_server.status"
)

// Snapshot is an immutable view of the configuration values needed to render
// a startup trace.
type Snapshot struct {
	properties map[string]string
	profiles   []string
}

// NewSnapshot copies the given properties and profiles into a Snapshot.
func NewSnapshot(properties map[string]string, profiles []string) Snapshot {
	props := make(map[string]string, len(properties))
	for k, v := range properties {
		props[k] = v
	}

	return Snapshot{
		properties: props,
		profiles:   append([]string(nil), profiles...),
	}
}

// Property returns the named value and whether it was set at all.
func (s Snapshot) Property(name string) (string, bool) {
	v, ok := s.properties[name]
	return v, ok
}

// Profiles returns a copy of the active profiles in their original order.
func (s Snapshot) Profiles() []string {
	return append([]string(nil), s.profiles...)
}

// HasWebServer reports whether a web server port is configured.
func (s Snapshot) HasWebServer() bool {
	return !isBlank(s.value(PropertyServerPort))
}

func (s Snapshot) value(name string) string {
	return s.properties[name]
}

func isBlank(v string) bool {
	return strings.TrimSpace(v) == ""
}
