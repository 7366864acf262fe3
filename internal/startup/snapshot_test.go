package startup

import (
	"errors"
	"net"
	"os"
	"slices"
	"testing"
)

func TestNewSnapshotCopiesInputs(t *testing.T) {
	props := map[string]string{PropertyServerPort: "8080"}
	profiles := []string{"dev"}

	snapshot := NewSnapshot(props, profiles)
	props[PropertyServerPort] = "9090"
	profiles[0] = "prod"

	if got, _ := snapshot.Property(PropertyServerPort); got != "8080" {
		t.Fatalf("expected snapshot to keep 8080, got %s", got)
	}
	if got := snapshot.Profiles(); !slices.Equal(got, []string{"dev"}) {
		t.Fatalf("expected snapshot to keep [dev], got %v", got)
	}
}

func TestSnapshotProperty(t *testing.T) {
	snapshot := NewSnapshot(map[string]string{PropertyApplicationName: ""}, nil)

	if _, ok := snapshot.Property(PropertyApplicationName); !ok {
		t.Fatalf("expected blank property to be present")
	}
	if _, ok := snapshot.Property(PropertyKeyStore); ok {
		t.Fatalf("expected unset property to be absent")
	}
}

func TestSnapshotHasWebServer(t *testing.T) {
	if NewSnapshot(nil, nil).HasWebServer() {
		t.Fatalf("expected no web server without port")
	}
	if NewSnapshot(map[string]string{PropertyServerPort: " "}, nil).HasWebServer() {
		t.Fatalf("expected no web server for blank port")
	}
	if !NewSnapshot(map[string]string{PropertyServerPort: "8080"}, nil).HasWebServer() {
		t.Fatalf("expected web server for configured port")
	}
}

func TestLocalHostAddress(t *testing.T) {
	t.Cleanup(func() {
		hostname = os.Hostname
		lookupHost = net.LookupHost
	})

	hostname = func() (string, error) { return "node-1", nil }

	t.Run("prefers ipv4", func(t *testing.T) {
		lookupHost = func(string) ([]string, error) { return []string{"fe80::1", "192.168.1.20"}, nil }
		got, err := LocalHostAddress()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "192.168.1.20" {
			t.Fatalf("expected ipv4 address, got %s", got)
		}
	})

	t.Run("falls back to first address", func(t *testing.T) {
		lookupHost = func(string) ([]string, error) { return []string{"fe80::1"}, nil }
		got, err := LocalHostAddress()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "fe80::1" {
			t.Fatalf("expected ipv6 address, got %s", got)
		}
	})

	t.Run("no addresses", func(t *testing.T) {
		lookupHost = func(string) ([]string, error) { return nil, nil }
		if _, err := LocalHostAddress(); !errors.Is(err, ErrNoHostAddress) {
			t.Fatalf("expected ErrNoHostAddress, got %v", err)
		}
	})

	t.Run("lookup failure", func(t *testing.T) {
		lookupHost = func(string) ([]string, error) { return nil, errors.New("no such host") }
		if _, err := LocalHostAddress(); err == nil {
			t.Fatalf("expected lookup error")
		}
	})

	t.Run("hostname failure", func(t *testing.T) {
		hostname = func() (string, error) { return "", errors.New("unavailable") }
		if _, err := LocalHostAddress(); err == nil {
			t.Fatalf("expected hostname error")
		}
	})
}
