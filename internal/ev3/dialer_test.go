package ev3

import (
	"testing"

	"github.com/NStrijbosch/pybricksdev/internal/testutil/testlog"
)

func TestHostPortDefaultsTo22(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		in, want string
	}{
		{"192.168.133.101", "192.168.133.101:22"},
		{"ev3dev.local", "ev3dev.local:22"},
		{"192.168.133.101:2222", "192.168.133.101:2222"},
	}
	for _, tc := range cases {
		got, err := hostPort(tc.in)
		if err != nil {
			t.Fatalf("hostPort %q: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("hostPort %q: got %q want %q", tc.in, got, tc.want)
		}
	}
}

func TestHostPortRejectsEmptyAddress(t *testing.T) {
	testlog.Start(t)
	if _, err := hostPort("   "); err == nil {
		t.Fatalf("expected error for empty address")
	}
}

func TestClientConfigRequiresUser(t *testing.T) {
	testlog.Start(t)
	d := Dialer{Config: Config{Password: "maker"}}
	if _, err := d.clientConfig(); err == nil {
		t.Fatalf("expected error without user")
	}
}

func TestClientConfigRequiresSomeAuth(t *testing.T) {
	testlog.Start(t)
	d := Dialer{Config: Config{User: "robot"}}
	if _, err := d.clientConfig(); err == nil {
		t.Fatalf("expected error without password or key")
	}
}

func TestClientConfigPasswordAuth(t *testing.T) {
	testlog.Start(t)
	cfg := DefaultConfig()
	cfg.InsecureSkipHostKeyChecking = true
	d := Dialer{Config: cfg}

	cc, err := d.clientConfig()
	if err != nil {
		t.Fatalf("client config: %v", err)
	}
	if cc.User != DefaultUser {
		t.Fatalf("user: %q", cc.User)
	}
	if len(cc.Auth) != 1 {
		t.Fatalf("expected one auth method, got %d", len(cc.Auth))
	}
}
