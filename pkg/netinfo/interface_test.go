package netinfo

import (
	"errors"
	"testing"

	"lanscout/pkg/types"
)

func TestInterfaceValidate(t *testing.T) {
	tests := []struct {
		name    string
		iface   *Interface
		wantErr bool
	}{
		{"valid", &Interface{Name: "eth0", CIDR: "192.168.1.5/24"}, false},
		{"nil", nil, true},
		{"empty name", &Interface{CIDR: "192.168.1.5/24"}, true},
		{"empty cidr", &Interface{Name: "eth0"}, true},
		{"bare address", &Interface{Name: "eth0", CIDR: "192.168.1.5"}, true},
		{"ipv6", &Interface{Name: "eth0", CIDR: "fe80::1/64"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.iface.Validate()
			if tt.wantErr {
				var cfgErr *types.ConfigurationError
				if !errors.As(err, &cfgErr) {
					t.Fatalf("expected a configuration error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestBroadcastAddr(t *testing.T) {
	tests := []struct {
		name string
		cidr string
		want string
	}{
		{"slash 24", "192.168.1.5/24", "192.168.1.255"},
		{"slash 16", "10.1.2.3/16", "10.1.255.255"},
		{"slash 28", "192.168.1.17/28", "192.168.1.31"},
		{"slash 32", "192.168.1.5/32", "192.168.1.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			iface := &Interface{Name: "eth0", CIDR: tt.cidr}
			got, err := iface.BroadcastAddr()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestInterfaceAddr(t *testing.T) {
	iface := &Interface{Name: "eth0", CIDR: "192.168.1.5/24"}
	addr, err := iface.Addr()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if addr.String() != "192.168.1.5" {
		t.Errorf("expected the interface's own address, got %s", addr)
	}

	network, err := iface.Network()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if network.String() != "192.168.1.0/24" {
		t.Errorf("expected the subnet, got %s", network)
	}
}
