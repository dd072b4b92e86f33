package net

import "testing"

func TestIsPrivateNetwork(t *testing.T) {
	t.Parallel()

	tests := []struct {
		host string
		want bool
	}{
		{"localhost", true},
		{"localhost:8080", true},
		{"127.0.0.1", true},
		{"10.1.2.3:9000", true},
		{"172.16.0.5", true},
		{"172.32.0.5", false},
		{"192.168.1.20", true},
		{"http://192.168.1.20:8123/api/webhook", true},
		{"[::1]:80", true},
		{"fd00::1", true},
		{"fe80::1", true},
		{"8.8.8.8", false},
		{"https://1.1.1.1/hook", false},
		{"2001:4860:4860::8888", false},
	}
	for _, tt := range tests {
		if got := IsPrivateNetwork(tt.host); got != tt.want {
			t.Fatalf("IsPrivateNetwork(%q) = %v, want %v", tt.host, got, tt.want)
		}
	}
}
