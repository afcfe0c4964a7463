package util

import (
	"strings"
	"testing"
)

func TestFormatBytes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		bytes    int64
		expected string
	}{
		{name: "zero bytes", bytes: 0, expected: "0 B"},
		{name: "bytes under kilobyte", bytes: 512, expected: "512 B"},
		{name: "exact kilobyte", bytes: 1024, expected: "1.0 KB"},
		{name: "fractional kilobyte", bytes: 1536, expected: "1.5 KB"},
		{name: "avatar limit", bytes: 2 * 1024 * 1024, expected: "2.0 MB"},
		{name: "gigabyte", bytes: 5 * 1024 * 1024 * 1024, expected: "5.0 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := FormatBytes(tt.bytes); got != tt.expected {
				t.Fatalf("FormatBytes(%d) = %s, want %s", tt.bytes, got, tt.expected)
			}
		})
	}
}

func TestFormatMinutes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		minutes  int
		expected string
	}{
		{name: "zero", minutes: 0, expected: "0m"},
		{name: "one pomodoro", minutes: 25, expected: "25m"},
		{name: "exact hour", minutes: 60, expected: "1h00m"},
		{name: "hours and minutes", minutes: 125, expected: "2h05m"},
		{name: "negative", minutes: -30, expected: "-30m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := FormatMinutes(tt.minutes); got != tt.expected {
				t.Fatalf("FormatMinutes(%d) = %s, want %s", tt.minutes, got, tt.expected)
			}
		})
	}
}

func TestChecksum(t *testing.T) {
	t.Parallel()

	got, err := Checksum(strings.NewReader("abc"))
	if err != nil {
		t.Fatalf("Checksum returned error: %v", err)
	}

	const want = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got != want {
		t.Fatalf("Checksum(abc) = %s, want %s", got, want)
	}
}
