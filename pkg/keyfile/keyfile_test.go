package keyfile

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		keys []int32
	}{
		{name: "small", keys: []int32{-5, 0, 3, 3, 1000}},
		{name: "single", keys: []int32{42}},
		{name: "empty", keys: []int32{}},
		{name: "extremes", keys: []int32{-2147483648, 2147483647}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "keys.fidx")
			if err := Write(path, tt.keys); err != nil {
				t.Fatalf("Write: %v", err)
			}

			got, err := Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if len(got) != len(tt.keys) {
				t.Fatalf("Load returned %d keys, want %d", len(got), len(tt.keys))
			}
			for i := range got {
				if got[i] != tt.keys[i] {
					t.Errorf("keys[%d] = %d, want %d", i, got[i], tt.keys[i])
				}
			}
		})
	}
}

func TestWriteRejectsUnsorted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.fidx")
	err := Write(path, []int32{3, 1, 2})
	if !errors.Is(err, ErrUnsorted) {
		t.Fatalf("Write error = %v, want ErrUnsorted", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("Write left a file behind after rejecting input")
	}
}

func TestLoadBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.fidx")
	if err := os.WriteFile(path, make([]byte, headerSize), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, ErrBadMagic) {
		t.Fatalf("Load error = %v, want ErrBadMagic", err)
	}
}

func TestLoadBadVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.fidx")
	buf := make([]byte, headerSize)
	binary.LittleEndian.PutUint32(buf[0:], Magic)
	binary.LittleEndian.PutUint16(buf[4:], 99)
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, ErrBadVersion) {
		t.Fatalf("Load error = %v, want ErrBadVersion", err)
	}
}

func TestLoadTruncated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.fidx")
	if err := Write(path, []int32{1, 2, 3, 4, 5}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data[:len(data)-8], 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, ErrTruncated) {
		t.Fatalf("Load error = %v, want ErrTruncated", err)
	}
}

func TestLoadUnsortedBody(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.fidx")
	if err := Write(path, []int32{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	// Corrupt the middle key downwards.
	neg := int32(-9)
	binary.LittleEndian.PutUint32(data[headerSize+4:], uint32(neg))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, ErrUnsorted) {
		t.Fatalf("Load error = %v, want ErrUnsorted", err)
	}
}
