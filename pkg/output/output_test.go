package output

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"lanscout/pkg/types"
)

func TestWriterWritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devices.json")

	w, err := NewWriter(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	devices := []types.Device{
		{Addr: "192.168.1.1", HardwareAddr: "aa:bb:cc:dd:ee:01", Hostname: "router.lan", Reachable: true},
		{Addr: "192.168.1.20", Reachable: false},
	}
	for _, d := range devices {
		w.Write(d)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("could not open output file: %v", err)
	}
	defer f.Close()

	var got []types.Device
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var d types.Device
		if err := json.Unmarshal(scanner.Bytes(), &d); err != nil {
			t.Fatalf("invalid json line %q: %v", scanner.Text(), err)
		}
		got = append(got, d)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	if len(got) != len(devices) {
		t.Fatalf("expected %d lines, got %d", len(devices), len(got))
	}
	for i := range devices {
		if got[i] != devices[i] {
			t.Errorf("line %d: expected %+v, got %+v", i, devices[i], got[i])
		}
	}
}

func TestWriterEmptyClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devices.json")

	w, err := NewWriter(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("could not read output file: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("expected an empty file, got %q", data)
	}
}
