// Package output writes resolved devices to a JSON-lines file. Writes are
// batched so a large segment does not turn into one syscall per device.
package output

import (
	"encoding/json"
	"os"
	"time"

	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/utils/batcher"

	"lanscout/pkg/types"
)

var (
	// DefaultBatchSize is the number of devices buffered before a flush.
	DefaultBatchSize = 64
	// DefaultFlushInterval bounds how long a partial batch may linger.
	DefaultFlushInterval = 2 * time.Second
)

// Writer appends devices to a JSON-lines file through a batcher.
type Writer struct {
	file *os.File
	b    *batcher.Batcher[types.Device]
}

// NewWriter creates (or truncates) the file at path and starts the batcher.
func NewWriter(path string) (*Writer, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	w := &Writer{file: file}
	w.b = batcher.New(
		batcher.WithMaxCapacity[types.Device](DefaultBatchSize),
		batcher.WithFlushInterval[types.Device](DefaultFlushInterval),
		batcher.WithFlushCallback[types.Device](w.flush),
	)
	go w.b.Run()

	return w, nil
}

// Write enqueues one device. Safe to call from the scan's event callback.
func (w *Writer) Write(device types.Device) {
	w.b.Append(device)
}

// Close flushes pending devices and closes the file.
func (w *Writer) Close() error {
	w.b.Stop()
	w.b.WaitDone()
	return w.file.Close()
}

// flush runs on the batcher goroutine.
func (w *Writer) flush(devices []types.Device) {
	for _, device := range devices {
		line, err := json.Marshal(device)
		if err != nil {
			gologger.Warning().Msgf("failed to marshal device %s: %v", device.Addr, err)
			continue
		}
		if _, err := w.file.Write(append(line, '\n')); err != nil {
			gologger.Warning().Msgf("failed to write device %s: %v", device.Addr, err)
		}
	}
}
