package export

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	applog "registro/internal/log"
)

// Deliverer hands an export to the user. Best effort; a deliverer reports
// the fault but the exported bytes are already final.
type Deliverer interface {
	Deliver(data []byte, filename, mimeType string) error
}

// FileDeliverer saves exports into a local directory. It is the delivery
// path for the export CLI; in the web UI the browser download takes its
// place.
type FileDeliverer struct {
	Dir string
}

func (d FileDeliverer) Deliver(data []byte, filename, _ string) error {
	if err := os.MkdirAll(d.Dir, 0755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}

	path := filepath.Join(d.Dir, filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write export file: %w", err)
	}

	slog.Info("Export delivered", applog.FieldFilename, path, "size_bytes", len(data))
	return nil
}
