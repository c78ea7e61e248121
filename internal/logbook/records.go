package logbook

import (
	"fmt"
	"os"

	"hotspot-monitor/internal/models"
)

// appendRecord mirrors an event into the plain-text records file. The
// database row is the source of truth, so a failed append is only logged.
func (lb *Logbook) appendRecord(event models.LogEvent) {
	if lb.opts.RecordsFile == "" {
		return
	}

	f, err := os.OpenFile(lb.opts.RecordsFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		lb.logger.WithError(err).WithField("file", lb.opts.RecordsFile).Error("Failed to open records file")
		return
	}
	defer f.Close()

	if _, err := fmt.Fprintln(f, event.String()); err != nil {
		lb.logger.WithError(err).WithField("file", lb.opts.RecordsFile).Error("Failed to append record")
	}
}
