package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/emberfall/warcouncil/internal/storage"
)

// AppendTelemetryEvent persists one operational event.
func (s *Store) AppendTelemetryEvent(ctx context.Context, evt storage.TelemetryEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	metadata := "{}"
	if len(evt.Metadata) > 0 {
		encoded, err := json.Marshal(evt.Metadata)
		if err != nil {
			return fmt.Errorf("marshal telemetry metadata: %w", err)
		}
		metadata = string(encoded)
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO telemetry_events (timestamp, severity, component, message, metadata)
VALUES (?, ?, ?, ?, ?)
`,
		toMillis(evt.Timestamp),
		evt.Severity,
		evt.Component,
		evt.Message,
		metadata,
	)
	if err != nil {
		return fmt.Errorf("append telemetry event: %w", err)
	}
	return nil
}
