package linking

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"cargo_server/core/domain"
)

func TestBuildLinkingKeysDedupes(t *testing.T) {
	entities := []*domain.EntityExtraction{
		{Type: domain.EntityBookingNumber, Value: " bk123 "},
		{Type: domain.EntityBookingNumber, Value: "BK123"},
		{Type: domain.EntityContainerNumber, Value: "MSCU1234567"},
		{Type: domain.EntityBLNumber, Value: ""},
	}

	keys := BuildLinkingKeys(entities)

	if len(keys.BookingNumbers) != 1 || keys.BookingNumbers[0] != "BK123" {
		t.Errorf("BookingNumbers = %v, want [BK123]", keys.BookingNumbers)
	}
	if len(keys.ContainerNumbers) != 1 {
		t.Errorf("ContainerNumbers = %v, want one entry", keys.ContainerNumbers)
	}
	if len(keys.BLNumbers) != 0 {
		t.Errorf("BLNumbers = %v, want empty", keys.BLNumbers)
	}
}

func TestBuildFieldUpdateParsesKnownDateLayouts(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Time
	}{
		{"rfc3339", "2026-03-15T08:00:00Z", time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC)},
		{"date with time", "2026-03-15 08:00", time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC)},
		{"date only", "2026-03-15", time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"day month year", "15 Mar 2026", time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			update := BuildFieldUpdate(zerolog.Nop(), []*domain.EntityExtraction{
				{Type: domain.EntityETA, Value: tt.value},
			})
			if update.ETA == nil {
				t.Fatalf("ETA = nil, want %v", tt.want)
			}
			if !update.ETA.Equal(tt.want) {
				t.Errorf("ETA = %v, want %v", update.ETA, tt.want)
			}
		})
	}
}

func TestBuildFieldUpdateLogsDroppedDates(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	update := BuildFieldUpdate(log, []*domain.EntityExtraction{
		{Type: domain.EntityETD, Value: "next Tuesday"},
		{Type: domain.EntityETA, Value: "2026-03-20"},
	})

	if update.ETD != nil {
		t.Errorf("ETD = %v, want nil for unparseable value", update.ETD)
	}
	if update.ETA == nil {
		t.Error("ETA = nil, want parsed date")
	}

	out := buf.String()
	if !strings.Contains(out, "unparseable entity date dropped") {
		t.Errorf("expected drop log, got %q", out)
	}
	if !strings.Contains(out, "next Tuesday") {
		t.Errorf("expected dropped value in log, got %q", out)
	}
}
