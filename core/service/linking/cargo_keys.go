// Package linking implements shipment resolution: building identifier keys
// from entity extractions, resolving candidate shipments, scoring link
// confidence and applying the auto-link / suggestion / reject gates.
package linking

import (
	"strings"
	"time"

	"github.com/rs/zerolog"

	"cargo_server/core/domain"
)

// =============================================================================
// Linking Keys
// =============================================================================

// BuildLinkingKeys groups an email's entity extractions into candidate
// identifiers by type. Values are trimmed, uppercased and deduplicated;
// encounter order is preserved.
func BuildLinkingKeys(entities []*domain.EntityExtraction) *domain.LinkingKeys {
	keys := &domain.LinkingKeys{}
	seen := make(map[string]bool)

	for _, e := range entities {
		value := strings.ToUpper(strings.TrimSpace(e.Value))
		if value == "" {
			continue
		}
		dedup := string(e.Type) + ":" + value
		if seen[dedup] {
			continue
		}

		switch e.Type {
		case domain.EntityBookingNumber:
			keys.BookingNumbers = append(keys.BookingNumbers, value)
		case domain.EntityBLNumber:
			keys.BLNumbers = append(keys.BLNumbers, value)
		case domain.EntityContainerNumber:
			keys.ContainerNumbers = append(keys.ContainerNumbers, value)
		case domain.EntityVesselVoyage:
			keys.VesselVoyages = append(keys.VesselVoyages, value)
		default:
			continue
		}
		seen[dedup] = true
	}

	return keys
}

// =============================================================================
// Field Update Derivation
// =============================================================================

// Entity date values arrive in a handful of formats from the extraction
// collaborator.
var entityDateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02",
	"02 Jan 2006",
}

func parseEntityDate(value string) *time.Time {
	value = strings.TrimSpace(value)
	for _, layout := range entityDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}

// BuildFieldUpdate derives a fill-empty-only shipment update from an email's
// entities. The enricher guards against overwriting; this just collects
// candidate values. Date values that match none of the known layouts are
// dropped with a debug log so extraction regressions stay visible.
func BuildFieldUpdate(log zerolog.Logger, entities []*domain.EntityExtraction) *domain.ShipmentFieldUpdate {
	update := &domain.ShipmentFieldUpdate{}

	date := func(e *domain.EntityExtraction, value string) *time.Time {
		t := parseEntityDate(value)
		if t == nil {
			log.Debug().
				Str("entity_type", string(e.Type)).
				Str("value", value).
				Msg("unparseable entity date dropped")
		}
		return t
	}

	for _, e := range entities {
		value := strings.TrimSpace(e.Value)
		if value == "" {
			continue
		}
		switch e.Type {
		case domain.EntityBLNumber:
			if update.BLNumber == "" {
				update.BLNumber = strings.ToUpper(value)
			}
		case domain.EntityContainerNumber:
			if update.ContainerNumber == "" {
				update.ContainerNumber = strings.ToUpper(value)
			}
		case domain.EntityVesselVoyage:
			if update.VesselVoyage == "" {
				update.VesselVoyage = value
			}
		case domain.EntityPortOfLoading:
			if update.PortOfLoading == "" {
				update.PortOfLoading = value
			}
		case domain.EntityPortOfDischarge:
			if update.PortOfDischarge == "" {
				update.PortOfDischarge = value
			}
		case domain.EntityETD:
			if update.ETD == nil {
				update.ETD = date(e, value)
			}
		case domain.EntityETA:
			if update.ETA == nil {
				update.ETA = date(e, value)
			}
		case domain.EntityCutoffSI:
			if update.CutoffSI == nil {
				update.CutoffSI = date(e, value)
			}
		case domain.EntityCutoffVGM:
			if update.CutoffVGM == nil {
				update.CutoffVGM = date(e, value)
			}
		case domain.EntityCutoffCargo:
			if update.CutoffCargo == nil {
				update.CutoffCargo = date(e, value)
			}
		}
	}

	return update
}
