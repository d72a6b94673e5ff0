// Package persistence provides database adapters implementing outbound ports.
package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"cargo_server/core/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// =============================================================================
// Shipment Adapter (PostgreSQL)
// =============================================================================

// ShipmentAdapter implements out.ShipmentReader and out.ShipmentEnricher.
// Reads are plain lookups; writes are guarded so that only empty fields fill
// and status only moves forward.
type ShipmentAdapter struct {
	db *sqlx.DB
}

// NewShipmentAdapter creates a new ShipmentAdapter.
func NewShipmentAdapter(db *sqlx.DB) *ShipmentAdapter {
	return &ShipmentAdapter{db: db}
}

const shipmentSelectColumns = `
	s.id, s.booking_number, s.bl_number, s.container_number, s.vessel_voyage,
	s.port_of_loading, s.port_of_discharge, s.carrier_name,
	s.status, s.workflow_state,
	s.etd, s.eta, s.cutoff_si, s.cutoff_vgm, s.cutoff_cargo,
	s.created_at, s.updated_at`

// shipmentRow represents the database row for shipments.
type shipmentRow struct {
	ID              uuid.UUID      `db:"id"`
	BookingNumber   sql.NullString `db:"booking_number"`
	BLNumber        sql.NullString `db:"bl_number"`
	ContainerNumber sql.NullString `db:"container_number"`
	VesselVoyage    sql.NullString `db:"vessel_voyage"`
	PortOfLoading   sql.NullString `db:"port_of_loading"`
	PortOfDischarge sql.NullString `db:"port_of_discharge"`
	CarrierName     sql.NullString `db:"carrier_name"`
	Status          string         `db:"status"`
	WorkflowState   sql.NullString `db:"workflow_state"`
	ETD             sql.NullTime   `db:"etd"`
	ETA             sql.NullTime   `db:"eta"`
	CutoffSI        sql.NullTime   `db:"cutoff_si"`
	CutoffVGM       sql.NullTime   `db:"cutoff_vgm"`
	CutoffCargo     sql.NullTime   `db:"cutoff_cargo"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

func (r *shipmentRow) toEntity() *domain.Shipment {
	s := &domain.Shipment{
		ID:              r.ID,
		BookingNumber:   r.BookingNumber.String,
		BLNumber:        r.BLNumber.String,
		ContainerNumber: r.ContainerNumber.String,
		VesselVoyage:    r.VesselVoyage.String,
		PortOfLoading:   r.PortOfLoading.String,
		PortOfDischarge: r.PortOfDischarge.String,
		CarrierName:     r.CarrierName.String,
		Status:          domain.ShipmentStatus(r.Status),
		WorkflowState:   domain.WorkflowState(r.WorkflowState.String),
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	if r.ETD.Valid {
		s.ETD = &r.ETD.Time
	}
	if r.ETA.Valid {
		s.ETA = &r.ETA.Time
	}
	if r.CutoffSI.Valid {
		s.CutoffSI = &r.CutoffSI.Time
	}
	if r.CutoffVGM.Valid {
		s.CutoffVGM = &r.CutoffVGM.Time
	}
	if r.CutoffCargo.Valid {
		s.CutoffCargo = &r.CutoffCargo.Time
	}
	return s
}

// GetByID retrieves a shipment by ID.
func (a *ShipmentAdapter) GetByID(ctx context.Context, id uuid.UUID) (*domain.Shipment, error) {
	query := fmt.Sprintf(`SELECT %s FROM shipments s WHERE s.id = $1`, shipmentSelectColumns)
	return a.getOne(ctx, query, id)
}

// FindByBookingNumber retrieves a shipment by its booking number.
func (a *ShipmentAdapter) FindByBookingNumber(ctx context.Context, value string) (*domain.Shipment, error) {
	query := fmt.Sprintf(`SELECT %s FROM shipments s WHERE UPPER(s.booking_number) = $1`, shipmentSelectColumns)
	return a.getOne(ctx, query, value)
}

// FindByBLNumber retrieves a shipment by its bill of lading number.
func (a *ShipmentAdapter) FindByBLNumber(ctx context.Context, value string) (*domain.Shipment, error) {
	query := fmt.Sprintf(`SELECT %s FROM shipments s WHERE UPPER(s.bl_number) = $1`, shipmentSelectColumns)
	return a.getOne(ctx, query, value)
}

// FindByContainerNumber retrieves a shipment by its container number.
func (a *ShipmentAdapter) FindByContainerNumber(ctx context.Context, value string) (*domain.Shipment, error) {
	query := fmt.Sprintf(`SELECT %s FROM shipments s WHERE UPPER(s.container_number) = $1`, shipmentSelectColumns)
	return a.getOne(ctx, query, value)
}

func (a *ShipmentAdapter) getOne(ctx context.Context, query string, arg any) (*domain.Shipment, error) {
	var row shipmentRow
	if err := a.db.GetContext(ctx, &row, query, arg); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get shipment: %w", err)
	}
	return row.toEntity(), nil
}

// FillEmptyFields writes only those update fields that are currently empty on
// the shipment row. The guard lives in SQL so concurrent enrichment cannot
// overwrite values that landed between read and write.
func (a *ShipmentAdapter) FillEmptyFields(ctx context.Context, id uuid.UUID, update *domain.ShipmentFieldUpdate) error {
	query := `
		UPDATE shipments SET
			bl_number         = COALESCE(NULLIF(bl_number, ''), NULLIF($2, ''), bl_number),
			container_number  = COALESCE(NULLIF(container_number, ''), NULLIF($3, ''), container_number),
			vessel_voyage     = COALESCE(NULLIF(vessel_voyage, ''), NULLIF($4, ''), vessel_voyage),
			port_of_loading   = COALESCE(NULLIF(port_of_loading, ''), NULLIF($5, ''), port_of_loading),
			port_of_discharge = COALESCE(NULLIF(port_of_discharge, ''), NULLIF($6, ''), port_of_discharge),
			etd          = COALESCE(etd, $7),
			eta          = COALESCE(eta, $8),
			cutoff_si    = COALESCE(cutoff_si, $9),
			cutoff_vgm   = COALESCE(cutoff_vgm, $10),
			cutoff_cargo = COALESCE(cutoff_cargo, $11),
			updated_at   = NOW()
		WHERE id = $1`

	_, err := a.db.ExecContext(ctx, query, id,
		update.BLNumber, update.ContainerNumber, update.VesselVoyage,
		update.PortOfLoading, update.PortOfDischarge,
		update.ETD, update.ETA,
		update.CutoffSI, update.CutoffVGM, update.CutoffCargo)
	if err != nil {
		return fmt.Errorf("failed to backfill shipment fields: %w", err)
	}
	return nil
}

// statusRank mirrors domain.ShipmentStatus.Priority for the SQL guard.
const statusRankCase = `
	CASE status
		WHEN 'draft' THEN 0
		WHEN 'booked' THEN 1
		WHEN 'in_transit' THEN 2
		WHEN 'arrived' THEN 3
		WHEN 'delivered' THEN 4
		ELSE -1
	END`

// UpgradeStatus sets the status only when the new value ranks further along,
// and never touches a cancelled shipment.
func (a *ShipmentAdapter) UpgradeStatus(ctx context.Context, id uuid.UUID, status domain.ShipmentStatus) error {
	query := fmt.Sprintf(`
		UPDATE shipments
		SET status = $2, updated_at = NOW()
		WHERE id = $1
		  AND status <> 'cancelled'
		  AND %s < CASE $2
			WHEN 'draft' THEN 0
			WHEN 'booked' THEN 1
			WHEN 'in_transit' THEN 2
			WHEN 'arrived' THEN 3
			WHEN 'delivered' THEN 4
			ELSE -1
		  END`, statusRankCase)

	if _, err := a.db.ExecContext(ctx, query, id, string(status)); err != nil {
		return fmt.Errorf("failed to upgrade shipment status: %w", err)
	}
	return nil
}

// SetWorkflowState records the shipment's current workflow state.
func (a *ShipmentAdapter) SetWorkflowState(ctx context.Context, id uuid.UUID, state domain.WorkflowState) error {
	query := `UPDATE shipments SET workflow_state = $2, updated_at = NOW() WHERE id = $1`
	if _, err := a.db.ExecContext(ctx, query, id, string(state)); err != nil {
		return fmt.Errorf("failed to set workflow state: %w", err)
	}
	return nil
}

// RecordMilestone appends a milestone event to the shipment timeline. The
// unique constraint on (shipment_id, state) makes repeated evidence for the
// same state idempotent.
func (a *ShipmentAdapter) RecordMilestone(ctx context.Context, id uuid.UUID, state domain.WorkflowState, sourceEmail uuid.UUID) error {
	query := `
		INSERT INTO shipment_milestones (shipment_id, state, source_email_id, recorded_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (shipment_id, state) DO NOTHING`

	if _, err := a.db.ExecContext(ctx, query, id, string(state), sourceEmail); err != nil {
		return fmt.Errorf("failed to record milestone: %w", err)
	}
	return nil
}

// ListMilestones returns the recorded workflow states for a shipment in the
// order they were recorded.
func (a *ShipmentAdapter) ListMilestones(ctx context.Context, id uuid.UUID) ([]domain.WorkflowState, error) {
	var states []string
	query := `SELECT state FROM shipment_milestones WHERE shipment_id = $1 ORDER BY recorded_at`

	if err := a.db.SelectContext(ctx, &states, query, id); err != nil {
		return nil, fmt.Errorf("failed to list milestones: %w", err)
	}

	out := make([]domain.WorkflowState, len(states))
	for i, s := range states {
		out[i] = domain.WorkflowState(s)
	}
	return out, nil
}
