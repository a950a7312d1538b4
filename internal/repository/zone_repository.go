package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"

	"github.com/jengzang/zonemap-backend-go/internal/database"
	"github.com/jengzang/zonemap-backend-go/internal/models"
)

// ZoneRepository handles database operations for zones
type ZoneRepository struct {
	db *sql.DB
}

// NewZoneRepository creates a new zone repository
func NewZoneRepository(db *sql.DB) *ZoneRepository {
	return &ZoneRepository{db: db}
}

const zoneColumns = `id, name, polygon_json, centroid_lat, centroid_lng,
		occupancy_pct, viabilization_pct, area_hectares, status,
		lots_available, lots_assigned, lots_reserved, lots_viabilized`

// List returns every zone in ingest order
func (r *ZoneRepository) List(ctx context.Context) ([]models.Zone, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+zoneColumns+` FROM zones ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to query zones: %w", err)
	}
	defer rows.Close()

	zones := make([]models.Zone, 0)
	for rows.Next() {
		z, err := scanZone(rows)
		if err != nil {
			return nil, err
		}
		zones = append(zones, z)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate zones: %w", err)
	}
	return zones, nil
}

// GetByID retrieves a single zone, nil when it does not exist
func (r *ZoneRepository) GetByID(ctx context.Context, id models.ZoneID) (*models.Zone, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+zoneColumns+` FROM zones WHERE id = ?`, string(id))
	z, err := scanZone(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &z, nil
}

// Upsert inserts or updates zones by id in one transaction. Existing zones
// keep their position in the listing order.
func (r *ZoneRepository) Upsert(ctx context.Context, zones []models.Zone) (int, error) {
	query := `INSERT INTO zones (` + zoneColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			polygon_json = excluded.polygon_json,
			centroid_lat = excluded.centroid_lat,
			centroid_lng = excluded.centroid_lng,
			occupancy_pct = excluded.occupancy_pct,
			viabilization_pct = excluded.viabilization_pct,
			area_hectares = excluded.area_hectares,
			status = excluded.status,
			lots_available = excluded.lots_available,
			lots_assigned = excluded.lots_assigned,
			lots_reserved = excluded.lots_reserved,
			lots_viabilized = excluded.lots_viabilized,
			updated_at = CURRENT_TIMESTAMP`

	err := database.Transaction(ctx, r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare zone upsert: %w", err)
		}
		defer stmt.Close()

		for _, z := range zones {
			var polygon interface{}
			if len(z.Polygon) > 0 {
				data, err := json.Marshal(z.Polygon)
				if err != nil {
					return fmt.Errorf("failed to encode polygon of zone %s: %w", z.ID, err)
				}
				polygon = string(data)
			}

			var lat, lng interface{}
			if z.HasMarker() {
				lat, lng = z.Centroid.Lat, z.Centroid.Lng
			}

			_, err := stmt.ExecContext(ctx,
				string(z.ID), z.Name, polygon, lat, lng,
				nullFloat(z.OccupancyPct), nullFloat(z.ViabilizationPct), nullFloat(z.AreaHectares), z.Status,
				z.Lots.Available, z.Lots.Assigned, z.Lots.Reserved, z.Lots.Viabilized,
			)
			if err != nil {
				return fmt.Errorf("failed to upsert zone %s: %w", z.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(zones), nil
}

// Delete removes a zone and reports whether it existed
func (r *ZoneRepository) Delete(ctx context.Context, id models.ZoneID) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM zones WHERE id = ?`, string(id))
	if err != nil {
		return false, fmt.Errorf("failed to delete zone: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete zone: %w", err)
	}
	return n > 0, nil
}

// Count returns the number of stored zones
func (r *ZoneRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM zones`).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count zones: %w", err)
	}
	return total, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanZone(s scanner) (models.Zone, error) {
	var (
		z                     models.Zone
		id                    string
		polygon               sql.NullString
		lat, lng              sql.NullFloat64
		occupancy, viab, area sql.NullFloat64
		status                sql.NullString
	)
	err := s.Scan(
		&id, &z.Name, &polygon, &lat, &lng,
		&occupancy, &viab, &area, &status,
		&z.Lots.Available, &z.Lots.Assigned, &z.Lots.Reserved, &z.Lots.Viabilized,
	)
	if err == sql.ErrNoRows {
		return z, err
	}
	if err != nil {
		return z, fmt.Errorf("failed to scan zone: %w", err)
	}

	z.ID = models.ZoneID(id)
	if polygon.Valid && polygon.String != "" {
		if err := json.Unmarshal([]byte(polygon.String), &z.Polygon); err != nil {
			return z, fmt.Errorf("failed to decode polygon of zone %s: %w", id, err)
		}
	}
	if lat.Valid && lng.Valid {
		z.Centroid = &models.LatLng{Lat: lat.Float64, Lng: lng.Float64}
	}
	z.OccupancyPct = floatPtr(occupancy)
	z.ViabilizationPct = floatPtr(viab)
	z.AreaHectares = floatPtr(area)
	if status.Valid {
		st := status.String
		z.Status = &st
	}
	return z, nil
}

func nullFloat(f *float64) interface{} {
	if f == nil || math.IsNaN(*f) || math.IsInf(*f, 0) {
		return nil
	}
	return *f
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}
