package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/trackmap-service/internal/domain"
	"github.com/trackmap-service/internal/domain/repository"
)

type geozoneRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewGeozoneRepository creates a Postgres-backed GeozoneRepository
func NewGeozoneRepository(db *DB, logger *zap.Logger) repository.GeozoneRepository {
	return &geozoneRepository{
		db:     db,
		logger: logger,
	}
}

// geozoneRow mirrors the geozones table. Vertex coordinates are stored
// as two aligned float8 arrays; 0/0 entries keep their slot so vertex
// indexes survive a round trip.
type geozoneRow struct {
	ID           uuid.UUID       `db:"id"`
	AccountID    string          `db:"account_id"`
	Name         string          `db:"name"`
	ZoneType     int             `db:"zone_type"`
	RadiusM      float64         `db:"radius_m"`
	Color        string          `db:"color"`
	PrimaryIndex int             `db:"primary_index"`
	Editable     bool            `db:"editable"`
	PointLats    pq.Float64Array `db:"point_lats"`
	PointLons    pq.Float64Array `db:"point_lons"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at"`
}

func rowFromZone(zone *domain.Geozone) *geozoneRow {
	lats := make(pq.Float64Array, len(zone.Points))
	lons := make(pq.Float64Array, len(zone.Points))
	for i, zp := range zone.Points {
		lats[i] = zp.Point.Lat
		lons[i] = zp.Point.Lon
	}
	return &geozoneRow{
		ID:           zone.ID,
		AccountID:    zone.AccountID,
		Name:         zone.Name,
		ZoneType:     int(zone.Type),
		RadiusM:      zone.RadiusMeters,
		Color:        zone.Color,
		PrimaryIndex: zone.PrimaryIndex,
		Editable:     zone.Editable,
		PointLats:    lats,
		PointLons:    lons,
		CreatedAt:    zone.CreatedAt,
		UpdatedAt:    zone.UpdatedAt,
	}
}

func (r *geozoneRow) toZone() *domain.Geozone {
	n := len(r.PointLats)
	if len(r.PointLons) < n {
		n = len(r.PointLons)
	}
	points := make([]domain.ZonePoint, n)
	for i := 0; i < n; i++ {
		points[i] = domain.ZonePoint{
			Index: i,
			Point: domain.GeoPoint{Lat: r.PointLats[i], Lon: r.PointLons[i]},
		}
	}
	return &domain.Geozone{
		ID:           r.ID,
		AccountID:    r.AccountID,
		Name:         r.Name,
		Type:         domain.ZoneType(r.ZoneType),
		RadiusMeters: r.RadiusM,
		Color:        r.Color,
		Points:       points,
		PrimaryIndex: r.PrimaryIndex,
		Editable:     r.Editable,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

const geozoneColumns = `id, account_id, name, zone_type, radius_m, color,
	primary_index, editable, point_lats, point_lons, created_at, updated_at`

// Create stores a new geozone
func (r *geozoneRepository) Create(ctx context.Context, zone *domain.Geozone) error {
	if zone.ID == uuid.Nil {
		zone.ID = uuid.New()
	}
	now := time.Now().UTC()
	zone.CreatedAt = now
	zone.UpdatedAt = now

	query := `
		INSERT INTO geozones (` + geozoneColumns + `)
		VALUES (:id, :account_id, :name, :zone_type, :radius_m, :color,
			:primary_index, :editable, :point_lats, :point_lons, :created_at, :updated_at)`

	if _, err := r.db.NamedExecContext(ctx, query, rowFromZone(zone)); err != nil {
		r.logger.Error("Failed to create geozone",
			zap.String("geozone_id", zone.ID.String()), zap.Error(err))
		return fmt.Errorf("create geozone: %w", err)
	}

	r.logger.Info("Geozone created",
		zap.String("geozone_id", zone.ID.String()),
		zap.String("account_id", zone.AccountID))
	return nil
}

// GetByID returns a geozone, or nil when it does not exist
func (r *geozoneRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Geozone, error) {
	query := `SELECT ` + geozoneColumns + ` FROM geozones WHERE id = $1`

	var row geozoneRow
	err := r.db.GetContext(ctx, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get geozone",
			zap.String("geozone_id", id.String()), zap.Error(err))
		return nil, fmt.Errorf("get geozone: %w", err)
	}

	return row.toZone(), nil
}

// ListByAccount returns the account's geozones ordered by name
func (r *geozoneRepository) ListByAccount(ctx context.Context, accountID string) ([]*domain.Geozone, error) {
	query := `SELECT ` + geozoneColumns + ` FROM geozones
		WHERE account_id = $1 ORDER BY name`

	var rows []geozoneRow
	if err := r.db.SelectContext(ctx, &rows, query, accountID); err != nil {
		r.logger.Error("Failed to list geozones",
			zap.String("account_id", accountID), zap.Error(err))
		return nil, fmt.Errorf("list geozones: %w", err)
	}

	zones := make([]*domain.Geozone, 0, len(rows))
	for i := range rows {
		zones = append(zones, rows[i].toZone())
	}
	return zones, nil
}

// Update rewrites the geozone's fields and point list
func (r *geozoneRepository) Update(ctx context.Context, zone *domain.Geozone) error {
	zone.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE geozones SET
			name = :name,
			zone_type = :zone_type,
			radius_m = :radius_m,
			color = :color,
			primary_index = :primary_index,
			editable = :editable,
			point_lats = :point_lats,
			point_lons = :point_lons,
			updated_at = :updated_at
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, rowFromZone(zone))
	if err != nil {
		r.logger.Error("Failed to update geozone",
			zap.String("geozone_id", zone.ID.String()), zap.Error(err))
		return fmt.Errorf("update geozone: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update geozone: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("geozone %s not found", zone.ID)
	}

	r.logger.Debug("Geozone updated", zap.String("geozone_id", zone.ID.String()))
	return nil
}

// Delete removes a geozone. Returns whether it existed
func (r *geozoneRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM geozones WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete geozone",
			zap.String("geozone_id", id.String()), zap.Error(err))
		return false, fmt.Errorf("delete geozone: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete geozone: %w", err)
	}

	if affected > 0 {
		r.logger.Info("Geozone deleted", zap.String("geozone_id", id.String()))
	}
	return affected > 0, nil
}
