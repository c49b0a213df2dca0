package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/trackmap-service/internal/domain"
	"github.com/trackmap-service/internal/domain/repository"
	"github.com/trackmap-service/internal/pkg/errors"
	"github.com/trackmap-service/internal/session"
	"github.com/trackmap-service/internal/usecase/dto"
)

// GeozoneUseCase - geofence CRUD plus the bridge between the
// mouse-driven zone editor and storage: while a zone is bound to a
// session, vertex commits from the interaction machine are written
// through to Postgres.
type GeozoneUseCase struct {
	zones    repository.GeozoneRepository
	sessions *session.Store
	logger   *zap.Logger
}

// NewGeozoneUseCase - creates a new GeozoneUseCase
func NewGeozoneUseCase(
	zones repository.GeozoneRepository,
	sessions *session.Store,
	logger *zap.Logger,
) *GeozoneUseCase {
	return &GeozoneUseCase{
		zones:    zones,
		sessions: sessions,
		logger:   logger,
	}
}

// Create stores a new geofence.
func (uc *GeozoneUseCase) Create(ctx context.Context, req dto.CreateGeozoneRequest) (*dto.GeozoneResponse, error) {
	zone := &domain.Geozone{
		AccountID: req.AccountID,
		Editable:  true,
	}
	if err := uc.applyRequest(zone, req.Name, req.Type, req.RadiusMeters, req.Color, req.Points, req.PrimaryIndex, req.Editable); err != nil {
		return nil, err
	}

	if err := uc.zones.Create(ctx, zone); err != nil {
		return nil, errors.ErrDatabaseError.WithDetails(map[string]interface{}{
			"reason": err.Error(),
		})
	}
	return toGeozoneResponse(zone), nil
}

// Get returns one geofence.
func (uc *GeozoneUseCase) Get(ctx context.Context, id uuid.UUID) (*dto.GeozoneResponse, error) {
	zone, err := uc.zones.GetByID(ctx, id)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithDetails(map[string]interface{}{
			"reason": err.Error(),
		})
	}
	if zone == nil {
		return nil, errors.ErrGeozoneNotFound
	}
	return toGeozoneResponse(zone), nil
}

// List returns the account's geofences ordered by name.
func (uc *GeozoneUseCase) List(ctx context.Context, accountID string) (*dto.GeozoneListResponse, error) {
	zones, err := uc.zones.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithDetails(map[string]interface{}{
			"reason": err.Error(),
		})
	}

	out := make([]dto.GeozoneResponse, 0, len(zones))
	for _, zone := range zones {
		out = append(out, *toGeozoneResponse(zone))
	}
	return &dto.GeozoneListResponse{Geozones: out, Total: len(out)}, nil
}

// Update rewrites a stored geofence.
func (uc *GeozoneUseCase) Update(ctx context.Context, id uuid.UUID, req dto.UpdateGeozoneRequest) (*dto.GeozoneResponse, error) {
	zone, err := uc.zones.GetByID(ctx, id)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithDetails(map[string]interface{}{
			"reason": err.Error(),
		})
	}
	if zone == nil {
		return nil, errors.ErrGeozoneNotFound
	}

	if err := uc.applyRequest(zone, req.Name, req.Type, req.RadiusMeters, req.Color, req.Points, req.PrimaryIndex, req.Editable); err != nil {
		return nil, err
	}
	if err := uc.zones.Update(ctx, zone); err != nil {
		return nil, errors.ErrDatabaseError.WithDetails(map[string]interface{}{
			"reason": err.Error(),
		})
	}
	return toGeozoneResponse(zone), nil
}

// Delete removes a geofence.
func (uc *GeozoneUseCase) Delete(ctx context.Context, id uuid.UUID) error {
	existed, err := uc.zones.Delete(ctx, id)
	if err != nil {
		return errors.ErrDatabaseError.WithDetails(map[string]interface{}{
			"reason": err.Error(),
		})
	}
	if !existed {
		return errors.ErrGeozoneNotFound
	}
	return nil
}

// BeginEdit draws the zone into the session in geozone-edit mode and
// routes vertex commits from the mouse protocol back to storage.
func (uc *GeozoneUseCase) BeginEdit(ctx context.Context, sessionID, zoneID uuid.UUID) (*dto.GeozoneResponse, error) {
	s, ok := uc.sessions.Get(sessionID)
	if !ok {
		return nil, errors.ErrSessionNotFound
	}

	zone, err := uc.zones.GetByID(ctx, zoneID)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithDetails(map[string]interface{}{
			"reason": err.Error(),
		})
	}
	if zone == nil {
		return nil, errors.ErrGeozoneNotFound
	}

	s.EditGeozone(zone, &persistingEditor{
		zones:  uc.zones,
		zone:   zone,
		logger: uc.logger,
	})

	uc.logger.Info("Geozone edit started",
		zap.String("session_id", sessionID.String()),
		zap.String("geozone_id", zoneID.String()))
	return toGeozoneResponse(zone), nil
}

// EndEdit leaves geozone-edit mode and detaches the storage editor.
func (uc *GeozoneUseCase) EndEdit(sessionID uuid.UUID) error {
	s, ok := uc.sessions.Get(sessionID)
	if !ok {
		return errors.ErrSessionNotFound
	}
	s.ExitGeozone()
	return nil
}

// applyRequest copies request fields onto the zone, validating the type
// and parsing the vertex list.
func (uc *GeozoneUseCase) applyRequest(
	zone *domain.Geozone,
	name string, zoneType int, radiusM float64, color, pointList string,
	primaryIndex int, editable *bool,
) error {
	if zoneType < int(domain.ZonePointRadius) || zoneType > int(domain.ZonePolygon) {
		return errors.ErrInvalidZoneType.WithDetails(map[string]interface{}{
			"type": zoneType,
		})
	}
	points, err := ParsePointList(pointList)
	if err != nil {
		return errors.ErrInvalidCoordinates.WithDetails(map[string]interface{}{
			"reason": err.Error(),
		})
	}

	zone.Name = name
	zone.Type = domain.ZoneType(zoneType)
	zone.RadiusMeters = radiusM
	zone.Color = color
	zone.Points = points
	zone.PrimaryIndex = primaryIndex
	if editable != nil {
		zone.Editable = *editable
	}
	return nil
}

func toGeozoneResponse(zone *domain.Geozone) *dto.GeozoneResponse {
	return &dto.GeozoneResponse{
		ID:           zone.ID,
		AccountID:    zone.AccountID,
		Name:         zone.Name,
		Type:         int(zone.Type),
		RadiusMeters: zone.RadiusMeters,
		Color:        zone.Color,
		Points:       FormatPointList(zone.Points),
		PrimaryIndex: zone.PrimaryIndex,
		Editable:     zone.Editable,
		CreatedAt:    zone.CreatedAt,
		UpdatedAt:    zone.UpdatedAt,
	}
}

// persistingEditor writes committed vertices through to storage. Mouse
// handlers invoke it synchronously, so each commit is one small UPDATE.
type persistingEditor struct {
	zones  repository.GeozoneRepository
	zone   *domain.Geozone
	logger *zap.Logger
}

func (e *persistingEditor) CommitVertex(index int, lat, lon, radiusM float64) {
	if index < 0 {
		return
	}
	for len(e.zone.Points) <= index {
		e.zone.Points = append(e.zone.Points, domain.ZonePoint{Index: len(e.zone.Points)})
	}
	e.zone.Points[index].Point = domain.GeoPoint{Lat: lat, Lon: lon}
	if radiusM > 0 {
		e.zone.RadiusMeters = radiusM
	}
	e.persist()
}

func (e *persistingEditor) SelectVertex(index int) {
	e.zone.PrimaryIndex = index
	e.persist()
}

func (e *persistingEditor) persist() {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := e.zones.Update(ctx, e.zone); err != nil {
		e.logger.Warn("Failed to persist geozone edit",
			zap.String("geozone_id", e.zone.ID.String()), zap.Error(err))
	}
}
