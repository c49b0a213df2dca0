package usecase_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trackmap-service/internal/domain"
	apperrors "github.com/trackmap-service/internal/pkg/errors"
	"github.com/trackmap-service/internal/usecase"
	"github.com/trackmap-service/internal/usecase/dto"
)

func TestGeozoneUseCase_Create(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	t.Run("parses the point list", func(t *testing.T) {
		mockZones := &MockGeozoneRepository{}
		uc := usecase.NewGeozoneUseCase(mockZones, newTestSessions(), logger)

		mockZones.On("Create", ctx, mock.MatchedBy(func(zone *domain.Geozone) bool {
			return zone.AccountID == "acme" &&
				zone.Type == domain.ZonePointRadius &&
				len(zone.Points) == 2 &&
				zone.Points[0].Point == domain.GeoPoint{Lat: 39.1, Lon: -121.5}
		})).Return(nil)

		resp, err := uc.Create(ctx, dto.CreateGeozoneRequest{
			AccountID:    "acme",
			Name:         "warehouse",
			Type:         int(domain.ZonePointRadius),
			RadiusMeters: 1500,
			Points:       "39.1/-121.5,39.2/-121.6",
		})
		require.NoError(t, err)
		assert.Equal(t, "warehouse", resp.Name)
		assert.True(t, resp.Editable)
		assert.Equal(t, "39.10000/-121.50000,39.20000/-121.60000", resp.Points)

		mockZones.AssertExpectations(t)
	})

	t.Run("rejects a bad zone type", func(t *testing.T) {
		uc := usecase.NewGeozoneUseCase(&MockGeozoneRepository{}, newTestSessions(), logger)

		_, err := uc.Create(ctx, dto.CreateGeozoneRequest{
			AccountID: "acme", Name: "x", Type: 9,
		})
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.ErrInvalidZoneType.Code, appErr.Code)
	})

	t.Run("rejects a malformed point list", func(t *testing.T) {
		uc := usecase.NewGeozoneUseCase(&MockGeozoneRepository{}, newTestSessions(), logger)

		_, err := uc.Create(ctx, dto.CreateGeozoneRequest{
			AccountID: "acme", Name: "x", Type: 0, Points: "not-a-point",
		})
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.ErrInvalidCoordinates.Code, appErr.Code)
	})
}

func TestGeozoneUseCase_GetMissing(t *testing.T) {
	mockZones := &MockGeozoneRepository{}
	uc := usecase.NewGeozoneUseCase(mockZones, newTestSessions(), zap.NewNop())
	ctx := context.Background()

	id := uuid.New()
	mockZones.On("GetByID", ctx, id).Return(nil, nil)

	_, err := uc.Get(ctx, id)
	assert.Equal(t, apperrors.ErrGeozoneNotFound, err)
}

func TestGeozoneUseCase_DeleteMissing(t *testing.T) {
	mockZones := &MockGeozoneRepository{}
	uc := usecase.NewGeozoneUseCase(mockZones, newTestSessions(), zap.NewNop())
	ctx := context.Background()

	id := uuid.New()
	mockZones.On("Delete", ctx, id).Return(false, nil)

	assert.Equal(t, apperrors.ErrGeozoneNotFound, uc.Delete(ctx, id))
}

// A click relocation during an edit session must write the moved vertex
// back through the repository.
func TestGeozoneUseCase_EditCommitsThroughStorage(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	sessions := newTestSessions()
	s := sessions.Create()

	zone := &domain.Geozone{
		ID:           uuid.New(),
		AccountID:    "acme",
		Name:         "warehouse",
		Type:         domain.ZonePointRadius,
		RadiusMeters: 1000,
		Points:       []domain.ZonePoint{{Index: 0, Point: domain.GeoPoint{Lat: 10, Lon: 20}}},
		Editable:     true,
	}

	mockZones := &MockGeozoneRepository{}
	mockZones.On("GetByID", ctx, zone.ID).Return(zone, nil)
	mockZones.On("Update", mock.Anything, zone).Return(nil)

	zoneUC := usecase.NewGeozoneUseCase(mockZones, sessions, logger)
	mouseUC := usecase.NewInteractionUseCase(sessions, logger)

	_, err := zoneUC.BeginEdit(ctx, s.ID, zone.ID)
	require.NoError(t, err)
	assert.True(t, s.State().GeozoneMode)

	// click well outside the zone radius relocates the primary vertex
	_, err = mouseUC.HandleMouse(s.ID, dto.MouseRequest{Event: "click", Lat: 10.5, Lon: 20.5})
	require.NoError(t, err)

	assert.Equal(t, domain.GeoPoint{Lat: 10.5, Lon: 20.5}, zone.Points[0].Point)
	mockZones.AssertCalled(t, "Update", mock.Anything, zone)

	// after EndEdit further clicks no longer reach storage
	require.NoError(t, zoneUC.EndEdit(s.ID))
	assert.False(t, s.State().GeozoneMode)
	mockZones.AssertNumberOfCalls(t, "Update", 1)

	_, err = mouseUC.HandleMouse(s.ID, dto.MouseRequest{Event: "click", Lat: 11, Lon: 21})
	require.NoError(t, err)
	mockZones.AssertNumberOfCalls(t, "Update", 1)
}
