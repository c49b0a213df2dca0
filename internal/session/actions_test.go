package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackmap-service/internal/domain"
)

func TestSession_ExecuteAction(t *testing.T) {
	s := newSession(t)

	_, err := s.InstallFeed(
		testFeed(1, testPushpin(1, 10, 20), testPushpin(2, 10.1, 20.1)),
		domain.RecenterNone)
	require.NoError(t, err)

	t.Run("showpp 1 opens the first pushpin", func(t *testing.T) {
		err := s.ExecuteAction(domain.Action{Command: domain.ActionShowPP, Arg: "1"})
		require.NoError(t, err)
		assert.Contains(t, s.Snapshot().Popup, "10.00000/20.00000")
	})

	t.Run("zoompp recenters on the addressed pushpin", func(t *testing.T) {
		err := s.ExecuteAction(domain.Action{Command: domain.ActionZoomPP, Arg: "2"})
		require.NoError(t, err)
		assert.Equal(t, domain.GeoPoint{Lat: 10.1, Lon: 20.1}, s.Snapshot().Center)
	})

	t.Run("index is 1-based", func(t *testing.T) {
		assert.Error(t, s.ExecuteAction(domain.Action{Command: domain.ActionShowPP, Arg: "0"}))
	})

	t.Run("client directives are no-ops", func(t *testing.T) {
		assert.NoError(t, s.ExecuteAction(domain.Action{Command: domain.ActionAlert, Arg: "hi"}))
		assert.NoError(t, s.ExecuteAction(domain.Action{Command: domain.ActionGotoURL, Arg: "/x"}))
	})

	t.Run("index past the dataset errors", func(t *testing.T) {
		assert.Error(t, s.ExecuteAction(domain.Action{Command: domain.ActionShowPP, Arg: "42"}))
	})

	t.Run("unknown command errors", func(t *testing.T) {
		assert.Error(t, s.ExecuteAction(domain.Action{Command: "teleport", Arg: ""}))
	})
}
