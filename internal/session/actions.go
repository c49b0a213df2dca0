package session

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/trackmap-service/internal/domain"
	"github.com/trackmap-service/internal/scene"
)

// ExecuteAction applies one feed action with a server-side effect:
// "showpp" opens the popup of the addressed pushpin, "zoompp" recenters
// on it. Alert, gotourl and autoupdate are client directives and no-ops
// here.
func (s *Session) ExecuteAction(a domain.Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch a.Command {
	case domain.ActionShowPP:
		pp := s.findPushpin(a.Arg)
		if pp == nil {
			return fmt.Errorf("showpp: no pushpin at index %q", a.Arg)
		}
		s.snap.ShowPopup(pp)
	case domain.ActionZoomPP:
		pp := s.findPushpin(a.Arg)
		if pp == nil {
			return fmt.Errorf("zoompp: no pushpin at index %q", a.Arg)
		}
		s.snap.SetCenter(pp.Point, scene.KeepZoom)
	case domain.ActionAlert, domain.ActionGotoURL, domain.ActionAutoUpdate:
	default:
		return fmt.Errorf("unknown action command %q", a.Command)
	}
	return nil
}

// findPushpin resolves an action argument as a 1-based pushpin position
// within the first dataset of the installed feed.
func (s *Session) findPushpin(arg string) *domain.Pushpin {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || s.feed == nil || len(s.feed.Datasets) == 0 {
		return nil
	}
	pushpins := s.feed.Datasets[0].Pushpins
	ndx := n - 1
	if ndx < 0 || ndx >= len(pushpins) {
		return nil
	}
	return pushpins[ndx]
}
