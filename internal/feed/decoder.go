package feed

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/trackmap-service/internal/domain"
)

// DefaultRouteColor is used for dataset route lines when the feed does
// not supply one.
const DefaultRouteColor = "#FF2222"

// IconSelector picks the marker imagery for an event. Selectors are
// registered by name at startup (see the scene package); the decoder only
// calls through the function value.
type IconSelector func(ev *domain.EventRecord, isFleet bool) domain.Icon

// Options - decoder behavior knobs, sourced from configuration.
type Options struct {
	// MaxPushpins caps each dataset's point count. Exceeding datasets
	// are truncated to the most recent MaxPushpins records and marked
	// partial.
	MaxPushpins int

	// ShowPushpins is the global pushpin visibility switch. Even when
	// false, the most recent valid pushpin of each dataset is forced
	// visible.
	ShowPushpins bool

	// ShowRoute gates route polyline collection.
	ShowRoute bool

	DefaultRouteColor string

	IconSelector IconSelector
	DefaultIcon  domain.Icon
}

// Decoder turns raw feed bodies into domain feeds.
type Decoder struct {
	opts   Options
	logger *zap.Logger
}

// NewDecoder creates a Decoder. A nil logger is replaced with a no-op
// logger.
func NewDecoder(opts Options, logger *zap.Logger) *Decoder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxPushpins <= 0 {
		opts.MaxPushpins = 1000
	}
	if opts.DefaultRouteColor == "" {
		opts.DefaultRouteColor = DefaultRouteColor
	}
	return &Decoder{opts: opts, logger: logger}
}

// Decode parses a feed body in either wire encoding and builds the full
// render set. The encoding is detected from the first non-space byte: a
// curly brace means JSON, anything else is treated as XML.
func (d *Decoder) Decode(body []byte) (*domain.Feed, error) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return nil, fmt.Errorf("empty feed body")
	}

	var raw *rawFeed
	var err error
	if trimmed[0] == '{' {
		raw, err = decodeJSON([]byte(trimmed))
	} else {
		raw, err = decodeXML([]byte(trimmed))
	}
	if err != nil {
		return nil, err
	}

	return d.build(raw), nil
}

// build assembles the domain feed from the neutral intermediate in a
// single pass per dataset.
func (d *Decoder) build(raw *rawFeed) *domain.Feed {
	f := &domain.Feed{
		IsFleet: raw.IsFleet,
		Today: domain.FeedTime{
			Timestamp: raw.Time.Timestamp,
			TimeZone:  raw.Time.TimeZone,
			Year:      raw.Time.Year,
			Month:     raw.Time.Month,
			Day:       raw.Time.Day,
			DateText:  raw.Time.DateText,
			TimeText:  raw.Time.TimeText,
		},
		LastEvent: domain.LastEvent{
			Timestamp: raw.LastEvent.Timestamp,
			TimeZone:  raw.LastEvent.TimeZone,
			Year:      raw.LastEvent.Year,
			Month:     raw.LastEvent.Month,
			Day:       raw.LastEvent.Day,
			Battery:   raw.LastEvent.Battery,
			Signal:    raw.LastEvent.Signal,
			Summary:   raw.LastEvent.Summary,
		},
		Actions: append([]domain.Action(nil), raw.Actions...),
	}

	for _, rs := range raw.Shapes {
		f.Shapes = append(f.Shapes, &domain.Shape{
			Type:         rs.Type,
			RadiusMeters: rs.RadiusM,
			Vertices:     parseShapePoints(rs.Points),
			Color:        rs.Color,
			Description:  rs.Description,
			PushpinIndex: rs.PPNdx,
		})
	}

	recordNdx := 0 // 1-based feed-wide sequence over timestamped records
	maxDatasetPoints := 0

	for dsNdx, rds := range raw.DataSets {
		ds := &domain.Dataset{
			Type:       rds.Type,
			ID:         rds.ID,
			ShowRoute:  rds.Route && d.opts.ShowRoute,
			RouteColor: rds.RouteColor,
			TextColor:  rds.TextColor,
		}
		if ds.RouteColor == "" {
			ds.RouteColor = d.opts.DefaultRouteColor
		}

		points := rds.Points
		if len(points) > d.opts.MaxPushpins {
			// Keep the most recent records, drop the oldest.
			points = points[len(points)-d.opts.MaxPushpins:]
			ds.Partial = true
			d.logger.Debug("Dataset truncated to pushpin cap",
				zap.String("dataset", rds.ID),
				zap.Int("dropped", len(rds.Points)-len(points)))
		}

		isPOI := rds.Type == domain.DatasetPOI

		var pendingStop *domain.EventRecord
		var lastValidPushpin *domain.Pushpin
		ppCount := 0
		dsPoints := 0

		for _, line := range points {
			ev := ParseEventRecord(line)
			if !ev.Valid {
				continue
			}

			if isPOI {
				if ev.ValidGPS {
					pp := d.buildPushpin(ev, raw.IsFleet, len(f.POIPins))
					pp.Show = true
					f.POIPins = append(f.POIPins, pp)
				}
				continue
			}

			ev.DatasetIndex = dsNdx
			if ev.Timestamp > 0 {
				recordNdx++
				ev.RecordIndex = recordNdx
				dsPoints++
			} else {
				ev.RecordIndex = 0
			}

			if ev.ValidGPS && ds.ShowRoute {
				ds.Route = append(ds.Route, ev.Point)
			}

			switch {
			case ev.ValidGPS && ev.Timestamp > 0:
				pp := d.buildPushpin(ev, raw.IsFleet, ppCount)
				pp.Show = d.opts.ShowPushpins
				ds.Pushpins = append(ds.Pushpins, pp)
				lastValidPushpin = pp
				f.DetailRows = append(f.DetailRows, buildDetailRow(ev, ppCount, ds.TextColor))
				ppCount++
			case ev.Timestamp > 0:
				// Timestamped record without a GPS fix: detail row only.
				row := buildDetailRow(ev, -1, ds.TextColor)
				row.DatasetIndex = -1
				f.DetailRows = append(f.DetailRows, row)
			}

			// Stop-duration tracking: a moving record closes the pending
			// stop, a stop event opens one, still-stopped records are
			// no-ops.
			switch ev.Motion {
			case domain.MotionMoving:
				if pendingStop != nil {
					pendingStop.StopSec = ev.Timestamp - pendingStop.Timestamp
					pendingStop = nil
				}
			case domain.MotionStopEvent:
				pendingStop = ev
			}
		}

		if !isPOI {
			// A stop still open at end of feed is closed against the
			// server clock.
			if pendingStop != nil && f.Today.Timestamp > 0 {
				pendingStop.StopSec = f.Today.Timestamp - pendingStop.Timestamp
			}

			// Visibility floor: the most recent valid pushpin survives a
			// global hide.
			if !d.opts.ShowPushpins && lastValidPushpin != nil {
				lastValidPushpin.Show = true
			}
		}

		if dsPoints > maxDatasetPoints {
			maxDatasetPoints = dsPoints
		}

		f.Datasets = append(f.Datasets, ds)
	}

	f.DeviceBreaks = len(f.Datasets) > 1 && maxDatasetPoints > 1

	return f
}

// buildPushpin binds an event record to a marker entity. The icon
// selector runs behind a recover so a broken strategy degrades to the
// default icon instead of aborting the decode.
func (d *Decoder) buildPushpin(ev *domain.EventRecord, isFleet bool, ppNdx int) *domain.Pushpin {
	pp := &domain.Pushpin{
		RecordIndex:  ev.RecordIndex,
		DatasetIndex: ev.DatasetIndex,
		PushpinIndex: ppNdx,
		Event:        ev,
		Point:        ev.Point,
		AccRadius:    ev.AccuracyM,
		IsCellLoc:    ev.IsCellLoc,
		Icon:         d.selectIcon(ev, isFleet),
	}
	return pp
}

func (d *Decoder) selectIcon(ev *domain.EventRecord, isFleet bool) (icon domain.Icon) {
	if d.opts.IconSelector == nil {
		return d.opts.DefaultIcon
	}
	defer func() {
		if r := recover(); r != nil {
			d.logger.Warn("Icon selector panicked, using default icon",
				zap.Any("reason", r))
			icon = d.opts.DefaultIcon
		}
	}()
	icon = d.opts.IconSelector(ev, isFleet)
	if icon.URL == "" {
		icon = d.opts.DefaultIcon
	}
	return icon
}

func buildDetailRow(ev *domain.EventRecord, ppNdx int, color string) *domain.DetailRow {
	row := &domain.DetailRow{
		RecordIndex:  ev.RecordIndex,
		DatasetIndex: ev.DatasetIndex,
		PushpinIndex: ppNdx,
		Device:       ev.Description,
		Index:        ev.RecordIndex,
		Code:         ev.StatusCode,
		Timestamp:    ev.Timestamp,
		DateTime:     strings.TrimSpace(ev.DateText + " " + ev.TimeText),
		TimeZone:     ev.TimeZone,
		LatLon:       fmt.Sprintf("%.4f/%.4f", ev.Point.Lat, ev.Point.Lon),
		SatCount:     ev.SatCount,
		Speed:        fmt.Sprintf("%.1f", ev.SpeedKPH),
		Heading:      fmt.Sprintf("%.0f", ev.HeadingDeg),
		Compass:      ev.Compass,
		Altitude:     fmt.Sprintf("%.0f", ev.AltitudeM),
		Address:      ev.Address,
		Optional:     strings.Join(ev.Optional, " "),
		Color:        color,
	}
	return row
}
