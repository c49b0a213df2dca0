package feed

import (
	"encoding/json"
	"fmt"

	"github.com/trackmap-service/internal/domain"
)

// JSON wire envelope. Field names follow the feed contract exactly.
type jsonEnvelope struct {
	JMapData *jsonMapData `json:"JMapData"`
}

type jsonMapData struct {
	IsFleet     bool           `json:"isFleet"`
	Time        *jsonTime      `json:"Time"`
	LastEvent   *jsonLastEvent `json:"LastEvent"`
	DataColumns string         `json:"DataColumns"`
	Shapes      []jsonShape    `json:"Shapes"`
	DataSets    []jsonDataSet  `json:"DataSets"`
	Actions     []jsonAction   `json:"Actions"`
}

type jsonYMD struct {
	Year  int `json:"YYYY"`
	Month int `json:"MM"`
	Day   int `json:"DD"`
}

type jsonTime struct {
	Timestamp int64    `json:"timestamp"`
	TimeZone  string   `json:"timezone"`
	YMD       *jsonYMD `json:"YMD"`
	Date      string   `json:"date"`
	Time      string   `json:"time"`
}

type jsonLastEvent struct {
	jsonTime
	Device  string  `json:"device"`
	Battery float64 `json:"battery"`
	Signal  float64 `json:"signal"`
}

type jsonShape struct {
	Type   string   `json:"type"`
	Radius float64  `json:"radius"`
	Color  string   `json:"color"`
	Desc   string   `json:"desc"`
	PPNdx  *int     `json:"ppNdx"`
	Points []string `json:"Points"`
}

type jsonDataSet struct {
	Type       string   `json:"type"`
	ID         string   `json:"id"`
	Route      jsonBool `json:"route"`
	RouteColor string   `json:"routeColor"`
	TextColor  string   `json:"textColor"`
	Points     []string `json:"Points"`
}

type jsonAction struct {
	Cmd string `json:"cmd"`
	Arg string `json:"arg"`
}

// jsonBool accepts both true and "true" - the feed emits booleans as
// strings in some fields.
type jsonBool bool

func (b *jsonBool) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case "true", `"true"`:
		*b = true
	case "false", `"false"`, "null", `""`:
		*b = false
	default:
		return fmt.Errorf("invalid bool value %s", string(data))
	}
	return nil
}

// decodeJSON parses a JSON envelope body into the neutral intermediate.
func decodeJSON(body []byte) (*rawFeed, error) {
	var env jsonEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to parse feed json: %w", err)
	}
	md := env.JMapData
	if md == nil {
		return nil, fmt.Errorf("feed json missing JMapData envelope")
	}

	raw := &rawFeed{IsFleet: md.IsFleet}

	if md.Time != nil {
		raw.Time = jsonRawTime(md.Time)
	}
	if md.LastEvent != nil {
		raw.LastEvent = rawLastEvent{
			rawTime: jsonRawTime(&md.LastEvent.jsonTime),
			Device:  md.LastEvent.Device,
			Battery: md.LastEvent.Battery,
			Signal:  md.LastEvent.Signal,
		}
	}

	for _, s := range md.Shapes {
		ppNdx := -1
		if s.PPNdx != nil {
			ppNdx = *s.PPNdx
		}
		raw.Shapes = append(raw.Shapes, rawShape{
			Type:        s.Type,
			RadiusM:     s.Radius,
			Color:       s.Color,
			Description: s.Desc,
			PPNdx:       ppNdx,
			Points:      s.Points,
		})
	}

	for _, ds := range md.DataSets {
		raw.DataSets = append(raw.DataSets, rawDataSet{
			Type:       ds.Type,
			ID:         ds.ID,
			Route:      bool(ds.Route),
			RouteColor: ds.RouteColor,
			TextColor:  ds.TextColor,
			Points:     ds.Points,
		})
	}

	for _, a := range md.Actions {
		raw.Actions = append(raw.Actions, domain.Action{Command: a.Cmd, Arg: a.Arg})
	}

	return raw, nil
}

func jsonRawTime(t *jsonTime) rawTime {
	rt := rawTime{
		Timestamp: t.Timestamp,
		TimeZone:  t.TimeZone,
		DateText:  t.Date,
		TimeText:  t.Time,
	}
	if t.YMD != nil {
		rt.Year = t.YMD.Year
		rt.Month = t.YMD.Month
		rt.Day = t.YMD.Day
	}
	return rt
}
