package feed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/trackmap-service/internal/domain"
)

// decodeXML parses an XML envelope body into the neutral intermediate.
// The document is walked with a streaming token decoder; dataset point
// records arrive as <P> text nodes inside <DataSet> elements.
func decodeXML(body []byte) (*rawFeed, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))

	raw := &rawFeed{}
	sawMapData := false

	var curDS *rawDataSet

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse feed xml: %w", err)
		}

		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "MapData":
				sawMapData = true
				raw.IsFleet = attrBool(el, "isFleet")

			case "Time":
				rt := xmlRawTime(el)
				var text string
				if err := dec.DecodeElement(&text, &el); err != nil {
					return nil, fmt.Errorf("failed to parse Time element: %w", err)
				}
				applyTimeText(&rt, text)
				raw.Time = rt

			case "LastEvent":
				le := rawLastEvent{
					rawTime: xmlRawTime(el),
					Device:  attrString(el, "device"),
					Battery: attrFloat(el, "battery"),
					Signal:  attrFloat(el, "signal"),
				}
				var text string
				if err := dec.DecodeElement(&text, &el); err != nil {
					return nil, fmt.Errorf("failed to parse LastEvent element: %w", err)
				}
				le.Summary = strings.TrimSpace(text)
				applyTimeText(&le.rawTime, text)
				raw.LastEvent = le

			case "Shape":
				sh := rawShape{
					Type:        attrString(el, "type"),
					RadiusM:     attrFloat(el, "radius"),
					Color:       attrString(el, "color"),
					Description: attrString(el, "desc"),
					PPNdx:       attrIntDefault(el, "ppNdx", -1),
				}
				var text string
				if err := dec.DecodeElement(&text, &el); err != nil {
					return nil, fmt.Errorf("failed to parse Shape element: %w", err)
				}
				sh.Points = splitPointList(strings.TrimSpace(text))
				raw.Shapes = append(raw.Shapes, sh)

			case "DataSet":
				raw.DataSets = append(raw.DataSets, rawDataSet{
					Type:       attrString(el, "type"),
					ID:         attrString(el, "id"),
					Route:      attrBool(el, "route"),
					RouteColor: attrString(el, "routeColor"),
					TextColor:  attrString(el, "textColor"),
				})
				curDS = &raw.DataSets[len(raw.DataSets)-1]

			case "P":
				var text string
				if err := dec.DecodeElement(&text, &el); err != nil {
					return nil, fmt.Errorf("failed to parse P element: %w", err)
				}
				if curDS != nil {
					curDS.Points = append(curDS.Points, strings.TrimSpace(text))
				}

			case "Action":
				cmd := attrString(el, "command")
				var text string
				if err := dec.DecodeElement(&text, &el); err != nil {
					return nil, fmt.Errorf("failed to parse Action element: %w", err)
				}
				raw.Actions = append(raw.Actions, domain.Action{
					Command: cmd,
					Arg:     strings.TrimSpace(text),
				})
			}

		case xml.EndElement:
			if el.Name.Local == "DataSet" {
				curDS = nil
			}
		}
	}

	if !sawMapData {
		return nil, fmt.Errorf("feed xml missing MapData envelope")
	}
	return raw, nil
}

func xmlRawTime(el xml.StartElement) rawTime {
	return rawTime{
		Timestamp: attrInt64(el, "timestamp"),
		TimeZone:  attrString(el, "timezone"),
		Year:      int(attrInt64(el, "year")),
		Month:     int(attrInt64(el, "month")),
		Day:       int(attrInt64(el, "day")),
	}
}

// applyTimeText fills date/time display strings from a "date|time[|...]"
// element body.
func applyTimeText(rt *rawTime, text string) {
	fld := strings.Split(strings.TrimSpace(text), "|")
	if len(fld) > 0 {
		rt.DateText = fld[0]
	}
	if len(fld) > 1 {
		rt.TimeText = fld[1]
	}
}

func attrString(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func attrBool(el xml.StartElement, name string) bool {
	v := strings.ToLower(attrString(el, name))
	return v == "true" || v == "yes" || v == "1"
}

func attrFloat(el xml.StartElement, name string) float64 {
	return parseFloat(attrString(el, name))
}

func attrInt64(el xml.StartElement, name string) int64 {
	return parseInt64(attrString(el, name))
}

func attrIntDefault(el xml.StartElement, name string, def int) int {
	s := attrString(el, name)
	if s == "" {
		return def
	}
	return int(parseInt64(s))
}
