package dashboard

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// EncodeLayout serializes entries into the persisted JSON array format.
func EncodeLayout(entries []WidgetLayoutEntry) (string, error) {
	if entries == nil {
		entries = []WidgetLayoutEntry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("dashboard: encode layout: %w", err)
	}
	return string(data), nil
}

// DecodeLayout parses a persisted layout. Legacy gsId/gsX/gsY/gsW/gsH names are
// accepted. A value that is not a JSON array fails with ErrMalformedLayout; entries
// that cannot be sanitized are dropped and counted.
func DecodeLayout(raw string) ([]WidgetLayoutEntry, int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return []WidgetLayoutEntry{}, 0, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrMalformedLayout, err)
	}
	records := make([]map[string]any, 0, len(items))
	dropped := 0
	for _, item := range items {
		var record map[string]any
		if err := json.Unmarshal(item, &record); err != nil || record == nil {
			dropped++
			continue
		}
		records = append(records, record)
	}
	entries, skipped := SanitizeLayout(records)
	return entries, dropped + skipped, nil
}

// SanitizeLayout converts loosely typed records into layout entries. Records missing
// an id, x or y (or carrying negative or fractional coordinates) are dropped, as are
// repeated ids. Width and height default to 1.
func SanitizeLayout(records []map[string]any) ([]WidgetLayoutEntry, int) {
	out := make([]WidgetLayoutEntry, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	dropped := 0
	for _, record := range records {
		id, ok := layoutString(record, "id", "gsId")
		if !ok {
			dropped++
			continue
		}
		x, okX := layoutInt(record, "x", "gsX")
		y, okY := layoutInt(record, "y", "gsY")
		if !okX || !okY {
			dropped++
			continue
		}
		if _, dup := seen[id]; dup {
			dropped++
			continue
		}
		seen[id] = struct{}{}
		w, okW := layoutInt(record, "w", "gsW")
		if !okW || w < 1 {
			w = 1
		}
		h, okH := layoutInt(record, "h", "gsH")
		if !okH || h < 1 {
			h = 1
		}
		out = append(out, WidgetLayoutEntry{ID: id, X: x, Y: y, W: w, H: h})
	}
	return out, dropped
}

func layoutString(record map[string]any, keys ...string) (string, bool) {
	for _, key := range keys {
		if s, ok := record[key].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s), true
		}
	}
	return "", false
}

func layoutInt(record map[string]any, keys ...string) (int, bool) {
	for _, key := range keys {
		raw, ok := record[key]
		if !ok || raw == nil {
			continue
		}
		var f float64
		switch v := raw.(type) {
		case float64:
			f = v
		case int:
			f = float64(v)
		case int64:
			f = float64(v)
		default:
			return 0, false
		}
		if f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
			return 0, false
		}
		return int(f), true
	}
	return 0, false
}
