package usage

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Window names a rolling usage window reported by upstream.
type Window string

// Headline windows, in display order.
const (
	WindowFiveHour       Window = "five_hour"
	WindowSevenDay       Window = "seven_day"
	WindowSevenDaySonnet Window = "seven_day_sonnet"
)

// HeadlineWindows lists the windows summarized after each successful fetch.
var HeadlineWindows = []Window{WindowFiveHour, WindowSevenDay, WindowSevenDaySonnet}

// Placeholder is shown for a window whose utilization is absent.
const Placeholder = "N/A"

// Headline holds the utilization figures of the headline windows.
// Windows missing from the payload are simply absent.
type Headline struct {
	utilization map[Window]float64
}

// ParseHeadline extracts headline utilization from an upstream payload.
// The payload must be a JSON object; missing, null or malformed window entries are ignored.
func ParseHeadline(payload []byte) (Headline, error) {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(payload, &root); err != nil {
		return Headline{}, fmt.Errorf("decode usage payload: %w", err)
	}
	if root == nil {
		return Headline{}, fmt.Errorf("decode usage payload: expected JSON object, got null")
	}

	h := Headline{utilization: make(map[Window]float64, len(HeadlineWindows))}
	for _, w := range HeadlineWindows {
		raw, ok := root[string(w)]
		if !ok {
			continue
		}
		var entry struct {
			Utilization *float64 `json:"utilization"`
		}
		if json.Unmarshal(raw, &entry) != nil || entry.Utilization == nil {
			continue
		}
		h.utilization[w] = *entry.Utilization
	}
	return h, nil
}

// Utilization returns the utilization percentage for w and whether it was present.
func (h Headline) Utilization(w Window) (float64, bool) {
	v, ok := h.utilization[w]
	return v, ok
}

// Format returns the utilization for w as text, or Placeholder when absent.
func (h Headline) Format(w Window) string {
	v, ok := h.utilization[w]
	if !ok {
		return Placeholder
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
