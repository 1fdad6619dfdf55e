package geoapify

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Coordinate decodes a latitude/longitude that the provider serializes either
// as a JSON number or as a string.
type Coordinate struct {
	value float64
	valid bool
}

// UnmarshalJSON accepts numbers, numeric strings, and null.
func (c *Coordinate) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		*c = Coordinate{}
		return nil
	}

	if strings.HasPrefix(trimmed, `"`) {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		trimmed = strings.TrimSpace(text)
		if trimmed == "" {
			*c = Coordinate{}
			return nil
		}
	}

	parsed, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		// Malformed coordinates invalidate the item, not the whole response.
		*c = Coordinate{}
		return nil
	}

	*c = Coordinate{value: parsed, valid: true}
	return nil
}

// Float returns the numeric value and whether it is a finite number.
func (c Coordinate) Float() (float64, bool) {
	if !c.valid || math.IsNaN(c.value) || math.IsInf(c.value, 0) {
		return 0, false
	}
	return c.value, true
}

// Rank carries the provider's own relevance estimate for an item.
type Rank struct {
	Importance float64 `json:"importance"`
	Confidence float64 `json:"confidence"`
}

// Item is one geocoding result in the provider's property vocabulary.
type Item struct {
	Formatted    string     `json:"formatted"`
	Lat          Coordinate `json:"lat"`
	Lon          Coordinate `json:"lon"`
	Street       string     `json:"street"`
	HouseNumber  string     `json:"housenumber"`
	Suburb       string     `json:"suburb"`
	District     string     `json:"district"`
	City         string     `json:"city"`
	Town         string     `json:"town"`
	Village      string     `json:"village"`
	Municipality string     `json:"municipality"`
	County       string     `json:"county"`
	State        string     `json:"state"`
	Rank         Rank       `json:"rank"`
}

// Response models both payload shapes the provider emits: a flat results
// array (format=json) and a GeoJSON feature collection. Items() is the single
// point where the two collapse into one list.
type Response struct {
	Results  []Item `json:"results"`
	Features []struct {
		Properties *Item `json:"properties"`
	} `json:"features"`
}

// Items flattens the response into a list of result items regardless of shape.
func (r *Response) Items() []Item {
	if len(r.Results) > 0 {
		return r.Results
	}

	items := make([]Item, 0, len(r.Features))
	for _, feature := range r.Features {
		if feature.Properties != nil {
			items = append(items, *feature.Properties)
		}
	}
	return items
}

// DisplayName returns the provider's preformatted name, or assembles one from
// the structured fields as "{street} # {house}, {sector}, {city}" with empty
// parts omitted.
func (it Item) DisplayName() string {
	if formatted := strings.TrimSpace(it.Formatted); formatted != "" {
		return formatted
	}

	street := strings.TrimSpace(it.Street)
	house := strings.TrimSpace(it.HouseNumber)
	sector := strings.TrimSpace(it.Suburb)
	if sector == "" {
		sector = strings.TrimSpace(it.District)
	}
	city := it.PreferredCity()

	streetPart := street
	if house != "" {
		if streetPart != "" {
			streetPart += " "
		}
		streetPart += "# " + house
	}

	var parts []string
	for _, part := range []string{streetPart, sector, city} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, ", ")
}

// PreferredCity picks the most specific populated-place field that is set.
func (it Item) PreferredCity() string {
	for _, value := range []string{it.City, it.Town, it.Village, it.Municipality} {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// HasAddress reports whether the item carries any usable address field.
func (it Item) HasAddress() bool {
	return strings.TrimSpace(it.Street) != "" ||
		strings.TrimSpace(it.Suburb) != "" ||
		strings.TrimSpace(it.District) != "" ||
		it.PreferredCity() != "" ||
		strings.TrimSpace(it.Formatted) != ""
}
