package geo

import (
	"encoding/json"
	"strconv"
)

// SearchResult is one ranked address candidate returned to clients.
// Coordinates are floats internally for scoring but travel as strings on the
// wire, matching what address-picker frontends expect.
type SearchResult struct {
	DisplayName string
	Lat         float64
	Lon         float64
}

type searchResultJSON struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

func (r SearchResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(searchResultJSON{
		DisplayName: r.DisplayName,
		Lat:         strconv.FormatFloat(r.Lat, 'f', -1, 64),
		Lon:         strconv.FormatFloat(r.Lon, 'f', -1, 64),
	})
}

func (r *SearchResult) UnmarshalJSON(data []byte) error {
	var wire searchResultJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	lat, err := strconv.ParseFloat(wire.Lat, 64)
	if err != nil {
		return err
	}
	lon, err := strconv.ParseFloat(wire.Lon, 64)
	if err != nil {
		return err
	}
	r.DisplayName = wire.DisplayName
	r.Lat = lat
	r.Lon = lon
	return nil
}

// SearchPayload is the response body for forward address search.
type SearchPayload struct {
	Query     string         `json:"query"`
	UsedQuery string         `json:"usedQuery,omitempty"`
	Results   []SearchResult `json:"results"`
}

// ReverseAddress holds the structured address fields of a reverse lookup.
// Empty fields are omitted so the payload mirrors what the provider knows.
type ReverseAddress struct {
	Road          string `json:"road,omitempty"`
	Residential   string `json:"residential,omitempty"`
	Pedestrian    string `json:"pedestrian,omitempty"`
	HouseNumber   string `json:"house_number,omitempty"`
	Neighbourhood string `json:"neighbourhood,omitempty"`
	Suburb        string `json:"suburb,omitempty"`
	CityDistrict  string `json:"city_district,omitempty"`
	City          string `json:"city,omitempty"`
	Town          string `json:"town,omitempty"`
	Village       string `json:"village,omitempty"`
	Municipality  string `json:"municipality,omitempty"`
}

// ReversePayload is the response body for reverse geocoding.
type ReversePayload struct {
	DisplayName string         `json:"display_name"`
	Address     ReverseAddress `json:"address"`
}

// candidate pairs a result with its heuristic score while ranking.
type candidate struct {
	result SearchResult
	score  float64
}
