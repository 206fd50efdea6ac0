package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Status is the derived activity level of a volcano.
type Status string

const (
	StatusErupting Status = "erupting"
	StatusWarning  Status = "warning"
	StatusWatch    Status = "watch"
	StatusAdvisory Status = "advisory"
	StatusNormal   Status = "normal"
)

// Priority returns the sort rank of a status: erupting first, normal last.
// Unknown statuses rank after normal so they never displace real data.
func (s Status) Priority() int {
	switch s {
	case StatusErupting:
		return 0
	case StatusWarning:
		return 1
	case StatusWatch:
		return 2
	case StatusAdvisory:
		return 3
	case StatusNormal:
		return 4
	default:
		return 5
	}
}

// Volcano is one row per physical volcanic center. Exactly one record exists
// per GVP volcano number in a given snapshot. Status is assigned only by the
// aggregation step.
type Volcano struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Country         string   `json:"country"`
	Region          string   `json:"region"`
	Latitude        float64  `json:"latitude"`
	Longitude       float64  `json:"longitude"`
	Elevation       float64  `json:"elevation"`
	Type            string   `json:"type"`
	Status          Status   `json:"status"`
	LastEruption    string   `json:"lastEruption,omitempty"`
	VEI             *int     `json:"vei,omitempty"`
	Description     string   `json:"description,omitempty"`
	TectonicSetting string   `json:"tectonicSetting,omitempty"`
	RockTypes       []string `json:"rockTypes,omitempty"`
}

// ActiveEruption is an ephemeral record of a currently continuing eruption.
// The set of ActiveEruptions is recomputed wholesale on each feed refresh and
// never partially updated.
type ActiveEruption struct {
	VolcanoID   string `json:"volcanoId"`
	VolcanoName string `json:"volcanoName"`
	StartDate   string `json:"startDate,omitempty"`
	VEI         *int   `json:"vei,omitempty"`
}

// CatalogSnapshot is a point-in-time view of the merged, sorted catalog.
type CatalogSnapshot struct {
	Volcanoes []Volcano
	FetchedAt time.Time
}

// Watchlists are the curated elevated-status volcano number sets. They are
// configuration data: injectable, optionally loaded from a file, never derived.
type Watchlists struct {
	Warning  []string `json:"warning"`
	Watch    []string `json:"watch"`
	Advisory []string `json:"advisory"`
}

// DefaultWatchlists returns the built-in watchlists used when no override file
// is configured.
func DefaultWatchlists() Watchlists {
	return Watchlists{
		Warning:  []string{"341090", "273070"},           // Popocatepetl, Taal
		Watch:    []string{"282080", "342090", "357120"}, // Sakurajima, Fuego, Villarrica
		Advisory: []string{"332020", "263300"},           // Mauna Loa, Semeru
	}
}

// DeriveStatus computes a volcano's activity status. Priority order, first
// match wins: erupting, warning, watch, advisory, normal. A live eruption
// always beats a watchlist entry.
func DeriveStatus(id string, erupting map[string]ActiveEruption, lists Watchlists) Status {
	if _, ok := erupting[id]; ok {
		return StatusErupting
	}
	switch {
	case slices.Contains(lists.Warning, id):
		return StatusWarning
	case slices.Contains(lists.Watch, id):
		return StatusWatch
	case slices.Contains(lists.Advisory, id):
		return StatusAdvisory
	}
	return StatusNormal
}

// SortVolcanoes orders the list ascending by (status priority, name), names
// compared with English-locale collation. The sort is stable, so equal
// (status, name) pairs keep their input order.
func SortVolcanoes(volcanoes []Volcano) {
	c := collate.New(language.English)
	slices.SortStableFunc(volcanoes, func(a, b Volcano) int {
		if d := a.Status.Priority() - b.Status.Priority(); d != 0 {
			return d
		}
		return c.CompareString(a.Name, b.Name)
	})
}

// RegionLabel picks the display region: subregion when present, then region,
// then "Unknown".
func RegionLabel(subregion, region string) string {
	if s := strings.TrimSpace(subregion); s != "" {
		return s
	}
	if r := strings.TrimSpace(region); r != "" {
		return r
	}
	return "Unknown"
}

// EruptionYearLabel renders a GVP eruption year as a display string.
// Negative years are BCE.
func EruptionYearLabel(year int) string {
	if year < 0 {
		return fmt.Sprintf("%d BCE", -year)
	}
	return fmt.Sprintf("%d", year)
}

// SplitRockTypes splits a composite major-rock-type value into individual
// labels, e.g. "Andesite / Basaltic Andesite" -> ["Andesite", "Basaltic Andesite"].
func SplitRockTypes(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Describe composes a one-line description from catalog fields. Returns ""
// when the type is unknown.
func Describe(volcanoType, region, country string) string {
	if volcanoType == "" || volcanoType == "Unknown" {
		return ""
	}
	switch {
	case region != "" && region != "Unknown" && country != "":
		return fmt.Sprintf("%s in %s, %s.", volcanoType, region, country)
	case country != "":
		return fmt.Sprintf("%s in %s.", volcanoType, country)
	default:
		return volcanoType + "."
	}
}

func intPtr(v int) *int { return &v }

// FallbackVolcanoes returns the fixed minimal dataset served when the catalog
// fetch fails: five well-known volcanoes in continuing eruption. Callers get a
// fresh copy on every call, so the literals can never be mutated by a consumer.
func FallbackVolcanoes() []Volcano {
	return []Volcano{
		{
			ID: "332010", Name: "Kilauea", Country: "United States",
			Region: "Hawaiian Islands", Latitude: 19.421, Longitude: -155.287,
			Elevation: 1222, Type: "Shield", Status: StatusErupting,
			LastEruption: "2023", VEI: intPtr(0),
			Description:     "Shield in Hawaiian Islands, United States.",
			TectonicSetting: "Intraplate / Oceanic crust (> 15 km)",
			RockTypes:       []string{"Basalt", "Picro-Basalt"},
		},
		{
			ID: "211060", Name: "Etna", Country: "Italy",
			Region: "Italy", Latitude: 37.748, Longitude: 14.999,
			Elevation: 3357, Type: "Stratovolcano", Status: StatusErupting,
			LastEruption: "2023", VEI: intPtr(2),
			Description:     "Stratovolcano in Italy, Italy.",
			TectonicSetting: "Subduction zone / Continental crust (> 25 km)",
			RockTypes:       []string{"Trachybasalt", "Tephrite Basanite"},
		},
		{
			ID: "211040", Name: "Stromboli", Country: "Italy",
			Region: "Italy", Latitude: 38.789, Longitude: 15.213,
			Elevation: 924, Type: "Stratovolcano", Status: StatusErupting,
			LastEruption: "2023", VEI: intPtr(2),
			Description:     "Stratovolcano in Italy, Italy.",
			TectonicSetting: "Subduction zone / Continental crust (> 25 km)",
			RockTypes:       []string{"Trachybasalt", "Basaltic Andesite"},
		},
		{
			ID: "263250", Name: "Merapi", Country: "Indonesia",
			Region: "Java", Latitude: -7.54, Longitude: 110.446,
			Elevation: 2910, Type: "Stratovolcano", Status: StatusErupting,
			LastEruption: "2023", VEI: intPtr(1),
			Description:     "Stratovolcano in Java, Indonesia.",
			TectonicSetting: "Subduction zone / Continental crust (> 25 km)",
			RockTypes:       []string{"Basaltic Andesite", "Andesite"},
		},
		{
			ID: "352090", Name: "Sangay", Country: "Ecuador",
			Region: "Ecuador", Latitude: -2.005, Longitude: -78.341,
			Elevation: 5286, Type: "Stratovolcano", Status: StatusErupting,
			LastEruption: "2023", VEI: intPtr(2),
			Description:     "Stratovolcano in Ecuador, Ecuador.",
			TectonicSetting: "Subduction zone / Continental crust (> 25 km)",
			RockTypes:       []string{"Andesite", "Basaltic Andesite"},
		},
	}
}
