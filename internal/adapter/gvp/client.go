// Package gvp adapts the Smithsonian Global Volcanism Program geoserver:
// a WFS client for the volcano catalog and eruption feed, plus the TTL cache
// that serves the current-eruption snapshot.
package gvp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/couchcryptid/volcano-globe-api/internal/domain"
	"github.com/couchcryptid/volcano-globe-api/internal/observability"
)

// Client fetches GeoJSON feature collections from the GVP geoserver.
type Client struct {
	catalogURL  string
	eruptionURL string
	httpClient  *http.Client
	metrics     *observability.Metrics
	logger      *slog.Logger
}

// NewClient creates a GVP client. The timeout bounds each upstream request's
// wall-clock time; a hung geoserver must not pin request handlers.
func NewClient(catalogURL, eruptionURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		catalogURL:  catalogURL,
		eruptionURL: eruptionURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// FetchCatalog retrieves the Holocene volcano catalog and maps it to domain
// records with status left at the default. Features missing geometry,
// coordinates, properties, a name, or a volcano number are silently excluded;
// a payload that is not a feature collection fails the whole fetch.
func (c *Client) FetchCatalog(ctx context.Context) ([]domain.Volcano, error) {
	var coll catalogCollection
	if err := c.getJSON(ctx, c.catalogURL, "catalog", &coll); err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	if coll.Type != "FeatureCollection" {
		c.metrics.UpstreamRequests.WithLabelValues("catalog", "error").Inc()
		return nil, fmt.Errorf("fetch catalog: unexpected payload type %q", coll.Type)
	}

	volcanoes := make([]domain.Volcano, 0, len(coll.Features))
	skipped := 0
	for _, f := range coll.Features {
		v, ok := mapCatalogFeature(f)
		if !ok {
			skipped++
			continue
		}
		volcanoes = append(volcanoes, v)
	}

	if skipped > 0 {
		c.metrics.FeaturesSkipped.Add(float64(skipped))
		c.logger.Warn("skipped malformed catalog features", "skipped", skipped, "kept", len(volcanoes))
	}

	c.metrics.UpstreamRequests.WithLabelValues("catalog", "success").Inc()
	return volcanoes, nil
}

// FetchEruptions retrieves the eruption feed and returns the records flagged
// as continuing, in feed order.
func (c *Client) FetchEruptions(ctx context.Context) ([]domain.ActiveEruption, error) {
	var coll eruptionCollection
	if err := c.getJSON(ctx, c.eruptionURL, "eruptions", &coll); err != nil {
		return nil, fmt.Errorf("fetch eruptions: %w", err)
	}
	if coll.Type != "FeatureCollection" {
		c.metrics.UpstreamRequests.WithLabelValues("eruptions", "error").Inc()
		return nil, fmt.Errorf("fetch eruptions: unexpected payload type %q", coll.Type)
	}

	eruptions := make([]domain.ActiveEruption, 0, len(coll.Features))
	for _, f := range coll.Features {
		p := f.Properties
		if p == nil || !p.Continuing || p.VolcanoNumber == 0 {
			continue
		}
		eruptions = append(eruptions, domain.ActiveEruption{
			VolcanoID:   strconv.FormatInt(p.VolcanoNumber, 10),
			VolcanoName: p.VolcanoName,
			StartDate:   p.StartDate,
			VEI:         p.VEIMax,
		})
	}

	c.metrics.UpstreamRequests.WithLabelValues("eruptions", "success").Inc()
	return eruptions, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL, source string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.UpstreamDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(source, "error").Inc()
		return fmt.Errorf("%s request: %w", source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.UpstreamRequests.WithLabelValues(source, "error").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("gvp API error: status %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(source, "error").Inc()
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// mapCatalogFeature converts one catalog feature to a Volcano, applying field
// fallbacks. Returns false for malformed features.
func mapCatalogFeature(f catalogFeature) (domain.Volcano, bool) {
	p := f.Properties
	g := f.Geometry
	if g == nil || len(g.Coordinates) < 2 || p == nil || p.VolcanoName == "" || p.VolcanoNumber == 0 {
		return domain.Volcano{}, false
	}

	v := domain.Volcano{
		ID:              strconv.FormatInt(p.VolcanoNumber, 10),
		Name:            p.VolcanoName,
		Country:         p.Country,
		Region:          domain.RegionLabel(p.Subregion, p.Region),
		Longitude:       g.Coordinates[0],
		Latitude:        g.Coordinates[1],
		Type:            "Unknown",
		Status:          domain.StatusNormal,
		TectonicSetting: p.TectonicSetting,
		RockTypes:       domain.SplitRockTypes(p.MajorRockType),
	}
	if p.PrimaryType != "" {
		v.Type = p.PrimaryType
	}
	if p.Elevation != nil {
		v.Elevation = *p.Elevation
	}
	if p.LastEruptionYear != nil {
		v.LastEruption = domain.EruptionYearLabel(*p.LastEruptionYear)
	}
	v.Description = domain.Describe(v.Type, v.Region, v.Country)

	return v, true
}

// GVP WFS response types.

type catalogCollection struct {
	Type     string           `json:"type"`
	Features []catalogFeature `json:"features"`
}

type catalogFeature struct {
	Geometry   *geometry          `json:"geometry"`
	Properties *catalogProperties `json:"properties"`
}

type geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"` // [lon, lat]
}

type catalogProperties struct {
	VolcanoNumber    int64    `json:"Volcano_Number"`
	VolcanoName      string   `json:"Volcano_Name"`
	Country          string   `json:"Country"`
	Region           string   `json:"Region"`
	Subregion        string   `json:"Subregion"`
	PrimaryType      string   `json:"Primary_Volcano_Type"`
	LastEruptionYear *int     `json:"Last_Eruption_Year"`
	Elevation        *float64 `json:"Elevation"`
	TectonicSetting  string   `json:"Tectonic_Setting"`
	MajorRockType    string   `json:"Major_Rock_Type"`
}

type eruptionCollection struct {
	Type     string            `json:"type"`
	Features []eruptionFeature `json:"features"`
}

type eruptionFeature struct {
	Properties *eruptionProperties `json:"properties"`
}

type eruptionProperties struct {
	VolcanoNumber int64  `json:"Volcano_Number"`
	VolcanoName   string `json:"Volcano_Name"`
	Continuing    bool   `json:"ContinuingEruption"`
	StartDate     string `json:"StartDate"`
	VEIMax        *int   `json:"ExplosivityIndexMax"`
}
