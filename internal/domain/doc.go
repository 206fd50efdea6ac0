// Package domain models Smithsonian Global Volcanism Program (GVP) volcano data.
//
// # Data Source
//
// Volcano and eruption records come from the GVP geoserver WFS layers at
// https://webservices.volcano.si.edu/geoserver/GVP-VOTW/, requested as GeoJSON
// feature collections. Two layers are consumed:
//
//   - Holocene volcano catalog: one point feature per volcanic center, keyed by
//     the GVP volcano number (a stable numeric identifier, e.g. 332010 for
//     Kilauea). Carries name, country, region/subregion, elevation, primary
//     volcano type, last eruption year, tectonic setting, and major rock type.
//   - Eruption feed: one feature per recorded eruption episode, with a
//     continuing-eruption flag for episodes not yet closed out, an optional
//     start date, and an optional maximum Volcanic Explosivity Index (VEI).
//
// # GVP Data Conventions
//
// Region labels:
//
//	The subregion is more specific than the region ("Hawaiian Islands" vs
//	"Hawaii and Pacific Ocean"), so display falls back subregion → region →
//	"Unknown". See [RegionLabel].
//
// Last eruption year:
//
//	An integer year; negative values are BCE. Rendered as a display string
//	("2021", "1350 BCE"). Absent means no dated Holocene eruption.
//
// Rock types:
//
//	The catalog's major rock type is a slash-separated composite
//	("Andesite / Basaltic Andesite"), split into individual labels.
//
// # Status Derivation
//
// Each volcano carries exactly one activity status from a five-level ladder,
// first match wins:
//
//	erupting — volcano number appears in the current-eruption snapshot
//	warning  — curated elevated-hazard watchlist
//	watch    — curated watchlist
//	advisory — curated advisory list
//	normal   — default
//
// The three watchlists are static configuration (see [Watchlists]), not derived
// from live data, and are injectable so they can change without a redeploy.
// Sorting is ascending by (status priority, name) with locale-aware name
// collation, so the list order is deterministic for a given snapshot.
package domain
