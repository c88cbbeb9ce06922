package geo

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/masshrc/chatbot/internal/domain"
)

// maxResults caps how many resources a single reply lists.
const maxResults = 5

// Locate ranks and formats the resources of a category closest to a ZIP
// code. Every failure path returns a user-facing chat reply, never an error:
// missing reference data is an administrator problem, not a user one.
func (d *Data) Locate(category, zipcode string) string {
	var matched []domain.Resource
	for _, r := range d.resources {
		if r.Category == category {
			matched = append(matched, r)
		}
	}
	if len(matched) == 0 {
		slog.Warn("no resources for category", "category", category)
		return fmt.Sprintf("⚠️ No %s resources found in the database. Check with the chatbot administrator.", category)
	}

	if !d.hasGeometry {
		slog.Warn("resource dataset missing geometry columns")
		return "⚠️ Resource data missing longitude and latitude columns. Notify the chatbot administrator there's an issue with the dataset."
	}

	boundary, ok := d.boundaries[zipcode]
	if !ok {
		slog.Warn("zipcode not in boundary dataset", "zipcode", zipcode)
		return fmt.Sprintf("⚠️ Zipcode %s was not found in the boundary dataset. Check with the chatbot administrator if there's an issue.", zipcode)
	}

	// Reproject the boundary and every candidate into state-plane meters so
	// Euclidean distance approximates ground distance.
	projected := ProjectMultiPolygon(boundary)
	centroid, _ := planar.CentroidArea(projected)

	type candidate struct {
		resource domain.Resource
		miles    float64
	}

	var inside, outside []candidate
	for _, r := range matched {
		pt := Project(orb.Point{r.Longitude, r.Latitude})
		c := candidate{
			resource: r,
			miles:    planar.Distance(pt, centroid) * MetersToMiles,
		}
		if planar.MultiPolygonContains(projected, pt) {
			inside = append(inside, c)
		} else {
			outside = append(outside, c)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Here are the closest %s resources to %s:\n\n---\n", category, zipcode)

	// Everything inside the ZIP is listed, without a numeric distance.
	for _, c := range inside {
		fmt.Fprintf(&b, "%s\n%s\n%s\nDistance: inside zipcode %s\n---\n",
			c.resource.OrganizationName, c.resource.Address, c.resource.PhoneNumber, zipcode)
	}

	// Fill the remainder from outside the ZIP, nearest first.
	if remaining := maxResults - len(inside); remaining > 0 {
		sort.SliceStable(outside, func(i, j int) bool {
			return outside[i].miles < outside[j].miles
		})
		if remaining > len(outside) {
			remaining = len(outside)
		}
		for _, c := range outside[:remaining] {
			fmt.Fprintf(&b, "%s\n%s\n%s\nDistance: %.1f miles away\n---\n",
				c.resource.OrganizationName, c.resource.Address, c.resource.PhoneNumber, c.miles)
		}
	}

	return strings.TrimSpace(b.String())
}
