// Package terraingen chooses terrain materials from climate.
package terraingen

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Climate is a point in (elevation, rainfall, temperature) space.
type Climate = mgl64.Vec3

type voronoiSite struct {
	material Material
	location Climate
}

// Order matters: on equal distance the later site wins.
var voronoiSites = []voronoiSite{
	{MaterialStone, Climate{0.0, -3.0, 0.0}},
	{MaterialGravelstone, Climate{0.0, -1.0, 0.0}},
	{MaterialGraveldirt, Climate{0.0, 2.0, 0.0}},
	{MaterialDirt, Climate{0.0, 2.5, 0.0}},
	{MaterialGrass, Climate{0.0, 3.5, 0.0}},
	{MaterialFlowergrass, Climate{0.0, 4.75, 0.0}},

	{MaterialGreystone, Climate{0.0, -3.5, -4.0}},
	{MaterialRedstone, Climate{0.0, 2.5, 4.0}},

	{MaterialBlackstone, Climate{0.0, -2.0, 4.0}},
	{MaterialGreySand, Climate{0.0, 0.0, 4.0}},
	{MaterialSand, Climate{0.0, 2.0, 5.0}},
	{MaterialRedsand, Climate{0.0, 2.5, 4.0}},
	{MaterialMud, Climate{0.0, 3.75, 5.0}},

	{MaterialLava, Climate{0.0, -2.0, 10.0}},

	{MaterialIce, Climate{0.0, 5.0, -6.0}},
	{MaterialSnow, Climate{1.0, 2.5, -5.0}},
}

// Classify returns the material of the climate site nearest to c.
func Classify(c Climate) Material {
	// Seeded with the first site, so a NaN climate still yields a material.
	best := voronoiSites[0].material
	dist := voronoiSites[0].location.Sub(c).Len()
	for _, site := range voronoiSites[1:] {
		if d := site.location.Sub(c).Len(); d <= dist {
			dist = d
			best = site.material
		}
	}
	return best
}

// ClassifyComponents is Classify for separate climate values.
func ClassifyComponents(elevation, rainfall, temperature float64) Material {
	return Classify(Climate{elevation, rainfall, temperature})
}
