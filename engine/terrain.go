package engine

import (
	"math"

	"golang.org/x/exp/rand"

	"github.com/spaghettifunk/terravox/engine/renderer/drawbuffer"
	"github.com/spaghettifunk/terravox/engine/terraingen"
)

const (
	CHUNK_SIZE = 16
	// vertices of one quad drawn as two triangles
	QUAD_VERTICES = 6
	// index of +Y in the shader's face normal table
	NORMAL_UP uint8 = 2
)

/**
 * @brief Builds the top faces of a synthetic height field for one chunk. The
 * climate of every column is sampled from rng and classified into a terrain
 * material. The result is cut to maxVertices whole quads.
 */
func syntheticChunk(rng *rand.Rand, originX, originZ float32, maxVertices uint32) []drawbuffer.Vertex {
	quads := uint32(CHUNK_SIZE * CHUNK_SIZE)
	if limit := maxVertices / QUAD_VERTICES; limit < quads {
		quads = limit
	}

	phase := rng.Float64() * 2 * math.Pi
	rainBase := rng.Float64()*8.5 - 3.5
	tempBase := rng.Float64()*16 - 6

	vertices := make([]drawbuffer.Vertex, 0, quads*QUAD_VERTICES)
	for i := uint32(0); i < quads; i++ {
		x, z := float64(i%CHUNK_SIZE), float64(i/CHUNK_SIZE)

		elevation := 0.5 + 0.5*math.Sin(phase+x*0.4)*math.Cos(phase+z*0.3)
		rainfall := rainBase + rng.NormFloat64()*0.5
		temperature := tempBase + rng.NormFloat64()*0.5
		material := terraingen.ClassifyComponents(elevation, rainfall, temperature)

		packed := drawbuffer.PackVertexData(uint16(material), NORMAL_UP, uint8(rng.Intn(4)))
		y := float32(math.Floor(elevation * 8))
		x0, z0 := originX+float32(x), originZ+float32(z)
		x1, z1 := x0+1, z0+1

		// Counter-clockwise seen from above.
		vertices = append(vertices,
			drawbuffer.Vertex{X: x0, Y: y, Z: z0, Packed: packed},
			drawbuffer.Vertex{X: x0, Y: y, Z: z1, Packed: packed},
			drawbuffer.Vertex{X: x1, Y: y, Z: z1, Packed: packed},
			drawbuffer.Vertex{X: x0, Y: y, Z: z0, Packed: packed},
			drawbuffer.Vertex{X: x1, Y: y, Z: z1, Packed: packed},
			drawbuffer.Vertex{X: x1, Y: y, Z: z0, Packed: packed},
		)
	}
	return vertices
}
