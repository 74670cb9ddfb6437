package pointcloud

import "math"

// estimatedPointsPerCell sizes the initial grid allocation when indexing a
// cloud.
const estimatedPointsPerCell = 4

// cellKey identifies one voxel of the index grid.
type cellKey struct {
	x, y, z int32
}

// spatialIndex accelerates nearest-neighbour and radius queries over a fixed
// point slice using a regular voxel grid. Cell size should approximately
// match the query radius for best performance.
type spatialIndex struct {
	cellSize float64
	points   []Point
	grid     map[cellKey][]int
}

// newSpatialIndex builds an index over points with the given cell size.
func newSpatialIndex(points []Point, cellSize float64) *spatialIndex {
	si := &spatialIndex{
		cellSize: cellSize,
		points:   points,
		grid:     make(map[cellKey][]int, len(points)/estimatedPointsPerCell+1),
	}
	for i, p := range points {
		k := si.key(p.X, p.Y, p.Z)
		si.grid[k] = append(si.grid[k], i)
	}
	return si
}

func (si *spatialIndex) key(x, y, z float64) cellKey {
	return cellKey{
		x: int32(math.Floor(x / si.cellSize)),
		y: int32(math.Floor(y / si.cellSize)),
		z: int32(math.Floor(z / si.cellSize)),
	}
}

// countWithin returns the number of indexed points within radius of (x,y,z),
// excluding the point at index self (pass -1 to count all).
func (si *spatialIndex) countWithin(x, y, z, radius float64, self int) int {
	r2 := radius * radius
	reach := int32(math.Ceil(radius / si.cellSize))
	center := si.key(x, y, z)
	count := 0
	for dx := -reach; dx <= reach; dx++ {
		for dy := -reach; dy <= reach; dy++ {
			for dz := -reach; dz <= reach; dz++ {
				k := cellKey{x: center.x + dx, y: center.y + dy, z: center.z + dz}
				for _, idx := range si.grid[k] {
					if idx == self {
						continue
					}
					p := si.points[idx]
					ddx, ddy, ddz := p.X-x, p.Y-y, p.Z-z
					if ddx*ddx+ddy*ddy+ddz*ddz <= r2 {
						count++
					}
				}
			}
		}
	}
	return count
}

// nearestWithin returns the index of and distance to the closest indexed
// point within maxDist of (x,y,z). ok is false when no point qualifies.
func (si *spatialIndex) nearestWithin(x, y, z, maxDist float64) (best int, dist float64, ok bool) {
	best = -1
	best2 := maxDist * maxDist
	reach := int32(math.Ceil(maxDist / si.cellSize))
	center := si.key(x, y, z)
	for dx := -reach; dx <= reach; dx++ {
		for dy := -reach; dy <= reach; dy++ {
			for dz := -reach; dz <= reach; dz++ {
				k := cellKey{x: center.x + dx, y: center.y + dy, z: center.z + dz}
				for _, idx := range si.grid[k] {
					p := si.points[idx]
					ddx, ddy, ddz := p.X-x, p.Y-y, p.Z-z
					d2 := ddx*ddx + ddy*ddy + ddz*ddz
					if d2 <= best2 {
						best2 = d2
						best = idx
					}
				}
			}
		}
	}
	if best < 0 {
		return -1, 0, false
	}
	return best, math.Sqrt(best2), true
}

// nearest returns the index of and distance to the closest indexed point
// with no distance cap. It expands the search ring by ring and falls back to
// a full scan only when the grid is empty near the query. Returns -1 for an
// empty index.
func (si *spatialIndex) nearest(x, y, z float64) (int, float64) {
	if len(si.points) == 0 {
		return -1, 0
	}
	// Expand the search radius geometrically until a hit is found. Each pass
	// is capped, so the loop terminates once the radius covers the cloud.
	radius := si.cellSize
	for i := 0; i < 32; i++ {
		if idx, d, ok := si.nearestWithin(x, y, z, radius); ok {
			// A closer point can still hide in an unvisited corner cell; one
			// confirming pass at the found distance settles it.
			if idx2, d2, ok2 := si.nearestWithin(x, y, z, d); ok2 {
				return idx2, d2
			}
			return idx, d
		}
		radius *= 2
	}
	// Degenerate cell sizes land here; scan everything.
	best, best2 := -1, math.MaxFloat64
	for i, p := range si.points {
		ddx, ddy, ddz := p.X-x, p.Y-y, p.Z-z
		d2 := ddx*ddx + ddy*ddy + ddz*ddz
		if d2 < best2 {
			best2 = d2
			best = i
		}
	}
	return best, math.Sqrt(best2)
}
