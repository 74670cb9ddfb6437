package pointcloud

// FilterConfig holds parameters for the statistical outlier filter.
type FilterConfig struct {
	// SearchRadius is the neighbourhood radius in metres used when counting
	// a point's neighbours.
	SearchRadius float64
	// MinNeighborFraction rejects a point whose neighbour count falls below
	// this fraction of the cloud's mean neighbour count.
	MinNeighborFraction float64
}

// DefaultFilterConfig returns the production outlier filter parameters.
func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		SearchRadius:        0.01,
		MinNeighborFraction: 0.5,
	}
}

// RemoveOutliers returns a copy of the cloud with statistical outliers
// removed. A point is kept when its neighbour count within SearchRadius is
// at least MinNeighborFraction of the cloud-wide mean neighbour count.
// Input order is preserved for the surviving points.
func RemoveOutliers(c *Cloud, cfg FilterConfig) *Cloud {
	if c.IsEmpty() {
		return c.Clone()
	}

	si := newSpatialIndex(c.Points, cfg.SearchRadius)
	counts := make([]int, len(c.Points))
	total := 0
	for i, p := range c.Points {
		counts[i] = si.countWithin(p.X, p.Y, p.Z, cfg.SearchRadius, i)
		total += counts[i]
	}

	mean := float64(total) / float64(len(c.Points))
	threshold := cfg.MinNeighborFraction * mean

	out := &Cloud{FrameID: c.FrameID, Points: make([]Point, 0, len(c.Points))}
	for i, p := range c.Points {
		if float64(counts[i]) >= threshold {
			out.Points = append(out.Points, p)
		}
	}
	return out
}
