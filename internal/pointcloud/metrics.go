package pointcloud

import "math"

// MetricsConfig holds the tolerances used by the registration quality
// metrics.
type MetricsConfig struct {
	// OverlapTolerance is the maximum metre distance at which a point of the
	// base cloud counts as coincident with the compared cloud.
	OverlapTolerance float64
}

// DefaultMetricsConfig returns the production metric tolerances.
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{OverlapTolerance: 0.005}
}

// Overlap measures how well the compared cloud covers the base cloud.
//
// With colorMode false it returns the overlap fraction: the fraction of base
// points that have a compared point within OverlapTolerance.
//
// With colorMode true it returns the colour analog: the mean Euclidean RGB
// distance between each coincident pair, on the 0-255 channel scale. Zero is
// returned when nothing overlaps.
func Overlap(base, compared *Cloud, colorMode bool, cfg MetricsConfig) float64 {
	if base.IsEmpty() || compared.IsEmpty() {
		return 0
	}

	si := newSpatialIndex(compared.Points, cfg.OverlapTolerance)
	matches := 0
	colorError := 0.0
	for _, p := range base.Points {
		idx, _, ok := si.nearestWithin(p.X, p.Y, p.Z, cfg.OverlapTolerance)
		if !ok {
			continue
		}
		matches++
		if colorMode {
			q := compared.Points[idx]
			dr := float64(p.R) - float64(q.R)
			dg := float64(p.G) - float64(q.G)
			db := float64(p.B) - float64(q.B)
			colorError += math.Sqrt(dr*dr + dg*dg + db*db)
		}
	}

	if colorMode {
		if matches == 0 {
			return 0
		}
		return colorError / float64(matches)
	}
	return float64(matches) / float64(len(base.Points))
}

// DistanceError returns the mean nearest-neighbour distance in metres from
// each base point to the compared cloud. Zero is returned when either cloud
// is empty.
func DistanceError(base, compared *Cloud, cfg MetricsConfig) float64 {
	if base.IsEmpty() || compared.IsEmpty() {
		return 0
	}

	si := newSpatialIndex(compared.Points, cfg.OverlapTolerance)
	total := 0.0
	for _, p := range base.Points {
		_, d := si.nearest(p.X, p.Y, p.Z)
		total += d
	}
	return total / float64(len(base.Points))
}
