package pointcloud

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// minCorrespondences is the smallest pair count from which a rigid transform
// can still be estimated.
const minCorrespondences = 3

// ICPConfig holds parameters for iterative closest point alignment. All
// distances are metres.
type ICPConfig struct {
	MaxIterations     int     // iteration budget
	ConvergenceThresh float64 // stop when error improvement drops below this
	MaxCorrespondDist float64 // maximum distance for a point correspondence
	OutlierPercentile float64 // keep correspondences below this distance percentile (0-1]
}

// DefaultICPConfig returns production alignment parameters sized for
// tabletop-scale segmented objects.
func DefaultICPConfig() ICPConfig {
	return ICPConfig{
		MaxIterations:     50,
		ConvergenceThresh: 1e-5,
		MaxCorrespondDist: 0.05,
		OutlierPercentile: 0.9,
	}
}

// AlignClouds registers the target cloud onto the source cloud. It returns
// the rigid transform that was applied to target and a copy of target with
// that transform applied, expressed in source's frame. Neither input is
// modified.
//
// The returned transform therefore maps target-frame coordinates into
// source-frame coordinates; undoing it re-expresses source-frame poses in
// the target's frame.
func AlignClouds(source, target *Cloud, cfg ICPConfig) (Transform, *Cloud) {
	aligned := &Cloud{FrameID: source.FrameID}
	if source.IsEmpty() || target.IsEmpty() {
		return IdentityTransform(), aligned
	}

	fixed := newSpatialIndex(source.Points, cfg.MaxCorrespondDist)

	// Seed with a pure translation between centroids. Both clouds are
	// usually origin-centred already, so this is a small correction.
	current := Transform{
		Rotation:    IdentityQuaternion(),
		Translation: source.Centroid().Sub(target.Centroid()),
	}
	prevError := alignmentError(target.Apply(current), fixed)

	for iter := 0; iter < cfg.MaxIterations; iter++ {
		moved := target.Apply(current)

		src, dst, distances := correspondences(moved, fixed, source.Points, cfg.MaxCorrespondDist)
		if len(src) < minCorrespondences {
			break
		}
		src, dst = rejectOutliers(src, dst, distances, cfg.OutlierPercentile)
		if len(src) < minCorrespondences {
			break
		}

		incremental := rigidFromCorrespondences(src, dst)
		next := incremental.Mul(current)

		err := alignmentError(target.Apply(next), fixed)
		improvement := prevError - err
		if improvement >= 0 && improvement < cfg.ConvergenceThresh {
			current = next
			break
		}
		if err > prevError*1.1 {
			// Diverging; keep the previous estimate.
			break
		}
		prevError = err
		current = next
	}

	out := target.Apply(current)
	out.FrameID = source.FrameID
	return current, out
}

// correspondences pairs each moved point with its nearest fixed point within
// maxDist, returning the paired positions and their separations.
func correspondences(moved *Cloud, fixed *spatialIndex, fixedPoints []Point, maxDist float64) (src, dst []Vec3, distances []float64) {
	for _, p := range moved.Points {
		idx, d, ok := fixed.nearestWithin(p.X, p.Y, p.Z, maxDist)
		if !ok {
			continue
		}
		q := fixedPoints[idx]
		src = append(src, Vec3{X: p.X, Y: p.Y, Z: p.Z})
		dst = append(dst, Vec3{X: q.X, Y: q.Y, Z: q.Z})
		distances = append(distances, d)
	}
	return src, dst, distances
}

// rejectOutliers drops correspondence pairs whose separation exceeds the
// given percentile of all separations.
func rejectOutliers(src, dst []Vec3, distances []float64, percentile float64) ([]Vec3, []Vec3) {
	if len(distances) == 0 || percentile >= 1.0 {
		return src, dst
	}
	sorted := make([]float64, len(distances))
	copy(sorted, distances)
	sort.Float64s(sorted)
	idx := int(float64(len(sorted)) * percentile)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	threshold := sorted[idx]

	var fs, fd []Vec3
	for i, d := range distances {
		if d <= threshold {
			fs = append(fs, src[i])
			fd = append(fd, dst[i])
		}
	}
	return fs, fd
}

// rigidFromCorrespondences estimates the least-squares rigid transform that
// maps src points onto dst points using the Kabsch algorithm: SVD of the
// centred cross-covariance matrix, with a reflection fix on the smallest
// singular direction.
func rigidFromCorrespondences(src, dst []Vec3) Transform {
	n := float64(len(src))
	var cs, cd Vec3
	for i := range src {
		cs = cs.Add(src[i])
		cd = cd.Add(dst[i])
	}
	cs = Vec3{X: cs.X / n, Y: cs.Y / n, Z: cs.Z / n}
	cd = Vec3{X: cd.X / n, Y: cd.Y / n, Z: cd.Z / n}

	h := mat.NewDense(3, 3, nil)
	for i := range src {
		s := src[i].Sub(cs)
		d := dst[i].Sub(cd)
		h.Set(0, 0, h.At(0, 0)+s.X*d.X)
		h.Set(0, 1, h.At(0, 1)+s.X*d.Y)
		h.Set(0, 2, h.At(0, 2)+s.X*d.Z)
		h.Set(1, 0, h.At(1, 0)+s.Y*d.X)
		h.Set(1, 1, h.At(1, 1)+s.Y*d.Y)
		h.Set(1, 2, h.At(1, 2)+s.Y*d.Z)
		h.Set(2, 0, h.At(2, 0)+s.Z*d.X)
		h.Set(2, 1, h.At(2, 1)+s.Z*d.Y)
		h.Set(2, 2, h.At(2, 2)+s.Z*d.Z)
	}

	var svd mat.SVD
	if !svd.Factorize(h, mat.SVDFull) {
		return IdentityTransform()
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	// R = V * U^T with a sign flip when the solution is a reflection.
	var r mat.Dense
	r.Mul(&v, u.T())
	if mat.Det(&r) < 0 {
		for i := 0; i < 3; i++ {
			v.Set(i, 2, -v.At(i, 2))
		}
		r.Mul(&v, u.T())
	}

	q := QuaternionFromMatrix([9]float64{
		r.At(0, 0), r.At(0, 1), r.At(0, 2),
		r.At(1, 0), r.At(1, 1), r.At(1, 2),
		r.At(2, 0), r.At(2, 1), r.At(2, 2),
	})
	return Transform{
		Rotation:    q,
		Translation: cd.Sub(q.Rotate(cs)),
	}
}

// alignmentError is the mean unbounded nearest-neighbour distance from the
// moved cloud to the fixed index.
func alignmentError(moved *Cloud, fixed *spatialIndex) float64 {
	if moved.IsEmpty() {
		return math.MaxFloat64
	}
	total := 0.0
	for _, p := range moved.Points {
		_, d := fixed.nearest(p.X, p.Y, p.Z)
		total += d
	}
	return total / float64(len(moved.Points))
}
