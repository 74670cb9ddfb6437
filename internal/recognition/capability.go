// Package recognition matches a segmented object's point cloud against a
// library of stored grasp models and transfers the best-matching model's
// grasps onto the live object.
package recognition

import "github.com/bhetherman/rail-pick-and-place/internal/pointcloud"

// RegistrationOps is the point-cloud capability the recognizer consumes.
// The scorer is independent of the underlying registration algorithm; any
// implementation with these semantics can be swapped in. The production
// implementation is pointcloud.Ops.
type RegistrationOps interface {
	// RemoveOutliers filters statistical outliers, returning a new cloud.
	RemoveOutliers(c *pointcloud.Cloud) *pointcloud.Cloud

	// TranslateToOrigin re-anchors the cloud so centroid becomes the origin.
	TranslateToOrigin(c *pointcloud.Cloud, centroid pointcloud.Vec3) *pointcloud.Cloud

	// AverageColor returns the per-channel mean colour on the 0-255 scale.
	AverageColor(c *pointcloud.Cloud) (r, g, b float64)

	// Align registers target onto source, returning the rigid transform
	// applied to target and the aligned copy of target.
	Align(source, target *pointcloud.Cloud) (pointcloud.Transform, *pointcloud.Cloud)

	// Overlap returns the fraction of base points coincident with compared,
	// or the mean RGB distance over coincident pairs when colorMode is set.
	Overlap(base, compared *pointcloud.Cloud, colorMode bool) float64

	// DistanceError returns the mean nearest-neighbour distance from base to
	// compared.
	DistanceError(base, compared *pointcloud.Cloud) float64
}
