// Package pointcloud provides the segmented-object point cloud model and the
// registration primitives used by the recognition pipeline: outlier
// filtering, origin centring, colour statistics, iterative closest point
// alignment and the derived registration quality metrics.
package pointcloud

// Point is a single RGB-attributed sample of a segmented object surface.
// Coordinates are metres in the cloud's reference frame.
type Point struct {
	X, Y, Z float64
	R, G, B uint8
}

// Cloud is a segmented object point cloud tagged with the reference frame it
// was observed in. Clouds may be empty; callers are expected to check
// IsEmpty before registration.
type Cloud struct {
	FrameID string
	Points  []Point
}

// NewCloud creates a cloud in the given frame with a copy of the points.
func NewCloud(frameID string, points []Point) *Cloud {
	c := &Cloud{FrameID: frameID, Points: make([]Point, len(points))}
	copy(c.Points, points)
	return c
}

// IsEmpty reports whether the cloud has no points. A nil cloud is empty.
func (c *Cloud) IsEmpty() bool {
	return c == nil || len(c.Points) == 0
}

// Clone returns a deep copy of the cloud.
func (c *Cloud) Clone() *Cloud {
	if c == nil {
		return nil
	}
	return NewCloud(c.FrameID, c.Points)
}

// Centroid returns the mean position of the cloud. The zero vector is
// returned for an empty cloud.
func (c *Cloud) Centroid() Vec3 {
	if c.IsEmpty() {
		return Vec3{}
	}
	var sum Vec3
	for _, p := range c.Points {
		sum.X += p.X
		sum.Y += p.Y
		sum.Z += p.Z
	}
	n := float64(len(c.Points))
	return Vec3{X: sum.X / n, Y: sum.Y / n, Z: sum.Z / n}
}

// AverageColor returns the per-channel mean colour of the cloud on the
// 0-255 scale. Zeros are returned for an empty cloud.
func (c *Cloud) AverageColor() (r, g, b float64) {
	if c.IsEmpty() {
		return 0, 0, 0
	}
	for _, p := range c.Points {
		r += float64(p.R)
		g += float64(p.G)
		b += float64(p.B)
	}
	n := float64(len(c.Points))
	return r / n, g / n, b / n
}

// Translate returns a copy of the cloud with every point shifted by -offset,
// re-anchoring the cloud so that offset becomes the origin.
func (c *Cloud) Translate(offset Vec3) *Cloud {
	out := &Cloud{FrameID: c.FrameID, Points: make([]Point, len(c.Points))}
	for i, p := range c.Points {
		out.Points[i] = Point{
			X: p.X - offset.X,
			Y: p.Y - offset.Y,
			Z: p.Z - offset.Z,
			R: p.R, G: p.G, B: p.B,
		}
	}
	return out
}

// Apply returns a copy of the cloud with the rigid transform applied to
// every point. Colour attributes are preserved.
func (c *Cloud) Apply(tf Transform) *Cloud {
	out := &Cloud{FrameID: c.FrameID, Points: make([]Point, len(c.Points))}
	for i, p := range c.Points {
		v := tf.Apply(Vec3{X: p.X, Y: p.Y, Z: p.Z})
		out.Points[i] = Point{X: v.X, Y: v.Y, Z: v.Z, R: p.R, G: p.G, B: p.B}
	}
	return out
}
