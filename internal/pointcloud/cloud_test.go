package pointcloud

import (
	"math"
	"testing"
)

func TestCloudIsEmpty(t *testing.T) {
	var nilCloud *Cloud
	if !nilCloud.IsEmpty() {
		t.Error("nil cloud should be empty")
	}
	if !(&Cloud{FrameID: "camera_link"}).IsEmpty() {
		t.Error("zero-point cloud should be empty")
	}
	if NewCloud("camera_link", []Point{{X: 1}}).IsEmpty() {
		t.Error("one-point cloud should not be empty")
	}
}

func TestCloudCentroid(t *testing.T) {
	c := NewCloud("camera_link", []Point{
		{X: 0, Y: 0, Z: 0},
		{X: 2, Y: 4, Z: -2},
	})
	assertVec3Near(t, c.Centroid(), Vec3{X: 1, Y: 2, Z: -1}, 1e-12)
	assertVec3Near(t, (&Cloud{}).Centroid(), Vec3{}, 0)
}

func TestCloudAverageColor(t *testing.T) {
	c := NewCloud("camera_link", []Point{
		{R: 100, G: 0, B: 255},
		{R: 200, G: 50, B: 245},
	})
	r, g, b := c.AverageColor()
	if r != 150 || g != 25 || b != 250 {
		t.Errorf("average color = (%v, %v, %v), want (150, 25, 250)", r, g, b)
	}
}

func TestCloudTranslate(t *testing.T) {
	c := NewCloud("camera_link", []Point{{X: 1, Y: 2, Z: 3, R: 9}})
	moved := c.Translate(Vec3{X: 1, Y: 2, Z: 3})
	if got := moved.Points[0]; got.X != 0 || got.Y != 0 || got.Z != 0 {
		t.Errorf("translated point = %+v, want origin", got)
	}
	if moved.Points[0].R != 9 {
		t.Error("translation dropped the colour attribute")
	}
	// The source cloud is untouched.
	if c.Points[0].X != 1 {
		t.Error("Translate modified the input cloud")
	}
}

func TestCloudApply(t *testing.T) {
	c := NewCloud("camera_link", []Point{{X: 1, G: 77}})
	tf := Transform{
		Rotation:    quaternionAboutZ(math.Pi / 2),
		Translation: Vec3{Z: 1},
	}
	out := c.Apply(tf)
	got := out.Points[0]
	assertVec3Near(t, Vec3{X: got.X, Y: got.Y, Z: got.Z}, Vec3{Y: 1, Z: 1}, 1e-12)
	if got.G != 77 {
		t.Error("Apply dropped the colour attribute")
	}
}

func TestCloudClone(t *testing.T) {
	c := NewCloud("camera_link", []Point{{X: 1}})
	clone := c.Clone()
	clone.Points[0].X = 99
	if c.Points[0].X != 1 {
		t.Error("Clone shares point storage with the source")
	}
	var nilCloud *Cloud
	if nilCloud.Clone() != nil {
		t.Error("clone of nil cloud should be nil")
	}
}
