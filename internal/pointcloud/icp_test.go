package pointcloud

import (
	"math"
	"testing"
)

// gridCloud builds an n x n x 2 lattice with the given spacing, centred near
// the origin, coloured mid-gray.
func gridCloud(n int, spacing float64) *Cloud {
	c := &Cloud{FrameID: "camera_link"}
	half := float64(n-1) * spacing / 2
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			for k := 0; k < 2; k++ {
				c.Points = append(c.Points, Point{
					X: float64(i)*spacing - half,
					Y: float64(j)*spacing - half,
					Z: float64(k) * spacing,
					R: 128, G: 128, B: 128,
				})
			}
		}
	}
	return c
}

func TestAlignCloudsEmptyInputs(t *testing.T) {
	src := gridCloud(4, 0.01)
	tf, aligned := AlignClouds(src, &Cloud{}, DefaultICPConfig())
	if tf != IdentityTransform() {
		t.Errorf("transform for empty target = %+v, want identity", tf)
	}
	if !aligned.IsEmpty() {
		t.Error("aligned cloud for empty target should be empty")
	}
	if aligned.FrameID != src.FrameID {
		t.Errorf("aligned frame = %q, want %q", aligned.FrameID, src.FrameID)
	}

	tf, _ = AlignClouds(&Cloud{}, src, DefaultICPConfig())
	if tf != IdentityTransform() {
		t.Errorf("transform for empty source = %+v, want identity", tf)
	}
}

func TestAlignCloudsRecoversTranslation(t *testing.T) {
	source := gridCloud(6, 0.01)
	offset := Vec3{X: 0.012, Y: -0.007, Z: 0.004}
	target := source.Apply(Transform{Rotation: IdentityQuaternion(), Translation: offset})

	tf, aligned := AlignClouds(source, target, DefaultICPConfig())

	// The recovered transform undoes the offset.
	assertVec3Near(t, tf.Translation, Vec3{X: -offset.X, Y: -offset.Y, Z: -offset.Z}, 1e-3)
	if err := DistanceError(source, aligned, DefaultMetricsConfig()); err > 1e-3 {
		t.Errorf("residual alignment error = %v, want < 1e-3", err)
	}
	if aligned.FrameID != source.FrameID {
		t.Errorf("aligned frame = %q, want %q", aligned.FrameID, source.FrameID)
	}
	// The input clouds are untouched.
	if target.Points[0].X == aligned.Points[0].X && target.Points[0].Y == aligned.Points[0].Y {
		t.Error("aligned cloud does not appear to have moved")
	}
}

func TestAlignCloudsRecoversSmallRotation(t *testing.T) {
	source := gridCloud(6, 0.01)
	angle := 5 * math.Pi / 180
	target := source.Apply(Transform{Rotation: quaternionAboutZ(angle)})

	tf, aligned := AlignClouds(source, target, DefaultICPConfig())

	if err := DistanceError(source, aligned, DefaultMetricsConfig()); err > 1e-3 {
		t.Errorf("residual alignment error = %v, want < 1e-3", err)
	}
	if !tf.IsRigid() {
		t.Error("recovered transform is not rigid")
	}
}

func TestAlignCloudsIdenticalClouds(t *testing.T) {
	source := gridCloud(5, 0.01)
	tf, aligned := AlignClouds(source, source.Clone(), DefaultICPConfig())
	assertVec3Near(t, tf.Translation, Vec3{}, 1e-6)
	if err := DistanceError(source, aligned, DefaultMetricsConfig()); err > 1e-6 {
		t.Errorf("residual alignment error = %v, want ~0", err)
	}
}

func TestRejectOutliers(t *testing.T) {
	src := []Vec3{{X: 1}, {X: 2}, {X: 3}, {X: 4}}
	dst := []Vec3{{Y: 1}, {Y: 2}, {Y: 3}, {Y: 4}}
	distances := []float64{0.001, 0.002, 0.003, 0.5}

	fs, fd := rejectOutliers(src, dst, distances, 0.75)
	if len(fs) != 3 || len(fd) != 3 {
		t.Fatalf("kept %d pairs, want 3", len(fs))
	}
	for _, v := range fs {
		if v.X == 4 {
			t.Error("outlier pair survived rejection")
		}
	}

	// A percentile of 1 keeps everything.
	fs, _ = rejectOutliers(src, dst, distances, 1.0)
	if len(fs) != 4 {
		t.Errorf("kept %d pairs at percentile 1, want 4", len(fs))
	}
}

func TestRigidFromCorrespondences(t *testing.T) {
	want := Transform{
		Rotation:    quaternionAboutZ(0.3),
		Translation: Vec3{X: 0.05, Y: -0.02, Z: 0.01},
	}
	var src, dst []Vec3
	for _, v := range []Vec3{{X: 0.01}, {Y: 0.02}, {Z: 0.01}, {X: -0.01, Y: 0.01}, {X: 0.02, Z: -0.01}} {
		src = append(src, v)
		dst = append(dst, want.Apply(v))
	}

	got := rigidFromCorrespondences(src, dst)
	for i, v := range src {
		assertVec3Near(t, got.Apply(v), dst[i], 1e-9)
	}
}
