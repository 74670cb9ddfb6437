package pointcloud

import "testing"

func TestRemoveOutliersDropsIsolatedPoint(t *testing.T) {
	c := gridCloud(5, 0.005)
	c.Points = append(c.Points, Point{X: 3, Y: 3, Z: 3})

	filtered := RemoveOutliers(c, DefaultFilterConfig())
	if len(filtered.Points) != len(c.Points)-1 {
		t.Fatalf("filtered to %d points, want %d", len(filtered.Points), len(c.Points)-1)
	}
	for _, p := range filtered.Points {
		if p.X == 3 && p.Y == 3 && p.Z == 3 {
			t.Fatal("isolated point survived the filter")
		}
	}
}

func TestRemoveOutliersPreservesOrder(t *testing.T) {
	c := gridCloud(4, 0.005)
	filtered := RemoveOutliers(c, DefaultFilterConfig())
	if len(filtered.Points) != len(c.Points) {
		t.Fatalf("dense cloud lost points: %d of %d kept", len(filtered.Points), len(c.Points))
	}
	for i := range filtered.Points {
		if filtered.Points[i] != c.Points[i] {
			t.Fatalf("point %d reordered: got %+v, want %+v", i, filtered.Points[i], c.Points[i])
		}
	}
}

func TestRemoveOutliersEmptyCloud(t *testing.T) {
	filtered := RemoveOutliers(&Cloud{FrameID: "camera_link"}, DefaultFilterConfig())
	if !filtered.IsEmpty() {
		t.Error("filtering an empty cloud should stay empty")
	}
	if filtered.FrameID != "camera_link" {
		t.Errorf("frame id = %q, want camera_link", filtered.FrameID)
	}
}

func TestRemoveOutliersDoesNotModifyInput(t *testing.T) {
	c := gridCloud(4, 0.005)
	c.Points = append(c.Points, Point{X: 9})
	before := len(c.Points)
	RemoveOutliers(c, DefaultFilterConfig())
	if len(c.Points) != before {
		t.Error("RemoveOutliers modified the input cloud")
	}
}
