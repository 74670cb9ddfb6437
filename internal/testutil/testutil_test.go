package testutil

import (
	"errors"
	"net/http"
	"testing"

	"github.com/bhetherman/rail-pick-and-place/internal/pointcloud"
)

func TestAssertStatusCode(t *testing.T) {
	t.Parallel()

	AssertStatusCode(t, http.StatusOK, http.StatusOK)
	AssertStatusCode(t, http.StatusNotFound, http.StatusNotFound)
}

func TestAssertStatusCode_FailurePath(t *testing.T) {
	t.Parallel()

	ok := t.Run("status mismatch", func(t *testing.T) {
		AssertStatusCode(t, http.StatusOK, http.StatusBadRequest)
	})
	if ok {
		t.Fatal("expected subtest to fail on mismatched status code")
	}
}

func TestAssertNoError(t *testing.T) {
	t.Parallel()

	AssertNoError(t, nil)
}

func TestAssertNoError_FailurePath(t *testing.T) {
	t.Parallel()

	ok := t.Run("unexpected error", func(t *testing.T) {
		AssertNoError(t, errors.New("boom"))
	})
	if ok {
		t.Fatal("expected subtest to fail when error is non-nil")
	}
}

func TestAssertError(t *testing.T) {
	t.Parallel()

	AssertError(t, errors.New("test error"))
}

func TestAssertError_FailurePath(t *testing.T) {
	t.Parallel()

	ok := t.Run("missing expected error", func(t *testing.T) {
		AssertError(t, nil)
	})
	if ok {
		t.Fatal("expected subtest to fail when error is nil")
	}
}

func TestAssertInDelta(t *testing.T) {
	t.Parallel()

	AssertInDelta(t, 1.0005, 1.0, 0.001)

	ok := t.Run("outside delta", func(t *testing.T) {
		AssertInDelta(t, 1.1, 1.0, 0.001)
	})
	if ok {
		t.Fatal("expected subtest to fail when value is outside delta")
	}
}

func TestAssertVec3InDelta(t *testing.T) {
	t.Parallel()

	AssertVec3InDelta(t, pointcloud.Vec3{X: 1, Y: 2, Z: 3}, pointcloud.Vec3{X: 1, Y: 2, Z: 3}, 1e-9)

	ok := t.Run("component mismatch", func(t *testing.T) {
		AssertVec3InDelta(t, pointcloud.Vec3{X: 1}, pointcloud.Vec3{X: 2}, 1e-9)
	})
	if ok {
		t.Fatal("expected subtest to fail on component mismatch")
	}
}

func TestNewTestRequest(t *testing.T) {
	t.Parallel()

	req := NewTestRequest("GET", "/test")
	if req.Method != "GET" {
		t.Errorf("method = %s, want GET", req.Method)
	}
	if req.URL.Path != "/test" {
		t.Errorf("path = %s, want /test", req.URL.Path)
	}
}

func TestNewTestRecorder(t *testing.T) {
	t.Parallel()

	rec := NewTestRecorder()
	if rec == nil {
		t.Fatal("recorder is nil")
	}
}

func TestGrayCloud(t *testing.T) {
	t.Parallel()

	cloud := GrayCloud("camera_link", [][3]float64{{0, 0, 0}, {1, 2, 3}})
	if cloud.FrameID != "camera_link" {
		t.Errorf("frame id = %s, want camera_link", cloud.FrameID)
	}
	if len(cloud.Points) != 2 {
		t.Fatalf("point count = %d, want 2", len(cloud.Points))
	}
	if cloud.Points[1].X != 1 || cloud.Points[1].Y != 2 || cloud.Points[1].Z != 3 {
		t.Errorf("point = %+v, want (1, 2, 3)", cloud.Points[1])
	}
	if cloud.Points[0].R != 128 || cloud.Points[0].G != 128 || cloud.Points[0].B != 128 {
		t.Errorf("color = (%d, %d, %d), want mid-gray", cloud.Points[0].R, cloud.Points[0].G, cloud.Points[0].B)
	}
}
