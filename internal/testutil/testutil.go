// Package testutil provides shared test utilities and fixtures.
//
// This package centralises common test helpers to reduce code duplication
// across test files and improve test maintainability.
package testutil

import (
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bhetherman/rail-pick-and-place/internal/pointcloud"
)

// AssertStatusCode checks that the response status code matches expected.
func AssertStatusCode(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status code = %d, want %d", got, want)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// AssertInDelta checks that got is within delta of want.
func AssertInDelta(t *testing.T, got, want, delta float64) {
	t.Helper()
	if math.IsNaN(got) || math.Abs(got-want) > delta {
		t.Errorf("got %v, want %v (±%v)", got, want, delta)
	}
}

// AssertVec3InDelta checks each component of got against want.
func AssertVec3InDelta(t *testing.T, got, want pointcloud.Vec3, delta float64) {
	t.Helper()
	if math.Abs(got.X-want.X) > delta || math.Abs(got.Y-want.Y) > delta || math.Abs(got.Z-want.Z) > delta {
		t.Errorf("got %+v, want %+v (±%v)", got, want, delta)
	}
}

// NewTestRequest creates a test HTTP request.
func NewTestRequest(method, path string) *http.Request {
	return httptest.NewRequest(method, path, nil)
}

// NewTestRecorder creates a test response recorder.
func NewTestRecorder() *httptest.ResponseRecorder {
	return httptest.NewRecorder()
}

// GrayCloud builds a cloud of the given points with a uniform mid-gray color.
func GrayCloud(frameID string, coords [][3]float64) *pointcloud.Cloud {
	cloud := &pointcloud.Cloud{FrameID: frameID, Points: make([]pointcloud.Point, len(coords))}
	for i, c := range coords {
		cloud.Points[i] = pointcloud.Point{X: c[0], Y: c[1], Z: c[2], R: 128, G: 128, B: 128}
	}
	return cloud
}
