package graspdb

import (
	"errors"
	"testing"

	"github.com/bhetherman/rail-pick-and-place/internal/pointcloud"
)

func sampleCloud() *pointcloud.Cloud {
	return pointcloud.NewCloud("camera_link", []pointcloud.Point{
		{X: 0.01, Y: -0.02, Z: 0.5, R: 200, G: 10, B: 55},
		{X: -1.5, Y: 0, Z: 3.25, R: 0, G: 255, B: 128},
	})
}

func TestEncodeDecodeCloud(t *testing.T) {
	want := sampleCloud()
	got, err := DecodeCloud(EncodeCloud(want))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.FrameID != want.FrameID {
		t.Errorf("frame id = %q, want %q", got.FrameID, want.FrameID)
	}
	if len(got.Points) != len(want.Points) {
		t.Fatalf("point count = %d, want %d", len(got.Points), len(want.Points))
	}
	for i := range want.Points {
		if got.Points[i] != want.Points[i] {
			t.Errorf("point %d = %+v, want %+v", i, got.Points[i], want.Points[i])
		}
	}
}

func TestEncodeDecodeEmptyCloud(t *testing.T) {
	got, err := DecodeCloud(EncodeCloud(&pointcloud.Cloud{FrameID: "base_link"}))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.FrameID != "base_link" || len(got.Points) != 0 {
		t.Errorf("decoded = %+v, want empty base_link cloud", got)
	}
}

func TestDecodeCloudTruncated(t *testing.T) {
	full := EncodeCloud(sampleCloud()).Bytes()
	for _, n := range []int{0, 3, cloudHeaderSize - 1, cloudHeaderSize + 2, len(full) - 1} {
		if _, err := DecodeCloud(NewCloudBuffer(full[:n])); !errors.Is(err, ErrCloudTruncated) {
			t.Errorf("decode of %d bytes: err = %v, want ErrCloudTruncated", n, err)
		}
	}
}

func TestDecodeCloudBadMagic(t *testing.T) {
	data := EncodeCloud(sampleCloud()).Bytes()
	data[0] ^= 0xff
	if _, err := DecodeCloud(NewCloudBuffer(data)); err == nil {
		t.Fatal("decode with corrupted magic should fail")
	}
}

func TestDecodeCloudBadVersion(t *testing.T) {
	data := EncodeCloud(sampleCloud()).Bytes()
	data[4] = 99
	if _, err := DecodeCloud(NewCloudBuffer(data)); err == nil {
		t.Fatal("decode with unknown version should fail")
	}
}

func TestCloudBufferOwnsItsBytes(t *testing.T) {
	raw := []byte{1, 2, 3}
	b := NewCloudBuffer(raw)
	raw[0] = 9
	if b.Bytes()[0] != 1 {
		t.Error("buffer aliased the construction slice")
	}

	out := b.Bytes()
	out[1] = 9
	if b.Bytes()[1] != 2 {
		t.Error("buffer aliased the returned slice")
	}
	if b.Len() != 3 {
		t.Errorf("len = %d, want 3", b.Len())
	}
}
