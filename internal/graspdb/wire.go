package graspdb

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/bhetherman/rail-pick-and-place/internal/pointcloud"
)

// Serialized cloud layout, little-endian:
//
//	u32  magic "RPPC"
//	u16  version
//	u16  frame id byte length, followed by the frame id bytes
//	u32  point count, followed by per-point records:
//	     3 x f64 position, 3 x u8 colour
const (
	cloudMagic   uint32 = 0x52505043 // "RPPC"
	cloudVersion uint16 = 1

	cloudHeaderSize = 4 + 2 + 2
	cloudPointSize  = 3*8 + 3
)

// ErrCloudTruncated reports a serialized cloud shorter than its declared
// length.
var ErrCloudTruncated = errors.New("graspdb: serialized cloud truncated")

// CloudBuffer is an owned, immutable serialized point cloud. Construction
// and access both copy, so no caller can alias the internal bytes.
type CloudBuffer struct {
	data []byte
}

// NewCloudBuffer copies data into a new buffer.
func NewCloudBuffer(data []byte) CloudBuffer {
	b := CloudBuffer{data: make([]byte, len(data))}
	copy(b.data, data)
	return b
}

// Len returns the buffer length in bytes.
func (b CloudBuffer) Len() int {
	return len(b.data)
}

// Bytes returns a copy of the serialized payload.
func (b CloudBuffer) Bytes() []byte {
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out
}

// EncodeCloud serializes a cloud into an owned buffer.
func EncodeCloud(c *pointcloud.Cloud) CloudBuffer {
	frame := []byte(c.FrameID)
	size := cloudHeaderSize + 2 + len(frame) + 4 + len(c.Points)*cloudPointSize
	data := make([]byte, 0, size)

	var scratch [8]byte
	binary.LittleEndian.PutUint32(scratch[:4], cloudMagic)
	data = append(data, scratch[:4]...)
	binary.LittleEndian.PutUint16(scratch[:2], cloudVersion)
	data = append(data, scratch[:2]...)
	binary.LittleEndian.PutUint16(scratch[:2], uint16(len(frame)))
	data = append(data, scratch[:2]...)
	data = append(data, frame...)
	binary.LittleEndian.PutUint32(scratch[:4], uint32(len(c.Points)))
	data = append(data, scratch[:4]...)

	for _, p := range c.Points {
		for _, f := range [3]float64{p.X, p.Y, p.Z} {
			binary.LittleEndian.PutUint64(scratch[:8], math.Float64bits(f))
			data = append(data, scratch[:8]...)
		}
		data = append(data, p.R, p.G, p.B)
	}
	return CloudBuffer{data: data}
}

// DecodeCloud deserializes a buffer back into a cloud.
func DecodeCloud(b CloudBuffer) (*pointcloud.Cloud, error) {
	data := b.data
	if len(data) < cloudHeaderSize {
		return nil, ErrCloudTruncated
	}
	if magic := binary.LittleEndian.Uint32(data[0:4]); magic != cloudMagic {
		return nil, fmt.Errorf("graspdb: bad cloud magic %#x", magic)
	}
	if v := binary.LittleEndian.Uint16(data[4:6]); v != cloudVersion {
		return nil, fmt.Errorf("graspdb: unsupported cloud version %d", v)
	}

	frameLen := int(binary.LittleEndian.Uint16(data[6:8]))
	off := cloudHeaderSize
	if len(data) < off+frameLen+4 {
		return nil, ErrCloudTruncated
	}
	frameID := string(data[off : off+frameLen])
	off += frameLen

	count := int(binary.LittleEndian.Uint32(data[off : off+4]))
	off += 4
	if len(data) < off+count*cloudPointSize {
		return nil, ErrCloudTruncated
	}

	cloud := &pointcloud.Cloud{FrameID: frameID, Points: make([]pointcloud.Point, count)}
	for i := 0; i < count; i++ {
		cloud.Points[i] = pointcloud.Point{
			X: math.Float64frombits(binary.LittleEndian.Uint64(data[off : off+8])),
			Y: math.Float64frombits(binary.LittleEndian.Uint64(data[off+8 : off+16])),
			Z: math.Float64frombits(binary.LittleEndian.Uint64(data[off+16 : off+24])),
			R: data[off+24],
			G: data[off+25],
			B: data[off+26],
		}
		off += cloudPointSize
	}
	return cloud, nil
}
