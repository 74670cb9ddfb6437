package api

import (
	"github.com/bhetherman/rail-pick-and-place/internal/graspdb"
	"github.com/bhetherman/rail-pick-and-place/internal/pointcloud"
	"github.com/bhetherman/rail-pick-and-place/internal/recognition"
)

// PointJSON is one RGB point of a cloud payload.
type PointJSON struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	R uint8   `json:"r"`
	G uint8   `json:"g"`
	B uint8   `json:"b"`
}

func toCloud(frameID string, points []PointJSON) *pointcloud.Cloud {
	cloud := &pointcloud.Cloud{
		FrameID: frameID,
		Points:  make([]pointcloud.Point, len(points)),
	}
	for i, p := range points {
		cloud.Points[i] = pointcloud.Point{X: p.X, Y: p.Y, Z: p.Z, R: p.R, G: p.G, B: p.B}
	}
	return cloud
}

// ObservationRequest is a segmented object observation as posted by the
// perception stack. ObjectName optionally restricts the candidate list to
// models trained for that object.
type ObservationRequest struct {
	ObjectName string           `json:"object_name,omitempty"`
	FrameID    string           `json:"frame_id"`
	Centroid   graspdb.Position `json:"centroid"`
	Points     []PointJSON      `json:"points"`
}

// Observation converts the request to the recognizer's input type.
func (o *ObservationRequest) Observation() recognition.Observation {
	return recognition.Observation{
		Cloud:    toCloud(o.FrameID, o.Points),
		Centroid: o.Centroid.Vec3(),
	}
}

// GraspImport is one grasp of a model import payload.
type GraspImport struct {
	GraspPose  graspdb.Pose `json:"grasp_pose"`
	EefFrameID string       `json:"eef_frame_id"`
	Successes  int          `json:"successes"`
	Attempts   int          `json:"attempts"`
}

// ModelImport is a grasp model import payload.
type ModelImport struct {
	ObjectName string        `json:"object_name"`
	FrameID    string        `json:"frame_id"`
	Points     []PointJSON   `json:"points"`
	Grasps     []GraspImport `json:"grasps"`
}

// Model converts the import payload to a store model.
func (m *ModelImport) Model() *graspdb.GraspModel {
	model := &graspdb.GraspModel{
		ObjectName: m.ObjectName,
		PointCloud: toCloud(m.FrameID, m.Points),
		Grasps:     make([]graspdb.Grasp, len(m.Grasps)),
	}
	for i, g := range m.Grasps {
		model.Grasps[i] = graspdb.Grasp{
			GraspPose:  g.GraspPose,
			EefFrameID: g.EefFrameID,
			Successes:  g.Successes,
			Attempts:   g.Attempts,
		}
	}
	return model
}

// ModelSummary is the list representation of a stored model.
type ModelSummary struct {
	ID         uint32 `json:"id"`
	ObjectName string `json:"object_name"`
	GraspCount int    `json:"grasp_count"`
	PointCount int    `json:"point_count"`
}

// RecognizeResponse wraps a recognition outcome. Recognized is false when no
// candidate matched with enough confidence; Result is set only on success.
type RecognizeResponse struct {
	Recognized bool                `json:"recognized"`
	Result     *recognition.Result `json:"result,omitempty"`
}
