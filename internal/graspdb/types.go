// Package graspdb provides the grasp-model data types and their SQLite-backed
// persistence: grasp demonstrations captured from teleoperation sessions and
// the trained grasp models the recognizer matches live objects against.
package graspdb

import (
	"time"

	"github.com/bhetherman/rail-pick-and-place/internal/pointcloud"
)

// UnsetID marks an entry that has not been assigned a database identifier
// yet.
const UnsetID uint32 = 0

// Position is a 3D location in metres.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Vec3 converts the position to the geometry vector type.
func (p Position) Vec3() pointcloud.Vec3 {
	return pointcloud.Vec3{X: p.X, Y: p.Y, Z: p.Z}
}

// Orientation is a rotation quaternion. The identity rotation is
// (0, 0, 0, 1).
type Orientation struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

// IdentityOrientation returns the no-rotation orientation.
func IdentityOrientation() Orientation {
	return Orientation{W: 1}
}

// Quaternion converts the orientation to the geometry quaternion type.
func (o Orientation) Quaternion() pointcloud.Quaternion {
	return pointcloud.Quaternion{X: o.X, Y: o.Y, Z: o.Z, W: o.W}
}

// Pose is a position and orientation relative to a fixed robot frame.
type Pose struct {
	RobotFixedFrameID string      `json:"robot_fixed_frame_id"`
	Position          Position    `json:"position"`
	Orientation       Orientation `json:"orientation"`
}

// NewPose builds a pose in the given frame from a rigid transform.
func NewPose(frameID string, tf pointcloud.Transform) Pose {
	return Pose{
		RobotFixedFrameID: frameID,
		Position:          Position{X: tf.Translation.X, Y: tf.Translation.Y, Z: tf.Translation.Z},
		Orientation:       Orientation{X: tf.Rotation.X, Y: tf.Rotation.Y, Z: tf.Rotation.Z, W: tf.Rotation.W},
	}
}

// Transform converts the pose to a rigid transform, dropping the frame tag.
func (p Pose) Transform() pointcloud.Transform {
	return pointcloud.Transform{
		Rotation:    p.Orientation.Quaternion(),
		Translation: p.Position.Vec3(),
	}
}

// Grasp is one demonstrated end-effector pose attached to a grasp model,
// together with its execution history. Successes over attempts gives the
// empirical success rate; zero attempts means the grasp is untested, which
// is distinct from a grasp that was tried and always failed.
type Grasp struct {
	ID           uint32    `json:"id"`
	GraspModelID uint32    `json:"grasp_model_id"`
	GraspPose    Pose      `json:"grasp_pose"`
	EefFrameID   string    `json:"eef_frame_id"`
	Successes    int       `json:"successes"`
	Attempts     int       `json:"attempts"`
	Created      time.Time `json:"created"`
}

// SuccessRate returns the fraction of attempts that succeeded, or zero for
// an untested grasp.
func (g Grasp) SuccessRate() float64 {
	if g.Attempts == 0 {
		return 0
	}
	return float64(g.Successes) / float64(g.Attempts)
}

// GraspModel is a trained object model: a named, origin-centred point cloud
// and the grasps demonstrated against it. Models are immutable during a
// recognition pass.
type GraspModel struct {
	ID         uint32            `json:"id"`
	ObjectName string            `json:"object_name"`
	Grasps     []Grasp           `json:"grasps"`
	PointCloud *pointcloud.Cloud `json:"point_cloud"`
	Created    time.Time         `json:"created"`
}

// GraspDemonstration is a single raw demonstration: the demonstrated grasp
// pose and the serialized segmented cloud it was captured against. The cloud
// stays serialized until a training step needs it.
type GraspDemonstration struct {
	ID         uint32      `json:"id"`
	ObjectName string      `json:"object_name"`
	GraspPose  Pose        `json:"grasp_pose"`
	EefFrameID string      `json:"eef_frame_id"`
	PointCloud CloudBuffer `json:"-"`
	Created    time.Time   `json:"created"`
}
