package recognition

import (
	"github.com/bhetherman/rail-pick-and-place/internal/graspdb"
	"github.com/bhetherman/rail-pick-and-place/internal/pointcloud"
)

// TransferGrasps re-expresses each candidate grasp pose in the observed
// object's frame: the registration transform is undone with an
// inverse-compose (tf^-1 * pose) and the resulting origin is shifted by the
// object's centroid, re-anchoring the model-frame grasp at the object's
// observed location. Success and attempt counts are carried over unchanged
// and the inputs are not modified.
func TransferGrasps(tf pointcloud.Transform, centroid pointcloud.Vec3, candidateGrasps []graspdb.Grasp) []graspdb.Grasp {
	grasps := make([]graspdb.Grasp, len(candidateGrasps))
	for i, g := range candidateGrasps {
		result := tf.InverseTimes(g.GraspPose.Transform())
		result.Translation = result.Translation.Add(centroid)

		grasps[i] = g
		grasps[i].GraspPose = graspdb.NewPose(g.GraspPose.RobotFixedFrameID, result)
	}
	return grasps
}

// RankGrasps orders transferred grasps ascending by success rate and prunes
// confirmed failures. A grasp is kept when its rate is positive or it has
// never been attempted; a zero rate with recorded attempts means every try
// failed. Insertion is stable: grasps with equal rates keep their input
// order. Each emitted pose is re-tagged with frameID, the frame the object
// was observed in.
//
// The returned rate slice is parallel to the pose slice, same length and
// order.
func RankGrasps(grasps []graspdb.Grasp, frameID string) ([]graspdb.Pose, []float64) {
	poses := make([]graspdb.Pose, 0, len(grasps))
	rates := make([]float64, 0, len(grasps))

	for _, g := range grasps {
		rate := g.SuccessRate()
		if rate <= 0 && g.Attempts > 0 {
			continue
		}

		pose := g.GraspPose
		pose.RobotFixedFrameID = frameID

		// First position whose rate is strictly greater: equal rates stay in
		// arrival order.
		inserted := false
		for j := range rates {
			if rate < rates[j] {
				poses = append(poses[:j], append([]graspdb.Pose{pose}, poses[j:]...)...)
				rates = append(rates[:j], append([]float64{rate}, rates[j:]...)...)
				inserted = true
				break
			}
		}
		if !inserted {
			poses = append(poses, pose)
			rates = append(rates, rate)
		}
	}
	return poses, rates
}
