package graspdb

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "graspdb.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAddAndGetGraspModel(t *testing.T) {
	s := openTestStore(t)

	model := &GraspModel{
		ObjectName: "mug",
		PointCloud: sampleCloud(),
		Grasps: []Grasp{
			{
				GraspPose: Pose{
					RobotFixedFrameID: "base_link",
					Position:          Position{X: 0.1, Y: 0.2, Z: 0.3},
					Orientation:       IdentityOrientation(),
				},
				EefFrameID: "gripper_link",
				Successes:  2,
				Attempts:   5,
			},
			{
				GraspPose:  Pose{RobotFixedFrameID: "base_link", Orientation: IdentityOrientation()},
				EefFrameID: "gripper_link",
			},
		},
	}
	require.NoError(t, s.AddGraspModel(model))
	require.NotEqual(t, UnsetID, model.ID)
	require.NotEqual(t, UnsetID, model.Grasps[0].ID)
	require.Equal(t, model.ID, model.Grasps[1].GraspModelID)

	got, err := s.GetGraspModel(model.ID)
	require.NoError(t, err)
	require.Equal(t, "mug", got.ObjectName)
	require.Len(t, got.Grasps, 2)
	require.Equal(t, 2, got.Grasps[0].Successes)
	require.Equal(t, 5, got.Grasps[0].Attempts)
	require.Equal(t, "gripper_link", got.Grasps[0].EefFrameID)
	require.Equal(t, Position{X: 0.1, Y: 0.2, Z: 0.3}, got.Grasps[0].GraspPose.Position)
	require.NotNil(t, got.PointCloud)
	require.Equal(t, "camera_link", got.PointCloud.FrameID)
	require.Equal(t, sampleCloud().Points, got.PointCloud.Points)
	require.False(t, got.Created.IsZero())
}

func TestGetGraspModelNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.GetGraspModel(42)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetGraspModelsFiltersByName(t *testing.T) {
	s := openTestStore(t)

	for _, name := range []string{"mug", "bowl", "mug"} {
		require.NoError(t, s.AddGraspModel(&GraspModel{ObjectName: name, PointCloud: sampleCloud()}))
	}

	mugs, err := s.GetGraspModels("mug")
	require.NoError(t, err)
	require.Len(t, mugs, 2)
	for _, m := range mugs {
		require.Equal(t, "mug", m.ObjectName)
	}

	all, err := s.GetGraspModels("")
	require.NoError(t, err)
	require.Len(t, all, 3)
	// Insertion order by ID.
	require.True(t, all[0].ID < all[1].ID && all[1].ID < all[2].ID)

	none, err := s.GetGraspModels("plate")
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestAddGraspAttempt(t *testing.T) {
	s := openTestStore(t)

	model := &GraspModel{
		ObjectName: "mug",
		Grasps:     []Grasp{{GraspPose: Pose{RobotFixedFrameID: "base_link"}}},
	}
	require.NoError(t, s.AddGraspModel(model))
	graspID := model.Grasps[0].ID

	require.NoError(t, s.AddGraspAttempt(graspID, true))
	require.NoError(t, s.AddGraspAttempt(graspID, false))

	got, err := s.GetGraspModel(model.ID)
	require.NoError(t, err)
	require.Equal(t, 1, got.Grasps[0].Successes)
	require.Equal(t, 2, got.Grasps[0].Attempts)
	require.InDelta(t, 0.5, got.Grasps[0].SuccessRate(), 1e-12)

	require.ErrorIs(t, s.AddGraspAttempt(9999, true), ErrNotFound)
}

func TestDeleteGraspModel(t *testing.T) {
	s := openTestStore(t)

	model := &GraspModel{
		ObjectName: "mug",
		Grasps:     []Grasp{{GraspPose: Pose{RobotFixedFrameID: "base_link"}}},
	}
	require.NoError(t, s.AddGraspModel(model))
	require.NoError(t, s.DeleteGraspModel(model.ID))

	_, err := s.GetGraspModel(model.ID)
	require.ErrorIs(t, err, ErrNotFound)

	// The grasps went with the model.
	require.ErrorIs(t, s.AddGraspAttempt(model.Grasps[0].ID, true), ErrNotFound)
}

func TestDemonstrationRoundTrip(t *testing.T) {
	s := openTestStore(t)

	cloud := EncodeCloud(sampleCloud())
	demo := &GraspDemonstration{
		ObjectName: "mug",
		GraspPose: Pose{
			RobotFixedFrameID: "base_link",
			Position:          Position{X: 1, Y: 2, Z: 3},
			Orientation:       IdentityOrientation(),
		},
		EefFrameID: "gripper_link",
		PointCloud: cloud,
	}
	require.NoError(t, s.AddDemonstration(demo))
	require.NotEqual(t, UnsetID, demo.ID)

	got, err := s.GetDemonstration(demo.ID)
	require.NoError(t, err)
	require.Equal(t, demo.ObjectName, got.ObjectName)
	require.Equal(t, demo.GraspPose, got.GraspPose)
	require.Equal(t, cloud.Bytes(), got.PointCloud.Bytes())

	decoded, err := DecodeCloud(got.PointCloud)
	require.NoError(t, err)
	require.Equal(t, "camera_link", decoded.FrameID)

	list, err := s.ListDemonstrations("mug")
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = s.GetDemonstration(12345)
	require.True(t, errors.Is(err, ErrNotFound))
}
