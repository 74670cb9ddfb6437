package recognition

import (
	"errors"
	"math"

	"github.com/bhetherman/rail-pick-and-place/internal/graspdb"
	"github.com/bhetherman/rail-pick-and-place/internal/pointcloud"
)

// Recognition failure modes. All are recoverable: the caller can retry with
// a different observation or candidate list.
var (
	// ErrNoCandidates reports an empty candidate model list.
	ErrNoCandidates = errors.New("recognition: candidate model list is empty")
	// ErrEmptyCloud reports an observation with no points to match against.
	ErrEmptyCloud = errors.New("recognition: segmented object point cloud is empty")
	// ErrNoConfidentMatch reports that every candidate was rejected or the
	// best score exceeded the confidence threshold.
	ErrNoConfidentMatch = errors.New("recognition: no candidate matched with enough confidence")
)

// scoreNotAttempted marks a candidate whose registration failed the overlap
// gate; it can never become the running minimum.
const scoreNotAttempted = -1.0

// Config holds the recognition gates and weights. Scores are weighted sums
// of registration metrics; lower is better.
type Config struct {
	// Alpha weights distance error against colour error in (0,1).
	Alpha float64
	// ColorThreshold is the maximum per-channel average colour difference
	// (0-255 scale) for a candidate to be worth registering.
	ColorThreshold float64
	// OverlapThreshold is the minimum overlap fraction for a registration to
	// be scored.
	OverlapThreshold float64
	// ConfidenceThreshold is the maximum acceptable best score for the match
	// to count as recognized.
	ConfidenceThreshold float64
}

// DefaultConfig returns the production recognition parameters.
func DefaultConfig() Config {
	return Config{
		Alpha:               0.5,
		ColorThreshold:      40,
		OverlapThreshold:    0.75,
		ConfidenceThreshold: 0.075,
	}
}

// Observation is a segmented object as delivered by the perception stack:
// its point cloud and the centroid computed at segmentation time. The
// recognizer never mutates an observation.
type Observation struct {
	Cloud    *pointcloud.Cloud
	Centroid pointcloud.Vec3
}

// Result is the outcome of a successful recognition pass.
type Result struct {
	// Name is the recognized object's name.
	Name string `json:"name"`
	// ModelID identifies the winning grasp model.
	ModelID uint32 `json:"model_id"`
	// Confidence is the winning score; lower is better and it never exceeds
	// the configured confidence threshold.
	Confidence float64 `json:"confidence"`
	// Recognized is always true on a returned result.
	Recognized bool `json:"recognized"`
	// Orientation of the recognized object. Orientation inference is not
	// implemented; this is always the identity.
	Orientation graspdb.Orientation `json:"orientation"`
	// Grasps holds candidate grasp poses in the observation's frame, sorted
	// ascending by success rate.
	Grasps []graspdb.Pose `json:"grasps"`
	// SuccessRates holds the success rate for each pose in Grasps, parallel
	// and in the same order.
	SuccessRates []float64 `json:"success_rates"`
}

// CandidateScore is the scoring outcome for one candidate model. The tool
// surface and tests use the full breakdown; Recognize only needs the
// minimum.
type CandidateScore struct {
	Index      int
	ModelID    uint32
	ObjectName string
	// Attempted is false when the candidate was skipped by the empty-cloud
	// or colour gates, or rejected by the overlap gate.
	Attempted bool
	// Score is the weighted registration score, or -1 when not attempted.
	Score         float64
	Overlap       float64
	DistanceError float64
	ColorError    float64
	Transform     pointcloud.Transform
}

// Recognizer matches observations against candidate grasp models using an
// injected registration capability. It is stateless across calls and safe
// for concurrent use.
type Recognizer struct {
	ops RegistrationOps
	cfg Config
}

// NewRecognizer creates a Recognizer with the given capability and
// configuration.
func NewRecognizer(ops RegistrationOps, cfg Config) *Recognizer {
	return &Recognizer{ops: ops, cfg: cfg}
}

// Recognize attempts to identify the observed object among the candidates.
// On success it returns a new Result carrying the winning model's identity,
// the match confidence and the ranked grasp list re-expressed in the
// observation's frame. The inputs are never mutated.
//
// It returns ErrNoCandidates or ErrEmptyCloud when the inputs cannot be
// matched at all, and ErrNoConfidentMatch when no candidate survives the
// gates with a score at or below the confidence threshold.
func (r *Recognizer) Recognize(obs Observation, candidates []graspdb.GraspModel) (*Result, error) {
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}
	if obs.Cloud.IsEmpty() {
		return nil, ErrEmptyCloud
	}

	object, scores := r.scoreCandidates(obs, candidates)

	minScore := math.Inf(1)
	minIndex := -1
	var minTransform pointcloud.Transform
	for _, cs := range scores {
		if cs.Score >= 0 && cs.Score < minScore {
			minScore = cs.Score
			minIndex = cs.Index
			minTransform = cs.Transform
		}
	}

	if minIndex < 0 || minScore > r.cfg.ConfidenceThreshold {
		return nil, ErrNoConfidentMatch
	}

	winner := candidates[minIndex]
	transferred := TransferGrasps(minTransform, obs.Centroid, winner.Grasps)
	poses, rates := RankGrasps(transferred, object.FrameID)

	return &Result{
		Name:         winner.ObjectName,
		ModelID:      winner.ID,
		Confidence:   minScore,
		Recognized:   true,
		Orientation:  graspdb.IdentityOrientation(),
		Grasps:       poses,
		SuccessRates: rates,
	}, nil
}

// ScoreCandidates evaluates every candidate against the observation and
// returns the per-candidate breakdown in input order, without applying the
// confidence threshold. The observation must have a non-empty cloud.
func (r *Recognizer) ScoreCandidates(obs Observation, candidates []graspdb.GraspModel) []CandidateScore {
	_, scores := r.scoreCandidates(obs, candidates)
	return scores
}

func (r *Recognizer) scoreCandidates(obs Observation, candidates []graspdb.GraspModel) (*pointcloud.Cloud, []CandidateScore) {
	// Pre-process the observed cloud once: filter, re-anchor at the origin
	// and take its colour signature.
	object := r.ops.RemoveOutliers(obs.Cloud)
	object = r.ops.TranslateToOrigin(object, obs.Centroid)
	objR, objG, objB := r.ops.AverageColor(object)

	scores := make([]CandidateScore, 0, len(candidates))
	for i, candidate := range candidates {
		cs := CandidateScore{
			Index:      i,
			ModelID:    candidate.ID,
			ObjectName: candidate.ObjectName,
			Score:      scoreNotAttempted,
		}
		if candidate.PointCloud.IsEmpty() {
			scores = append(scores, cs)
			continue
		}

		// Cheap rejection before paying for registration: a gross average
		// colour mismatch on any channel rules the candidate out.
		candR, candG, candB := r.ops.AverageColor(candidate.PointCloud)
		if math.Abs(objR-candR) > r.cfg.ColorThreshold ||
			math.Abs(objG-candG) > r.cfg.ColorThreshold ||
			math.Abs(objB-candB) > r.cfg.ColorThreshold {
			scores = append(scores, cs)
			continue
		}

		r.scoreRegistration(candidate.PointCloud, object, &cs)
		scores = append(scores, cs)
	}
	return object, scores
}

// scoreRegistration registers the object onto the candidate and fills in the
// metric breakdown. Candidates whose overlap falls below the gate keep the
// not-attempted sentinel score.
func (r *Recognizer) scoreRegistration(candidate, object *pointcloud.Cloud, cs *CandidateScore) {
	tf, aligned := r.ops.Align(candidate, object)
	cs.Transform = tf

	cs.Overlap = r.ops.Overlap(candidate, aligned, false)
	if cs.Overlap < r.cfg.OverlapThreshold {
		return
	}

	cs.Attempted = true
	cs.DistanceError = r.ops.DistanceError(candidate, aligned)
	cs.ColorError = r.ops.Overlap(candidate, aligned, true)
	cs.Score = r.cfg.Alpha*(3*cs.DistanceError) + (1-r.cfg.Alpha)*(cs.ColorError/100)
}
