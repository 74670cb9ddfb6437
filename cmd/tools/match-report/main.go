// match-report scores one observed object cloud against every stored grasp
// model and prints the per-candidate breakdown, for tuning the recognition
// thresholds offline. With -plot it also writes a bar chart of the scores.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/bhetherman/rail-pick-and-place/internal/api"
	"github.com/bhetherman/rail-pick-and-place/internal/config"
	"github.com/bhetherman/rail-pick-and-place/internal/graspdb"
	"github.com/bhetherman/rail-pick-and-place/internal/pointcloud"
	"github.com/bhetherman/rail-pick-and-place/internal/recognition"
)

var (
	dbPath     = flag.String("db", "graspdb.db", "Path to the grasp model database")
	obsPath    = flag.String("observation", "", "Observation JSON file (same schema as POST /api/recognize)")
	configPath = flag.String("config", "", "Optional recognition tuning config (JSON)")
	plotPath   = flag.String("plot", "", "Optional output PNG for a score bar chart")
)

func loadObservation(path string) (*api.ObservationRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read observation: %w", err)
	}
	var req api.ObservationRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("parse observation %s: %w", path, err)
	}
	return &req, nil
}

func savePlot(scores []recognition.CandidateScore, path string) error {
	p := plot.New()
	p.Title.Text = "Registration score per candidate (lower is better)"
	p.Y.Label.Text = "score"

	values := make(plotter.Values, len(scores))
	labels := make([]string, len(scores))
	for i, cs := range scores {
		if cs.Attempted {
			values[i] = cs.Score
		}
		labels[i] = fmt.Sprintf("%s#%d", cs.ObjectName, cs.ModelID)
	}

	bars, err := plotter.NewBarChart(values, vg.Points(24))
	if err != nil {
		return fmt.Errorf("build bar chart: %w", err)
	}
	p.Add(bars)
	p.NominalX(labels...)

	if err := p.Save(10*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("save plot %s: %w", path, err)
	}
	return nil
}

func main() {
	flag.Parse()
	if *obsPath == "" {
		log.Fatal("-observation is required")
	}

	tuning, err := config.LoadTuningConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load tuning config: %v", err)
	}

	obs, err := loadObservation(*obsPath)
	if err != nil {
		log.Fatalf("failed to load observation: %v", err)
	}

	store, err := graspdb.Open(*dbPath)
	if err != nil {
		log.Fatalf("failed to open grasp database %s: %v", *dbPath, err)
	}
	defer store.Close()

	candidates, err := store.GetGraspModels(obs.ObjectName)
	if err != nil {
		log.Fatalf("failed to load candidate models: %v", err)
	}
	if len(candidates) == 0 {
		log.Fatal("no candidate models in database")
	}

	rec := recognition.NewRecognizer(pointcloud.NewOps(tuning.Registration()), tuning.Recognition())
	scores := rec.ScoreCandidates(obs.Observation(), candidates)

	fmt.Printf("%-6s %-20s %-9s %-9s %-9s %-9s\n", "model", "object", "score", "overlap", "dist_err", "color_err")
	for _, cs := range scores {
		if !cs.Attempted {
			fmt.Printf("%-6d %-20s %-9s %-9.3f %-9s %-9s\n", cs.ModelID, cs.ObjectName, "skipped", cs.Overlap, "-", "-")
			continue
		}
		fmt.Printf("%-6d %-20s %-9.4f %-9.3f %-9.4f %-9.2f\n",
			cs.ModelID, cs.ObjectName, cs.Score, cs.Overlap, cs.DistanceError, cs.ColorError)
	}

	threshold := tuning.Recognition().ConfidenceThreshold
	best := -1
	for i, cs := range scores {
		if cs.Attempted && (best < 0 || cs.Score < scores[best].Score) {
			best = i
		}
	}
	switch {
	case best < 0:
		fmt.Println("\nno candidate passed the colour and overlap gates")
	case scores[best].Score > threshold:
		fmt.Printf("\nbest candidate %s#%d scored %.4f, above the confidence threshold %.4f\n",
			scores[best].ObjectName, scores[best].ModelID, scores[best].Score, threshold)
	default:
		fmt.Printf("\nwould recognize %s#%d with score %.4f (threshold %.4f)\n",
			scores[best].ObjectName, scores[best].ModelID, scores[best].Score, threshold)
	}

	if *plotPath != "" {
		if err := savePlot(scores, *plotPath); err != nil {
			log.Fatalf("failed to write plot: %v", err)
		}
		log.Printf("score chart written to %s", *plotPath)
	}
}
