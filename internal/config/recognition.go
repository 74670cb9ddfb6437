// Package config loads recognition tuning parameters from JSON. Every field
// is optional; unset fields fall back to the built-in production defaults so
// a config file only needs to name the values it overrides.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/bhetherman/rail-pick-and-place/internal/pointcloud"
	"github.com/bhetherman/rail-pick-and-place/internal/recognition"
)

// TuningConfig is the root JSON schema for recognition tuning.
type TuningConfig struct {
	// Scoring params
	Alpha               *float64 `json:"alpha,omitempty"`
	ColorThreshold      *float64 `json:"color_threshold,omitempty"`
	OverlapThreshold    *float64 `json:"overlap_threshold,omitempty"`
	ConfidenceThreshold *float64 `json:"confidence_threshold,omitempty"`

	// Registration params
	ICPMaxIterations     *int     `json:"icp_max_iterations,omitempty"`
	ICPConvergenceThresh *float64 `json:"icp_convergence_thresh,omitempty"`
	ICPMaxCorrespondDist *float64 `json:"icp_max_correspond_dist,omitempty"`
	ICPOutlierPercentile *float64 `json:"icp_outlier_percentile,omitempty"`
	OverlapTolerance     *float64 `json:"overlap_tolerance,omitempty"`

	// Outlier filter params
	FilterSearchRadius        *float64 `json:"filter_search_radius,omitempty"`
	FilterMinNeighborFraction *float64 `json:"filter_min_neighbor_fraction,omitempty"`
}

// LoadTuningConfig reads a tuning config from a JSON file. A missing path
// returns an empty config so every default applies.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	if path == "" {
		return &TuningConfig{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tuning config: %w", err)
	}
	var cfg TuningConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse tuning config %s: %w", path, err)
	}
	return &cfg, nil
}

// Recognition resolves the scoring parameters, applying defaults for unset
// fields.
func (c *TuningConfig) Recognition() recognition.Config {
	out := recognition.DefaultConfig()
	if c.Alpha != nil {
		out.Alpha = *c.Alpha
	}
	if c.ColorThreshold != nil {
		out.ColorThreshold = *c.ColorThreshold
	}
	if c.OverlapThreshold != nil {
		out.OverlapThreshold = *c.OverlapThreshold
	}
	if c.ConfidenceThreshold != nil {
		out.ConfidenceThreshold = *c.ConfidenceThreshold
	}
	return out
}

// Registration resolves the registration primitive parameters, applying
// defaults for unset fields.
func (c *TuningConfig) Registration() pointcloud.Config {
	out := pointcloud.DefaultConfig()
	if c.ICPMaxIterations != nil {
		out.ICP.MaxIterations = *c.ICPMaxIterations
	}
	if c.ICPConvergenceThresh != nil {
		out.ICP.ConvergenceThresh = *c.ICPConvergenceThresh
	}
	if c.ICPMaxCorrespondDist != nil {
		out.ICP.MaxCorrespondDist = *c.ICPMaxCorrespondDist
	}
	if c.ICPOutlierPercentile != nil {
		out.ICP.OutlierPercentile = *c.ICPOutlierPercentile
	}
	if c.OverlapTolerance != nil {
		out.Metrics.OverlapTolerance = *c.OverlapTolerance
	}
	if c.FilterSearchRadius != nil {
		out.Filter.SearchRadius = *c.FilterSearchRadius
	}
	if c.FilterMinNeighborFraction != nil {
		out.Filter.MinNeighborFraction = *c.FilterMinNeighborFraction
	}
	return out
}
