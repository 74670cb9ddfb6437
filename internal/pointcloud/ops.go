package pointcloud

// Config bundles the tunable parameters for every registration primitive.
type Config struct {
	ICP     ICPConfig
	Filter  FilterConfig
	Metrics MetricsConfig
}

// DefaultConfig returns the production registration parameters.
func DefaultConfig() Config {
	return Config{
		ICP:     DefaultICPConfig(),
		Filter:  DefaultFilterConfig(),
		Metrics: DefaultMetricsConfig(),
	}
}

// Ops is the ICP-backed implementation of the registration capability the
// recognizer consumes. It is stateless apart from its configuration and safe
// for concurrent use.
type Ops struct {
	cfg Config
}

// NewOps creates an Ops with the given configuration.
func NewOps(cfg Config) *Ops {
	return &Ops{cfg: cfg}
}

// RemoveOutliers filters statistical outliers from the cloud.
func (o *Ops) RemoveOutliers(c *Cloud) *Cloud {
	return RemoveOutliers(c, o.cfg.Filter)
}

// TranslateToOrigin re-anchors the cloud so that centroid becomes the
// origin.
func (o *Ops) TranslateToOrigin(c *Cloud, centroid Vec3) *Cloud {
	return c.Translate(centroid)
}

// AverageColor returns the per-channel mean colour of the cloud.
func (o *Ops) AverageColor(c *Cloud) (r, g, b float64) {
	return c.AverageColor()
}

// Align registers target onto source. See AlignClouds.
func (o *Ops) Align(source, target *Cloud) (Transform, *Cloud) {
	return AlignClouds(source, target, o.cfg.ICP)
}

// Overlap computes the overlap fraction, or its colour analog when
// colorMode is set. See the package-level Overlap.
func (o *Ops) Overlap(base, compared *Cloud, colorMode bool) float64 {
	return Overlap(base, compared, colorMode, o.cfg.Metrics)
}

// DistanceError computes the mean nearest-neighbour distance from base to
// compared.
func (o *Ops) DistanceError(base, compared *Cloud) float64 {
	return DistanceError(base, compared, o.cfg.Metrics)
}
