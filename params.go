package isodata

// Params holds the clustering hyperparameters.
// They are supplied once to New and never change during a run.
type Params struct {
	// TargetClusters is the expected number of clusters.
	TargetClusters int `json:"target_clusters" yaml:"target_clusters"`

	// InitialClusters is the number of randomly seeded centers.
	InitialClusters int `json:"initial_clusters" yaml:"initial_clusters"`

	// MinClusterSize is the smallest membership a cluster may keep
	// after pruning.
	MinClusterSize int `json:"min_cluster_size" yaml:"min_cluster_size"`

	// SplitThreshold is the per-axis standard deviation above which a
	// cluster becomes a split candidate.
	SplitThreshold float64 `json:"split_threshold" yaml:"split_threshold"`

	// MergeDistance is the center distance below which two clusters
	// become a merge candidate.
	MergeDistance float64 `json:"merge_distance" yaml:"merge_distance"`

	// MaxMerges caps the number of candidate pairs examined per merge pass.
	MaxMerges int `json:"max_merges" yaml:"max_merges"`

	// MaxRounds is the number of rounds to run.
	MaxRounds int `json:"max_rounds" yaml:"max_rounds"`
}

// DefaultParams returns the reference hyperparameters.
func DefaultParams() Params {
	return Params{
		TargetClusters:  4,
		InitialClusters: 90,
		MinClusterSize:  10,
		SplitThreshold:  90,
		MergeDistance:   20,
		MaxMerges:       5,
		MaxRounds:       500,
	}
}

// Validate reports the first out-of-range hyperparameter.
func (p Params) Validate() error {
	switch {
	case p.TargetClusters < 1:
		return invalidParam("target_clusters", p.TargetClusters, "must be positive")
	case p.InitialClusters < 1:
		return invalidParam("initial_clusters", p.InitialClusters, "must be positive")
	case p.MinClusterSize < 0:
		return invalidParam("min_cluster_size", p.MinClusterSize, "must not be negative")
	case p.SplitThreshold < 0:
		return invalidParam("split_threshold", p.SplitThreshold, "must not be negative")
	case p.MergeDistance < 0:
		return invalidParam("merge_distance", p.MergeDistance, "must not be negative")
	case p.MaxMerges < 0:
		return invalidParam("max_merges", p.MaxMerges, "must not be negative")
	case p.MaxRounds < 1:
		return invalidParam("max_rounds", p.MaxRounds, "must be positive")
	}
	return nil
}
