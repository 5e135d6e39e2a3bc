package isodata

import (
	"context"
)

// Result is the final partition produced by a run.
//
// A run that fails validation yields a Result with no clusters; check
// Empty or the error returned by Run.
type Result struct {
	RunID        string          `json:"run_id"`
	Points       int             `json:"points"`
	Dimension    int             `json:"dimension"`
	Rounds       int             `json:"rounds"`
	MeanDistance float64         `json:"mean_distance"`
	Clusters     []ClusterResult `json:"clusters"`

	data [][]float64
}

// ClusterResult is the snapshot of one final cluster.
type ClusterResult struct {
	ID                uint64    `json:"id"`
	Center            []float64 `json:"center"`
	Sigma             []float64 `json:"sigma"`
	InnerMeanDistance float64   `json:"inner_mean_distance"`
	Members           []int     `json:"members"`
}

// Size returns the number of members.
func (c ClusterResult) Size() int { return len(c.Members) }

// Len returns the number of clusters.
func (r *Result) Len() int { return len(r.Clusters) }

// Empty reports whether the run produced no clusters.
func (r *Result) Empty() bool { return len(r.Clusters) == 0 }

// Vectors returns the feature vectors of the members of cluster i.
// The returned rows are shared with the engine's dataset and must not be modified.
func (r *Result) Vectors(i int) [][]float64 {
	if i < 0 || i >= len(r.Clusters) || r.data == nil {
		return nil
	}
	members := r.Clusters[i].Members
	out := make([][]float64, len(members))
	for j, idx := range members {
		out[j] = r.data[idx]
	}
	return out
}

// Labels maps every point index to the position of its cluster in
// Clusters, or -1 if the point belongs to no cluster.
func (r *Result) Labels() []int {
	labels := make([]int, r.Points)
	for i := range labels {
		labels[i] = -1
	}
	for ci, c := range r.Clusters {
		for _, idx := range c.Members {
			labels[idx] = ci
		}
	}
	return labels
}

// Sink receives the result of a successful run, for persistence or display.
type Sink interface {
	WriteResult(ctx context.Context, r *Result) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, r *Result) error

// WriteResult implements Sink.
func (f SinkFunc) WriteResult(ctx context.Context, r *Result) error {
	return f(ctx, r)
}
