package isodata

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/isodata/vector"
)

// DataSource produces the dataset: an ordered sequence of equal-length rows.
type DataSource func() ([][]float64, error)

// State is the lifecycle position of an Engine.
type State int

const (
	StateUninitialized State = iota
	StateDataLoaded
	StateSeeded
	StateRunning
	StateFinalized
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateDataLoaded:
		return "DataLoaded"
	case StateSeeded:
		return "Seeded"
	case StateRunning:
		return "Running"
	case StateFinalized:
		return "Finalized"
	case StateFailed:
		return "Failed"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// Engine runs ISODATA clustering over a dataset supplied by a DataSource.
//
// An Engine is not safe for concurrent use.
type Engine struct {
	params  Params
	source  DataSource
	opts    options
	log     *Logger
	metrics MetricsCollector
	rng     *rand.Rand

	state    State
	runID    string
	data     [][]float64
	dim      int
	clusters []*Cluster
	slots    map[uint64]int
	nextID   uint64
	meanDist float64
}

// New creates an Engine. The hyperparameters are validated here and are
// immutable afterwards.
func New(source DataSource, params Params, opts ...Option) (*Engine, error) {
	if source == nil {
		return nil, ErrNilSource
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}

	return &Engine{
		params:  params,
		source:  source,
		opts:    o,
		log:     o.logger,
		metrics: o.metricsCollector,
		rng:     rand.New(rand.NewSource(o.seed)), // nolint gosec
		slots:   make(map[uint64]int),
	}, nil
}

// Params returns the engine's hyperparameters.
func (e *Engine) Params() Params { return e.params }

// State returns the current lifecycle state.
func (e *Engine) State() State { return e.state }

// MeanDistance returns the global mean distance from the last aggregation.
func (e *Engine) MeanDistance() float64 { return e.meanDist }

// Clusters returns the current cluster collection in slot order.
func (e *Engine) Clusters() []*Cluster {
	out := make([]*Cluster, len(e.clusters))
	copy(out, e.clusters)
	return out
}

// Run loads the dataset, seeds the clusters and executes MaxRounds rounds
// of reassign, prune, recenter, aggregate and split/merge.
//
// If the dataset fails validation Run logs a warning and returns an empty
// Result together with an error wrapping ErrDataSize or ErrLoad.
// On success the configured Sink, if any, receives the Result.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	e.reset()
	e.runID = uuid.NewString()
	e.log = e.opts.logger.WithRunID(e.runID)

	if err := e.load(ctx); err != nil {
		e.state = StateFailed
		e.log.LogRun(ctx, 0, 0, err)
		e.metrics.RecordRun(0, 0, time.Since(start), err)
		return &Result{RunID: e.runID, Clusters: []ClusterResult{}}, err
	}

	e.seed(ctx)

	e.state = StateRunning
	for round := 0; round < e.params.MaxRounds; round++ {
		roundStart := time.Now()

		e.reassign(ctx)
		e.prune(ctx)
		e.recenter()
		e.aggregate()
		action := e.decide(ctx, round)

		e.log.LogRound(ctx, round, action, len(e.clusters), e.meanDist)
		e.metrics.RecordRound(round, len(e.clusters), time.Since(roundStart))
	}

	res := e.finalize()
	e.state = StateFinalized

	var err error
	if e.opts.sink != nil {
		if sinkErr := e.opts.sink.WriteResult(ctx, res); sinkErr != nil {
			err = fmt.Errorf("write result: %w", sinkErr)
		}
	}

	e.log.LogRun(ctx, res.Rounds, res.Len(), err)
	e.metrics.RecordRun(res.Rounds, res.Len(), time.Since(start), err)

	return res, err
}

func (e *Engine) reset() {
	e.state = StateUninitialized
	e.data = nil
	e.dim = 0
	e.clusters = nil
	e.slots = make(map[uint64]int)
	e.meanDist = 0
}

// load reads and validates the dataset.
func (e *Engine) load(ctx context.Context) error {
	rows, err := e.source()
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrLoad, err)
		e.log.LogLoad(ctx, 0, 0, err)
		return err
	}

	dim, err := ValidateDataset(rows, e.params)
	if err != nil {
		e.log.LogLoad(ctx, len(rows), dim, err)
		return err
	}

	e.data = rows
	e.dim = dim
	e.state = StateDataLoaded
	e.log.LogLoad(ctx, len(rows), dim, nil)
	return nil
}

// ValidateDataset checks that rows can be clustered under p and returns
// their dimension. The error wraps ErrDataSize.
func ValidateDataset(rows [][]float64, p Params) (int, error) {
	need := max(p.TargetClusters, p.MinClusterSize, 1)
	if len(rows) < need {
		return 0, fmt.Errorf("%w: %d rows, need at least %d", ErrDataSize, len(rows), need)
	}
	if uint64(len(rows)) > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %d rows exceeds the addressable point count", ErrDataSize, len(rows))
	}

	dim := len(rows[0])
	if dim == 0 {
		return 0, fmt.Errorf("%w: rows have no features", ErrDataSize)
	}
	for i, row := range rows {
		if len(row) != dim {
			return dim, &ErrInconsistentDimension{Row: i, Expected: dim, Actual: len(row)}
		}
	}
	return dim, nil
}

// reassign moves every point to its nearest cluster.
func (e *Engine) reassign(ctx context.Context) {
	for _, c := range e.clusters {
		c.clearMembership()
	}
	for i, p := range e.data {
		slot, _ := e.nearest(p, nil)
		if slot < 0 {
			e.log.WarnContext(ctx, "no cluster to assign point to", "index", i)
			continue
		}
		e.addPoint(ctx, e.clusters[slot], i)
	}
}

// prune discards clusters below MinClusterSize. Members of a discarded
// cluster go to the nearest cluster not discarded in this pass.
func (e *Engine) prune(ctx context.Context) int {
	discarded := make(map[uint64]struct{})

	for _, c := range e.clusters {
		if c.Size() >= e.params.MinClusterSize {
			continue
		}
		discarded[c.id] = struct{}{}
		if len(discarded) == len(e.clusters) {
			delete(discarded, c.id)
			e.log.WarnContext(ctx, "cluster size too small",
				"cluster", c.id,
				"size", c.Size(),
				"min_cluster_size", e.params.MinClusterSize,
			)
			continue
		}
		for _, idx := range c.Members() {
			slot, _ := e.nearest(e.data[idx], discarded)
			e.addPoint(ctx, e.clusters[slot], idx)
		}
		c.clearMembership()
	}

	removed := e.removeEmpty()
	e.log.LogPrune(ctx, removed, len(e.clusters))
	e.metrics.RecordPrune(removed)
	return removed
}

// recenter sets every cluster center to the mean of its members.
func (e *Engine) recenter() {
	for _, c := range e.clusters {
		e.updateCenter(c)
	}
}

// aggregate recomputes every cluster's inner mean distance and returns the
// global mean distance, weighted by cluster size.
func (e *Engine) aggregate() float64 {
	var total float64
	var points int
	for _, c := range e.clusters {
		var sum float64
		n := 0
		it := c.members.Iterator()
		for it.HasNext() {
			sum += e.distance(e.data[it.Next()], c.center)
			n++
		}
		if n > 0 {
			c.innerMeanDist = sum / float64(n)
		} else {
			c.innerMeanDist = 0
		}
		total += sum
		points += n
	}
	if points > 0 {
		e.meanDist = total / float64(points)
	} else {
		e.meanDist = 0
	}
	return e.meanDist
}

// decide picks and executes the split or merge pass for a round.
func (e *Engine) decide(ctx context.Context, round int) string {
	n := len(e.clusters)
	target := e.params.TargetClusters

	switch {
	case round == e.params.MaxRounds-1:
		e.mergePass(ctx, 0)
		return "final"
	case n <= target/2:
		e.splitPass(ctx)
		return "split"
	case n >= 2*target:
		e.mergePass(ctx, e.params.MergeDistance)
		return "merge"
	case round%2 == 0:
		e.mergePass(ctx, e.params.MergeDistance)
		return "merge"
	default:
		e.splitPass(ctx)
		return "split"
	}
}

func (e *Engine) finalize() *Result {
	res := &Result{
		RunID:        e.runID,
		Points:       len(e.data),
		Dimension:    e.dim,
		Rounds:       e.params.MaxRounds,
		MeanDistance: e.meanDist,
		Clusters:     make([]ClusterResult, 0, len(e.clusters)),
		data:         e.data,
	}
	for _, c := range e.clusters {
		e.updateDispersion(c)
		res.Clusters = append(res.Clusters, ClusterResult{
			ID:                c.id,
			Center:            c.Center(),
			Sigma:             c.Sigma(),
			InnerMeanDistance: c.innerMeanDist,
			Members:           c.Members(),
		})
	}
	return res
}

// nearest returns the slot of the cluster whose center is closest to p,
// skipping clusters whose ID is in skip. The first cluster wins ties.
// It returns -1 if every cluster is skipped.
func (e *Engine) nearest(p []float64, skip map[uint64]struct{}) (int, float64) {
	best := -1
	bestDist := math.Inf(1)
	for i, c := range e.clusters {
		if _, ok := skip[c.id]; ok {
			continue
		}
		if d := e.distance(p, c.center); best < 0 || d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best, bestDist
}

func (e *Engine) distance(a, b []float64) float64 {
	d, err := vector.Distance(a, b)
	if err != nil {
		e.log.Warn("vector size error", "error", err)
	}
	return d
}

func (e *Engine) addPoint(ctx context.Context, c *Cluster, idx int) {
	if !c.addPoint(idx) {
		e.log.WarnContext(ctx, "index repeat", "cluster", c.id, "index", idx)
	}
}

// updateCenter sets c's center to the mean of its members.
// Empty clusters keep their center.
func (e *Engine) updateCenter(c *Cluster) {
	n := c.Size()
	if n == 0 {
		return
	}
	sum := make([]float64, e.dim)
	it := c.members.Iterator()
	for it.HasNext() {
		if err := vector.AddInPlace(sum, e.data[it.Next()]); err != nil {
			e.log.Warn("vector size error", "error", err)
		}
	}
	c.center = vector.Div(sum, float64(n))
}

// updateDispersion recomputes c's per-axis standard deviation and inner
// mean distance for its current membership and center.
func (e *Engine) updateDispersion(c *Cluster) {
	n := c.Size()
	sq := make([]float64, e.dim)
	if n == 0 {
		c.sigma = sq
		c.innerMeanDist = 0
		return
	}
	var dist float64
	it := c.members.Iterator()
	for it.HasNext() {
		p := e.data[it.Next()]
		diff, err := vector.Sub(c.center, p)
		if err != nil {
			e.log.Warn("vector size error", "error", err)
		}
		_ = vector.AddInPlace(sq, vector.Pow(diff, 2))
		dist += e.distance(p, c.center)
	}
	c.sigma = vector.Sqrt(vector.Div(sq, float64(n)))
	c.innerMeanDist = dist / float64(n)
}

func (e *Engine) newCluster(center []float64) *Cluster {
	c := newCluster(e.nextID, center)
	e.nextID++
	return c
}

// removeEmpty drops clusters without members and returns how many were dropped.
func (e *Engine) removeEmpty() int {
	kept := e.clusters[:0]
	for _, c := range e.clusters {
		if !c.Empty() {
			kept = append(kept, c)
		}
	}
	removed := len(e.clusters) - len(kept)
	for i := len(kept); i < len(e.clusters); i++ {
		e.clusters[i] = nil
	}
	e.clusters = kept
	e.reindex()
	return removed
}

// reindex rebuilds the ID to slot mapping after a structural change.
func (e *Engine) reindex() {
	clear(e.slots)
	for i, c := range e.clusters {
		e.slots[c.id] = i
	}
}
