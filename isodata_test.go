package isodata

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/hupe1980/isodata/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func staticSource(rows [][]float64) DataSource {
	return func() ([][]float64, error) { return rows, nil }
}

func twoGroups() [][]float64 {
	return [][]float64{
		{0, 0}, {2, 0}, {0, 2}, {2, 2}, {1, 1}, {1, 1},
		{10, 10}, {12, 10}, {10, 12}, {12, 12}, {11, 11}, {11, 11},
	}
}

func twoGroupParams() Params {
	return Params{
		TargetClusters:  2,
		InitialClusters: 2,
		MinClusterSize:  2,
		SplitThreshold:  1e9,
		MergeDistance:   0,
		MaxMerges:       5,
		MaxRounds:       5,
	}
}

func bufferLogger(buf *bytes.Buffer) *Logger {
	return NewLogger(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// newTestEngine returns an engine with rows already loaded and no clusters.
func newTestEngine(t *testing.T, rows [][]float64, params Params, opts ...Option) *Engine {
	t.Helper()

	opts = append([]Option{WithLogger(NoopLogger())}, opts...)
	e, err := New(staticSource(rows), params, opts...)
	require.NoError(t, err)

	e.data = rows
	e.dim = len(rows[0])
	e.state = StateDataLoaded
	return e
}

// addCluster appends a cluster with the given center and members.
func addCluster(e *Engine, center []float64, members ...int) *Cluster {
	c := e.newCluster(center)
	for _, m := range members {
		c.addPoint(m)
	}
	e.clusters = append(e.clusters, c)
	e.reindex()
	return c
}

func TestNew(t *testing.T) {
	t.Run("NilSource", func(t *testing.T) {
		_, err := New(nil, DefaultParams())
		assert.ErrorIs(t, err, ErrNilSource)
	})

	t.Run("InvalidParams", func(t *testing.T) {
		p := DefaultParams()
		p.MaxRounds = 0
		_, err := New(staticSource(twoGroups()), p)
		assert.ErrorIs(t, err, ErrInvalidParams)
	})

	t.Run("Defaults", func(t *testing.T) {
		e, err := New(staticSource(twoGroups()), DefaultParams())
		require.NoError(t, err)
		assert.Equal(t, StateUninitialized, e.State())
		assert.Equal(t, DefaultParams(), e.Params())
		assert.Equal(t, DefaultSplitCoefficient, e.opts.alpha)
	})
}

func TestRun_TwoGroups(t *testing.T) {
	rows := twoGroups()
	e, err := New(staticSource(rows), twoGroupParams(),
		WithLogger(NoopLogger()),
		WithInitialCenters(0, 6),
	)
	require.NoError(t, err)

	res, err := e.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, res.Len())
	assert.Equal(t, StateFinalized, e.State())
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, 12, res.Points)
	assert.Equal(t, 2, res.Dimension)
	assert.Equal(t, 5, res.Rounds)

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, res.Clusters[0].Members)
	assert.Equal(t, []int{6, 7, 8, 9, 10, 11}, res.Clusters[1].Members)
	assert.InDeltaSlice(t, []float64{1, 1}, res.Clusters[0].Center, 1e-9)
	assert.InDeltaSlice(t, []float64{11, 11}, res.Clusters[1].Center, 1e-9)
}

func TestRun_RandomSeedsPartitionDataset(t *testing.T) {
	rows, _ := testutil.NewRNG(11).GaussianBlobs([][]float64{{0, 0}, {50, 50}, {100, 0}}, 40, 3)

	for seed := int64(1); seed <= 5; seed++ {
		p := Params{
			TargetClusters:  3,
			InitialClusters: 10,
			MinClusterSize:  5,
			SplitThreshold:  8,
			MergeDistance:   15,
			MaxMerges:       4,
			MaxRounds:       20,
		}
		e, err := New(staticSource(rows), p, WithLogger(NoopLogger()), WithSeed(seed))
		require.NoError(t, err)

		res, err := e.Run(context.Background())
		require.NoError(t, err)
		require.False(t, res.Empty())

		seen := make(map[int]bool)
		ids := make(map[uint64]bool)
		for _, c := range res.Clusters {
			assert.False(t, ids[c.ID], "cluster IDs must be unique")
			ids[c.ID] = true
			assert.GreaterOrEqual(t, c.Size(), 1)
			for _, m := range c.Members {
				assert.False(t, seen[m], "point %d assigned twice", m)
				seen[m] = true
			}
		}
		assert.Len(t, seen, len(rows), "every point belongs to exactly one cluster")
	}
}

func TestRun_DataTooSmall(t *testing.T) {
	var buf bytes.Buffer
	p := DefaultParams()
	p.MinClusterSize = 5

	e, err := New(staticSource([][]float64{{1, 2}, {3, 4}, {5, 6}}), p, WithLogger(bufferLogger(&buf)))
	require.NoError(t, err)

	res, err := e.Run(context.Background())
	require.ErrorIs(t, err, ErrDataSize)
	require.NotNil(t, res)
	assert.True(t, res.Empty())
	assert.Equal(t, StateFailed, e.State())
	assert.Contains(t, buf.String(), "data size error")
}

func TestRun_InconsistentDimension(t *testing.T) {
	rows := twoGroups()
	rows[4] = []float64{1}

	e, err := New(staticSource(rows), twoGroupParams(), WithLogger(NoopLogger()))
	require.NoError(t, err)

	res, err := e.Run(context.Background())
	require.Error(t, err)
	assert.True(t, res.Empty())
	assert.ErrorIs(t, err, ErrDataSize)

	var dimErr *ErrInconsistentDimension
	require.ErrorAs(t, err, &dimErr)
	assert.Equal(t, 4, dimErr.Row)
	assert.Equal(t, 2, dimErr.Expected)
	assert.Equal(t, 1, dimErr.Actual)
}

func TestRun_SourceError(t *testing.T) {
	boom := errors.New("boom")
	e, err := New(func() ([][]float64, error) { return nil, boom }, twoGroupParams(), WithLogger(NoopLogger()))
	require.NoError(t, err)

	res, err := e.Run(context.Background())
	assert.ErrorIs(t, err, ErrLoad)
	assert.ErrorIs(t, err, boom)
	assert.True(t, res.Empty())
}

func TestRun_Sink(t *testing.T) {
	t.Run("ReceivesResult", func(t *testing.T) {
		var got *Result
		sink := SinkFunc(func(_ context.Context, r *Result) error {
			got = r
			return nil
		})
		e, err := New(staticSource(twoGroups()), twoGroupParams(),
			WithLogger(NoopLogger()), WithInitialCenters(0, 6), WithSink(sink))
		require.NoError(t, err)

		res, err := e.Run(context.Background())
		require.NoError(t, err)
		assert.Same(t, res, got)
	})

	t.Run("ErrorIsReturned", func(t *testing.T) {
		boom := errors.New("disk full")
		sink := SinkFunc(func(context.Context, *Result) error { return boom })
		e, err := New(staticSource(twoGroups()), twoGroupParams(),
			WithLogger(NoopLogger()), WithInitialCenters(0, 6), WithSink(sink))
		require.NoError(t, err)

		res, err := e.Run(context.Background())
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 2, res.Len())
	})
}

func TestRun_Metrics(t *testing.T) {
	metrics := &BasicMetricsCollector{}
	e, err := New(staticSource(twoGroups()), twoGroupParams(),
		WithLogger(NoopLogger()), WithInitialCenters(0, 6), WithMetricsCollector(metrics))
	require.NoError(t, err)

	_, err = e.Run(context.Background())
	require.NoError(t, err)

	stats := metrics.GetStats()
	assert.Equal(t, int64(5), stats.RoundCount)
	assert.Equal(t, int64(1), stats.RunCount)
	assert.Equal(t, int64(0), stats.RunErrors)
	assert.Equal(t, int64(2), stats.LastClusters)
	assert.Zero(t, stats.SplitCount)
	assert.Zero(t, stats.MergeCount)
}

func TestRun_RepeatedRunsAreIndependent(t *testing.T) {
	e, err := New(staticSource(twoGroups()), twoGroupParams(),
		WithLogger(NoopLogger()), WithInitialCenters(0, 6))
	require.NoError(t, err)

	first, err := e.Run(context.Background())
	require.NoError(t, err)
	second, err := e.Run(context.Background())
	require.NoError(t, err)

	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, first.MeanDistance, second.MeanDistance)
	assert.Equal(t, first.Labels(), second.Labels())
}

func TestSeed(t *testing.T) {
	ctx := context.Background()

	t.Run("DistinctPoints", func(t *testing.T) {
		rows := twoGroups()
		p := twoGroupParams()
		p.InitialClusters = 4
		e := newTestEngine(t, rows, p, WithSeed(3))

		e.seed(ctx)
		require.Len(t, e.clusters, 4)
		assert.Equal(t, StateSeeded, e.State())
		for i := range e.clusters {
			assert.True(t, e.clusters[i].Empty())
			for j := i + 1; j < len(e.clusters); j++ {
				assert.NotEqual(t, e.clusters[i].center, e.clusters[j].center)
			}
		}
	})

	t.Run("TooFewDistinctPoints", func(t *testing.T) {
		var buf bytes.Buffer
		rows := [][]float64{{1, 1}, {1, 1}, {1, 1}, {2, 2}, {1, 1}}
		p := twoGroupParams()
		p.InitialClusters = 4
		e := newTestEngine(t, rows, p, WithLogger(bufferLogger(&buf)))

		e.seed(ctx)
		assert.Len(t, e.clusters, 2)
		assert.Contains(t, buf.String(), "fewer distinct seed points")
	})

	t.Run("InitialCenters", func(t *testing.T) {
		e := newTestEngine(t, twoGroups(), twoGroupParams(), WithInitialCenters(3, 9))

		e.seed(ctx)
		require.Len(t, e.clusters, 2)
		assert.Equal(t, []float64{2, 2}, e.clusters[0].center)
		assert.Equal(t, []float64{12, 12}, e.clusters[1].center)
	})

	t.Run("InvalidInitialCentersFallBack", func(t *testing.T) {
		e := newTestEngine(t, twoGroups(), twoGroupParams(), WithInitialCenters(-1, 99))

		e.seed(ctx)
		assert.Len(t, e.clusters, 2)
	})
}

func TestReassign(t *testing.T) {
	rows := [][]float64{{0, 0}, {1, 0}, {9, 0}, {5, 0}, {10, 0}}
	e := newTestEngine(t, rows, twoGroupParams())
	left := addCluster(e, []float64{0, 0}, 2, 4)
	right := addCluster(e, []float64{10, 0})

	e.reassign(context.Background())

	// The midpoint is equidistant and goes to the first cluster.
	assert.Equal(t, []int{0, 1, 3}, left.Members())
	assert.Equal(t, []int{2, 4}, right.Members())
}

func TestPrune(t *testing.T) {
	ctx := context.Background()

	t.Run("MovesMembersOfUndersizedClusters", func(t *testing.T) {
		rows := [][]float64{{0, 0}, {1, 0}, {2, 0}, {20, 0}, {100, 0}}
		p := twoGroupParams()
		p.MinClusterSize = 2
		e := newTestEngine(t, rows, p)
		small := addCluster(e, []float64{20, 0}, 3)
		big := addCluster(e, []float64{1, 0}, 0, 1, 2)
		far := addCluster(e, []float64{100, 0}, 4)

		removed := e.prune(ctx)

		assert.Equal(t, 2, removed)
		require.Len(t, e.clusters, 1)
		assert.Same(t, big, e.clusters[0])
		assert.Equal(t, []int{0, 1, 2, 3, 4}, big.Members())
		assert.True(t, small.Empty())
		assert.True(t, far.Empty())
		assert.Equal(t, map[uint64]int{big.ID(): 0}, e.slots)
	})

	t.Run("AllUndersizedKeepsLastCluster", func(t *testing.T) {
		var buf bytes.Buffer
		rows := [][]float64{{0, 0}, {10, 0}}
		p := twoGroupParams()
		p.MinClusterSize = 5
		e := newTestEngine(t, rows, p, WithLogger(bufferLogger(&buf)))
		addCluster(e, []float64{0, 0}, 0)
		last := addCluster(e, []float64{10, 0}, 1)

		removed := e.prune(ctx)

		assert.Equal(t, 1, removed)
		require.Len(t, e.clusters, 1)
		assert.Same(t, last, e.clusters[0])
		assert.Equal(t, []int{0, 1}, last.Members())
		assert.Contains(t, buf.String(), "cluster size too small")
	})
}

func TestAggregate(t *testing.T) {
	rows, _ := testutil.NewRNG(5).GaussianBlobs([][]float64{{0, 0, 0}, {20, 20, 20}}, 25, 2)
	e := newTestEngine(t, rows, twoGroupParams())
	a := addCluster(e, rows[0])
	b := addCluster(e, rows[25])
	e.reassign(context.Background())
	e.recenter()

	got := e.aggregate()

	var all []float64
	weights := make([]float64, 0, len(rows))
	for _, c := range []*Cluster{a, b} {
		var dists []float64
		for _, m := range c.Members() {
			d := e.distance(rows[m], c.center)
			dists = append(dists, d)
			all = append(all, d)
			weights = append(weights, 1)
		}
		assert.InDelta(t, stat.Mean(dists, nil), c.InnerMeanDistance(), 1e-9)
	}
	assert.InDelta(t, stat.Mean(all, weights), got, 1e-9)
	assert.Equal(t, got, e.MeanDistance())
}

func TestUpdateDispersion(t *testing.T) {
	rows := [][]float64{{1, 10}, {3, 10}, {5, 40}, {7, 40}}
	e := newTestEngine(t, rows, twoGroupParams())
	c := addCluster(e, []float64{0, 0}, 0, 1, 2, 3)

	e.updateCenter(c)
	e.updateDispersion(c)

	assert.Equal(t, []float64{4, 25}, c.Center())
	assert.InDelta(t, stat.PopStdDev([]float64{1, 3, 5, 7}, nil), c.Sigma()[0], 1e-9)
	assert.InDelta(t, stat.PopStdDev([]float64{10, 10, 40, 40}, nil), c.Sigma()[1], 1e-9)
}

func TestSplit_Collinear(t *testing.T) {
	rows := [][]float64{{0, 0}, {5, 0}, {10, 0}}
	e := newTestEngine(t, rows, twoGroupParams())
	c := addCluster(e, []float64{5, 0}, 0, 1, 2)
	e.updateDispersion(c)

	require.True(t, e.split(context.Background(), c))
	require.Len(t, e.clusters, 2)

	created := e.clusters[1]
	assert.NotEqual(t, c.ID(), created.ID())
	assert.Equal(t, 1, e.slots[created.ID()])

	assert.Equal(t, []int{0}, created.Members())
	assert.Equal(t, []int{1, 2}, c.Members())
	assert.InDeltaSlice(t, []float64{0, 0}, created.Center(), 1e-9)
	assert.InDeltaSlice(t, []float64{7.5, 0}, c.Center(), 1e-9)
	assert.Less(t, created.Center()[0], 5.0)
	assert.Greater(t, c.Center()[0], 5.0)
}

func TestSplit_Abandoned(t *testing.T) {
	t.Run("ZeroCoordinate", func(t *testing.T) {
		rows := [][]float64{{-5, 0}, {0, 0}, {5, 0}}
		e := newTestEngine(t, rows, twoGroupParams())
		c := addCluster(e, []float64{0, 0}, 0, 1, 2)
		e.updateDispersion(c)

		assert.False(t, e.split(context.Background(), c))
		assert.Len(t, e.clusters, 1)
		assert.Equal(t, 3, c.Size())
	})

	t.Run("OneSideEmpty", func(t *testing.T) {
		rows := [][]float64{{4, 4}, {4, 4}}
		e := newTestEngine(t, rows, twoGroupParams())
		c := addCluster(e, []float64{4, 4}, 0, 1)
		e.updateDispersion(c)

		assert.False(t, e.split(context.Background(), c))
		assert.Len(t, e.clusters, 1)
		assert.Equal(t, 2, c.Size())
	})
}

func TestSplitPass(t *testing.T) {
	rows := [][]float64{{0, 0}, {5, 0}, {10, 0}}
	p := twoGroupParams()
	p.TargetClusters = 4
	p.MinClusterSize = 1
	p.SplitThreshold = 1
	metrics := &BasicMetricsCollector{}
	e := newTestEngine(t, rows, p, WithMetricsCollector(metrics))
	c := addCluster(e, []float64{5, 0}, 0, 1, 2)
	e.aggregate()

	splits := e.splitPass(context.Background())

	assert.Equal(t, 1, splits)
	assert.Len(t, e.clusters, 2)
	assert.Equal(t, int64(1), metrics.SplitCount.Load())
	assert.Equal(t, 3, c.Size()+e.clusters[1].Size())
}

func TestShouldSplit(t *testing.T) {
	rows := [][]float64{{0, 0}, {0, 0}, {0, 0}, {0, 0}}
	p := twoGroupParams()
	p.TargetClusters = 4
	p.MinClusterSize = 1
	p.SplitThreshold = 1
	e := newTestEngine(t, rows, p)
	c := addCluster(e, []float64{0, 0}, 0, 1, 2, 3)
	addCluster(e, []float64{1, 1})

	c.sigma = []float64{2, 0.5}
	assert.False(t, e.shouldSplit(c, 1), "below threshold")

	// Two clusters is not fewer than TargetClusters/2.
	c.innerMeanDist, e.meanDist = 1, 2
	assert.False(t, e.shouldSplit(c, 0))

	c.innerMeanDist, e.meanDist = 3, 2
	assert.True(t, e.shouldSplit(c, 0), "dispersed and large enough")

	e.params.MinClusterSize = 2
	assert.False(t, e.shouldSplit(c, 0), "too small to split")

	e.params.TargetClusters = 6
	assert.True(t, e.shouldSplit(c, 0), "too few clusters")
}

func mergeFixture(t *testing.T, maxMerges int) (*Engine, []*Cluster) {
	t.Helper()

	rows := [][]float64{{0, 0}, {0, 0}, {1, 0}, {50, 0}, {51.5, 0}}
	p := twoGroupParams()
	p.MaxMerges = maxMerges
	e := newTestEngine(t, rows, p)
	return e, []*Cluster{
		addCluster(e, []float64{0, 0}, 0, 1),
		addCluster(e, []float64{1, 0}, 2),
		addCluster(e, []float64{50, 0}, 3),
		addCluster(e, []float64{51.5, 0}, 4),
	}
}

func TestMergePass(t *testing.T) {
	ctx := context.Background()

	t.Run("MergesAllClosePairs", func(t *testing.T) {
		e, cs := mergeFixture(t, 5)

		merges := e.mergePass(ctx, 5)

		assert.Equal(t, 2, merges)
		require.Len(t, e.clusters, 2)
		assert.Same(t, cs[0], e.clusters[0])
		assert.Same(t, cs[2], e.clusters[1])
		assert.Equal(t, []int{0, 1, 2}, cs[0].Members())
		assert.Equal(t, []int{3, 4}, cs[2].Members())
		assert.InDeltaSlice(t, []float64{1.0 / 3, 0}, cs[0].Center(), 1e-9)
		assert.InDeltaSlice(t, []float64{50.75, 0}, cs[2].Center(), 1e-9)
		assert.True(t, cs[1].Empty())
		assert.True(t, cs[3].Empty())
	})

	t.Run("MaxMergesLimitsAttempts", func(t *testing.T) {
		e, cs := mergeFixture(t, 1)

		merges := e.mergePass(ctx, 5)

		assert.Equal(t, 1, merges)
		require.Len(t, e.clusters, 3)
		assert.Equal(t, []int{0, 1, 2}, cs[0].Members())
	})

	t.Run("ZeroThresholdMergesNothing", func(t *testing.T) {
		e, _ := mergeFixture(t, 5)

		assert.Zero(t, e.mergePass(ctx, 0))
		assert.Len(t, e.clusters, 4)
	})

	t.Run("ClusterMergesAtMostOnce", func(t *testing.T) {
		rows := [][]float64{{0, 0}, {1, 0}, {2, 0}}
		e := newTestEngine(t, rows, twoGroupParams())
		a := addCluster(e, []float64{0, 0}, 0)
		addCluster(e, []float64{1, 0}, 1)
		c := addCluster(e, []float64{2, 0}, 2)

		merges := e.mergePass(ctx, 5)

		assert.Equal(t, 1, merges)
		require.Len(t, e.clusters, 2)
		assert.Equal(t, []int{0, 1}, a.Members())
		assert.Equal(t, []int{2}, c.Members())
		assert.Equal(t, 0, e.slots[a.ID()])
		assert.Equal(t, 1, e.slots[c.ID()])
	})
}

func TestDecide(t *testing.T) {
	centers := func(n int) [][]float64 {
		rows := make([][]float64, n)
		for i := range rows {
			rows[i] = []float64{float64(i) * 100, 0}
		}
		return rows
	}

	tests := []struct {
		name     string
		clusters int
		round    int
		expected string
	}{
		{"FinalRound", 4, 9, "final"},
		{"TooFew", 2, 3, "split"},
		{"TooMany", 8, 3, "merge"},
		{"EvenRound", 3, 2, "merge"},
		{"OddRound", 3, 3, "split"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := twoGroupParams()
			p.TargetClusters = 4
			p.MinClusterSize = 1
			p.MergeDistance = 1
			p.MaxRounds = 10
			rows := centers(tt.clusters)
			e := newTestEngine(t, rows, p)
			for i, r := range rows {
				addCluster(e, r, i)
			}
			e.aggregate()

			assert.Equal(t, tt.expected, e.decide(context.Background(), tt.round))
			assert.Len(t, e.clusters, tt.clusters)
		})
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "Seeded", StateSeeded.String())
	assert.Equal(t, "Failed", StateFailed.String())
	assert.Equal(t, "Unknown(42)", State(42).String())
}

func TestValidateDataset(t *testing.T) {
	params := twoGroupParams()

	dim, err := ValidateDataset(twoGroups(), params)
	require.NoError(t, err)
	assert.Equal(t, 2, dim)

	_, err = ValidateDataset([][]float64{{1, 1}}, params)
	assert.ErrorIs(t, err, ErrDataSize)

	_, err = ValidateDataset([][]float64{{}, {}, {}, {}}, params)
	assert.ErrorIs(t, err, ErrDataSize)

	rows := twoGroups()
	rows[3] = []float64{1, 2, 3}
	_, err = ValidateDataset(rows, params)
	var dimErr *ErrInconsistentDimension
	require.ErrorAs(t, err, &dimErr)
	assert.Equal(t, 3, dimErr.Row)
	assert.ErrorIs(t, err, ErrDataSize)
}

func TestAddPoint_Duplicate(t *testing.T) {
	var buf bytes.Buffer
	e := newTestEngine(t, twoGroups(), twoGroupParams(), WithLogger(bufferLogger(&buf)))
	c := addCluster(e, []float64{0, 0})

	e.addPoint(context.Background(), c, 3)
	e.addPoint(context.Background(), c, 3)

	assert.Equal(t, 1, c.Size())
	assert.True(t, c.Contains(3))
	assert.False(t, c.Contains(-1))
	assert.Contains(t, buf.String(), "index repeat")

	c.clearMembership()
	assert.True(t, c.Empty())
}
