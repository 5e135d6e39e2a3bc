// Package isodata implements ISODATA clustering: iterative self-organizing
// partitioning of a dataset of equal-length float64 vectors into a variable
// number of clusters.
//
// Each round reassigns every point to its nearest center, discards clusters
// below the minimum size, recenters, recomputes the global mean distance
// and then either splits widely dispersed clusters or merges close ones.
//
// # Quick Start
//
//	rows := [][]float64{{0, 0}, {0, 1}, {10, 10}, {10, 11}}
//	params := isodata.DefaultParams()
//	params.TargetClusters = 2
//	params.InitialClusters = 2
//	params.MinClusterSize = 1
//
//	eng, err := isodata.New(func() ([][]float64, error) { return rows, nil }, params,
//	    isodata.WithSeed(42),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	res, err := eng.Run(ctx)
//	for i, c := range res.Clusters {
//	    fmt.Println(i, c.Center, c.Members)
//	}
//
// # Hyperparameters
//
//	TargetClusters   desired cluster count (c)
//	InitialClusters  number of seed centers (c0)
//	MinClusterSize   clusters smaller than this are discarded (tn)
//	SplitThreshold   per-axis standard deviation above which a split is considered (te)
//	MergeDistance    center distance below which two clusters may merge (tc)
//	MaxMerges        candidate pairs examined per merge pass (nt)
//	MaxRounds        number of rounds (ns)
//
// # Cluster Identity
//
// Every cluster carries a permanent ID assigned at creation. IDs are never
// reused within an Engine, so they remain valid across splits, merges and
// removals while slot positions may shift.
//
// # Observability
//
// Use WithLogger for structured slog output and WithMetricsCollector to
// receive per-round, split, merge and prune events. Results can be pushed
// to a Sink, see the report package for ready-made writers.
package isodata
