package isodata

import (
	"context"
)

// seed creates the initial clusters, one per selected point, with empty
// membership. Points are drawn without replacement from a random
// permutation of the dataset (or from WithInitialCenters) and a candidate
// is rejected if it coincides with an already chosen center.
func (e *Engine) seed(ctx context.Context) {
	var picked []int
	if len(e.opts.initialCenters) > 0 {
		picked = e.pickDistinct(e.opts.initialCenters, len(e.opts.initialCenters))
		e.log.LogSeed(ctx, len(e.opts.initialCenters), picked)
	}
	if len(picked) == 0 {
		picked = e.pickDistinct(e.rng.Perm(len(e.data)), e.params.InitialClusters)
		e.log.LogSeed(ctx, e.params.InitialClusters, picked)
	}

	for _, idx := range picked {
		e.clusters = append(e.clusters, e.newCluster(e.data[idx]))
	}
	e.reindex()
	e.state = StateSeeded
}

// pickDistinct returns up to want candidates, in order, skipping indices
// out of range and points at distance zero from an earlier pick.
func (e *Engine) pickDistinct(candidates []int, want int) []int {
	picked := make([]int, 0, want)
	for _, idx := range candidates {
		if len(picked) == want {
			break
		}
		if idx < 0 || idx >= len(e.data) {
			continue
		}
		duplicate := false
		for _, p := range picked {
			if e.distance(e.data[p], e.data[idx]) == 0 {
				duplicate = true
				break
			}
		}
		if !duplicate {
			picked = append(picked, idx)
		}
	}
	return picked
}
