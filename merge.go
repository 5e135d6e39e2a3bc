package isodata

import (
	"cmp"
	"context"
	"slices"

	"github.com/hupe1980/isodata/vector"
)

type mergeCandidate struct {
	a, b     uint64
	distance float64
}

// mergePass merges cluster pairs whose centers are closer than threshold,
// closest first. A cluster takes part in at most one merge per pass and at
// most MaxMerges candidate pairs are examined. Absorbed clusters are
// dropped at the end. It returns the number of merges performed.
func (e *Engine) mergePass(ctx context.Context, threshold float64) int {
	var candidates []mergeCandidate
	for i := 0; i < len(e.clusters); i++ {
		for j := i + 1; j < len(e.clusters); j++ {
			d := e.distance(e.clusters[i].center, e.clusters[j].center)
			if d < threshold {
				candidates = append(candidates, mergeCandidate{
					a:        e.clusters[i].id,
					b:        e.clusters[j].id,
					distance: d,
				})
			}
		}
	}
	slices.SortStableFunc(candidates, func(x, y mergeCandidate) int {
		return cmp.Compare(x.distance, y.distance)
	})

	used := make(map[uint64]struct{})
	merges := 0
	for attempts, cand := range candidates {
		if attempts >= e.params.MaxMerges {
			break
		}
		_, usedA := used[cand.a]
		_, usedB := used[cand.b]
		if usedA || usedB {
			continue
		}
		e.merge(e.clusters[e.slots[cand.a]], e.clusters[e.slots[cand.b]])
		used[cand.a] = struct{}{}
		used[cand.b] = struct{}{}
		merges++

		e.log.LogMerge(ctx, cand.a, cand.b, cand.distance)
		e.metrics.RecordMerge()
	}

	e.removeEmpty()
	return merges
}

// merge folds c2 into c1. The new center is the size-weighted average of
// both centers and c2's members move to c1, leaving c2 empty.
// c1's dispersion statistics are stale afterwards.
func (e *Engine) merge(c1, c2 *Cluster) {
	n1 := float64(c1.Size())
	n2 := float64(c2.Size())
	if n1+n2 == 0 {
		return
	}

	sum, err := vector.Add(vector.Scale(c1.center, n1), vector.Scale(c2.center, n2))
	if err != nil {
		e.log.Warn("vector size error", "error", err)
	}
	c1.center = vector.Div(sum, n1+n2)
	c1.members.Or(c2.members)
	c2.clearMembership()
}
