package isodata

import (
	"context"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/isodata/vector"
)

// splitPass refreshes every cluster's dispersion, then repeatedly scans
// all clusters and axes, splitting eligible clusters immediately. After a
// scan with at least one split the global mean distance is recomputed and
// the scan restarts; the pass ends after a scan without splits.
// It returns the number of splits performed.
func (e *Engine) splitPass(ctx context.Context) int {
	for _, c := range e.clusters {
		e.updateDispersion(c)
	}

	splits := 0
	for {
		changed := false
		// Clusters appended by a split are visited in the same scan.
		for j := 0; j < len(e.clusters); j++ {
			c := e.clusters[j]
			for axis := 0; axis < e.dim; axis++ {
				if !e.shouldSplit(c, axis) {
					continue
				}
				if e.split(ctx, c) {
					changed = true
					splits++
				}
			}
		}
		if !changed {
			return splits
		}
		e.aggregate()
	}
}

// shouldSplit tests one axis of c against the split criteria.
func (e *Engine) shouldSplit(c *Cluster, axis int) bool {
	if c.sigma[axis] <= e.params.SplitThreshold {
		return false
	}
	tooFew := len(e.clusters) < e.params.TargetClusters/2
	if c.innerMeanDist > e.meanDist {
		return c.Size() > 2*e.params.MinClusterSize+1 || tooFew
	}
	return tooFew
}

// split divides c along its axis of largest standard deviation. The two
// halves are centered alpha*center[axis] below and above the current
// center; members move to the new cluster only when strictly closer to it.
//
// A split that would leave either half empty is abandoned and split
// reports false. Otherwise the new cluster is appended to the collection.
func (e *Engine) split(ctx context.Context, c *Cluster) bool {
	axis := vector.ArgMax(c.sigma)
	if axis < 0 {
		return false
	}
	offset := e.opts.alpha * c.center[axis]

	lower := slices.Clone(c.center)
	lower[axis] -= offset
	upper := slices.Clone(c.center)
	upper[axis] += offset

	moved := roaring.New()
	it := c.members.Iterator()
	for it.HasNext() {
		idx := it.Next()
		p := e.data[idx]
		if e.distance(p, lower) < e.distance(p, upper) {
			moved.Add(idx)
		}
	}
	if moved.IsEmpty() || moved.GetCardinality() == c.members.GetCardinality() {
		return false
	}

	created := e.newCluster(lower)
	created.members = moved
	c.members.AndNot(moved)
	c.center = upper

	e.updateCenter(created)
	e.updateDispersion(created)
	e.updateCenter(c)
	e.updateDispersion(c)

	e.clusters = append(e.clusters, created)
	e.slots[created.id] = len(e.clusters) - 1

	e.log.LogSplit(ctx, c.id, created.id, axis)
	e.metrics.RecordSplit()
	return true
}
