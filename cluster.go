package isodata

import (
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
)

// Cluster is one group of points with its center and dispersion statistics.
//
// Members are point indices into the engine's dataset, stored as a
// 32-bit Roaring bitmap. Sigma and InnerMeanDistance are only valid right
// after the engine recomputed them for the current membership.
type Cluster struct {
	id            uint64
	center        []float64
	sigma         []float64
	innerMeanDist float64
	members       *roaring.Bitmap
}

func newCluster(id uint64, center []float64) *Cluster {
	return &Cluster{
		id:      id,
		center:  slices.Clone(center),
		sigma:   make([]float64, len(center)),
		members: roaring.New(),
	}
}

// ID returns the cluster's permanent identifier.
// Identifiers are never reused within an engine.
func (c *Cluster) ID() uint64 { return c.id }

// Center returns a copy of the cluster center.
func (c *Cluster) Center() []float64 { return slices.Clone(c.center) }

// Sigma returns a copy of the per-axis standard deviation.
func (c *Cluster) Sigma() []float64 { return slices.Clone(c.sigma) }

// InnerMeanDistance returns the mean member-to-center distance.
func (c *Cluster) InnerMeanDistance() float64 { return c.innerMeanDist }

// Size returns the number of members.
func (c *Cluster) Size() int { return int(c.members.GetCardinality()) }

// Empty reports whether the cluster has no members.
func (c *Cluster) Empty() bool { return c.members.IsEmpty() }

// Contains reports whether point index i is a member.
func (c *Cluster) Contains(i int) bool {
	if i < 0 {
		return false
	}
	return c.members.Contains(uint32(i))
}

// Members returns the member point indices in ascending order.
func (c *Cluster) Members() []int {
	out := make([]int, 0, c.members.GetCardinality())
	it := c.members.Iterator()
	for it.HasNext() {
		out = append(out, int(it.Next()))
	}
	return out
}

// addPoint inserts point index i. It reports false if i was already a member.
func (c *Cluster) addPoint(i int) bool {
	return c.members.CheckedAdd(uint32(i))
}

// clearMembership empties the member set.
func (c *Cluster) clearMembership() {
	c.members.Clear()
}
