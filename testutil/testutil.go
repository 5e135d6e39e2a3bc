package testutil

import (
	"math/rand"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), // nolint gosec
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// UniformVector returns a vector with values in range [minVal, maxVal).
func (r *RNG) UniformVector(dimensions int, minVal, maxVal float64) []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	span := maxVal - minVal
	vec := make([]float64, dimensions)
	for i := range vec {
		vec[i] = minVal + r.rand.Float64()*span
	}
	return vec
}

// UniformVectors generates num vectors with values in range [minVal, maxVal).
// Uses a single backing array for efficiency.
func (r *RNG) UniformVectors(num, dimensions int, minVal, maxVal float64) [][]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	span := maxVal - minVal
	data := make([]float64, num*dimensions)
	vectors := make([][]float64, num)

	for i := range num {
		vec := data[i*dimensions : (i+1)*dimensions]
		for j := range vec {
			vec[j] = minVal + r.rand.Float64()*span
		}
		vectors[i] = vec
	}

	return vectors
}

// GaussianBlobs generates perCenter points around each center with
// isotropic Gaussian noise of the given standard deviation.
// Points are emitted center by center; labels[i] is the index of the
// center point i was drawn from.
func (r *RNG) GaussianBlobs(centers [][]float64, perCenter int, stddev float64) ([][]float64, []int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	num := len(centers) * perCenter
	vectors := make([][]float64, 0, num)
	labels := make([]int, 0, num)

	for c, center := range centers {
		for range perCenter {
			vec := make([]float64, len(center))
			for j := range center {
				vec[j] = center[j] + r.rand.NormFloat64()*stddev
			}
			vectors = append(vectors, vec)
			labels = append(labels, c)
		}
	}

	return vectors, labels
}

// Shuffle permutes vectors and labels in unison.
func (r *RNG) Shuffle(vectors [][]float64, labels []int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rand.Shuffle(len(vectors), func(i, j int) {
		vectors[i], vectors[j] = vectors[j], vectors[i]
		if labels != nil {
			labels[i], labels[j] = labels[j], labels[i]
		}
	})
}
