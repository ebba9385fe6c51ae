package analysis

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/KaramelBytes/mortstat/internal/dataset"
	"gonum.org/v1/gonum/floats"
)

const (
	// MaxClusterIterations bounds the assign/update loop of KMeans.
	MaxClusterIterations = 100
	// MaxClusters is the largest k KMeans accepts.
	MaxClusters = 1000
)

// ClusterResult holds a k-means partition of countries. Assignments[i] and
// Countries[i] describe the same country; Centroids is indexed by cluster.
type ClusterResult struct {
	Assignments []int       `json:"assignments"`
	Centroids   [][]float64 `json:"centroids"`
	Countries   []string    `json:"countries"`
	Iterations  int         `json:"iterations"`
}

// Members groups country names by cluster index. Clusters that ended up
// empty are present as nil slices.
func (c *ClusterResult) Members() [][]string {
	out := make([][]string, len(c.Centroids))
	for i, a := range c.Assignments {
		out[a] = append(out[a], c.Countries[i])
	}
	return out
}

// EffectiveClusters counts clusters with at least one member.
func (c *ClusterResult) EffectiveClusters() int {
	seen := make(map[int]struct{})
	for _, a := range c.Assignments {
		seen[a] = struct{}{}
	}
	return len(seen)
}

// KMeans partitions countries into k clusters over the features built by
// CountryFeatures. Initial centroids are drawn from rng: k distinct countries
// when there are at least k of them, otherwise with replacement. A nil rng
// uses a time-seeded source. A cluster that loses all members keeps its last
// centroid. The loop stops once assignments are stable or after
// MaxClusterIterations rounds.
func KMeans(records []dataset.Record, k int, rng *rand.Rand) (*ClusterResult, error) {
	if k < 1 || k > MaxClusters {
		return nil, fmt.Errorf("%w: got %d, want 1..%d", ErrInvalidClusterCount, k, MaxClusters)
	}
	countries, features := CountryFeatures(records)
	if len(features) == 0 {
		return &ClusterResult{}, nil
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	centroids := initialCentroids(features, k, rng)
	assignments := make([]int, len(features))
	for i := range assignments {
		assignments[i] = -1
	}

	iterations := 0
	for iterations < MaxClusterIterations {
		iterations++
		changed := false
		for i, p := range features {
			c := nearestCentroid(p, centroids)
			if c != assignments[i] {
				assignments[i] = c
				changed = true
			}
		}
		if !changed {
			break
		}
		updateCentroids(centroids, features, assignments)
	}

	return &ClusterResult{
		Assignments: assignments,
		Centroids:   centroids,
		Countries:   countries,
		Iterations:  iterations,
	}, nil
}

func initialCentroids(features [][]float64, k int, rng *rand.Rand) [][]float64 {
	n := len(features)
	centroids := make([][]float64, k)
	if k <= n {
		for i, idx := range rng.Perm(n)[:k] {
			centroids[i] = append([]float64(nil), features[idx]...)
		}
		return centroids
	}
	for i := range centroids {
		centroids[i] = append([]float64(nil), features[rng.Intn(n)]...)
	}
	return centroids
}

// nearestCentroid returns the index of the closest centroid; ties go to the lowest index.
func nearestCentroid(p []float64, centroids [][]float64) int {
	best, bestDist := 0, math.Inf(1)
	for c, centroid := range centroids {
		if d := floats.Distance(p, centroid, 2); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

func updateCentroids(centroids, features [][]float64, assignments []int) {
	dim := len(features[0])
	sums := make([][]float64, len(centroids))
	counts := make([]int, len(centroids))
	for i, p := range features {
		c := assignments[i]
		if sums[c] == nil {
			sums[c] = make([]float64, dim)
		}
		floats.Add(sums[c], p)
		counts[c]++
	}
	for c := range centroids {
		if counts[c] == 0 {
			continue
		}
		floats.Scale(1/float64(counts[c]), sums[c])
		centroids[c] = sums[c]
	}
}
