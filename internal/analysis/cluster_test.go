package analysis

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/KaramelBytes/mortstat/internal/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// separatedGroups builds two well-separated country groups: A (rate ≈ 5,
// GDP ≈ 50k) and B (rate ≈ 40, GDP ≈ 10k), three years per country.
func separatedGroups() (records []dataset.Record, groupA, groupB []string) {
	a := []struct{ rate, gdp float64 }{{5, 50000}, {5.5, 51000}, {4.5, 49000}, {6, 50500}}
	b := []struct{ rate, gdp float64 }{{40, 10000}, {41, 11000}, {39, 9000}, {40.5, 10500}}
	for i, p := range a {
		name := fmt.Sprintf("A%d", i)
		groupA = append(groupA, name)
		for y := 2000; y < 2003; y++ {
			records = append(records, rec(name, y, p.rate, p.gdp))
		}
	}
	for i, p := range b {
		name := fmt.Sprintf("B%d", i)
		groupB = append(groupB, name)
		for y := 2000; y < 2003; y++ {
			records = append(records, rec(name, y, p.rate, p.gdp))
		}
	}
	return records, groupA, groupB
}

func TestKMeansSeparatesGroupsAcrossSeeds(t *testing.T) {
	records, groupA, groupB := separatedGroups()
	for seed := int64(1); seed <= 25; seed++ {
		res, err := KMeans(records, 2, rand.New(rand.NewSource(seed)))
		require.NoError(t, err)
		require.Len(t, res.Assignments, len(groupA)+len(groupB))

		cluster := make(map[string]int)
		for i, c := range res.Countries {
			cluster[c] = res.Assignments[i]
		}
		for _, c := range groupA {
			assert.Equal(t, cluster[groupA[0]], cluster[c], "seed %d: %s", seed, c)
		}
		for _, c := range groupB {
			assert.Equal(t, cluster[groupB[0]], cluster[c], "seed %d: %s", seed, c)
		}
		assert.NotEqual(t, cluster[groupA[0]], cluster[groupB[0]], "seed %d", seed)
		assert.Equal(t, 2, res.EffectiveClusters())
		assert.LessOrEqual(t, res.Iterations, MaxClusterIterations)
	}
}

func TestKMeansSameSeedIsReproducible(t *testing.T) {
	records, _, _ := separatedGroups()
	a, err := KMeans(records, 3, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	b, err := KMeans(records, 3, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestKMeansInvalidClusterCount(t *testing.T) {
	for _, k := range []int{0, -2, MaxClusters + 1, 1 << 60} {
		_, err := KMeans(nil, k, nil)
		require.ErrorIs(t, err, ErrInvalidClusterCount)
		assert.True(t, IsContractError(err))
	}
}

func TestKMeansEmptyInput(t *testing.T) {
	res, err := KMeans(nil, 3, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Assignments)
	assert.Empty(t, res.Countries)
	assert.Equal(t, 0, res.EffectiveClusters())
}

func TestKMeansMoreClustersThanCountries(t *testing.T) {
	records := []dataset.Record{rec("P", 2000, 1, 1000), rec("Q", 2000, 30, 9000)}
	res, err := KMeans(records, 5, rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	assert.Len(t, res.Centroids, 5)
	assert.LessOrEqual(t, res.EffectiveClusters(), 2)

	members := res.Members()
	require.Len(t, members, 5)
	total := 0
	for _, m := range members {
		total += len(m)
	}
	assert.Equal(t, 2, total)
}

func TestKMeansNilRngStillAssignsEveryCountry(t *testing.T) {
	records, groupA, groupB := separatedGroups()
	res, err := KMeans(records, 1, nil)
	require.NoError(t, err)
	assert.Len(t, res.Members()[0], len(groupA)+len(groupB))
	assert.Equal(t, 1, res.EffectiveClusters())
}
