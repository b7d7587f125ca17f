package allocation

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MacroTilt/internal/domain/models"
)

func twoAssetUniverse() models.Universe {
	return models.NewUniverse([]models.Asset{
		{Ticker: "A", Allocation: 0.6, Class: models.ClassGrowth},
		{Ticker: "B", Allocation: 0.4, Class: models.ClassDefensive},
	})
}

func TestReconcileTwoAssets(t *testing.T) {
	u := twoAssetUniverse()
	raw := map[string]float64{"A": 0.04, "B": 0.02}

	got, net := Reconcile(u, raw)
	assert.InDelta(t, 0.032, net, 1e-12)
	assert.InDelta(t, 0.04-0.016/0.6, got["A"], 1e-12)
	assert.InDelta(t, 0.02-0.016/0.4, got["B"], 1e-12)
	assert.InDelta(t, 0, Net(u, got), 1e-6)

	// input untouched
	assert.Equal(t, 0.04, raw["A"])
}

func TestReconcileWithinTolerance(t *testing.T) {
	u := twoAssetUniverse()
	raw := map[string]float64{"A": 0.001, "B": 0.0005}
	got, _ := Reconcile(u, raw)
	assert.Equal(t, raw, got)
}

func TestReconcileSkipsEmptyBucket(t *testing.T) {
	u := models.NewUniverse([]models.Asset{
		{Ticker: "A", Allocation: 0.5, Class: models.ClassGrowth},
		{Ticker: "C", Allocation: 0.5, Class: models.ClassGrowth},
	})
	raw := map[string]float64{"A": 0.05, "C": 0.05}
	got, net := Reconcile(u, raw)
	assert.InDelta(t, 0.05, net, 1e-12)
	// only the growth half is removed
	assert.InDelta(t, 0.025, Net(u, got), 1e-12)
}

func TestReconcileInvariantRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		n := 2 + rng.Intn(8)
		assets := make([]models.Asset, 0, n)
		raw := map[string]float64{}
		for j := 0; j < n; j++ {
			class := models.ClassGrowth
			if j%2 == 1 {
				class = models.ClassDefensive
			}
			tk := string(rune('A' + j))
			assets = append(assets, models.Asset{Ticker: tk, Allocation: rng.Float64(), Class: class})
			raw[tk] = rng.Float64()*0.16 - 0.08
		}
		u := models.NewUniverse(assets)
		got, _ := Reconcile(u, raw)
		require.InDelta(t, 0, Net(u, got), 1e-6)
	}
}

func TestReconcileSumsInTickerOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	assets := make([]models.Asset, 0, 12)
	raw := map[string]float64{}
	for i := 0; i < 12; i++ {
		class := models.ClassGrowth
		if i%2 == 1 {
			class = models.ClassDefensive
		}
		tk := string(rune('A' + i))
		assets = append(assets, models.Asset{Ticker: tk, Allocation: rng.Float64() / 6, Class: class})
		raw[tk] = rng.Float64()*0.1 - 0.03
	}
	u := models.NewUniverse(assets)

	want, wantNet := Reconcile(u, raw)
	wantProposed, wantSum := Proposed(u, want)
	for i := 0; i < 200; i++ {
		got, net := Reconcile(u, raw)
		require.Equal(t, want, got)
		require.Equal(t, wantNet, net)
		proposed, sum := Proposed(u, got)
		require.Equal(t, wantProposed, proposed)
		require.Equal(t, wantSum, sum)
	}
}
