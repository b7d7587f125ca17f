package scoring

import (
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MacroTilt/internal/domain/models"
)

func reading(v float64) models.Reading { return models.NewReading(v, time.Time{}) }

func TestNoDataYieldsNeutralScore(t *testing.T) {
	cfg := models.DefaultEngineConfig()
	for _, ind := range models.AllIndicators {
		got := ScoreIndicator(models.IndicatorData{Indicator: ind, History: models.Series{1, 2, 3, 4, 5, 6}}, cfg)
		assert.Equal(t, 0.0, got.Score.Value, ind)
		assert.Equal(t, "No data", got.Score.Description, ind)
	}
}

func TestUnemploymentVeryLowWithoutTrend(t *testing.T) {
	cfg := models.DefaultEngineConfig()
	got := ScoreIndicator(models.IndicatorData{
		Indicator: models.IndicatorUnemployment,
		Reading:   reading(3.0),
	}, cfg)
	assert.Equal(t, 0.0, got.Trend)
	assert.Equal(t, 2.0, got.Score.Value)
	assert.True(t, strings.HasSuffix(got.Score.Description, "(Very Low)"), got.Score.Description)
}

func TestUnemploymentLadder(t *testing.T) {
	th := models.DefaultEngineConfig().Thresholds.Unemployment
	cases := []struct {
		v    float64
		want float64
	}{
		{3.4, 2}, {4.0, 1}, {5.0, 0}, {7.0, -1}, {9.0, -2},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ScoreUnemployment(reading(c.v), 0, th).Value, "v=%v", c.v)
	}
	// rising unemployment is penalized
	assert.InDelta(t, 0.75, ScoreUnemployment(reading(4.0), 0.5, th).Value, 1e-9)
}

func TestCPIOnTarget(t *testing.T) {
	th := models.CPIThresholds{VeryLow: 1.0, Target: 2.0, Tolerance: 0.5, High: 4.0}
	got := ScoreCPI("CPI", reading(2.0), 0, th)
	assert.Equal(t, 1.0, got.Value)
	assert.True(t, strings.HasSuffix(got.Description, "(On Target)"))
}

func TestCPIBands(t *testing.T) {
	th := models.CPIThresholds{VeryLow: 1.0, Target: 2.0, Tolerance: 0.5, High: 4.0}
	assert.Equal(t, -1.0, ScoreCPI("CPI", reading(0.5), 0, th).Value)
	assert.Equal(t, 0.0, ScoreCPI("CPI", reading(1.2), 0, th).Value)
	assert.Equal(t, -1.0, ScoreCPI("CPI", reading(3.0), 0, th).Value)
	assert.Equal(t, -2.0, ScoreCPI("CPI", reading(5.0), 0, th).Value)
}

func TestCPITrendIsSignOnly(t *testing.T) {
	th := models.CPIThresholds{VeryLow: 1.0, Target: 2.0, Tolerance: 0.5, High: 4.0}
	small := ScoreCPI("CPI", reading(2.0), 0.05, th).Value
	large := ScoreCPI("CPI", reading(2.0), 0.9, th).Value
	assert.InDelta(t, 0.7, small, 1e-9)
	assert.Equal(t, small, large)
	assert.InDelta(t, 1.3, ScoreCPI("CPI", reading(2.0), -0.2, th).Value, 1e-9)
}

func TestVolatilityHighClampsAfterTrend(t *testing.T) {
	th := models.VolatilityThresholds{Low: 15, Normal: 20, Elevated: 25, High: 30}
	got := ScoreVolatility(reading(35), 0.5, th)
	assert.Equal(t, -2.0, got.Value)
	assert.True(t, strings.HasSuffix(got.Description, "(Extreme)"))
	assert.Equal(t, 1.5, ScoreVolatility(reading(12), 0, th).Value)
	assert.Equal(t, -0.5, ScoreVolatility(reading(22), 0, th).Value)
}

func TestYieldCurveTrendSignIsInverted(t *testing.T) {
	assert.Equal(t, 1.0, ScoreYieldCurve(reading(0.8), 0).Value)
	assert.InDelta(t, 1.3, ScoreYieldCurve(reading(0.8), 1).Value, 1e-9)
	assert.Equal(t, 0.0, ScoreYieldCurve(reading(0.0), 0).Value)
	assert.Equal(t, -1.0, ScoreYieldCurve(reading(-0.7), 0).Value)
	assert.Equal(t, -2.0, ScoreYieldCurve(reading(-1.2), 0).Value)
}

func TestCreditSpreadLadder(t *testing.T) {
	assert.Equal(t, 1.0, ScoreCreditSpread(reading(0.9), 0).Value)
	assert.Equal(t, 0.0, ScoreCreditSpread(reading(1.5), 0).Value)
	assert.Equal(t, -1.0, ScoreCreditSpread(reading(2.5), 0).Value)
	assert.Equal(t, -2.0, ScoreCreditSpread(reading(3.5), 0).Value)
	assert.InDelta(t, -0.4, ScoreCreditSpread(reading(1.5), 1).Value, 1e-9)
}

func TestGDPVocabulary(t *testing.T) {
	text := func(s string) models.Reading { return models.Reading{Text: s, OK: true} }
	assert.Equal(t, 1.0, ScoreGDP(text("Strong expansion")).Value)
	assert.Equal(t, -1.0, ScoreGDP(text("Recession")).Value)
	assert.Equal(t, -1.0, ScoreGDP(text("negative growth")).Value)
	assert.Equal(t, 0.0, ScoreGDP(text("sideways")).Value)
	assert.Equal(t, 0.0, ScoreGDP(text("")).Value)
	assert.Equal(t, "No data", ScoreGDP(models.NoReading()).Description)
}

func TestScoresStayWithinBounds(t *testing.T) {
	cfg := models.DefaultEngineConfig()
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 5000; i++ {
		v := rng.Float64()*120 - 20
		trend := rng.Float64()*2 - 1
		for _, s := range []models.Score{
			ScoreUnemployment(reading(v), trend, cfg.Thresholds.Unemployment),
			ScoreCPI("CPI", reading(v), trend, cfg.Thresholds.CPIDomestic),
			ScoreVolatility(reading(v), trend, cfg.Thresholds.Volatility),
			ScoreYieldCurve(reading(v/10), trend),
			ScoreCreditSpread(reading(v/10), trend),
		} {
			require.GreaterOrEqual(t, s.Value, MinScore)
			require.LessOrEqual(t, s.Value, MaxScore)
		}
	}
}

func TestScoreIndicatorUsesHistoryTrend(t *testing.T) {
	cfg := models.DefaultEngineConfig()
	got := ScoreIndicator(models.IndicatorData{
		Indicator: models.IndicatorUnemployment,
		Reading:   reading(5.0),
		History:   models.Series{4, 4, 4, 4.1, 4.1, 4.1},
	}, cfg)
	assert.InDelta(t, 0.25, got.Trend, 1e-9)
	assert.InDelta(t, -0.125, got.Score.Value, 1e-9)
}
