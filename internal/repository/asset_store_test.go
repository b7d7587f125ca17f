package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MacroTilt/internal/domain/models"
	"MacroTilt/pkg/config"
)

func TestCHAssetStore(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT ticker, allocation, asset_class, region, sensitivity FROM macrotilt.portfolio_assets FINAL ORDER BY ticker`).
		WillReturnRows(sqlmock.NewRows([]string{"ticker", "allocation", "asset_class", "region", "sensitivity"}).
			AddRow("spy", "60%", "Growth", "US", 0.0).
			AddRow("TLT", "0.4", "defensive", "usa", 1.3))

	assets, err := NewCHAssetStore(db, "macrotilt.portfolio_assets").ListAssets(context.Background())
	require.NoError(t, err)
	require.Len(t, assets, 2)
	assert.Equal(t, models.Asset{Ticker: "SPY", Allocation: 0.6, Class: models.ClassGrowth, Region: models.RegionUS, Sensitivity: 1}, assets[0])
	assert.Equal(t, models.ClassDefensive, assets[1].Class)
	assert.Equal(t, 1.3, assets[1].Sensitivity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCHAssetStoreRejectsAmbiguousAllocation(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT ticker`).
		WillReturnRows(sqlmock.NewRows([]string{"ticker", "allocation", "asset_class", "region", "sensitivity"}).
			AddRow("SPY", "60", "growth", "us", 1.0))

	_, err = NewCHAssetStore(db, "portfolio_assets").ListAssets(context.Background())
	assert.ErrorContains(t, err, "SPY")
}

func TestStaticAssetStore(t *testing.T) {
	s, err := NewStaticAssetStore([]config.AssetConfig{
		{Ticker: "vt", Allocation: "25%", Class: "growth"},
		{Ticker: "gld", Allocation: "0.75", Class: "defensive", Region: "global", Sensitivity: 0.8},
	})
	require.NoError(t, err)
	assets, err := s.ListAssets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "VT", assets[0].Ticker)
	assert.Equal(t, models.RegionGlobal, assets[0].Region)
	assert.Equal(t, 0.25, assets[0].Allocation)
	assert.Equal(t, 0.8, assets[1].Sensitivity)

	_, err = NewStaticAssetStore([]config.AssetConfig{{Ticker: "X", Allocation: "10%", Class: "cash"}})
	assert.Error(t, err)
}
