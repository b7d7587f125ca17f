package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"MacroTilt/internal/domain/models"
	domrepo "MacroTilt/internal/domain/repository"
	"MacroTilt/pkg/config"
	"MacroTilt/pkg/util"
)

// ParseAsset canonicalizes one raw asset row.
func ParseAsset(ticker, allocation, class, region string, sensitivity float64) (models.Asset, error) {
	t := strings.ToUpper(strings.TrimSpace(ticker))
	if t == "" {
		return models.Asset{}, fmt.Errorf("asset: empty ticker")
	}
	alloc, err := util.ParseAllocation(allocation)
	if err != nil {
		return models.Asset{}, fmt.Errorf("asset %s: %w", t, err)
	}
	c, err := models.ParseAssetClass(class)
	if err != nil {
		return models.Asset{}, fmt.Errorf("asset %s: %w", t, err)
	}
	r, err := models.ParseRegion(region)
	if err != nil {
		return models.Asset{}, fmt.Errorf("asset %s: %w", t, err)
	}
	if sensitivity <= 0 {
		sensitivity = models.DefaultSensitivity
	}
	return models.Asset{Ticker: t, Allocation: alloc, Class: c, Region: r, Sensitivity: sensitivity}, nil
}

// StaticAssetStore serves the portfolio declared in the config file.
type StaticAssetStore struct {
	assets []models.Asset
}

// NewStaticAssetStore parses rows eagerly so that a bad file fails at startup.
func NewStaticAssetStore(rows []config.AssetConfig) (*StaticAssetStore, error) {
	out := make([]models.Asset, 0, len(rows))
	for _, r := range rows {
		a, err := ParseAsset(r.Ticker, r.Allocation, r.Class, r.Region, r.Sensitivity)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return &StaticAssetStore{assets: out}, nil
}

func (s *StaticAssetStore) ListAssets(context.Context) ([]models.Asset, error) {
	out := make([]models.Asset, len(s.assets))
	copy(out, s.assets)
	return out, nil
}

// CHAssetStore reads allocations and metadata from ClickHouse.
type CHAssetStore struct {
	db    *sql.DB
	table string
}

func NewCHAssetStore(db *sql.DB, table string) *CHAssetStore {
	return &CHAssetStore{db: db, table: table}
}

func (s *CHAssetStore) ListAssets(ctx context.Context) ([]models.Asset, error) {
	q := fmt.Sprintf("SELECT ticker, allocation, asset_class, region, sensitivity FROM %s FINAL ORDER BY ticker", s.table)
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query assets: %w", err)
	}
	defer rows.Close()

	var out []models.Asset
	for rows.Next() {
		var ticker, alloc, class, region string
		var sens float64
		if err := rows.Scan(&ticker, &alloc, &class, &region, &sens); err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		a, err := ParseAsset(ticker, alloc, class, region, sens)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read assets: %w", err)
	}
	return out, nil
}

var (
	_ domrepo.AssetStore = (*StaticAssetStore)(nil)
	_ domrepo.AssetStore = (*CHAssetStore)(nil)
)
