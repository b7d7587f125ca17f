package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"MacroTilt/internal/domain/models"
	domrepo "MacroTilt/internal/domain/repository"
	applogger "MacroTilt/pkg/logger"
)

// StaticSettingsStore serves the engine configuration loaded from the config file.
type StaticSettingsStore struct {
	cfg models.EngineConfig
}

func NewStaticSettingsStore(cfg models.EngineConfig) *StaticSettingsStore {
	return &StaticSettingsStore{cfg: cfg}
}

func (s *StaticSettingsStore) LoadEngineConfig(context.Context) (models.EngineConfig, error) {
	return s.cfg, nil
}

// CHSettingsStore overlays key/value rows from ClickHouse on a base configuration.
type CHSettingsStore struct {
	db    *sql.DB
	table string
	base  models.EngineConfig
	l     *applogger.Logger
}

func NewCHSettingsStore(db *sql.DB, table string, base models.EngineConfig, l *applogger.Logger) *CHSettingsStore {
	return &CHSettingsStore{db: db, table: table, base: base, l: l}
}

// LoadEngineConfig reads the latest value per key. Unknown keys are skipped with a warning;
// malformed values and out-of-order thresholds fail the load.
func (s *CHSettingsStore) LoadEngineConfig(ctx context.Context) (models.EngineConfig, error) {
	q := fmt.Sprintf("SELECT key, argMax(value, updated_at) FROM %s GROUP BY key ORDER BY key", s.table)
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return models.EngineConfig{}, fmt.Errorf("query engine settings: %w", err)
	}
	defer rows.Close()

	cfg := s.base
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return models.EngineConfig{}, fmt.Errorf("scan engine setting: %w", err)
		}
		if err := ApplySetting(&cfg, key, value); err != nil {
			if errors.Is(err, ErrUnknownSetting) {
				s.l.Warn("ignoring unknown engine setting", applogger.String("key", key))
				continue
			}
			return models.EngineConfig{}, err
		}
	}
	if err := rows.Err(); err != nil {
		return models.EngineConfig{}, fmt.Errorf("read engine settings: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return models.EngineConfig{}, err
	}
	return cfg, nil
}

var (
	_ domrepo.SettingsStore = (*StaticSettingsStore)(nil)
	_ domrepo.SettingsStore = (*CHSettingsStore)(nil)
)
