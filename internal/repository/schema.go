package repository

import "fmt"

const (
	SettingsTable = "engine_settings"
	AssetsTable   = "portfolio_assets"
)

// Schema returns the idempotent DDL for the settings and asset tables in db.
func Schema(db string) []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", db),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
			key String,
			value String,
			updated_at DateTime64(3) DEFAULT now64(3)
		) ENGINE = ReplacingMergeTree(updated_at) ORDER BY key`, db, SettingsTable),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
			ticker String,
			allocation String,
			asset_class LowCardinality(String),
			region LowCardinality(String),
			sensitivity Float64 DEFAULT 1.0,
			updated_at DateTime64(3) DEFAULT now64(3)
		) ENGINE = ReplacingMergeTree(updated_at) ORDER BY ticker`, db, AssetsTable),
	}
}
