package store

import (
	"context"
	"database/sql"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS subscribers (
		id UUID PRIMARY KEY,
		email VARCHAR(255) NOT NULL UNIQUE,
		first_name VARCHAR(100) DEFAULT '',
		last_name VARCHAR(100) DEFAULT '',
		signup_date TIMESTAMPTZ NOT NULL,
		platform_id VARCHAR(50) DEFAULT '',
		platform_subscriber_id VARCHAR(100) DEFAULT '',
		subscription_tier VARCHAR(50) DEFAULT 'basic',
		preferences JSONB DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS engagement_events (
		id UUID PRIMARY KEY,
		subscriber_id UUID NOT NULL REFERENCES subscribers(id) ON DELETE CASCADE,
		event_type VARCHAR(50) NOT NULL,
		event_data JSONB DEFAULT '{}',
		newsletter_id VARCHAR(100) DEFAULT '',
		content_section VARCHAR(100) DEFAULT '',
		platform_id VARCHAR(50) DEFAULT '',
		timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_engagement_events_subscriber_ts
		ON engagement_events (subscriber_id, timestamp DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_engagement_events_ts
		ON engagement_events (timestamp)`,
	`CREATE TABLE IF NOT EXISTS content_items (
		id UUID PRIMARY KEY,
		newsletter_id VARCHAR(100) DEFAULT '',
		section_name VARCHAR(100) NOT NULL,
		content_type VARCHAR(50) NOT NULL,
		title TEXT DEFAULT '',
		summary TEXT DEFAULT '',
		content_text TEXT DEFAULT '',
		tags JSONB DEFAULT '[]',
		performance_metrics JSONB DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS subscriber_profiles (
		subscriber_id UUID PRIMARY KEY REFERENCES subscribers(id) ON DELETE CASCADE,
		engagement_score DOUBLE PRECISION NOT NULL DEFAULT 0,
		content_preferences JSONB DEFAULT '{}',
		behavioral_segments JSONB DEFAULT '[]',
		churn_risk_score DOUBLE PRECISION NOT NULL DEFAULT 0,
		optimal_send_time VARCHAR(5) NOT NULL DEFAULT '09:00',
		last_updated TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// EnsureSchema creates the tables and indexes if they do not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
