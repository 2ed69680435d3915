package database

import "database/sql"

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS organizations (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		slug TEXT UNIQUE NOT NULL,
		subscription_tier TEXT NOT NULL DEFAULT 'free',
		max_users INTEGER NOT NULL DEFAULT 5,
		max_items INTEGER NOT NULL DEFAULT 100,
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		organization_id TEXT NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
		email TEXT UNIQUE NOT NULL,
		username TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		full_name TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT 'member',
		is_active INTEGER NOT NULL DEFAULT 1,
		last_login_at INTEGER,
		created_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS teams (
		id TEXT PRIMARY KEY,
		organization_id TEXT NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS user_teams (
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		team_id TEXT NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
		PRIMARY KEY (user_id, team_id)
	)`,
	`CREATE TABLE IF NOT EXISTS tags (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		color TEXT NOT NULL DEFAULT '#3B82F6',
		created_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS items (
		id TEXT PRIMARY KEY,
		organization_id TEXT NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
		team_id TEXT REFERENCES teams(id) ON DELETE SET NULL,
		created_by_id TEXT REFERENCES users(id) ON DELETE SET NULL,
		parent_item_id TEXT REFERENCES items(id) ON DELETE SET NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'todo',
		priority TEXT NOT NULL DEFAULT 'medium',
		due_date INTEGER,
		completed_at INTEGER,
		estimated_hours INTEGER,
		actual_hours INTEGER,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_items_org_created ON items(organization_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS item_assignees (
		item_id TEXT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		PRIMARY KEY (item_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS item_tags (
		item_id TEXT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
		tag_id TEXT NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
		PRIMARY KEY (item_id, tag_id)
	)`,
	`CREATE TABLE IF NOT EXISTS comments (
		id TEXT PRIMARY KEY,
		item_id TEXT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
		author_id TEXT REFERENCES users(id) ON DELETE SET NULL,
		content TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS attachments (
		id TEXT PRIMARY KEY,
		item_id TEXT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
		filename TEXT NOT NULL,
		file_path TEXT NOT NULL,
		file_size INTEGER NOT NULL DEFAULT 0,
		mime_type TEXT NOT NULL DEFAULT '',
		uploaded_by_id TEXT REFERENCES users(id) ON DELETE SET NULL,
		created_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS activity_logs (
		id TEXT PRIMARY KEY,
		action TEXT NOT NULL,
		entity_type TEXT NOT NULL,
		entity_id TEXT NOT NULL,
		details TEXT,
		user_id TEXT REFERENCES users(id) ON DELETE SET NULL,
		item_id TEXT REFERENCES items(id) ON DELETE CASCADE,
		created_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_activity_item ON activity_logs(item_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS api_keys (
		id TEXT PRIMARY KEY,
		organization_id TEXT NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
		key TEXT UNIQUE NOT NULL,
		name TEXT NOT NULL,
		is_active INTEGER NOT NULL DEFAULT 1,
		last_used_at INTEGER,
		expires_at INTEGER,
		created_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS webhooks (
		id TEXT PRIMARY KEY,
		organization_id TEXT NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
		url TEXT NOT NULL,
		events TEXT NOT NULL,
		secret TEXT NOT NULL DEFAULT '',
		is_active INTEGER NOT NULL DEFAULT 1,
		last_error TEXT,
		retry_count INTEGER NOT NULL DEFAULT 0,
		last_triggered_at INTEGER,
		created_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS usage_logs (
		id TEXT PRIMARY KEY,
		organization_id TEXT NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
		endpoint TEXT NOT NULL,
		method TEXT NOT NULL,
		status_code INTEGER NOT NULL,
		response_time_ms INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		item_id TEXT REFERENCES items(id) ON DELETE CASCADE,
		comment_id TEXT REFERENCES comments(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		message TEXT NOT NULL,
		type TEXT NOT NULL,
		priority TEXT NOT NULL DEFAULT 'normal',
		is_read INTEGER NOT NULL DEFAULT 0,
		read_at INTEGER,
		metadata TEXT,
		action_url TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL,
		expires_at INTEGER
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_item_type ON notifications(item_id, type, created_at)`,
	`CREATE TABLE IF NOT EXISTS notification_preferences (
		id TEXT PRIMARY KEY,
		user_id TEXT UNIQUE NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		email_enabled INTEGER NOT NULL DEFAULT 1,
		email_item_assigned INTEGER NOT NULL DEFAULT 1,
		email_item_updated INTEGER NOT NULL DEFAULT 1,
		email_comment_added INTEGER NOT NULL DEFAULT 1,
		email_mention INTEGER NOT NULL DEFAULT 1,
		inapp_enabled INTEGER NOT NULL DEFAULT 1,
		inapp_item_assigned INTEGER NOT NULL DEFAULT 1,
		inapp_item_updated INTEGER NOT NULL DEFAULT 1,
		inapp_comment_added INTEGER NOT NULL DEFAULT 1,
		inapp_mention INTEGER NOT NULL DEFAULT 1,
		daily_digest INTEGER NOT NULL DEFAULT 0,
		weekly_digest INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	)`,
}

// Migrate creates the schema. Statements are idempotent, so it is safe to
// run on every startup and in tests.
func Migrate(db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
