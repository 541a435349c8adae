package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist. Food items and the
// nutrition summary are stored as JSON documents: a meal log is written
// once and read back whole, never queried by item.
const schema = `
CREATE TABLE IF NOT EXISTS meal_logs (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    food_items TEXT NOT NULL,
    nutrition_summary TEXT NOT NULL,
    mock_data INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_meal_logs_user_created ON meal_logs(user_id, created_at DESC);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
