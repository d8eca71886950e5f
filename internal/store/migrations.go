package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS research_tasks (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	interaction_id TEXT UNIQUE,
	parent_id      TEXT,
	query          TEXT NOT NULL,
	model          TEXT NOT NULL,
	status         TEXT NOT NULL DEFAULT 'PENDING',
	report         TEXT,
	created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_research_tasks_created_at
	ON research_tasks(created_at);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE INDEX IF NOT EXISTS idx_research_tasks_status
	ON research_tasks(status);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
