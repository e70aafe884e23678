package storage

const Schema = `
CREATE TABLE IF NOT EXISTS alerts (
    user_id INTEGER NOT NULL,
    user_name TEXT NOT NULL,
    title_id TEXT NOT NULL,
    title_name TEXT NOT NULL,
    episode_id TEXT,
    release_date TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (user_id, title_id)
);

CREATE INDEX IF NOT EXISTS idx_alerts_release ON alerts(release_date);
`
