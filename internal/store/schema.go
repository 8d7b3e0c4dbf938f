package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS accounts (
    id               TEXT PRIMARY KEY,
    name             TEXT NOT NULL,
    balance_current  REAL NOT NULL DEFAULT 0,
    type             TEXT NOT NULL DEFAULT 'bank',
    credit_limit     REAL NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS bills (
    id                  TEXT PRIMARY KEY,
    name                TEXT NOT NULL,
    amount              REAL NOT NULL,
    due_date            TEXT NOT NULL,
    repeat              TEXT NOT NULL DEFAULT 'none',
    account_id          TEXT NOT NULL REFERENCES accounts(id),
    override_account_id TEXT,
    status              TEXT NOT NULL DEFAULT 'unpaid',
    last_paid_at        TEXT
);

CREATE TABLE IF NOT EXISTS transactions (
    id          TEXT PRIMARY KEY,
    account_id  TEXT NOT NULL REFERENCES accounts(id),
    category    TEXT NOT NULL,
    amount      REAL NOT NULL,
    kind        TEXT NOT NULL DEFAULT 'expense',
    occurred_at TEXT NOT NULL,
    note        TEXT
);

CREATE TABLE IF NOT EXISTS reminders (
    id       INTEGER PRIMARY KEY,
    title    TEXT NOT NULL,
    body     TEXT NOT NULL,
    fire_at  TEXT NOT NULL,
    marker   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS markers (
    key    TEXT PRIMARY KEY,
    value  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_bills_account ON bills(account_id);
CREATE INDEX IF NOT EXISTS idx_txns_occurred ON transactions(occurred_at);
CREATE INDEX IF NOT EXISTS idx_reminders_fire ON reminders(fire_at);
`
