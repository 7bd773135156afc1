package postgres

// schema is applied idempotently at startup.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS upload_batches (
		id                 TEXT PRIMARY KEY,
		owner_id           TEXT NOT NULL,
		company_id         TEXT NOT NULL DEFAULT '',
		vault_id           TEXT NOT NULL DEFAULT '',
		filename           TEXT NOT NULL,
		stored_ref         TEXT NOT NULL,
		file_hash          TEXT NOT NULL,
		uploaded_at        TIMESTAMPTZ NOT NULL,
		period             TEXT NOT NULL DEFAULT '',
		period_label       TEXT NOT NULL DEFAULT '',
		status             TEXT NOT NULL,
		records_inserted   INTEGER NOT NULL DEFAULT 0,
		duplicates_skipped INTEGER NOT NULL DEFAULT 0,
		rows_replaced      INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_upload_batches_scope_period
		ON upload_batches (owner_id, company_id, vault_id, period)`,
	`CREATE TABLE IF NOT EXISTS accounting_records (
		id              BIGSERIAL PRIMARY KEY,
		owner_id        TEXT NOT NULL,
		company_id      TEXT NOT NULL DEFAULT '',
		vault_id        TEXT NOT NULL DEFAULT '',
		batch_id        TEXT REFERENCES upload_batches (id) ON DELETE SET NULL,
		record_date     DATE NOT NULL,
		month           TEXT NOT NULL,
		account         TEXT NOT NULL DEFAULT '',
		category        TEXT NOT NULL,
		subcategory     TEXT NOT NULL DEFAULT '',
		project         TEXT NOT NULL DEFAULT '',
		project_code    TEXT NOT NULL DEFAULT '',
		counterparty    TEXT NOT NULL DEFAULT '',
		description     TEXT NOT NULL DEFAULT '',
		document_type   TEXT NOT NULL DEFAULT '',
		document_number TEXT NOT NULL DEFAULT '',
		flow_type       TEXT NOT NULL,
		verified        TEXT NOT NULL DEFAULT '',
		comments        TEXT NOT NULL DEFAULT '',
		amount          NUMERIC NOT NULL,
		balance         NUMERIC,
		source_filename TEXT NOT NULL DEFAULT '',
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_accounting_records_scope_date
		ON accounting_records (owner_id, company_id, vault_id, record_date)`,
}
