package database

import (
	"database/sql"
	"fmt"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS orders (
    local_id BIGSERIAL PRIMARY KEY,
    order_id BIGINT UNIQUE,
    printer TEXT NOT NULL DEFAULT '',
    address TEXT NOT NULL DEFAULT '',
    content TEXT NOT NULL DEFAULT '',
    print_time BIGINT NOT NULL,
    order_trace TEXT NOT NULL DEFAULT '',
    sync_status SMALLINT NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_orders_sync_status ON orders(sync_status);
CREATE INDEX IF NOT EXISTS idx_orders_print_time ON orders(print_time);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schemaSQL)
	if err != nil {
		return fmt.Errorf("failed to init schema: %w", err)
	}
	return nil
}
