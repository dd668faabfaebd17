package migrations

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"vetclinic/m/internal/database"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS operators (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            username TEXT NOT NULL UNIQUE,
            password_hash TEXT NOT NULL,
            role TEXT NOT NULL,
            created_at TEXT DEFAULT CURRENT_TIMESTAMP
        );`,
	`CREATE TABLE IF NOT EXISTS owners (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL,
            phone_number TEXT NOT NULL,
            email TEXT NOT NULL DEFAULT '',
            address TEXT NOT NULL DEFAULT ''
        );`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_owners_phone ON owners(phone_number);`,
	`CREATE TABLE IF NOT EXISTS pets (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            owner_id INTEGER NOT NULL,
            name TEXT NOT NULL,
            species TEXT NOT NULL DEFAULT '',
            gender TEXT NOT NULL DEFAULT '',
            age_months INTEGER NOT NULL CHECK (age_months >= 0),
            weight REAL NOT NULL CHECK (weight > 0),
            FOREIGN KEY(owner_id) REFERENCES owners(id) ON DELETE CASCADE
        );`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_pets_owner_name ON pets(owner_id, lower(name));`,
	`CREATE TABLE IF NOT EXISTS vaccines (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            pet_id INTEGER NOT NULL,
            vaccine_type TEXT NOT NULL,
            vaccine_date TEXT NOT NULL,
            next_vaccine_date TEXT,
            FOREIGN KEY(pet_id) REFERENCES pets(id) ON DELETE CASCADE
        );`,
	`CREATE INDEX IF NOT EXISTS idx_vaccines_next ON vaccines(next_vaccine_date);`,
	`CREATE TABLE IF NOT EXISTS appointments (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            owner_id INTEGER NOT NULL,
            pet_id INTEGER,
            scheduled_at TEXT NOT NULL,
            purpose TEXT NOT NULL,
            notes TEXT NOT NULL DEFAULT '',
            FOREIGN KEY(owner_id) REFERENCES owners(id) ON DELETE CASCADE,
            FOREIGN KEY(pet_id) REFERENCES pets(id) ON DELETE SET NULL
        );`,
	`CREATE TABLE IF NOT EXISTS inventory (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            item_name TEXT NOT NULL,
            stock_count INTEGER NOT NULL CHECK (stock_count >= 0),
            purchase_price REAL NOT NULL,
            selling_price REAL NOT NULL,
            purchase_date TEXT NOT NULL,
            expiry_date TEXT
        );`,
	`CREATE TABLE IF NOT EXISTS billings (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            bill_date TEXT NOT NULL,
            total_amount REAL NOT NULL,
            details TEXT NOT NULL
        );`,
	`CREATE INDEX IF NOT EXISTS idx_billings_date ON billings(bill_date);`,
	`CREATE TABLE IF NOT EXISTS expenses (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            expense_date TEXT NOT NULL,
            category TEXT NOT NULL,
            amount REAL NOT NULL CHECK (amount > 0),
            description TEXT NOT NULL DEFAULT ''
        );`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS operators (
            id BIGSERIAL PRIMARY KEY,
            username TEXT NOT NULL UNIQUE,
            password_hash TEXT NOT NULL,
            role TEXT NOT NULL,
            created_at TIMESTAMPTZ DEFAULT NOW()
        );`,
	`CREATE TABLE IF NOT EXISTS owners (
            id BIGSERIAL PRIMARY KEY,
            name TEXT NOT NULL,
            phone_number TEXT NOT NULL,
            email TEXT NOT NULL DEFAULT '',
            address TEXT NOT NULL DEFAULT ''
        );`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_owners_phone ON owners(phone_number);`,
	`CREATE TABLE IF NOT EXISTS pets (
            id BIGSERIAL PRIMARY KEY,
            owner_id BIGINT NOT NULL REFERENCES owners(id) ON DELETE CASCADE,
            name TEXT NOT NULL,
            species TEXT NOT NULL DEFAULT '',
            gender TEXT NOT NULL DEFAULT '',
            age_months INTEGER NOT NULL CHECK (age_months >= 0),
            weight DOUBLE PRECISION NOT NULL CHECK (weight > 0)
        );`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_pets_owner_name ON pets(owner_id, lower(name));`,
	`CREATE TABLE IF NOT EXISTS vaccines (
            id BIGSERIAL PRIMARY KEY,
            pet_id BIGINT NOT NULL REFERENCES pets(id) ON DELETE CASCADE,
            vaccine_type TEXT NOT NULL,
            vaccine_date TEXT NOT NULL,
            next_vaccine_date TEXT
        );`,
	`CREATE INDEX IF NOT EXISTS idx_vaccines_next ON vaccines(next_vaccine_date);`,
	`CREATE TABLE IF NOT EXISTS appointments (
            id BIGSERIAL PRIMARY KEY,
            owner_id BIGINT NOT NULL REFERENCES owners(id) ON DELETE CASCADE,
            pet_id BIGINT REFERENCES pets(id) ON DELETE SET NULL,
            scheduled_at TEXT NOT NULL,
            purpose TEXT NOT NULL,
            notes TEXT NOT NULL DEFAULT ''
        );`,
	`CREATE TABLE IF NOT EXISTS inventory (
            id BIGSERIAL PRIMARY KEY,
            item_name TEXT NOT NULL,
            stock_count BIGINT NOT NULL CHECK (stock_count >= 0),
            purchase_price DOUBLE PRECISION NOT NULL,
            selling_price DOUBLE PRECISION NOT NULL,
            purchase_date TEXT NOT NULL,
            expiry_date TEXT
        );`,
	`CREATE TABLE IF NOT EXISTS billings (
            id BIGSERIAL PRIMARY KEY,
            bill_date TEXT NOT NULL,
            total_amount DOUBLE PRECISION NOT NULL,
            details TEXT NOT NULL
        );`,
	`CREATE INDEX IF NOT EXISTS idx_billings_date ON billings(bill_date);`,
	`CREATE TABLE IF NOT EXISTS expenses (
            id BIGSERIAL PRIMARY KEY,
            expense_date TEXT NOT NULL,
            category TEXT NOT NULL,
            amount DOUBLE PRECISION NOT NULL CHECK (amount > 0),
            description TEXT NOT NULL DEFAULT ''
        );`,
}

// Run creates the clinic schema for the database's dialect. Every statement
// is idempotent, so Run is safe on every start.
func Run(db *sqlx.DB) error {
	schema := sqliteSchema
	if database.DialectOf(db) == database.Postgres {
		schema = postgresSchema
	}

	for i, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}
	return nil
}
