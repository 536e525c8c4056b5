package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`CREATE EXTENSION IF NOT EXISTS "pgcrypto";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'termination_type') THEN
			CREATE TYPE termination_type AS ENUM ('BEFORE_CUTOFF', 'AFTER_CUTOFF');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'termination_status') THEN
			CREATE TYPE termination_status AS ENUM ('COMPLETED', 'PARTIAL_COMPLETED');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'tax_record_status') THEN
			CREATE TYPE tax_record_status AS ENUM ('COMPLETED', 'WAITING_REFUND');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'payment_status') THEN
			CREATE TYPE payment_status AS ENUM ('PENDING', 'COMPLETED');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		full_name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL,
		balance NUMERIC(18,2) NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS contracts (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		project_id UUID NOT NULL,
		owner_id UUID NOT NULL REFERENCES users(id),
		client_id UUID NOT NULL REFERENCES users(id),
		title VARCHAR(255) NOT NULL,
		total_amount NUMERIC(18,2) NOT NULL,
		payment_mode VARCHAR(20) NOT NULL,
		compensation_percentage NUMERIC(5,2),
		personal_income_tax NUMERIC(18,2) NOT NULL DEFAULT 0,
		value_added_tax NUMERIC(18,2) NOT NULL DEFAULT 0,
		status VARCHAR(20) NOT NULL,
		signed_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS milestones (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		contract_id UUID NOT NULL REFERENCES contracts(id),
		name VARCHAR(255) NOT NULL,
		amount NUMERIC(18,2) NOT NULL,
		personal_income_tax NUMERIC(18,2) NOT NULL DEFAULT 0,
		value_added_tax NUMERIC(18,2) NOT NULL DEFAULT 0,
		status VARCHAR(20) NOT NULL,
		edit_quota INT NOT NULL DEFAULT 0,
		product_quota INT NOT NULL DEFAULT 0,
		due_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_milestones_contract_status ON milestones (contract_id, status);`,
	`CREATE TABLE IF NOT EXISTS team_money_splits (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		contract_id UUID NOT NULL REFERENCES contracts(id),
		milestone_id UUID REFERENCES milestones(id),
		user_id UUID NOT NULL REFERENCES users(id),
		amount NUMERIC(18,2) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status VARCHAR(20) NOT NULL,
		approved_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_splits_contract_status ON team_money_splits (contract_id, status);`,
	`CREATE INDEX IF NOT EXISTS idx_splits_milestone ON team_money_splits (milestone_id) WHERE milestone_id IS NOT NULL;`,
	`CREATE TABLE IF NOT EXISTS tax_records (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		contract_id UUID NOT NULL REFERENCES contracts(id),
		original_tax NUMERIC(18,2) NOT NULL,
		actual_tax NUMERIC(18,2) NOT NULL,
		refunded_tax NUMERIC(18,2) NOT NULL DEFAULT 0,
		refund_user_id UUID REFERENCES users(id),
		refund_scheduled_date DATE,
		refunded_at TIMESTAMPTZ,
		status tax_record_status NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_tax_records_due ON tax_records (refund_scheduled_date) WHERE status = 'WAITING_REFUND';`,
	`CREATE TABLE IF NOT EXISTS owner_compensation_payments (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		order_code VARCHAR(64) NOT NULL,
		contract_id UUID NOT NULL REFERENCES contracts(id),
		payer_user_id UUID NOT NULL REFERENCES users(id),
		amount NUMERIC(18,2) NOT NULL,
		payment_url TEXT NOT NULL DEFAULT '',
		memo TEXT NOT NULL DEFAULT '',
		status payment_status NOT NULL DEFAULT 'PENDING',
		completed_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_owner_payments_order_code ON owner_compensation_payments (order_code);`,
	`CREATE TABLE IF NOT EXISTS contract_terminations (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		contract_id UUID NOT NULL REFERENCES contracts(id),
		terminated_by VARCHAR(10) NOT NULL,
		terminator_user_id UUID NOT NULL REFERENCES users(id),
		type termination_type NOT NULL,
		total_amount NUMERIC(18,2) NOT NULL,
		total_team_gross NUMERIC(18,2) NOT NULL,
		team_tax NUMERIC(18,2) NOT NULL,
		owner_compensation NUMERIC(18,2) NOT NULL,
		owner_actual_receive NUMERIC(18,2) NOT NULL,
		client_refund NUMERIC(18,2) NOT NULL,
		tax_record_id UUID NOT NULL REFERENCES tax_records(id),
		payment_id UUID REFERENCES owner_compensation_payments(id),
		status termination_status NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_terminations_contract_id ON contract_terminations (contract_id);`,
	`CREATE INDEX IF NOT EXISTS idx_terminations_tax_record ON contract_terminations (tax_record_id);`,
	`CREATE TABLE IF NOT EXISTS balance_transactions (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		user_id UUID NOT NULL REFERENCES users(id),
		amount NUMERIC(18,2) NOT NULL,
		balance_before NUMERIC(18,2) NOT NULL,
		balance_after NUMERIC(18,2) NOT NULL,
		reason VARCHAR(40) NOT NULL,
		contract_id UUID NOT NULL REFERENCES contracts(id),
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_balance_tx_user ON balance_transactions (user_id);`,
	`CREATE INDEX IF NOT EXISTS idx_balance_tx_contract ON balance_transactions (contract_id);`,
	`CREATE TABLE IF NOT EXISTS tax_payout_records (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		user_id UUID NOT NULL REFERENCES users(id),
		gross NUMERIC(18,2) NOT NULL,
		tax NUMERIC(18,2) NOT NULL,
		net NUMERIC(18,2) NOT NULL,
		source VARCHAR(40) NOT NULL,
		contract_id UUID NOT NULL REFERENCES contracts(id),
		milestone_id UUID REFERENCES milestones(id),
		year INT NOT NULL,
		month INT NOT NULL,
		quarter INT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_tax_payouts_period ON tax_payout_records (year, month);`,
	`CREATE INDEX IF NOT EXISTS idx_tax_payouts_user ON tax_payout_records (user_id);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
