package database

import (
	"fmt"

	"autoservice-backend/models"

	"gorm.io/gorm"
)

// Migrate applies (idempotent) schema migrations:
// - AutoMigrate (tables/columns/index tags)
// - Helpful indexes
// - Basic CHECK constraints (postgres only)
// - Default service catalog seed
func Migrate(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.AutoMigrate(
			&models.OrderRecord{},
			&models.ServiceRecord{},
			&models.Appointment{},
			&models.IdempotencyKey{},
		); err != nil {
			return fmt.Errorf("automigrate failed: %w", err)
		}

		indexes := []string{
			`CREATE INDEX IF NOT EXISTS idx_orders_status_seq ON orders (status, seq)`,
			`CREATE INDEX IF NOT EXISTS idx_idempotency_keys_login ON idempotency_keys (login)`,
		}
		for _, stmt := range indexes {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("index migration failed on: %s - %w", stmt, err)
			}
		}

		if tx.Dialector.Name() == "postgres" {
			checks := []string{
				`DO $$
				BEGIN
					IF NOT EXISTS (
						SELECT 1 FROM pg_constraint
						WHERE conrelid = 'orders'::regclass
						  AND conname  = 'chk_orders_status'
					) THEN
						ALTER TABLE orders
						ADD CONSTRAINT chk_orders_status
						CHECK (status IN ('NEW', 'IN_PROGRESS', 'PENDING_PAYMENT', 'PAYED'));
					END IF;
				END $$;`,
				`DO $$
				BEGIN
					IF NOT EXISTS (
						SELECT 1 FROM pg_constraint
						WHERE conrelid = 'orders'::regclass
						  AND conname  = 'chk_orders_discount_nonneg'
					) THEN
						ALTER TABLE orders
						ADD CONSTRAINT chk_orders_discount_nonneg
						CHECK (COALESCE(discount_percent, 0) >= 0 AND COALESCE(discount_amount, 0) >= 0);
					END IF;
				END $$;`,
			}
			for _, stmt := range checks {
				if err := tx.Exec(stmt).Error; err != nil {
					return fmt.Errorf("check constraint migration failed: %w", err)
				}
			}
		}

		if err := SeedServices(tx); err != nil {
			return fmt.Errorf("seed services failed: %w", err)
		}
		return nil
	})
}
