package database

import (
	"fmt"

	"rfp-backend/models"

	"gorm.io/gorm"
)

// Migrate applies (idempotent) schema migrations:
// - AutoMigrate (tables/columns/index tags)
// - Money column type for proposal prices (NUMERIC(12,2))
// - Foreign keys: proposals -> rfps/vendors, rfp_vendors -> rfps/vendors
// - Basic CHECK constraints
// - Idempotency keys table + unique index
func Migrate() error {
	return DB.Transaction(func(tx *gorm.DB) error {
		// --- AutoMigrate tables/columns/index tags (non-destructive) ---
		if err := tx.AutoMigrate(
			&models.Vendor{},
			&models.RFP{},
			&models.RFPVendor{},
			&models.Proposal{},
			&models.IdempotencyKey{},
		); err != nil {
			return fmt.Errorf("automigrate failed: %w", err)
		}

		// --- Enforce money column as NUMERIC(12,2) (idempotent ALTER) ---
		if err := tx.Exec(`ALTER TABLE proposals ALTER COLUMN total_price TYPE numeric(12,2)`).Error; err != nil {
			return fmt.Errorf("money type migration failed: %w", err)
		}

		// --- Foreign keys (idempotent) ---
		fks := []struct{ constraint, stmt string }{
			{"fk_proposals_rfp", `ALTER TABLE proposals ADD CONSTRAINT fk_proposals_rfp FOREIGN KEY (rfp_id) REFERENCES rfps(id) ON UPDATE RESTRICT ON DELETE CASCADE`},
			{"fk_proposals_vendor", `ALTER TABLE proposals ADD CONSTRAINT fk_proposals_vendor FOREIGN KEY (vendor_id) REFERENCES vendors(id) ON UPDATE RESTRICT ON DELETE RESTRICT`},
			{"fk_rfp_vendors_rfp", `ALTER TABLE rfp_vendors ADD CONSTRAINT fk_rfp_vendors_rfp FOREIGN KEY (rfp_id) REFERENCES rfps(id) ON UPDATE RESTRICT ON DELETE CASCADE`},
			{"fk_rfp_vendors_vendor", `ALTER TABLE rfp_vendors ADD CONSTRAINT fk_rfp_vendors_vendor FOREIGN KEY (vendor_id) REFERENCES vendors(id) ON UPDATE RESTRICT ON DELETE CASCADE`},
		}
		for _, fk := range fks {
			stmt := fmt.Sprintf(`
DO $$
BEGIN
	IF NOT EXISTS (
		SELECT 1 FROM pg_constraint WHERE conname = '%s'
	) THEN
		%s;
	END IF;
END $$;`, fk.constraint, fk.stmt)
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("foreign key migration failed on %s: %w", fk.constraint, err)
			}
		}

		// --- Basic CHECK constraints (idempotent) ---
		checks := []struct{ constraint, stmt string }{
			{"chk_proposals_total_price_nonneg",
				`ALTER TABLE proposals ADD CONSTRAINT chk_proposals_total_price_nonneg CHECK (total_price IS NULL OR total_price >= 0)`},
			{"chk_rfps_status",
				`ALTER TABLE rfps ADD CONSTRAINT chk_rfps_status CHECK (status IN ('draft', 'sent', 'completed'))`},
		}
		for _, chk := range checks {
			stmt := fmt.Sprintf(`
DO $$
BEGIN
	IF NOT EXISTS (
		SELECT 1 FROM pg_constraint WHERE conname = '%s'
	) THEN
		%s;
	END IF;
END $$;`, chk.constraint, chk.stmt)
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("check constraint migration failed on %s: %w", chk.constraint, err)
			}
		}

		return nil
	})
}
