package infra

import (
	"fmt"

	"boutiquepos/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies idempotent SQL patches that GORM
// cannot express (partial unique indexes).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		// Surfaces unique violations as gorm.ErrDuplicatedKey so the handler
		// layer can answer 409 when the partial index wins a racing caja open.
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// RunMigrations applies AutoMigrate plus the SQL-level schema patches. It is
// also called directly by integration tests against a throwaway container.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Sucursal{},
		&model.Usuario{},
		&model.Producto{},
		&model.MovimientoStock{},
		&model.SesionCaja{},
		&model.MovimientoCaja{},
		&model.Venta{},
		&model.VentaItem{},
		&model.Apartado{},
		&model.ApartadoItem{},
		&model.Abono{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot produce.
// Each statement is guarded so re-running on an already-patched DB is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// At most one open register session per branch. The unique partial index
		// is the backstop for the locked check in the service layer: two
		// concurrent opens race, one commits, the other fails the index.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'uni_caja_abierta_por_sucursal') THEN
		    CREATE UNIQUE INDEX uni_caja_abierta_por_sucursal
		        ON sesiones_caja (sucursal_id)
		        WHERE estado = 'abierta';
		  END IF;
		END $$`,
		// Sales history is filtered by branch and day on every register screen.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_ventas_sucursal_fecha') THEN
		    CREATE INDEX idx_ventas_sucursal_fecha
		        ON ventas (sucursal_id, created_at);
		  END IF;
		END $$`,
		// The open layaways board lists pendiente rows per branch.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_apartados_pendientes') THEN
		    CREATE INDEX idx_apartados_pendientes
		        ON apartados (sucursal_id)
		        WHERE estado = 'pendiente';
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
