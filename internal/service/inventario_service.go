package service

import (
	"context"
	"fmt"

	"boutiquepos/internal/model"
	"boutiquepos/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InventarioService is the inventory ledger: the only path through which
// stock_actual changes. Every mutation locks the product row, applies a
// floor-checked adjust, and records a MovimientoStock in the same transaction,
// so a caller's rollback also rolls back the movement and the adjust.
type InventarioService interface {
	// ReservarStockTx locks the product, verifies it is sellable
	// (activo, precio > 0, stock >= cantidad) and decrements stock.
	// Returns the locked product so callers can capture the charged price.
	ReservarStockTx(ctx context.Context, tx *gorm.DB, productoID uuid.UUID, cantidad int, tipo, motivo string, refID *uuid.UUID) (*model.Producto, error)

	// RestituirStockTx returns previously reserved stock. A positive delta
	// never fails the floor check but still participates in the caller's
	// transaction so it rolls back together with the triggering cancellation.
	RestituirStockTx(ctx context.Context, tx *gorm.DB, productoID uuid.UUID, cantidad int, motivo string, refID *uuid.UUID) error

	// AjustarManual is the administrative delta path; opens its own transaction.
	AjustarManual(ctx context.Context, productoID uuid.UUID, delta int, motivo string) error

	ListarMovimientos(ctx context.Context, productoID uuid.UUID) ([]model.MovimientoStock, error)
}

type inventarioService struct {
	productos   repository.ProductoRepository
	movimientos repository.MovimientoStockRepository
}

func NewInventarioService(productos repository.ProductoRepository, movimientos repository.MovimientoStockRepository) InventarioService {
	return &inventarioService{productos: productos, movimientos: movimientos}
}

func (s *inventarioService) ReservarStockTx(ctx context.Context, tx *gorm.DB, productoID uuid.UUID, cantidad int, tipo, motivo string, refID *uuid.UUID) (*model.Producto, error) {
	p, err := s.productos.FindForUpdateTx(ctx, tx, productoID)
	if err != nil {
		return nil, err
	}
	if !p.Activo || !p.Precio.IsPositive() || p.StockActual < cantidad {
		return nil, fmt.Errorf("%w: %s", ErrProductoNoVendible, p.Nombre)
	}

	if err := s.productos.AjustarStockTx(ctx, tx, productoID, -cantidad); err != nil {
		return nil, fmt.Errorf("descontando stock de %s: %w", p.Nombre, err)
	}

	mov := &model.MovimientoStock{
		ProductoID:    productoID,
		Tipo:          tipo,
		Cantidad:      -cantidad,
		StockAnterior: p.StockActual,
		StockNuevo:    p.StockActual - cantidad,
		Motivo:        motivo,
		ReferenciaID:  refID,
	}
	if err := s.movimientos.CreateTx(ctx, tx, mov); err != nil {
		return nil, err
	}

	p.StockActual -= cantidad
	return p, nil
}

func (s *inventarioService) RestituirStockTx(ctx context.Context, tx *gorm.DB, productoID uuid.UUID, cantidad int, motivo string, refID *uuid.UUID) error {
	p, err := s.productos.FindForUpdateTx(ctx, tx, productoID)
	if err != nil {
		return err
	}

	if err := s.productos.AjustarStockTx(ctx, tx, productoID, cantidad); err != nil {
		return fmt.Errorf("restituyendo stock de %s: %w", p.Nombre, err)
	}

	return s.movimientos.CreateTx(ctx, tx, &model.MovimientoStock{
		ProductoID:    productoID,
		Tipo:          "restitucion",
		Cantidad:      cantidad,
		StockAnterior: p.StockActual,
		StockNuevo:    p.StockActual + cantidad,
		Motivo:        motivo,
		ReferenciaID:  refID,
	})
}

func (s *inventarioService) AjustarManual(ctx context.Context, productoID uuid.UUID, delta int, motivo string) error {
	return runTx(ctx, s.productos.DB(), func(tx *gorm.DB) error {
		p, err := s.productos.FindForUpdateTx(ctx, tx, productoID)
		if err != nil {
			return err
		}
		if err := s.productos.AjustarStockTx(ctx, tx, productoID, delta); err != nil {
			return err
		}
		return s.movimientos.CreateTx(ctx, tx, &model.MovimientoStock{
			ProductoID:    productoID,
			Tipo:          "ajuste_manual",
			Cantidad:      delta,
			StockAnterior: p.StockActual,
			StockNuevo:    p.StockActual + delta,
			Motivo:        motivo,
		})
	})
}

func (s *inventarioService) ListarMovimientos(ctx context.Context, productoID uuid.UUID) ([]model.MovimientoStock, error) {
	return s.movimientos.ListByProducto(ctx, productoID)
}
