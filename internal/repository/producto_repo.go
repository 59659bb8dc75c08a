package repository

import (
	"context"
	"errors"

	"boutiquepos/internal/dto"
	"boutiquepos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrStockNegativo is returned by AjustarStockTx when the floor-checked update
// matches no row: either the product does not exist or the delta would drop
// stock below zero.
var ErrStockNegativo = errors.New("el ajuste dejaria el stock en negativo")

// ProductoRepository defines the data access contract for products.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via in-memory stubs.
type ProductoRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error)
	List(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, int64, error)

	// FindForUpdateTx takes a row-level exclusive lock on the product so that
	// concurrent decrements against it serialize. Must run inside tx.
	FindForUpdateTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Producto, error)

	// AjustarStockTx applies stock_actual += delta subject to the floor check
	// stock_actual + delta >= 0, failing with ErrStockNegativo otherwise.
	AjustarStockTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, delta int) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productoRepo struct{ db *gorm.DB }

func NewProductoRepository(db *gorm.DB) ProductoRepository { return &productoRepo{db: db} }

func (r *productoRepo) DB() *gorm.DB { return r.db }

func (r *productoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).First(&p, id).Error
	return &p, err
}

func (r *productoRepo) List(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, int64, error) {
	var productos []model.Producto
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Producto{}).Where("activo = true")

	if filter.SucursalID != "" {
		q = q.Where("sucursal_id = ?", filter.SucursalID)
	}
	if filter.Nombre != "" {
		q = q.Where("nombre ILIKE ?", "%"+filter.Nombre+"%")
	}
	if filter.Categoria != "" {
		q = q.Where("categoria = ?", filter.Categoria)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("nombre ASC").Limit(filter.Limit).Offset(offset).Find(&productos).Error
	return productos, total, err
}

func (r *productoRepo) FindForUpdateTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Producto, error) {
	var p model.Producto
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&p, id).Error
	return &p, err
}

func (r *productoRepo) AjustarStockTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, delta int) error {
	res := tx.WithContext(ctx).Model(&model.Producto{}).
		Where("id = ? AND stock_actual + ? >= 0", id, delta).
		Update("stock_actual", gorm.Expr("stock_actual + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStockNegativo
	}
	return nil
}
