package repository

import (
	"context"

	"boutiquepos/internal/dto"
	"boutiquepos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ApartadoRepository interface {
	CreateTx(ctx context.Context, tx *gorm.DB, a *model.Apartado) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Apartado, error)

	// FindForUpdateTx locks the apartado row and preloads its items, so a
	// payment racing a cancellation serializes on the row.
	FindForUpdateTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Apartado, error)

	UpdateTx(ctx context.Context, tx *gorm.DB, a *model.Apartado) error
	List(ctx context.Context, filter dto.ApartadoFilter) ([]model.Apartado, int64, error)

	CreateAbonoTx(ctx context.Context, tx *gorm.DB, ab *model.Abono) error
	FindAbonoByID(ctx context.Context, id uuid.UUID) (*model.Abono, error)
	DeleteAbonoTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	// SumAbonosTx re-derives the cumulative paid amount from the surviving
	// abono rows, inside the caller's transaction.
	SumAbonosTx(ctx context.Context, tx *gorm.DB, apartadoID uuid.UUID) (decimal.Decimal, error)

	// DeleteTx removes children (abonos, items) before the apartado itself.
	DeleteTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	DB() *gorm.DB
}

type apartadoRepo struct{ db *gorm.DB }

func NewApartadoRepository(db *gorm.DB) ApartadoRepository { return &apartadoRepo{db: db} }

func (r *apartadoRepo) DB() *gorm.DB { return r.db }

func (r *apartadoRepo) CreateTx(ctx context.Context, tx *gorm.DB, a *model.Apartado) error {
	return tx.WithContext(ctx).Create(a).Error
}

func (r *apartadoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Apartado, error) {
	var a model.Apartado
	err := r.db.WithContext(ctx).
		Preload("Items.Producto").
		Preload("Abonos", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&a, id).Error
	return &a, err
}

func (r *apartadoRepo) FindForUpdateTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Apartado, error) {
	var a model.Apartado
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&a, id).Error; err != nil {
		return nil, err
	}
	// Items cannot be preloaded in the same locked query — FOR UPDATE does not
	// apply across joins to outer tables in gorm's Preload.
	if err := tx.WithContext(ctx).Where("apartado_id = ?", id).Find(&a.Items).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *apartadoRepo) UpdateTx(ctx context.Context, tx *gorm.DB, a *model.Apartado) error {
	return tx.WithContext(ctx).Omit("Items", "Abonos", "Venta").Save(a).Error
}

func (r *apartadoRepo) List(ctx context.Context, filter dto.ApartadoFilter) ([]model.Apartado, int64, error) {
	var apartados []model.Apartado
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Apartado{})
	if filter.SucursalID != "" {
		q = q.Where("sucursal_id = ?", filter.SucursalID)
	}
	if filter.Estado != "" {
		q = q.Where("estado = ?", filter.Estado)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Items.Producto").Preload("Abonos").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&apartados).Error
	return apartados, total, err
}

func (r *apartadoRepo) CreateAbonoTx(ctx context.Context, tx *gorm.DB, ab *model.Abono) error {
	return tx.WithContext(ctx).Create(ab).Error
}

func (r *apartadoRepo) FindAbonoByID(ctx context.Context, id uuid.UUID) (*model.Abono, error) {
	var ab model.Abono
	err := r.db.WithContext(ctx).First(&ab, id).Error
	return &ab, err
}

func (r *apartadoRepo) DeleteAbonoTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return tx.WithContext(ctx).Delete(&model.Abono{}, id).Error
}

func (r *apartadoRepo) SumAbonosTx(ctx context.Context, tx *gorm.DB, apartadoID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := tx.WithContext(ctx).Model(&model.Abono{}).
		Where("apartado_id = ?", apartadoID).
		Select("COALESCE(SUM(monto), 0)").Scan(&sum).Error
	if err != nil || !sum.Valid {
		return decimal.Zero, err
	}
	return sum.Decimal, nil
}

func (r *apartadoRepo) DeleteTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	if err := tx.WithContext(ctx).Where("apartado_id = ?", id).Delete(&model.Abono{}).Error; err != nil {
		return err
	}
	if err := tx.WithContext(ctx).Where("apartado_id = ?", id).Delete(&model.ApartadoItem{}).Error; err != nil {
		return err
	}
	return tx.WithContext(ctx).Delete(&model.Apartado{}, id).Error
}
