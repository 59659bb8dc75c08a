package repository

import (
	"context"

	"boutiquepos/internal/dto"
	"boutiquepos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CajaRepository interface {
	CreateSesionTx(ctx context.Context, tx *gorm.DB, s *model.SesionCaja) error
	FindSesionByID(ctx context.Context, id uuid.UUID) (*model.SesionCaja, error)
	FindSesionAbierta(ctx context.Context, sucursalID uuid.UUID) (*model.SesionCaja, error)

	// FindSesionAbiertaForUpdateTx locks the branch's open session row so that
	// a racing open/apply/close serializes. gorm.ErrRecordNotFound when none.
	FindSesionAbiertaForUpdateTx(ctx context.Context, tx *gorm.DB, sucursalID uuid.UUID) (*model.SesionCaja, error)
	FindSesionForUpdateTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.SesionCaja, error)

	UpdateSesionTx(ctx context.Context, tx *gorm.DB, s *model.SesionCaja) error
	CreateMovimientoTx(ctx context.Context, tx *gorm.DB, m *model.MovimientoCaja) error
	ListMovimientos(ctx context.Context, sesionCajaID uuid.UUID) ([]model.MovimientoCaja, error)
	ListSesiones(ctx context.Context, filter dto.CajaFilter) ([]model.SesionCaja, int64, error)
	DB() *gorm.DB
}

type cajaRepo struct{ db *gorm.DB }

func NewCajaRepository(db *gorm.DB) CajaRepository { return &cajaRepo{db: db} }

func (r *cajaRepo) DB() *gorm.DB { return r.db }

func (r *cajaRepo) CreateSesionTx(ctx context.Context, tx *gorm.DB, s *model.SesionCaja) error {
	return tx.WithContext(ctx).Create(s).Error
}

func (r *cajaRepo) FindSesionByID(ctx context.Context, id uuid.UUID) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := r.db.WithContext(ctx).First(&s, id).Error
	return &s, err
}

func (r *cajaRepo) FindSesionAbierta(ctx context.Context, sucursalID uuid.UUID) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := r.db.WithContext(ctx).
		Where("sucursal_id = ? AND estado = ?", sucursalID, model.CajaAbierta).
		First(&s).Error
	return &s, err
}

func (r *cajaRepo) FindSesionAbiertaForUpdateTx(ctx context.Context, tx *gorm.DB, sucursalID uuid.UUID) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("sucursal_id = ? AND estado = ?", sucursalID, model.CajaAbierta).
		First(&s).Error
	return &s, err
}

func (r *cajaRepo) FindSesionForUpdateTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&s, id).Error
	return &s, err
}

func (r *cajaRepo) UpdateSesionTx(ctx context.Context, tx *gorm.DB, s *model.SesionCaja) error {
	return tx.WithContext(ctx).Save(s).Error
}

func (r *cajaRepo) CreateMovimientoTx(ctx context.Context, tx *gorm.DB, m *model.MovimientoCaja) error {
	return tx.WithContext(ctx).Create(m).Error
}

func (r *cajaRepo) ListMovimientos(ctx context.Context, sesionCajaID uuid.UUID) ([]model.MovimientoCaja, error) {
	var movs []model.MovimientoCaja
	err := r.db.WithContext(ctx).
		Where("sesion_caja_id = ?", sesionCajaID).
		Order("created_at ASC").
		Find(&movs).Error
	return movs, err
}

func (r *cajaRepo) ListSesiones(ctx context.Context, filter dto.CajaFilter) ([]model.SesionCaja, int64, error) {
	var sesiones []model.SesionCaja
	var total int64

	q := r.db.WithContext(ctx).Model(&model.SesionCaja{})
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
	err := q.Order("opened_at DESC").Offset(offset).Limit(filter.Limit).Find(&sesiones).Error
	return sesiones, total, err
}
