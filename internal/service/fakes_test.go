package service_test

// In-memory fakes of the repository interfaces. They reproduce the contracts
// services rely on: gorm.ErrRecordNotFound on misses, the floor check of the
// atomic stock adjust, snapshot semantics on locked reads.

import (
	"context"
	"time"

	"boutiquepos/internal/dto"
	"boutiquepos/internal/model"
	"boutiquepos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── ProductoRepository ───────────────────────────────────────────────────────

type fakeProductoRepo struct {
	productos map[uuid.UUID]*model.Producto
}

func newFakeProductoRepo() *fakeProductoRepo {
	return &fakeProductoRepo{productos: make(map[uuid.UUID]*model.Producto)}
}

func (r *fakeProductoRepo) add(nombre string, precio float64, stock int, sucursalID uuid.UUID) *model.Producto {
	p := &model.Producto{
		ID:          uuid.New(),
		Nombre:      nombre,
		Categoria:   "general",
		Precio:      decimal.NewFromFloat(precio),
		StockActual: stock,
		SucursalID:  sucursalID,
		Activo:      true,
	}
	r.productos[p.ID] = p
	return p
}

func (r *fakeProductoRepo) DB() *gorm.DB { return nil }

func (r *fakeProductoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Producto, error) {
	p, ok := r.productos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductoRepo) List(_ context.Context, filter dto.ProductoFilter) ([]model.Producto, int64, error) {
	var out []model.Producto
	for _, p := range r.productos {
		if p.Activo {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

// Snapshot semantics: the caller gets a copy, like a row read under lock.
func (r *fakeProductoRepo) FindForUpdateTx(_ context.Context, _ *gorm.DB, id uuid.UUID) (*model.Producto, error) {
	p, ok := r.productos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductoRepo) AjustarStockTx(_ context.Context, _ *gorm.DB, id uuid.UUID, delta int) error {
	p, ok := r.productos[id]
	if !ok || p.StockActual+delta < 0 {
		return repository.ErrStockNegativo
	}
	p.StockActual += delta
	return nil
}

var _ repository.ProductoRepository = (*fakeProductoRepo)(nil)

// ── MovimientoStockRepository ────────────────────────────────────────────────

type fakeMovimientoStockRepo struct {
	movimientos []model.MovimientoStock
}

func (r *fakeMovimientoStockRepo) CreateTx(_ context.Context, _ *gorm.DB, m *model.MovimientoStock) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now()
	r.movimientos = append(r.movimientos, *m)
	return nil
}

func (r *fakeMovimientoStockRepo) ListByProducto(_ context.Context, productoID uuid.UUID) ([]model.MovimientoStock, error) {
	var out []model.MovimientoStock
	for _, m := range r.movimientos {
		if m.ProductoID == productoID {
			out = append(out, m)
		}
	}
	return out, nil
}

var _ repository.MovimientoStockRepository = (*fakeMovimientoStockRepo)(nil)

// ── CajaRepository ───────────────────────────────────────────────────────────

type fakeCajaRepo struct {
	sesiones    map[uuid.UUID]*model.SesionCaja
	movimientos []model.MovimientoCaja
}

func newFakeCajaRepo() *fakeCajaRepo {
	return &fakeCajaRepo{sesiones: make(map[uuid.UUID]*model.SesionCaja)}
}

func (r *fakeCajaRepo) DB() *gorm.DB { return nil }

func (r *fakeCajaRepo) CreateSesionTx(_ context.Context, _ *gorm.DB, s *model.SesionCaja) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	cp := *s
	r.sesiones[s.ID] = &cp
	return nil
}

func (r *fakeCajaRepo) FindSesionByID(_ context.Context, id uuid.UUID) (*model.SesionCaja, error) {
	s, ok := r.sesiones[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeCajaRepo) FindSesionAbierta(_ context.Context, sucursalID uuid.UUID) (*model.SesionCaja, error) {
	for _, s := range r.sesiones {
		if s.SucursalID == sucursalID && s.Estado == model.CajaAbierta {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCajaRepo) FindSesionAbiertaForUpdateTx(_ context.Context, _ *gorm.DB, sucursalID uuid.UUID) (*model.SesionCaja, error) {
	for _, s := range r.sesiones {
		if s.SucursalID == sucursalID && s.Estado == model.CajaAbierta {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCajaRepo) FindSesionForUpdateTx(_ context.Context, _ *gorm.DB, id uuid.UUID) (*model.SesionCaja, error) {
	s, ok := r.sesiones[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeCajaRepo) UpdateSesionTx(_ context.Context, _ *gorm.DB, s *model.SesionCaja) error {
	cp := *s
	r.sesiones[s.ID] = &cp
	return nil
}

func (r *fakeCajaRepo) CreateMovimientoTx(_ context.Context, _ *gorm.DB, m *model.MovimientoCaja) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now()
	r.movimientos = append(r.movimientos, *m)
	return nil
}

func (r *fakeCajaRepo) ListMovimientos(_ context.Context, sesionID uuid.UUID) ([]model.MovimientoCaja, error) {
	var out []model.MovimientoCaja
	for _, m := range r.movimientos {
		if m.SesionCajaID == sesionID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeCajaRepo) ListSesiones(_ context.Context, filter dto.CajaFilter) ([]model.SesionCaja, int64, error) {
	var out []model.SesionCaja
	for _, s := range r.sesiones {
		if filter.Estado != "" && s.Estado != filter.Estado {
			continue
		}
		if filter.SucursalID != "" && s.SucursalID.String() != filter.SucursalID {
			continue
		}
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

var _ repository.CajaRepository = (*fakeCajaRepo)(nil)

// ── VentaRepository ──────────────────────────────────────────────────────────

type fakeVentaRepo struct {
	ventas map[uuid.UUID]*model.Venta
}

func newFakeVentaRepo() *fakeVentaRepo {
	return &fakeVentaRepo{ventas: make(map[uuid.UUID]*model.Venta)}
}

func (r *fakeVentaRepo) DB() *gorm.DB { return nil }

func (r *fakeVentaRepo) CreateTx(_ context.Context, _ *gorm.DB, v *model.Venta) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	v.CreatedAt = time.Now()
	for i := range v.Items {
		if v.Items[i].ID == uuid.Nil {
			v.Items[i].ID = uuid.New()
		}
		v.Items[i].VentaID = v.ID
	}
	cp := *v
	cp.Items = append([]model.VentaItem(nil), v.Items...)
	r.ventas[v.ID] = &cp
	return nil
}

func (r *fakeVentaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Venta, error) {
	v, ok := r.ventas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *v
	cp.Items = append([]model.VentaItem(nil), v.Items...)
	return &cp, nil
}

func (r *fakeVentaRepo) UpdateVisible(_ context.Context, id uuid.UUID, visible bool) error {
	v, ok := r.ventas[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	v.Visible = visible
	return nil
}

func (r *fakeVentaRepo) List(_ context.Context, filter dto.VentaFilter) ([]model.Venta, int64, error) {
	var out []model.Venta
	for _, v := range r.ventas {
		if filter.SucursalID != "" && v.SucursalID.String() != filter.SucursalID {
			continue
		}
		switch filter.Visibles {
		case "all":
		case "false":
			if v.Visible {
				continue
			}
		default:
			if !v.Visible {
				continue
			}
		}
		out = append(out, *v)
	}
	return out, int64(len(out)), nil
}

func (r *fakeVentaRepo) DeleteTx(_ context.Context, _ *gorm.DB, id uuid.UUID) error {
	delete(r.ventas, id)
	return nil
}

var _ repository.VentaRepository = (*fakeVentaRepo)(nil)

// ── ApartadoRepository ───────────────────────────────────────────────────────

type fakeApartadoRepo struct {
	apartados map[uuid.UUID]*model.Apartado
	abonos    map[uuid.UUID]*model.Abono
}

func newFakeApartadoRepo() *fakeApartadoRepo {
	return &fakeApartadoRepo{
		apartados: make(map[uuid.UUID]*model.Apartado),
		abonos:    make(map[uuid.UUID]*model.Abono),
	}
}

func (r *fakeApartadoRepo) DB() *gorm.DB { return nil }

func (r *fakeApartadoRepo) CreateTx(_ context.Context, _ *gorm.DB, a *model.Apartado) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.CreatedAt = time.Now()
	for i := range a.Items {
		if a.Items[i].ID == uuid.Nil {
			a.Items[i].ID = uuid.New()
		}
		a.Items[i].ApartadoID = a.ID
	}
	cp := *a
	cp.Items = append([]model.ApartadoItem(nil), a.Items...)
	cp.Abonos = nil
	r.apartados[a.ID] = &cp
	return nil
}

func (r *fakeApartadoRepo) snapshot(a *model.Apartado) *model.Apartado {
	cp := *a
	cp.Items = append([]model.ApartadoItem(nil), a.Items...)
	cp.Abonos = nil
	for _, ab := range r.abonos {
		if ab.ApartadoID == a.ID {
			cp.Abonos = append(cp.Abonos, *ab)
		}
	}
	return &cp
}

func (r *fakeApartadoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Apartado, error) {
	a, ok := r.apartados[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r.snapshot(a), nil
}

func (r *fakeApartadoRepo) FindForUpdateTx(_ context.Context, _ *gorm.DB, id uuid.UUID) (*model.Apartado, error) {
	a, ok := r.apartados[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r.snapshot(a), nil
}

func (r *fakeApartadoRepo) UpdateTx(_ context.Context, _ *gorm.DB, a *model.Apartado) error {
	stored, ok := r.apartados[a.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.Cliente = a.Cliente
	stored.Total = a.Total
	stored.Anticipo = a.Anticipo
	stored.Estado = a.Estado
	stored.Notas = a.Notas
	stored.VentaID = a.VentaID
	return nil
}

func (r *fakeApartadoRepo) List(_ context.Context, filter dto.ApartadoFilter) ([]model.Apartado, int64, error) {
	var out []model.Apartado
	for _, a := range r.apartados {
		if filter.Estado != "" && a.Estado != filter.Estado {
			continue
		}
		if filter.SucursalID != "" && a.SucursalID.String() != filter.SucursalID {
			continue
		}
		out = append(out, *r.snapshot(a))
	}
	return out, int64(len(out)), nil
}

func (r *fakeApartadoRepo) CreateAbonoTx(_ context.Context, _ *gorm.DB, ab *model.Abono) error {
	if ab.ID == uuid.Nil {
		ab.ID = uuid.New()
	}
	ab.CreatedAt = time.Now()
	cp := *ab
	r.abonos[ab.ID] = &cp
	return nil
}

func (r *fakeApartadoRepo) FindAbonoByID(_ context.Context, id uuid.UUID) (*model.Abono, error) {
	ab, ok := r.abonos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *ab
	return &cp, nil
}

func (r *fakeApartadoRepo) DeleteAbonoTx(_ context.Context, _ *gorm.DB, id uuid.UUID) error {
	delete(r.abonos, id)
	return nil
}

func (r *fakeApartadoRepo) SumAbonosTx(_ context.Context, _ *gorm.DB, apartadoID uuid.UUID) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, ab := range r.abonos {
		if ab.ApartadoID == apartadoID {
			sum = sum.Add(ab.Monto)
		}
	}
	return sum, nil
}

func (r *fakeApartadoRepo) DeleteTx(_ context.Context, _ *gorm.DB, id uuid.UUID) error {
	for abID, ab := range r.abonos {
		if ab.ApartadoID == id {
			delete(r.abonos, abID)
		}
	}
	delete(r.apartados, id)
	return nil
}

var _ repository.ApartadoRepository = (*fakeApartadoRepo)(nil)
