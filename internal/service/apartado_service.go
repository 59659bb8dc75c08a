package service

import (
	"context"
	"fmt"
	"time"

	"boutiquepos/internal/dto"
	"boutiquepos/internal/model"
	"boutiquepos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ApartadoService interface {
	Crear(ctx context.Context, usuarioID uuid.UUID, req dto.CrearApartadoRequest) (*dto.ApartadoResponse, error)
	Abonar(ctx context.Context, usuarioID uuid.UUID, apartadoID uuid.UUID, req dto.AbonarApartadoRequest) (*dto.AbonoResultResponse, error)
	Cancelar(ctx context.Context, apartadoID uuid.UUID) error
	EliminarAbono(ctx context.Context, abonoID uuid.UUID) error
	EliminarCancelado(ctx context.Context, apartadoID uuid.UUID) error
	EliminarCompletado(ctx context.Context, apartadoID uuid.UUID) error
	EliminarVentaVinculada(ctx context.Context, apartadoID uuid.UUID) error
	Obtener(ctx context.Context, id uuid.UUID) (*dto.ApartadoResponse, error)
	Listar(ctx context.Context, filter dto.ApartadoFilter) (*dto.ApartadoListResponse, error)
}

type apartadoService struct {
	repo       repository.ApartadoRepository
	inventario InventarioService
	ventas     VentaService
	ventaRepo  repository.VentaRepository
}

func NewApartadoService(
	repo repository.ApartadoRepository,
	inventario InventarioService,
	ventas VentaService,
	ventaRepo repository.VentaRepository,
) ApartadoService {
	return &apartadoService{
		repo:       repo,
		inventario: inventario,
		ventas:     ventas,
		ventaRepo:  ventaRepo,
	}
}

// ── Crear ─────────────────────────────────────────────────────────────────────
// An apartado reserves real stock immediately — it is not a soft hold. Each
// line locks and decrements the product exactly like a sale would; any line
// without stock aborts the whole creation. A deposit equal to the total
// liquidates on the spot, producing the linked sale in the same transaction.

func (s *apartadoService) Crear(ctx context.Context, usuarioID uuid.UUID, req dto.CrearApartadoRequest) (*dto.ApartadoResponse, error) {
	sucursalID, err := uuid.Parse(req.SucursalID)
	if err != nil {
		return nil, fmt.Errorf("sucursal_id invalido: %w", err)
	}
	if req.Anticipo.IsNegative() {
		return nil, fmt.Errorf("%w: el anticipo no puede ser negativo", ErrMontoInvalido)
	}

	items := make([]itemPedido, 0, len(req.Items))
	for _, it := range req.Items {
		pid, err := uuid.Parse(it.ProductoID)
		if err != nil {
			return nil, fmt.Errorf("producto_id invalido: %w", err)
		}
		items = append(items, itemPedido{productoID: pid, cantidad: it.Cantidad})
	}

	var apartado model.Apartado
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		apartado = model.Apartado{
			SucursalID: sucursalID,
			Cliente:    req.Cliente,
			Anticipo:   req.Anticipo,
			Estado:     model.ApartadoPendiente,
			Notas:      req.Notas,
			UsuarioID:  usuarioID,
		}

		total := decimal.Zero
		for _, it := range items {
			p, err := s.inventario.ReservarStockTx(ctx, tx, it.productoID, it.cantidad, "apartado",
				fmt.Sprintf("Apartado para %s", req.Cliente), nil)
			if err != nil {
				return err
			}
			total = total.Add(p.Precio.Mul(decimal.NewFromInt(int64(it.cantidad))))
			apartado.Items = append(apartado.Items, model.ApartadoItem{
				ProductoID:     it.productoID,
				Cantidad:       it.cantidad,
				PrecioUnitario: p.Precio,
			})
		}
		apartado.Total = total

		if req.Anticipo.GreaterThan(total) {
			return fmt.Errorf("%w: el anticipo excede el total del apartado", ErrMontoInvalido)
		}

		if err := s.repo.CreateTx(ctx, tx, &apartado); err != nil {
			return err
		}

		// The deposit exists as an abono row so the administrative correction
		// path can re-derive the cumulative paid amount from payments alone.
		if req.Anticipo.IsPositive() {
			if err := s.repo.CreateAbonoTx(ctx, tx, &model.Abono{
				ApartadoID: apartado.ID,
				Monto:      req.Anticipo,
				UsuarioID:  usuarioID,
			}); err != nil {
				return err
			}
		}

		// Immediate liquidation shortcut: a full deposit still produces a
		// linked sale, exactly like the last abono would.
		if apartado.Anticipo.Equal(apartado.Total) {
			return s.liquidarTx(ctx, tx, &apartado, usuarioID)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	completo, err := s.repo.FindByID(ctx, apartado.ID)
	if err != nil {
		return nil, err
	}
	return apartadoToResponse(completo), nil
}

// ── Abonar ────────────────────────────────────────────────────────────────────
// Records a payment and, when cumulative payments reach the total, performs
// the liquidation in the SAME transaction: completed state, linked sale and
// caja update land together or not at all.

func (s *apartadoService) Abonar(ctx context.Context, usuarioID uuid.UUID, apartadoID uuid.UUID, req dto.AbonarApartadoRequest) (*dto.AbonoResultResponse, error) {
	resp := &dto.AbonoResultResponse{}
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		apartado, err := s.repo.FindForUpdateTx(ctx, tx, apartadoID)
		if err != nil {
			return err
		}
		if apartado.Estado != model.ApartadoPendiente {
			return ErrApartadoTerminal
		}

		saldo := apartado.Total.Sub(apartado.Anticipo)
		monto := req.Monto
		if req.LiquidarTotal {
			monto = saldo
		}
		if !monto.IsPositive() {
			return fmt.Errorf("%w: el abono debe ser mayor a cero", ErrMontoInvalido)
		}
		if monto.GreaterThan(saldo) {
			return fmt.Errorf("%w: el abono excede el saldo pendiente de %s", ErrMontoInvalido, saldo.StringFixed(2))
		}

		if err := s.repo.CreateAbonoTx(ctx, tx, &model.Abono{
			ApartadoID: apartadoID,
			Monto:      monto,
			UsuarioID:  usuarioID,
		}); err != nil {
			return err
		}

		apartado.Anticipo = apartado.Anticipo.Add(monto)
		if apartado.Anticipo.Equal(apartado.Total) {
			if err := s.liquidarTx(ctx, tx, apartado, usuarioID); err != nil {
				return err
			}
			ventaID := apartado.VentaID.String()
			resp.Mensaje = "Apartado liquidado"
			resp.Liquidado = true
			resp.VentaID = &ventaID
			return nil
		}

		resp.Mensaje = "Abono registrado"
		return s.repo.UpdateTx(ctx, tx, apartado)
	})
	if txErr != nil {
		return nil, txErr
	}
	return resp, nil
}

// liquidarTx transitions a fully paid apartado to completado and creates the
// linked sale. Stock was already reserved at creation, so the sale path here
// must not decrement it again.
func (s *apartadoService) liquidarTx(ctx context.Context, tx *gorm.DB, apartado *model.Apartado, usuarioID uuid.UUID) error {
	venta, err := s.ventas.CrearLiquidacionTx(ctx, tx, apartado, usuarioID)
	if err != nil {
		return err
	}
	apartado.Estado = model.ApartadoCompletado
	apartado.VentaID = &venta.ID
	return s.repo.UpdateTx(ctx, tx, apartado)
}

// ── Cancelar ──────────────────────────────────────────────────────────────────
// Restitution and the transition to cancelado share one transaction: the
// estado check is the sole guard against double-restitution, so both must
// commit atomically.

func (s *apartadoService) Cancelar(ctx context.Context, apartadoID uuid.UUID) error {
	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		apartado, err := s.repo.FindForUpdateTx(ctx, tx, apartadoID)
		if err != nil {
			return err
		}
		if apartado.Estado != model.ApartadoPendiente {
			return ErrApartadoTerminal
		}

		for _, it := range apartado.Items {
			ref := apartado.ID
			if err := s.inventario.RestituirStockTx(ctx, tx, it.ProductoID, it.Cantidad,
				fmt.Sprintf("Cancelacion de apartado de %s", apartado.Cliente), &ref); err != nil {
				return err
			}
		}

		apartado.Estado = model.ApartadoCancelado
		return s.repo.UpdateTx(ctx, tx, apartado)
	})
}

// ── EliminarAbono ─────────────────────────────────────────────────────────────
// Administrative correction: deletes one payment and re-derives Anticipo from
// the surviving rows. A completed apartado whose payments drop below the total
// reverts to pendiente — its liquidation sale and caja effects are NOT
// reversed; the orphaned venta id is logged for manual reconciliation.

func (s *apartadoService) EliminarAbono(ctx context.Context, abonoID uuid.UUID) error {
	abono, err := s.repo.FindAbonoByID(ctx, abonoID)
	if err != nil {
		return err
	}

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		apartado, err := s.repo.FindForUpdateTx(ctx, tx, abono.ApartadoID)
		if err != nil {
			return err
		}
		if apartado.Estado == model.ApartadoCancelado {
			return ErrApartadoTerminal
		}

		if err := s.repo.DeleteAbonoTx(ctx, tx, abonoID); err != nil {
			return err
		}

		pagado, err := s.repo.SumAbonosTx(ctx, tx, apartado.ID)
		if err != nil {
			return err
		}

		apartado.Anticipo = pagado
		if apartado.Estado == model.ApartadoCompletado && pagado.LessThan(apartado.Total) {
			apartado.Estado = model.ApartadoPendiente
			if apartado.VentaID != nil {
				log.Warn().
					Str("apartado_id", apartado.ID.String()).
					Str("venta_id", apartado.VentaID.String()).
					Msg("apartado completado revertido a pendiente; la venta vinculada no se revierte")
			}
		}
		return s.repo.UpdateTx(ctx, tx, apartado)
	})
}

// ── Hard-delete paths (terminal states only) ─────────────────────────────────

func (s *apartadoService) EliminarCancelado(ctx context.Context, apartadoID uuid.UUID) error {
	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		apartado, err := s.repo.FindForUpdateTx(ctx, tx, apartadoID)
		if err != nil {
			return err
		}
		if apartado.Estado != model.ApartadoCancelado {
			return fmt.Errorf("%w: solo se eliminan apartados cancelados por esta via", ErrApartadoTerminal)
		}
		return s.repo.DeleteTx(ctx, tx, apartadoID)
	})
}

func (s *apartadoService) EliminarCompletado(ctx context.Context, apartadoID uuid.UUID) error {
	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		apartado, err := s.repo.FindForUpdateTx(ctx, tx, apartadoID)
		if err != nil {
			return err
		}
		if apartado.Estado != model.ApartadoCompletado {
			return fmt.Errorf("%w: solo se eliminan apartados completados por esta via", ErrApartadoTerminal)
		}
		// Children before parent; the linked sale goes last
		ventaID := apartado.VentaID
		if err := s.repo.DeleteTx(ctx, tx, apartadoID); err != nil {
			return err
		}
		if ventaID != nil {
			return s.ventaRepo.DeleteTx(ctx, tx, *ventaID)
		}
		return nil
	})
}

// EliminarVentaVinculada deletes only the liquidation sale of a completed
// apartado, detaching the apartado from it.
func (s *apartadoService) EliminarVentaVinculada(ctx context.Context, apartadoID uuid.UUID) error {
	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		apartado, err := s.repo.FindForUpdateTx(ctx, tx, apartadoID)
		if err != nil {
			return err
		}
		if apartado.VentaID == nil {
			return gorm.ErrRecordNotFound
		}
		ventaID := *apartado.VentaID
		apartado.VentaID = nil
		if err := s.repo.UpdateTx(ctx, tx, apartado); err != nil {
			return err
		}
		return s.ventaRepo.DeleteTx(ctx, tx, ventaID)
	})
}

// ── Queries ───────────────────────────────────────────────────────────────────

func (s *apartadoService) Obtener(ctx context.Context, id uuid.UUID) (*dto.ApartadoResponse, error) {
	apartado, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return apartadoToResponse(apartado), nil
}

func (s *apartadoService) Listar(ctx context.Context, filter dto.ApartadoFilter) (*dto.ApartadoListResponse, error) {
	apartados, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ApartadoResponse, 0, len(apartados))
	for i := range apartados {
		data = append(data, *apartadoToResponse(&apartados[i]))
	}
	return &dto.ApartadoListResponse{
		Data:  data,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func apartadoToResponse(a *model.Apartado) *dto.ApartadoResponse {
	items := make([]dto.ItemApartadoResponse, 0, len(a.Items))
	for _, it := range a.Items {
		nombre := ""
		if it.Producto != nil {
			nombre = it.Producto.Nombre
		}
		items = append(items, dto.ItemApartadoResponse{
			ProductoID:     it.ProductoID.String(),
			Producto:       nombre,
			Cantidad:       it.Cantidad,
			PrecioUnitario: it.PrecioUnitario,
		})
	}
	abonos := make([]dto.AbonoResponse, 0, len(a.Abonos))
	for _, ab := range a.Abonos {
		abonos = append(abonos, dto.AbonoResponse{
			ID:        ab.ID.String(),
			Monto:     ab.Monto,
			UsuarioID: ab.UsuarioID.String(),
			CreatedAt: ab.CreatedAt.Format(time.RFC3339),
		})
	}
	var ventaID *string
	if a.VentaID != nil {
		v := a.VentaID.String()
		ventaID = &v
	}
	return &dto.ApartadoResponse{
		ID:         a.ID.String(),
		SucursalID: a.SucursalID.String(),
		Cliente:    a.Cliente,
		Items:      items,
		Abonos:     abonos,
		Total:      a.Total,
		Anticipo:   a.Anticipo,
		Saldo:      a.Total.Sub(a.Anticipo),
		Estado:     a.Estado,
		Notas:      a.Notas,
		VentaID:    ventaID,
		CreatedAt:  a.CreatedAt.Format(time.RFC3339),
	}
}
