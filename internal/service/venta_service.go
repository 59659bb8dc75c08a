package service

import (
	"context"
	"fmt"
	"time"

	"boutiquepos/internal/dto"
	"boutiquepos/internal/model"
	"boutiquepos/internal/repository"
	"boutiquepos/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type VentaService interface {
	Registrar(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error)
	Listar(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error)
	CambiarVisibilidad(ctx context.Context, id uuid.UUID, visible bool) error

	// CrearLiquidacionTx produces the sale a liquidated apartado links to,
	// inside the caller's transaction: line items at the apartado's captured
	// prices, no stock decrement (stock was reserved at creation), and the
	// branch's open session rolled forward.
	CrearLiquidacionTx(ctx context.Context, tx *gorm.DB, apartado *model.Apartado, usuarioID uuid.UUID) (*model.Venta, error)
}

type ventaService struct {
	repo       repository.VentaRepository
	inventario InventarioService
	caja       CajaService
	dispatcher *worker.Dispatcher
}

func NewVentaService(
	repo repository.VentaRepository,
	inventario InventarioService,
	caja CajaService,
	dispatcher *worker.Dispatcher,
) VentaService {
	return &ventaService{
		repo:       repo,
		inventario: inventario,
		caja:       caja,
		dispatcher: dispatcher,
	}
}

// ── Registrar ─────────────────────────────────────────────────────────────────
// One ACID transaction:
//   1. For each item: lock the product row, verify stock and price
//   2. Build venta + items with the prices read under lock
//   3. Decrement stock per line (floor-checked)
//   4. Roll the branch's open caja forward and append its SALE movement
// A single bad line aborts the whole unit of work — no partial sale is ever
// observable. Afterwards a ticket job is dispatched best-effort.

func (s *ventaService) Registrar(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error) {
	sucursalID, err := uuid.Parse(req.SucursalID)
	if err != nil {
		return nil, fmt.Errorf("sucursal_id invalido: %w", err)
	}

	items := make([]itemPedido, 0, len(req.Items))
	for _, it := range req.Items {
		pid, err := uuid.Parse(it.ProductoID)
		if err != nil {
			return nil, fmt.Errorf("producto_id invalido: %w", err)
		}
		items = append(items, itemPedido{productoID: pid, cantidad: it.Cantidad})
	}

	var venta model.Venta
	nombres := map[uuid.UUID]string{}
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		venta = model.Venta{
			SucursalID: sucursalID,
			UsuarioID:  usuarioID,
			Cliente:    req.Cliente,
			MetodoPago: req.MetodoPago,
			Notas:      req.Notas,
			Visible:    true,
		}

		total := decimal.Zero
		for _, it := range items {
			p, err := s.inventario.ReservarStockTx(ctx, tx, it.productoID, it.cantidad, "venta", "Venta", nil)
			if err != nil {
				return err
			}
			nombres[p.ID] = p.Nombre

			subtotal := p.Precio.Mul(decimal.NewFromInt(int64(it.cantidad)))
			total = total.Add(subtotal)
			venta.Items = append(venta.Items, model.VentaItem{
				ProductoID:     it.productoID,
				Cantidad:       it.cantidad,
				PrecioUnitario: p.Precio,
				Subtotal:       subtotal,
			})
		}
		venta.Total = total

		if err := s.repo.CreateTx(ctx, tx, &venta); err != nil {
			return err
		}

		return s.caja.AplicarVentaTx(ctx, tx, sucursalID, &venta, false)
	})
	if txErr != nil {
		return nil, txErr
	}

	// Async ticket job — best effort, never affects the committed sale
	if s.dispatcher != nil {
		payload := worker.TicketJobPayload{VentaID: venta.ID.String()}
		if req.ClienteEmail != nil {
			payload.ClienteEmail = *req.ClienteEmail
		}
		if err := s.dispatcher.EnqueueTicket(ctx, payload); err != nil {
			log.Warn().Err(err).Str("venta_id", venta.ID.String()).Msg("no se pudo encolar el ticket")
		}
	}

	resp := ventaToResponse(&venta)
	for i := range resp.Items {
		if venta.Items[i].Producto == nil {
			resp.Items[i].Producto = nombres[venta.Items[i].ProductoID]
		}
	}
	return resp, nil
}

type itemPedido struct {
	productoID uuid.UUID
	cantidad   int
}

// ── CrearLiquidacionTx ────────────────────────────────────────────────────────

func (s *ventaService) CrearLiquidacionTx(ctx context.Context, tx *gorm.DB, apartado *model.Apartado, usuarioID uuid.UUID) (*model.Venta, error) {
	venta := &model.Venta{
		SucursalID: apartado.SucursalID,
		UsuarioID:  usuarioID,
		Cliente:    &apartado.Cliente,
		MetodoPago: model.MetodoLiquidacion,
		Notas:      apartado.Notas,
		Total:      apartado.Total,
		Visible:    true,
	}
	for _, it := range apartado.Items {
		venta.Items = append(venta.Items, model.VentaItem{
			ProductoID:     it.ProductoID,
			Cantidad:       it.Cantidad,
			PrecioUnitario: it.PrecioUnitario,
			Subtotal:       it.PrecioUnitario.Mul(decimal.NewFromInt(int64(it.Cantidad))),
		})
	}

	if err := s.repo.CreateTx(ctx, tx, venta); err != nil {
		return nil, err
	}
	if err := s.caja.AplicarVentaTx(ctx, tx, apartado.SucursalID, venta, true); err != nil {
		return nil, err
	}
	return venta, nil
}

// ── Queries / visibility ──────────────────────────────────────────────────────

func (s *ventaService) Obtener(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error) {
	venta, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ventaToResponse(venta), nil
}

func (s *ventaService) Listar(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	ventas, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.VentaResponse, 0, len(ventas))
	for i := range ventas {
		data = append(data, *ventaToResponse(&ventas[i]))
	}
	return &dto.VentaListResponse{
		Data:  data,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *ventaService) CambiarVisibilidad(ctx context.Context, id uuid.UUID, visible bool) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.repo.UpdateVisible(ctx, id, visible)
}

func ventaToResponse(v *model.Venta) *dto.VentaResponse {
	items := make([]dto.ItemVentaResponse, 0, len(v.Items))
	for _, item := range v.Items {
		nombre := ""
		if item.Producto != nil {
			nombre = item.Producto.Nombre
		}
		items = append(items, dto.ItemVentaResponse{
			ProductoID:     item.ProductoID.String(),
			Producto:       nombre,
			Cantidad:       item.Cantidad,
			PrecioUnitario: item.PrecioUnitario,
			Subtotal:       item.Subtotal,
		})
	}
	return &dto.VentaResponse{
		ID:         v.ID.String(),
		SucursalID: v.SucursalID.String(),
		UsuarioID:  v.UsuarioID.String(),
		Cliente:    v.Cliente,
		MetodoPago: v.MetodoPago,
		Notas:      v.Notas,
		Items:      items,
		Total:      v.Total,
		Visible:    v.Visible,
		CreatedAt:  v.CreatedAt.Format(time.RFC3339),
	}
}
