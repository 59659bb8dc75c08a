package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"boutiquepos/internal/dto"
	"boutiquepos/internal/model"
	"boutiquepos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CajaService interface {
	Abrir(ctx context.Context, usuarioID uuid.UUID, sucursalID uuid.UUID, montoInicial decimal.Decimal) (*dto.SesionCajaResponse, error)
	AjustarApertura(ctx context.Context, sesionID uuid.UUID, nuevoMonto decimal.Decimal, usuarioID uuid.UUID) (*dto.SesionCajaResponse, error)
	Cerrar(ctx context.Context, sesionID uuid.UUID, montoCierre decimal.Decimal, usuarioID uuid.UUID) (*dto.SesionCajaResponse, error)
	ObtenerAbierta(ctx context.Context, sucursalID uuid.UUID) (*dto.SesionCajaResponse, error)
	Reporte(ctx context.Context, sesionID uuid.UUID) (*dto.ReporteCajaResponse, error)
	Historial(ctx context.Context, filter dto.CajaFilter) (*dto.CajaHistorialResponse, error)

	// AplicarVentaTx is called by the sale and liquidation paths inside THEIR
	// transaction: it locks the branch's open session, rolls the running
	// totals forward and appends the SALE movement. Fails with ErrCajaNoAbierta
	// when the branch has no open session, aborting the caller's transaction.
	AplicarVentaTx(ctx context.Context, tx *gorm.DB, sucursalID uuid.UUID, venta *model.Venta, esLiquidacion bool) error
}

type cajaService struct {
	repo repository.CajaRepository
}

func NewCajaService(repo repository.CajaRepository) CajaService {
	return &cajaService{repo: repo}
}

// ── Abrir ─────────────────────────────────────────────────────────────────────
// The duplicate-open guard runs inside the same transaction as the insert; the
// partial unique index on (sucursal_id) WHERE estado='abierta' closes the
// remaining TOCTOU window between two simultaneous opens.

func (s *cajaService) Abrir(ctx context.Context, usuarioID uuid.UUID, sucursalID uuid.UUID, montoInicial decimal.Decimal) (*dto.SesionCajaResponse, error) {
	if montoInicial.IsNegative() {
		return nil, fmt.Errorf("%w: el monto inicial no puede ser negativo", ErrMontoInvalido)
	}

	var sesion model.SesionCaja
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		_, err := s.repo.FindSesionAbiertaForUpdateTx(ctx, tx, sucursalID)
		if err == nil {
			return ErrCajaYaAbierta
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		sesion = model.SesionCaja{
			SucursalID:   sucursalID,
			UsuarioID:    usuarioID,
			MontoInicial: montoInicial,
			MontoCierre:  montoInicial,
			Estado:       model.CajaAbierta,
			OpenedAt:     time.Now(),
		}
		if err := s.repo.CreateSesionTx(ctx, tx, &sesion); err != nil {
			return err
		}

		return s.repo.CreateMovimientoTx(ctx, tx, &model.MovimientoCaja{
			SesionCajaID: sesion.ID,
			Tipo:         model.MovApertura,
			Monto:        montoInicial,
			Descripcion:  "Apertura de caja",
			UsuarioID:    usuarioID,
		})
	})
	if txErr != nil {
		return nil, txErr
	}
	return sesionToResponse(&sesion), nil
}

// ── AplicarVentaTx ────────────────────────────────────────────────────────────

func (s *cajaService) AplicarVentaTx(ctx context.Context, tx *gorm.DB, sucursalID uuid.UUID, venta *model.Venta, esLiquidacion bool) error {
	sesion, err := s.repo.FindSesionAbiertaForUpdateTx(ctx, tx, sucursalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCajaNoAbierta
		}
		return err
	}

	sesion.TotalVentas = sesion.TotalVentas.Add(venta.Total)
	sesion.TotalTransacciones++
	if esLiquidacion {
		sesion.TotalApartados = sesion.TotalApartados.Add(venta.Total)
	}
	// Closing balance is a live projection while the session is open
	sesion.MontoCierre = sesion.MontoInicial.Add(sesion.TotalVentas)

	if err := s.repo.UpdateSesionTx(ctx, tx, sesion); err != nil {
		return err
	}

	descripcion := "Venta"
	if esLiquidacion {
		descripcion = "Liquidacion de apartado"
	}
	return s.repo.CreateMovimientoTx(ctx, tx, &model.MovimientoCaja{
		SesionCajaID: sesion.ID,
		Tipo:         model.MovVenta,
		Monto:        venta.Total,
		Descripcion:  descripcion,
		ReferenciaID: &venta.ID,
		UsuarioID:    venta.UsuarioID,
	})
}

// ── AjustarApertura ───────────────────────────────────────────────────────────

func (s *cajaService) AjustarApertura(ctx context.Context, sesionID uuid.UUID, nuevoMonto decimal.Decimal, usuarioID uuid.UUID) (*dto.SesionCajaResponse, error) {
	if nuevoMonto.IsNegative() {
		return nil, fmt.Errorf("%w: el monto inicial no puede ser negativo", ErrMontoInvalido)
	}

	var sesion *model.SesionCaja
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		sesion, err = s.repo.FindSesionForUpdateTx(ctx, tx, sesionID)
		if err != nil {
			return err
		}
		if sesion.Estado != model.CajaAbierta {
			return ErrCajaCerrada
		}

		delta := nuevoMonto.Sub(sesion.MontoInicial)
		sesion.MontoInicial = nuevoMonto
		sesion.MontoCierre = sesion.MontoCierre.Add(delta)
		if err := s.repo.UpdateSesionTx(ctx, tx, sesion); err != nil {
			return err
		}

		return s.repo.CreateMovimientoTx(ctx, tx, &model.MovimientoCaja{
			SesionCajaID: sesion.ID,
			Tipo:         model.MovAjuste,
			Monto:        delta,
			Descripcion:  "Ajuste de monto inicial",
			UsuarioID:    usuarioID,
		})
	})
	if txErr != nil {
		return nil, txErr
	}
	return sesionToResponse(sesion), nil
}

// ── Cerrar ────────────────────────────────────────────────────────────────────

func (s *cajaService) Cerrar(ctx context.Context, sesionID uuid.UUID, montoCierre decimal.Decimal, usuarioID uuid.UUID) (*dto.SesionCajaResponse, error) {
	var sesion *model.SesionCaja
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		sesion, err = s.repo.FindSesionForUpdateTx(ctx, tx, sesionID)
		if err != nil {
			return err
		}
		if sesion.Estado != model.CajaAbierta {
			return ErrCajaCerrada
		}

		now := time.Now()
		sesion.Estado = model.CajaCerrada
		sesion.MontoCierre = montoCierre
		sesion.ClosedAt = &now
		if err := s.repo.UpdateSesionTx(ctx, tx, sesion); err != nil {
			return err
		}

		return s.repo.CreateMovimientoTx(ctx, tx, &model.MovimientoCaja{
			SesionCajaID: sesion.ID,
			Tipo:         model.MovCierre,
			Monto:        montoCierre,
			Descripcion:  "Cierre de caja",
			UsuarioID:    usuarioID,
		})
	})
	if txErr != nil {
		return nil, txErr
	}
	return sesionToResponse(sesion), nil
}

// ── Queries ───────────────────────────────────────────────────────────────────

// ObtenerAbierta returns the branch's current open session, or nil when there
// is none (the endpoint answers {session: null} rather than 404).
func (s *cajaService) ObtenerAbierta(ctx context.Context, sucursalID uuid.UUID) (*dto.SesionCajaResponse, error) {
	sesion, err := s.repo.FindSesionAbierta(ctx, sucursalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return sesionToResponse(sesion), nil
}

func (s *cajaService) Reporte(ctx context.Context, sesionID uuid.UUID) (*dto.ReporteCajaResponse, error) {
	sesion, err := s.repo.FindSesionByID(ctx, sesionID)
	if err != nil {
		return nil, err
	}
	movs, err := s.repo.ListMovimientos(ctx, sesionID)
	if err != nil {
		return nil, err
	}

	movimientos := make([]dto.MovimientoCajaResponse, 0, len(movs))
	for _, m := range movs {
		var ref *string
		if m.ReferenciaID != nil {
			r := m.ReferenciaID.String()
			ref = &r
		}
		movimientos = append(movimientos, dto.MovimientoCajaResponse{
			ID:           m.ID.String(),
			Tipo:         m.Tipo,
			Monto:        m.Monto,
			Descripcion:  m.Descripcion,
			ReferenciaID: ref,
			UsuarioID:    m.UsuarioID.String(),
			CreatedAt:    m.CreatedAt.Format(time.RFC3339),
		})
	}

	return &dto.ReporteCajaResponse{
		Sesion:      *sesionToResponse(sesion),
		Movimientos: movimientos,
	}, nil
}

func (s *cajaService) Historial(ctx context.Context, filter dto.CajaFilter) (*dto.CajaHistorialResponse, error) {
	sesiones, total, err := s.repo.ListSesiones(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.SesionCajaResponse, 0, len(sesiones))
	for i := range sesiones {
		data = append(data, *sesionToResponse(&sesiones[i]))
	}
	return &dto.CajaHistorialResponse{
		Data:  data,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func sesionToResponse(s *model.SesionCaja) *dto.SesionCajaResponse {
	resp := &dto.SesionCajaResponse{
		ID:                 s.ID.String(),
		SucursalID:         s.SucursalID.String(),
		UsuarioID:          s.UsuarioID.String(),
		MontoInicial:       s.MontoInicial,
		TotalVentas:        s.TotalVentas,
		TotalTransacciones: s.TotalTransacciones,
		TotalApartados:     s.TotalApartados,
		MontoCierre:        s.MontoCierre,
		Estado:             s.Estado,
		OpenedAt:           s.OpenedAt.Format(time.RFC3339),
	}
	if s.ClosedAt != nil {
		t := s.ClosedAt.Format(time.RFC3339)
		resp.ClosedAt = &t
	}
	return resp
}
