package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"boutiquepos/internal/dto"
	"boutiquepos/internal/handler"
	"boutiquepos/internal/middleware"
	"boutiquepos/internal/model"
	"boutiquepos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── Stub VentaService ────────────────────────────────────────────────────────

type stubVentaService struct {
	listar func(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error)
}

var _ service.VentaService = (*stubVentaService)(nil)

func (s *stubVentaService) Listar(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error) {
	return s.listar(ctx, filter)
}

func (s *stubVentaService) Registrar(context.Context, uuid.UUID, dto.RegistrarVentaRequest) (*dto.VentaResponse, error) {
	return nil, errors.New("no implementado")
}

func (s *stubVentaService) Obtener(context.Context, uuid.UUID) (*dto.VentaResponse, error) {
	return nil, errors.New("no implementado")
}

func (s *stubVentaService) CambiarVisibilidad(context.Context, uuid.UUID, bool) error {
	return errors.New("no implementado")
}

func (s *stubVentaService) CrearLiquidacionTx(context.Context, *gorm.DB, *model.Apartado, uuid.UUID) (*model.Venta, error) {
	return nil, errors.New("no implementado")
}

func newVentasRouter(svc service.VentaService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ClaimsKey, &middleware.JWTClaims{
			UserID:   uuid.New().String(),
			Username: "cajero.pruebas",
			Rol:      "admin",
		})
	})
	h := handler.NewVentasHandler(svc, nil)
	r.GET("/v1/ventas", h.Listar)
	return r
}

// ── Tests ────────────────────────────────────────────────────────────────────

// A fecha that is not YYYY-MM-DD must be rejected at the boundary instead of
// silently widening the listing to every date.
func TestListarVentasFechaInvalida(t *testing.T) {
	llamado := false
	svc := &stubVentaService{
		listar: func(_ context.Context, _ dto.VentaFilter) (*dto.VentaListResponse, error) {
			llamado = true
			return &dto.VentaListResponse{}, nil
		},
	}
	r := newVentasRouter(svc)

	for _, fecha := range []string{"hoy", "2026-13-40", "31/08/2026"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/ventas?sucursal_id="+uuid.New().String()+"&fecha="+fecha, nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, "fecha %q", fecha)
	}
	assert.False(t, llamado, "una fecha invalida no debe llegar al servicio")
}

func TestListarVentasFechaValida(t *testing.T) {
	var recibido dto.VentaFilter
	svc := &stubVentaService{
		listar: func(_ context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error) {
			recibido = filter
			return &dto.VentaListResponse{Data: []dto.VentaResponse{}, Page: filter.Page, Limit: filter.Limit}, nil
		},
	}
	r := newVentasRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/ventas?sucursal_id="+uuid.New().String()+"&fecha=2026-08-31", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2026-08-31", recibido.Fecha)
}
