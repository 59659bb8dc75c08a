package handler

import (
	"net/http"

	"boutiquepos/internal/apierror"
	"boutiquepos/internal/dto"
	"boutiquepos/internal/middleware"
	"boutiquepos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CajaHandler struct {
	svc  service.CajaService
	auth service.AuthService
}

func NewCajaHandler(svc service.CajaService, auth service.AuthService) *CajaHandler {
	return &CajaHandler{svc: svc, auth: auth}
}

// Abrir godoc
// @Summary Abre una nueva sesion de caja en la sucursal
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.AbrirCajaRequest true "Datos de apertura"
// @Success 201 {object} dto.SesionCajaResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/caja/abrir [post]
func (h *CajaHandler) Abrir(c *gin.Context) {
	var req dto.AbrirCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	sucursalID, ok := resolverSucursal(c, h.auth, req.SucursalID)
	if !ok {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Abrir(c.Request.Context(), usuarioID, sucursalID, req.MontoInicial)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ObtenerActiva godoc
// @Summary Devuelve la sesion abierta de la sucursal; sesion null si no hay
// @Tags caja
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.SesionCajaActivaResponse
// @Router /v1/caja/activa [get]
func (h *CajaHandler) ObtenerActiva(c *gin.Context) {
	sucursalID, ok := resolverSucursal(c, h.auth, c.Query("sucursal_id"))
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerAbierta(c.Request.Context(), sucursalID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	// No open session is an ordinary answer, not a 404.
	c.JSON(http.StatusOK, dto.SesionCajaActivaResponse{Sesion: resp})
}

// Actualizar dispatches the mutually exclusive PATCH semantics:
// monto_inicial adjusts the opening balance of an open session,
// monto_cierre closes the session with the declared drawer count.
//
// Actualizar godoc
// @Summary Ajusta la apertura o cierra una sesion de caja
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de sesion"
// @Param body body dto.ActualizarCajaRequest true "Exactamente uno de monto_inicial / monto_cierre"
// @Success 200 {object} dto.SesionCajaResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/caja/{id} [patch]
func (h *CajaHandler) Actualizar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	var req dto.ActualizarCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if (req.MontoInicial == nil) == (req.MontoCierre == nil) {
		c.JSON(http.StatusBadRequest, apierror.New("Debe enviar exactamente uno de monto_inicial o monto_cierre"))
		return
	}

	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	var resp *dto.SesionCajaResponse
	if req.MontoInicial != nil {
		resp, err = h.svc.AjustarApertura(c.Request.Context(), id, *req.MontoInicial, usuarioID)
	} else {
		resp, err = h.svc.Cerrar(c.Request.Context(), id, *req.MontoCierre, usuarioID)
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Reporte godoc
// @Summary Reporte de una sesion de caja con sus movimientos
// @Tags caja
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de sesion"
// @Success 200 {object} dto.ReporteCajaResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/caja/{id}/reporte [get]
func (h *CajaHandler) Reporte(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.Reporte(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Historial godoc
// @Summary Historial paginado de sesiones de caja
// @Tags caja
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.CajaHistorialResponse
// @Router /v1/caja/historial [get]
func (h *CajaHandler) Historial(c *gin.Context) {
	var filter dto.CajaFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Parametros invalidos: "+err.Error()))
		return
	}
	resp, err := h.svc.Historial(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
