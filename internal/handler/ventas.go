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

type VentasHandler struct {
	svc  service.VentaService
	auth service.AuthService
}

func NewVentasHandler(svc service.VentaService, auth service.AuthService) *VentasHandler {
	return &VentasHandler{svc: svc, auth: auth}
}

// Registrar godoc
// @Summary Registra una venta (cobro en caja)
// @Tags ventas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.RegistrarVentaRequest true "Detalle de la venta"
// @Success 201 {object} dto.VentaResponse
// @Failure 409 {object} apierror.APIError
// @Failure 422 {object} apierror.APIError
// @Router /v1/ventas [post]
func (h *VentasHandler) Registrar(c *gin.Context) {
	var req dto.RegistrarVentaRequest
	if !bindAndValidate(c, &req) {
		return
	}

	sucursalID, ok := resolverSucursal(c, h.auth, req.SucursalID)
	if !ok {
		return
	}
	req.SucursalID = sucursalID.String()

	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Registrar(c.Request.Context(), usuarioID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Obtener godoc
// @Summary Obtiene una venta por ID
// @Tags ventas
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de la venta"
// @Success 200 {object} dto.VentaResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/ventas/{id} [get]
func (h *VentasHandler) Obtener(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Listar godoc
// @Summary Lista ventas por sucursal y fecha (hoy por defecto)
// @Tags ventas
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.VentaListResponse
// @Router /v1/ventas [get]
func (h *VentasHandler) Listar(c *gin.Context) {
	var filter dto.VentaFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Parametros invalidos: "+err.Error()))
		return
	}
	if err := validate.Struct(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Parametros invalidos: "+err.Error()))
		return
	}

	sucursalID, ok := resolverSucursal(c, h.auth, filter.SucursalID)
	if !ok {
		return
	}
	filter.SucursalID = sucursalID.String()

	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CambiarVisibilidad godoc
// @Summary Oculta o muestra una venta en las vistas de historial
// @Tags ventas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de la venta"
// @Param body body dto.VisibilidadVentaRequest true "Nueva visibilidad"
// @Success 204
// @Failure 404 {object} apierror.APIError
// @Router /v1/ventas/{id}/visibilidad [patch]
func (h *VentasHandler) CambiarVisibilidad(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	var req dto.VisibilidadVentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.CambiarVisibilidad(c.Request.Context(), id, *req.Visible); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
