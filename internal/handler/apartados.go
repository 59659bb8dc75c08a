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

type ApartadosHandler struct {
	svc  service.ApartadoService
	auth service.AuthService
}

func NewApartadosHandler(svc service.ApartadoService, auth service.AuthService) *ApartadosHandler {
	return &ApartadosHandler{svc: svc, auth: auth}
}

// Crear godoc
// @Summary Crea un apartado (reserva con anticipo)
// @Tags apartados
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CrearApartadoRequest true "Detalle del apartado"
// @Success 201 {object} dto.ApartadoResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/apartados [post]
func (h *ApartadosHandler) Crear(c *gin.Context) {
	var req dto.CrearApartadoRequest
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

	resp, err := h.svc.Crear(c.Request.Context(), usuarioID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Obtener godoc
// @Summary Detalle de un apartado con items y abonos
// @Tags apartados
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del apartado"
// @Success 200 {object} dto.ApartadoResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/apartados/{id} [get]
func (h *ApartadosHandler) Obtener(c *gin.Context) {
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
// @Summary Lista apartados por sucursal y estado
// @Tags apartados
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.ApartadoListResponse
// @Router /v1/apartados [get]
func (h *ApartadosHandler) Listar(c *gin.Context) {
	var filter dto.ApartadoFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Parametros invalidos: "+err.Error()))
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Abonar godoc
// @Summary Registra un abono; liquida el apartado si completa el total
// @Tags apartados
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del apartado"
// @Param body body dto.AbonarApartadoRequest true "Monto del abono"
// @Success 200 {object} dto.AbonoResultResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/apartados/{id} [patch]
func (h *ApartadosHandler) Abonar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	var req dto.AbonarApartadoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Abonar(c.Request.Context(), usuarioID, id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Eliminar dispatches DELETE /v1/apartados/{id} on the modo query param:
//
//	(empty)             cancel a pending layaway and restock its items
//	eliminar_cancelado  hard-delete an already cancelled layaway
//	eliminar_completado hard-delete a liquidated layaway and its linked sale
//	eliminar_venta      detach and delete only the linked sale
//
// Eliminar godoc
// @Summary Cancela o elimina un apartado segun el modo
// @Tags apartados
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del apartado"
// @Param modo query string false "Vacio (cancelar) | eliminar_cancelado | eliminar_completado | eliminar_venta"
// @Success 204
// @Failure 409 {object} apierror.APIError
// @Router /v1/apartados/{id} [delete]
func (h *ApartadosHandler) Eliminar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}

	ctx := c.Request.Context()
	switch modo := c.Query("modo"); modo {
	case "":
		err = h.svc.Cancelar(ctx, id)
	case "eliminar_cancelado":
		err = h.svc.EliminarCancelado(ctx, id)
	case "eliminar_completado":
		err = h.svc.EliminarCompletado(ctx, id)
	case "eliminar_venta":
		err = h.svc.EliminarVentaVinculada(ctx, id)
	default:
		c.JSON(http.StatusBadRequest, apierror.New("modo desconocido: "+modo))
		return
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// EliminarAbono godoc
// @Summary Elimina un abono registrado por error y recalcula el anticipo
// @Tags apartados
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del abono"
// @Success 204
// @Failure 404 {object} apierror.APIError
// @Router /v1/abonos/{id} [delete]
func (h *ApartadosHandler) EliminarAbono(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	if err := h.svc.EliminarAbono(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
