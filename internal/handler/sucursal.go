package handler

import (
	"net/http"

	"boutiquepos/internal/apierror"
	"boutiquepos/internal/middleware"
	"boutiquepos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// resolverSucursal picks the branch an operation targets: the explicit
// sucursal_id from the request when present, otherwise the operator's default
// branch re-read from the database. Writes the error response and returns
// false when neither resolves.
func resolverSucursal(c *gin.Context, auth service.AuthService, explicit string) (uuid.UUID, bool) {
	if explicit != "" {
		id, err := uuid.Parse(explicit)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("sucursal_id inválido"))
			return uuid.Nil, false
		}
		return id, true
	}

	claims := middleware.GetClaims(c)
	usuarioID, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Token invalido"))
		return uuid.Nil, false
	}
	id, err := auth.SucursalPorDefecto(c.Request.Context(), usuarioID)
	if err != nil {
		respondServiceError(c, err)
		return uuid.Nil, false
	}
	return id, true
}
