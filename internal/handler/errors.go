package handler

import (
	"errors"
	"net/http"
	"strings"

	"boutiquepos/internal/apierror"
	"boutiquepos/internal/repository"
	"boutiquepos/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// respondServiceError translates service-layer failures into HTTP responses:
// business conflicts → 409, missing rows → 404, serialization/deadlock
// failures → 503 (the client can safely resubmit), everything else → 500
// through the error middleware so the detail never leaks.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, apierror.New("Recurso no encontrado"))
	case errors.Is(err, service.ErrProductoNoVendible),
		errors.Is(err, repository.ErrStockNegativo),
		errors.Is(err, service.ErrCajaYaAbierta),
		errors.Is(err, service.ErrCajaNoAbierta),
		errors.Is(err, service.ErrCajaCerrada),
		errors.Is(err, service.ErrApartadoTerminal):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	case errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err):
		// Unique-index backstops (two racing caja opens, duplicate username):
		// the loser gets the same conflict answer as the sequential check.
		c.JSON(http.StatusConflict, apierror.New("El registro ya existe"))
	case errors.Is(err, service.ErrMontoInvalido),
		errors.Is(err, service.ErrSucursalRequerida):
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	case isRetryableSQLState(err):
		c.JSON(http.StatusServiceUnavailable, apierror.New("Conflicto transitorio, reintente la operacion"))
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("Error interno del servidor"))
	}
}

// Postgres serialization_failure (40001) and deadlock_detected (40P01).
func isRetryableSQLState(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "SQLSTATE 40001") || strings.Contains(msg, "SQLSTATE 40P01")
}

// Postgres unique_violation (23505), for errors that reach the handler without
// going through gorm's translator (raw Exec paths).
func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "SQLSTATE 23505")
}
