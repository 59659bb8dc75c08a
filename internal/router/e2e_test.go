//go:build integration

package router_test

// End-to-end tests against real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./internal/router/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"boutiquepos/internal/config"
	"boutiquepos/internal/infra"
	"boutiquepos/internal/model"
	"boutiquepos/internal/router"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// ── Test Suite Setup ─────────────────────────────────────────────────────────

type testEnv struct {
	server     *httptest.Server
	db         *gorm.DB
	token      string // admin JWT
	sucursalID uuid.UUID
}

func (env *testEnv) seedProducto(t *testing.T, nombre string, precio float64, stock int) uuid.UUID {
	t.Helper()
	p := &model.Producto{
		Nombre:      nombre,
		Categoria:   "ropa",
		Precio:      decimal.NewFromFloat(precio),
		StockActual: stock,
		SucursalID:  env.sucursalID,
		Activo:      true,
	}
	require.NoError(t, env.db.Create(p).Error)
	return p.ID
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	// Start Postgres container
	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("boutiquepos_test"),
		tcPostgres.WithUsername("boutiquepos"),
		tcPostgres.WithPassword("boutiquepos"),
		testcontainers.WithWaitStrategy(
			tcPostgres.BasicWaitStrategies()...,
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// Start Redis container
	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:               8000,
		Env:                "test",
		JWTSecret:          "test-secret-key",
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
		DatabaseURL:        pgURL,
		RedisURL:           rdURL,
		WorkerPoolSize:     1,
		NombreNegocio:      "Boutique E2E",
		PDFStoragePath:     t.TempDir(),
	}

	// Connect DB (migrations run on open) + Redis
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)
	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	// Seed branch + admin user
	sucursal := &model.Sucursal{Nombre: "Casa Central", Activa: true}
	require.NoError(t, db.Create(sucursal).Error)

	hash, err := bcrypt.GenerateFromPassword([]byte("boutiquepos2026"), bcrypt.MinCost)
	require.NoError(t, err)
	admin := &model.Usuario{
		Username:     "admin.e2e",
		Nombre:       "Admin E2E",
		PasswordHash: string(hash),
		Rol:          "administrador",
		SucursalID:   &sucursal.ID,
		Activo:       true,
	}
	require.NoError(t, db.Create(admin).Error)

	r, _ := router.New(cfg, db, rdb)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	loginResp := do(t, srv, "POST", "/v1/auth/login",
		jsonBody(t, map[string]string{"username": "admin.e2e", "password": "boutiquepos2026"}),
		"",
	)
	require.Equal(t, http.StatusOK, loginResp.StatusCode)
	var loginBody struct {
		AccessToken string `json:"access_token"`
	}
	decodeJSON(t, loginResp, &loginBody)
	require.NotEmpty(t, loginBody.AccessToken)

	return &testEnv{
		server:     srv,
		db:         db,
		token:      loginBody.AccessToken,
		sucursalID: sucursal.ID,
	}
}

// ── Tests ────────────────────────────────────────────────────────────────────

// Full sale cycle: open caja → sale → stock decremented → session rolled forward → close
func TestE2E_CicloVentaCompleto(t *testing.T) {
	env := setupTestEnv(t)

	prodID := env.seedProducto(t, "Vestido midi", 450, 20)

	// 0. No open session yet: the register screen gets a null sesion, not an error
	sinSesionResp := do(t, env.server, "GET", "/v1/caja/activa?sucursal_id="+env.sucursalID.String(), nil, env.token)
	require.Equal(t, http.StatusOK, sinSesionResp.StatusCode)
	var sinSesion struct {
		Sesion json.RawMessage `json:"sesion"`
	}
	decodeJSON(t, sinSesionResp, &sinSesion)
	assert.Equal(t, "null", string(sinSesion.Sesion))

	// 1. Open caja
	cajaResp := do(t, env.server, "POST", "/v1/caja/abrir",
		jsonBody(t, map[string]any{"sucursal_id": env.sucursalID.String(), "monto_inicial": 1000}),
		env.token,
	)
	require.Equal(t, http.StatusCreated, cajaResp.StatusCode)
	var caja struct {
		ID string `json:"id"`
	}
	decodeJSON(t, cajaResp, &caja)

	// 2. Register sale
	ventaResp := do(t, env.server, "POST", "/v1/ventas",
		jsonBody(t, map[string]any{
			"sucursal_id": env.sucursalID.String(),
			"metodo_pago": "efectivo",
			"items":       []map[string]any{{"producto_id": prodID.String(), "cantidad": 2}},
		}),
		env.token,
	)
	require.Equal(t, http.StatusCreated, ventaResp.StatusCode)
	var venta struct {
		ID    string `json:"id"`
		Total string `json:"total"`
	}
	decodeJSON(t, ventaResp, &venta)
	assert.Equal(t, "900", venta.Total)

	// 3. Stock decremented
	prodResp := do(t, env.server, "GET", "/v1/productos/"+prodID.String(), nil, env.token)
	require.Equal(t, http.StatusOK, prodResp.StatusCode)
	var prod struct {
		StockActual int `json:"stock_actual"`
	}
	decodeJSON(t, prodResp, &prod)
	assert.Equal(t, 18, prod.StockActual)

	// 4. Session rolled forward
	activaResp := do(t, env.server, "GET", "/v1/caja/activa?sucursal_id="+env.sucursalID.String(), nil, env.token)
	require.Equal(t, http.StatusOK, activaResp.StatusCode)
	var activa struct {
		Sesion *struct {
			TotalVentas        string `json:"total_ventas"`
			TotalTransacciones int    `json:"total_transacciones"`
			MontoCierre        string `json:"monto_cierre"`
		} `json:"sesion"`
	}
	decodeJSON(t, activaResp, &activa)
	require.NotNil(t, activa.Sesion)
	assert.Equal(t, "900", activa.Sesion.TotalVentas)
	assert.Equal(t, 1, activa.Sesion.TotalTransacciones)
	assert.Equal(t, "1900", activa.Sesion.MontoCierre)

	// 5. Listed under today's sales
	listResp := do(t, env.server, "GET", "/v1/ventas?sucursal_id="+env.sucursalID.String(), nil, env.token)
	require.Equal(t, http.StatusOK, listResp.StatusCode)
	var list struct {
		Total int64 `json:"total"`
	}
	decodeJSON(t, listResp, &list)
	assert.Equal(t, int64(1), list.Total)

	// 6. Close with a declared balance
	cierreResp := do(t, env.server, "PATCH", "/v1/caja/"+caja.ID,
		jsonBody(t, map[string]any{"monto_cierre": 1895.5}), env.token)
	require.Equal(t, http.StatusOK, cierreResp.StatusCode)
	var cerrada struct {
		Estado      string `json:"estado"`
		MontoCierre string `json:"monto_cierre"`
	}
	decodeJSON(t, cierreResp, &cerrada)
	assert.Equal(t, "cerrada", cerrada.Estado)
	assert.Equal(t, "1895.5", cerrada.MontoCierre)
}

// The partial unique index rejects a second concurrent open for the branch.
func TestE2E_CajaDuplicada(t *testing.T) {
	env := setupTestEnv(t)

	first := do(t, env.server, "POST", "/v1/caja/abrir",
		jsonBody(t, map[string]any{"sucursal_id": env.sucursalID.String(), "monto_inicial": 500}), env.token)
	require.Equal(t, http.StatusCreated, first.StatusCode)

	second := do(t, env.server, "POST", "/v1/caja/abrir",
		jsonBody(t, map[string]any{"sucursal_id": env.sucursalID.String(), "monto_inicial": 500}), env.token)
	assert.Equal(t, http.StatusConflict, second.StatusCode)
}

// A sale without an open session must not touch stock.
func TestE2E_VentaSinCaja(t *testing.T) {
	env := setupTestEnv(t)
	prodID := env.seedProducto(t, "Blusa seda", 300, 5)

	ventaResp := do(t, env.server, "POST", "/v1/ventas",
		jsonBody(t, map[string]any{
			"sucursal_id": env.sucursalID.String(),
			"metodo_pago": "tarjeta",
			"items":       []map[string]any{{"producto_id": prodID.String(), "cantidad": 1}},
		}),
		env.token,
	)
	assert.Equal(t, http.StatusConflict, ventaResp.StatusCode)

	prodResp := do(t, env.server, "GET", "/v1/productos/"+prodID.String(), nil, env.token)
	require.Equal(t, http.StatusOK, prodResp.StatusCode)
	var prod struct {
		StockActual int `json:"stock_actual"`
	}
	decodeJSON(t, prodResp, &prod)
	assert.Equal(t, 5, prod.StockActual)
}

// Layaway lifecycle: create with deposit → settle → linked sale exists.
func TestE2E_ApartadoLiquidacion(t *testing.T) {
	env := setupTestEnv(t)
	prodID := env.seedProducto(t, "Saco lana", 800, 3)

	abrir := do(t, env.server, "POST", "/v1/caja/abrir",
		jsonBody(t, map[string]any{"sucursal_id": env.sucursalID.String(), "monto_inicial": 1000}), env.token)
	require.Equal(t, http.StatusCreated, abrir.StatusCode)

	crearResp := do(t, env.server, "POST", "/v1/apartados",
		jsonBody(t, map[string]any{
			"sucursal_id": env.sucursalID.String(),
			"cliente":     "Maria Lopez",
			"anticipo":    200,
			"items":       []map[string]any{{"producto_id": prodID.String(), "cantidad": 1}},
		}),
		env.token,
	)
	require.Equal(t, http.StatusCreated, crearResp.StatusCode)
	var apartado struct {
		ID     string `json:"id"`
		Estado string `json:"estado"`
		Saldo  string `json:"saldo"`
	}
	decodeJSON(t, crearResp, &apartado)
	assert.Equal(t, "pendiente", apartado.Estado)
	assert.Equal(t, "600", apartado.Saldo)

	// Stock reserved at creation.
	prodResp := do(t, env.server, "GET", "/v1/productos/"+prodID.String(), nil, env.token)
	var prod struct {
		StockActual int `json:"stock_actual"`
	}
	decodeJSON(t, prodResp, &prod)
	assert.Equal(t, 2, prod.StockActual)

	// Settle the remaining balance server-side.
	abonoResp := do(t, env.server, "PATCH", "/v1/apartados/"+apartado.ID,
		jsonBody(t, map[string]any{"liquidar_total": true}), env.token)
	require.Equal(t, http.StatusOK, abonoResp.StatusCode)
	var abono struct {
		Liquidado bool    `json:"liquidado"`
		VentaID   *string `json:"venta_id"`
	}
	decodeJSON(t, abonoResp, &abono)
	assert.True(t, abono.Liquidado)
	require.NotNil(t, abono.VentaID)

	// The linked liquidation sale is queryable.
	ventaResp := do(t, env.server, "GET", "/v1/ventas/"+*abono.VentaID, nil, env.token)
	require.Equal(t, http.StatusOK, ventaResp.StatusCode)
	var venta struct {
		MetodoPago string `json:"metodo_pago"`
		Total      string `json:"total"`
	}
	decodeJSON(t, ventaResp, &venta)
	assert.Equal(t, "liquidacion_apartado", venta.MetodoPago)
	assert.Equal(t, "800", venta.Total)

	// Settled apartados reject further payments.
	again := do(t, env.server, "PATCH", "/v1/apartados/"+apartado.ID,
		jsonBody(t, map[string]any{"monto": 50}), env.token)
	assert.Equal(t, http.StatusConflict, again.StatusCode)
}
