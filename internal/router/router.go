package router

import (
	"time"

	"boutiquepos/internal/config"
	"boutiquepos/internal/handler"
	"boutiquepos/internal/infra"
	"boutiquepos/internal/middleware"
	"boutiquepos/internal/repository"
	"boutiquepos/internal/service"
	"boutiquepos/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine plus the
// ticket worker the caller hands to worker.StartWorkerPool.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*gin.Engine, *worker.TicketWorker) {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Infrastructure ───────────────────────────────────────────────────────
	mailer := infra.NewMailer(cfg)

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	sucursalRepo := repository.NewSucursalRepository(db)
	productoRepo := repository.NewProductoRepository(db)
	movimientoStockRepo := repository.NewMovimientoStockRepository(db)
	ventaRepo := repository.NewVentaRepository(db)
	cajaRepo := repository.NewCajaRepository(db)
	apartadoRepo := repository.NewApartadoRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, sucursalRepo, cfg)
	inventarioSvc := service.NewInventarioService(productoRepo, movimientoStockRepo)
	productoSvc := service.NewProductoService(productoRepo, inventarioSvc)
	cajaSvc := service.NewCajaService(cajaRepo)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	ventaSvc := service.NewVentaService(ventaRepo, inventarioSvc, cajaSvc, dispatcher)
	apartadoSvc := service.NewApartadoService(apartadoRepo, inventarioSvc, ventaSvc, ventaRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usuariosH := handler.NewUsuariosHandler(authSvc)
	productosH := handler.NewProductosHandler(productoSvc, inventarioSvc)
	ventasH := handler.NewVentasHandler(ventaSvc, authSvc)
	cajaH := handler.NewCajaHandler(cajaSvc, authSvc)
	apartadosH := handler.NewApartadosHandler(apartadoSvc, authSvc)
	consultaH := handler.NewConsultaPreciosHandler(productoRepo, rdb)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Price check — no auth required (floor-side scanner)
	r.GET("/v1/precio/:producto_id", consultaH.GetPrecio)

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: cajero, supervisor, administrador — declared per-endpoint
		v1.POST("/ventas", middleware.RequireRole("cajero", "supervisor", "administrador"), ventasH.Registrar)
		v1.GET("/ventas", middleware.RequireRole("cajero", "supervisor", "administrador"), ventasH.Listar)
		v1.GET("/ventas/:id", middleware.RequireRole("cajero", "supervisor", "administrador"), ventasH.Obtener)
		v1.PATCH("/ventas/:id/visibilidad", middleware.RequireRole("supervisor", "administrador"), ventasH.CambiarVisibilidad)

		v1.GET("/productos", middleware.RequireRole("cajero", "supervisor", "administrador"), productosH.Listar)
		v1.GET("/productos/:id", middleware.RequireRole("cajero", "supervisor", "administrador"), productosH.Obtener)
		v1.GET("/productos/:id/movimientos", middleware.RequireRole("supervisor", "administrador"), productosH.Movimientos)
		v1.PATCH("/productos/:id/stock", middleware.RequireRole("supervisor", "administrador"), productosH.AjustarStock)

		caja := v1.Group("/caja")
		{
			caja.POST("/abrir", middleware.RequireRole("cajero", "supervisor", "administrador"), cajaH.Abrir)
			caja.GET("/activa", middleware.RequireRole("cajero", "supervisor", "administrador"), cajaH.ObtenerActiva)
			caja.PATCH("/:id", middleware.RequireRole("cajero", "supervisor", "administrador"), cajaH.Actualizar)
			caja.GET("/:id/reporte", middleware.RequireRole("cajero", "supervisor", "administrador"), cajaH.Reporte)
			caja.GET("/historial", middleware.RequireRole("supervisor", "administrador"), cajaH.Historial)
		}

		apartados := v1.Group("/apartados", middleware.RequireRole("cajero", "supervisor", "administrador"))
		{
			apartados.POST("", apartadosH.Crear)
			apartados.GET("", apartadosH.Listar)
			apartados.GET("/:id", apartadosH.Obtener)
			apartados.PATCH("/:id", apartadosH.Abonar)
		}
		// Cancellation and the hard-delete modes all destroy records, so the
		// whole DELETE surface is a supervisor operation.
		v1.DELETE("/apartados/:id", middleware.RequireRole("supervisor", "administrador"), apartadosH.Eliminar)
		v1.DELETE("/abonos/:id", middleware.RequireRole("supervisor", "administrador"), apartadosH.EliminarAbono)

		usuarios := v1.Group("/usuarios", middleware.RequireRole("administrador"))
		{
			usuarios.POST("", usuariosH.Crear)
			usuarios.GET("", usuariosH.Listar)
			usuarios.PUT("/:id", usuariosH.Actualizar)
			usuarios.DELETE("/:id", usuariosH.Desactivar)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	ticketWorker := worker.NewTicketWorker(ventaRepo, mailer, cfg)
	return r, ticketWorker
}
