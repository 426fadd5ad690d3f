package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-restaurante-api/internal/application/auth"
	"github.com/jhoicas/pos-restaurante-api/internal/application/cash"
	"github.com/jhoicas/pos-restaurante-api/internal/application/dgii"
	"github.com/jhoicas/pos-restaurante-api/internal/application/dish"
	"github.com/jhoicas/pos-restaurante-api/internal/application/inventory"
	"github.com/jhoicas/pos-restaurante-api/internal/application/order"
	"github.com/jhoicas/pos-restaurante-api/internal/application/table"
	"github.com/jhoicas/pos-restaurante-api/internal/application/tenant"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/entity"
	"github.com/jhoicas/pos-restaurante-api/internal/infrastructure/realtime"
	"github.com/jhoicas/pos-restaurante-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	OrderUC         *order.UseCase
	TableUC         *table.UseCase
	DishUC          *dish.UseCase
	ItemUC          *inventory.ItemUseCase
	MovementUC      *inventory.RegisterMovementUseCase
	ReplenishmentUC *inventory.ReplenishmentUseCase
	CashUC          *cash.UseCase
	TenantUC        *tenant.UseCase
	AuthUC          *auth.AuthUseCase
	DgiiUC          *dgii.UseCase
	Hub             *realtime.Hub
	Tenants         tenantLoader
	Heartbeat       time.Duration
	JWTSecret       string
	ServiceName     string
	// Ping verifica la base de datos para /health. Puede ser nil.
	Ping func(ctx context.Context) error
	Log  *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log

	app.Get("/health", func(c *fiber.Ctx) error {
		if deps.Ping != nil {
			if err := deps.Ping(c.UserContext()); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": deps.ServiceName})
			}
		}
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})

	api := app.Group("/api")

	// Públicas
	authHandler := NewAuthHandler(deps.AuthUC, log)
	tenantHandler := NewTenantHandler(deps.TenantUC, log)
	api.Post("/auth/login", authHandler.Login)
	api.Post("/tenants", tenantHandler.Onboard)

	// Rutas protegidas (Bearer Token + tenant activo)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret), RequireActiveTenant(deps.Tenants))
	managers := RequireRole(entity.RoleOwner, entity.RoleAdmin)
	cashiers := RequireRole(entity.RoleOwner, entity.RoleAdmin, entity.RoleCajera)

	protected.Post("/auth/users", managers, authHandler.CreateUser)

	// Órdenes (todos los roles)
	orderHandler := NewOrderHandler(deps.OrderUC, log)
	orders := protected.Group("/orders")
	orders.Post("/", orderHandler.Create)
	orders.Get("/", orderHandler.List)
	orders.Get("/:id", orderHandler.Get)
	orders.Put("/:id", orderHandler.Update)
	orders.Patch("/:id", orderHandler.Update)
	orders.Delete("/:id", orderHandler.Delete)
	orders.Get("/:id/invoice", orderHandler.InvoiceURL)
	orders.Get("/:id/invoice/pdf", orderHandler.InvoicePDF)
	orders.Post("/:id/inventory/deduct", cashiers, orderHandler.DeductInventory)

	// Mesas
	tableHandler := NewTableHandler(deps.TableUC, log)
	tables := protected.Group("/tables")
	tables.Get("/", tableHandler.List)
	tables.Post("/", managers, tableHandler.Create)
	tables.Put("/:id", managers, tableHandler.Update)
	tables.Delete("/:id", managers, tableHandler.Delete)
	tables.Post("/:id/release", cashiers, tableHandler.Release)

	// Menú
	dishHandler := NewDishHandler(deps.DishUC, log)
	dishes := protected.Group("/dishes")
	dishes.Get("/", dishHandler.List)
	dishes.Get("/:id", dishHandler.Get)
	dishes.Post("/", managers, dishHandler.Create)
	dishes.Put("/:id", managers, dishHandler.Update)
	dishes.Delete("/:id", managers, dishHandler.Delete)

	// Inventario (Owner/Admin/Cajera)
	invHandler := NewInventoryHandler(deps.ItemUC, deps.MovementUC, deps.ReplenishmentUC, log)
	inv := protected.Group("/inventory", cashiers)
	inv.Get("/items", invHandler.ListItems)
	inv.Get("/items/:id", invHandler.GetItem)
	inv.Post("/items", managers, invHandler.CreateItem)
	inv.Put("/items/:id", managers, invHandler.UpdateItem)
	inv.Delete("/items/:id", managers, invHandler.ArchiveItem)
	inv.Get("/movements", invHandler.ListMovements)
	inv.Post("/movements", invHandler.RegisterMovement)
	inv.Get("/low-stock", invHandler.LowStock)
	inv.Post("/waste", invHandler.RegisterWaste)
	inv.Get("/waste/summary", invHandler.WasteSummary)

	// Caja
	cashHandler := NewCashHandler(deps.CashUC, log)
	cs := protected.Group("/cash-session", cashiers)
	cs.Get("/", cashHandler.Get)
	cs.Get("/range", cashHandler.Range)
	cs.Post("/open", cashHandler.Open)
	cs.Post("/add", cashHandler.Add)
	cs.Patch("/adjust", managers, cashHandler.Adjust)
	cs.Post("/close", cashHandler.Close)

	// Configuración del tenant
	tn := protected.Group("/tenant")
	tn.Get("/", tenantHandler.Get)
	tn.Put("/features", managers, tenantHandler.UpdateFeatures)
	tn.Put("/fiscal", managers, tenantHandler.UpdateFiscal)
	tn.Put("/fiscal/sequences/:type", managers, tenantHandler.UpsertSequence)

	// Padrón DGII
	dgiiHandler := NewDgiiHandler(deps.DgiiUC, log)
	protected.Get("/dgii/rnc/:rnc", dgiiHandler.Lookup)
	protected.Get("/dgii/autocomplete", dgiiHandler.Autocomplete)

	// Tiempo real
	rt := NewRealtimeHandler(deps.Hub, deps.Heartbeat, log)
	protected.Get("/realtime/stream", rt.Stream)
}
