package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/application/auth"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/application/custody"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/application/inventory"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/application/requisition"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/application/usecase"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/entity"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC        *auth.AuthUseCase
	UserUC        *usecase.UserUseCase
	LocationUC    *usecase.LocationUseCase
	ItemUC        *usecase.ItemUseCase
	Ledger        *inventory.LedgerUseCase
	Replenishment *inventory.ReplenishmentUseCase
	Requisitions  *requisition.UseCase
	Custody       *custody.UseCase
	JWTSecret     string
	Log           *logger.Logger
}

// Router registra las rutas de la API. La autorización fina (relación con el
// recurso) la resuelven los motores; aquí sólo se filtra por rol lo que es
// exclusivo de administración.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC, log)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Lectura del QR (público)
	itemHandler := NewItemHandler(deps.ItemUC, log)
	api.Get("/public/items/:uuid", itemHandler.Lookup)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	adminOnly := RequireRole(entity.RoleAdmin)
	staff := RequireRole(entity.RoleSupply, entity.RoleAdmin)

	// Users (admin)
	users := protected.Group("/users", adminOnly)
	userHandler := NewUserHandler(deps.UserUC, deps.AuthUC, log)
	users.Post("/", userHandler.Create)
	users.Get("/", userHandler.List)
	users.Get("/:id", userHandler.GetByID)
	users.Put("/:id", userHandler.Update)

	// Locations
	locations := protected.Group("/locations")
	locationHandler := NewLocationHandler(deps.LocationUC, log)
	locations.Get("/", locationHandler.List)
	locations.Get("/:id", locationHandler.GetByID)
	locations.Post("/", staff, locationHandler.Create)
	locations.Put("/:id", staff, locationHandler.Update)

	// Items + stock
	items := protected.Group("/items")
	inventoryHandler := NewInventoryHandler(deps.Ledger, deps.Replenishment, log)
	items.Post("/", itemHandler.Create)
	items.Get("/", itemHandler.List)
	items.Get("/:id", itemHandler.GetByID)
	items.Put("/:id", itemHandler.Update)
	items.Delete("/:id", itemHandler.Delete)
	items.Post("/:id/restore", itemHandler.Restore)
	items.Delete("/:id/purge", adminOnly, itemHandler.Purge)
	items.Get("/:id/label", itemHandler.Label)
	items.Post("/:id/stock/deduct", inventoryHandler.Deduct)
	items.Post("/:id/stock/increase", inventoryHandler.Increase)
	items.Get("/:id/movements", inventoryHandler.Movements)
	items.Get("/:id/usage", inventoryHandler.UsageHistory)
	items.Get("/:id/forecast", inventoryHandler.Forecast)

	invGroup := protected.Group("/inventory", staff)
	invGroup.Get("/usage", inventoryHandler.UsageReport)
	invGroup.Get("/replenishment-list", inventoryHandler.GetReplenishmentList)

	// Requisitions
	reqs := protected.Group("/requisitions")
	reqHandler := NewRequisitionHandler(deps.Requisitions, log)
	reqs.Post("/", reqHandler.Create)
	reqs.Get("/", reqHandler.List)
	reqs.Get("/:id", reqHandler.GetByID)
	reqs.Get("/:id/receipt", reqHandler.Receipt)
	reqs.Post("/:id/office-approve", reqHandler.OfficeApprove)
	reqs.Post("/:id/assign-approver", reqHandler.AssignApprover)
	reqs.Post("/:id/approve", reqHandler.Approve)
	reqs.Post("/:id/ready", reqHandler.ReadyForPickup)
	reqs.Post("/:id/fulfill", reqHandler.Fulfill)
	reqs.Post("/:id/reject", reqHandler.Reject)
	reqs.Post("/:id/cancel", reqHandler.Cancel)
	reqs.Post("/:id/lines/:line_id/reject", reqHandler.RejectLine)
	reqs.Post("/:id/lines/:line_id/restore", reqHandler.RestoreLine)

	// Custody
	cust := protected.Group("/custody")
	custHandler := NewCustodyHandler(deps.Custody, log)
	cust.Post("/issue", custHandler.Issue)
	cust.Post("/bulk-clear", custHandler.BulkClear)
	cust.Get("/view", custHandler.View)
	cust.Get("/reissuable", custHandler.Reissuable)
	cust.Get("/receipts/:id", custHandler.GetReceipt)
	cust.Post("/receipts/:id/return", custHandler.Return)
	cust.Post("/receipts/:id/report", custHandler.Report)
	cust.Post("/receipts/:id/recover", custHandler.Recover)
	cust.Post("/receipts/:id/return-found", custHandler.ReturnFound)
	cust.Post("/receipts/:id/reassign", custHandler.Reassign)
	cust.Post("/receipts/:id/reissue", custHandler.Reissue)
	cust.Get("/items/:id/history", custHandler.History)
	cust.Post("/items/:id/formalize", custHandler.Formalize)
	cust.Post("/custodians/:kind/:id/formalize", custHandler.FormalizeCustodian)
}
