package app

import (
	"database/sql"

	"github.com/buckr/buckr/internal/config"
	"github.com/buckr/buckr/internal/event_bus"
	"github.com/buckr/buckr/internal/utils"
	"github.com/buckr/buckr/pkg/budget"
	"github.com/buckr/buckr/pkg/item"
	"github.com/buckr/buckr/pkg/projection"
	"github.com/buckr/buckr/pkg/user"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	EventBus *event_bus.EventBus

	UserService user.Service
	UserHandler *user.Handler

	BudgetRepo    budget.Repo
	BudgetService *budget.ServiceImpl
	BudgetHandler *budget.Handler

	ItemRepo    item.Repo
	ItemService *item.ServiceImpl
	ItemHandler *item.Handler

	ProjectionService *projection.ServiceImpl
	ProjectionHandler *projection.Handler

	Clock utils.Clock
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *sql.DB, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.EventBus = event_bus.NewEventBus()
	deps.Clock = &utils.SystemClock{}

	deps.UserService = user.NewUserService(user.NewUserRepo(db))
	deps.UserHandler = user.NewHandler(deps.UserService)

	deps.BudgetRepo = budget.NewBudgetRepo(db)
	deps.BudgetService = budget.NewBudgetService(deps.BudgetRepo, deps.Clock, deps.EventBus)
	deps.BudgetHandler = budget.NewHandler(deps.BudgetService)

	deps.ItemRepo = item.NewItemRepo(db)
	deps.ItemService = item.NewItemService(deps.ItemRepo, deps.EventBus)
	deps.ItemHandler = item.NewHandler(deps.ItemService)

	deps.ProjectionService = projection.NewProjectionService(deps.ItemService, deps.BudgetService)
	deps.ProjectionHandler = projection.NewHandler(deps.ProjectionService)

	return deps
}
