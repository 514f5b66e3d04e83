package app

import (
	"github.com/buckr/buckr/internal/config"
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Dashboard (projected queue + backlog + summary)
	r.HandleFunc("/api/dashboard", deps.ProjectionHandler.GetDashboard).Methods("GET")

	// Items
	r.HandleFunc("/api/item/queue", deps.ItemHandler.GetQueue).Methods("GET")
	r.HandleFunc("/api/item/backlog", deps.ItemHandler.GetBacklog).Methods("GET")
	r.HandleFunc("/api/item", deps.ItemHandler.CreateItem).Methods("POST")
	r.HandleFunc("/api/item/{itemId}", deps.ItemHandler.UpdateItem).Methods("PUT")
	r.HandleFunc("/api/item/{itemId}", deps.ItemHandler.DeleteItem).Methods("DELETE")
	r.HandleFunc("/api/item/{itemId}/obtained", deps.ItemHandler.SetObtained).Methods("PUT")
	r.HandleFunc("/api/item/{itemId}/position", deps.ItemHandler.SetPosition).Methods("PUT")
	r.HandleFunc("/api/item/{itemId}/queue", deps.ItemHandler.MoveToQueue).Methods("POST")
	r.HandleFunc("/api/item/{itemId}/queue", deps.ItemHandler.MoveToBacklog).Methods("DELETE")

	// Budget
	r.HandleFunc("/api/budget", deps.BudgetHandler.GetBudget).Methods("GET")
	r.HandleFunc("/api/budget/balance", deps.BudgetHandler.SetCurrentBalance).Methods("PUT")
	r.HandleFunc("/api/budget/sparing", deps.BudgetHandler.SetSparing).Methods("PUT")
	r.HandleFunc("/api/budget/spare-now", deps.BudgetHandler.SpareNow).Methods("POST")

	// User management
	r.HandleFunc("/api/user", deps.UserHandler.CreateUser).Methods("POST")
	r.HandleFunc("/api/user/current", deps.UserHandler.CurrentUser).Methods("GET")
}
