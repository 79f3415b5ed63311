package app

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	// User management
	r.HandleFunc("/api/user", deps.UserHandler.CreateUser).Methods("POST")
	r.HandleFunc("/api/user/current", deps.UserHandler.CurrentUser).Methods("GET")
	r.HandleFunc("/api/user/current", deps.UserHandler.UpdateUser).Methods("PUT")

	// Transactions
	r.HandleFunc("/api/transaction", deps.TransactionHandler.List).Methods("GET")
	r.HandleFunc("/api/transaction", deps.TransactionHandler.Create).Methods("POST")
	r.HandleFunc("/api/transaction/{id:[0-9]+}", deps.TransactionHandler.Get).Methods("GET")
	r.HandleFunc("/api/transaction/{id:[0-9]+}", deps.TransactionHandler.Update).Methods("PUT")
	r.HandleFunc("/api/transaction/{id:[0-9]+}", deps.TransactionHandler.Delete).Methods("DELETE")

	// Categories
	r.HandleFunc("/api/category", deps.TransactionHandler.ListCategories).Methods("GET")
	r.HandleFunc("/api/category", deps.TransactionHandler.CreateCategory).Methods("POST")

	// Piggy banks; fixed paths go before /{id}
	r.HandleFunc("/api/piggy-bank", deps.PiggyBankHandler.List).Methods("GET")
	r.HandleFunc("/api/piggy-bank", deps.PiggyBankHandler.Create).Methods("POST")
	r.HandleFunc("/api/piggy-bank/reminders", deps.PiggyBankHandler.Reminders).Methods("GET")
	r.HandleFunc("/api/piggy-bank/summary", deps.PiggyBankHandler.Summary).Methods("GET")
	r.HandleFunc("/api/piggy-bank/search", deps.PiggyBankHandler.Search).Methods("GET")
	r.HandleFunc("/api/piggy-bank/{id:[0-9]+}", deps.PiggyBankHandler.Get).Methods("GET")
	r.HandleFunc("/api/piggy-bank/{id:[0-9]+}", deps.PiggyBankHandler.Update).Methods("PUT")
	r.HandleFunc("/api/piggy-bank/{id:[0-9]+}", deps.PiggyBankHandler.Delete).Methods("DELETE")
	r.HandleFunc("/api/piggy-bank/{id:[0-9]+}/deposit", deps.PiggyBankHandler.Deposit).Methods("POST")
	r.HandleFunc("/api/piggy-bank/{id:[0-9]+}/progress", deps.PiggyBankHandler.Progress).Methods("GET")
	r.HandleFunc("/api/piggy-bank/{id:[0-9]+}/deadline", deps.PiggyBankHandler.ExtendDeadline).Methods("PUT")

	// Dashboard
	r.HandleFunc("/api/dashboard/expenses/monthly", deps.DashboardHandler.MonthlyExpenses).Methods("GET")
	r.HandleFunc("/api/dashboard/incomes/monthly", deps.DashboardHandler.MonthlyIncomes).Methods("GET")
	r.HandleFunc("/api/dashboard/expenses/by-category", deps.DashboardHandler.ExpensesByCategory).Methods("GET")
	r.HandleFunc("/api/dashboard/chart", deps.DashboardHandler.Chart).Methods("GET")
	r.HandleFunc("/api/dashboard/overview", deps.DashboardHandler.Overview).Methods("GET")

	// Report
	r.HandleFunc("/api/report", deps.ReportHandler.Generate).Methods("GET")
}
