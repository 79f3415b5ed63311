package app

import (
	"github.com/finpro/finpro/internal/config"
	"github.com/finpro/finpro/internal/event_bus"
	"github.com/finpro/finpro/internal/utils"
	"github.com/finpro/finpro/pkg/dashboard"
	"github.com/finpro/finpro/pkg/piggybank"
	"github.com/finpro/finpro/pkg/report"
	"github.com/finpro/finpro/pkg/transaction"
	"github.com/finpro/finpro/pkg/user"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Clock    utils.Clock
	EventBus *event_bus.EventBus

	UserService user.Service
	UserHandler *user.Handler

	TransactionService *transaction.ServiceImpl
	TransactionHandler *transaction.Handler

	PiggyBankService *piggybank.ServiceImpl
	PiggyBankHandler *piggybank.Handler

	DashboardService *dashboard.ServiceImpl
	DashboardHandler *dashboard.Handler

	ReportService     *report.ServiceImpl
	ReportCsvRenderer *report.CsvRenderer
	ReportHandler     *report.Handler
}

// Repositories are the storage ports of the services.
type Repositories struct {
	Users        user.Repo
	Transactions transaction.Repository
	PiggyBanks   piggybank.Repository
}

func NewRepositories(db *pgxpool.Pool) Repositories {
	return Repositories{
		Users:        user.NewUserRepo(db),
		Transactions: transaction.NewRepo(db),
		PiggyBanks:   piggybank.NewRepo(db),
	}
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(repos Repositories, clock utils.Clock, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.Clock = clock
	deps.EventBus = event_bus.NewEventBus()

	deps.UserService = user.NewUserService(repos.Users)
	deps.UserHandler = user.NewHandler(deps.UserService)

	// Subscribes to piggy bank deposits, so it is built before the piggy bank service publishes any.
	deps.TransactionService = transaction.NewService(repos.Transactions, deps.EventBus)
	deps.TransactionHandler = transaction.NewHandler(deps.TransactionService)

	engine := piggybank.NewStatusEngine(cfg.PiggyBank.LookbackDays)
	deps.PiggyBankService = piggybank.NewService(repos.PiggyBanks, deps.EventBus, deps.Clock, engine)
	deps.PiggyBankHandler = piggybank.NewHandler(deps.PiggyBankService)

	deps.DashboardService = dashboard.NewService(deps.TransactionService, deps.PiggyBankService, deps.Clock,
		cfg.Dashboard.WindowMonths, cfg.Report.TopCategories)
	deps.DashboardHandler = dashboard.NewHandler(deps.DashboardService)

	deps.ReportService = report.NewService(deps.TransactionService, deps.PiggyBankService, deps.Clock,
		cfg.Report.TopCategories, cfg.Report.MaxTransactions)
	deps.ReportCsvRenderer = report.NewCsvRenderer()
	deps.ReportHandler = report.NewHandler(deps.ReportService, deps.ReportCsvRenderer, deps.Clock)

	return deps
}
