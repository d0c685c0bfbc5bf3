package app

import (
	"database/sql"

	log "github.com/sirupsen/logrus"

	"github.com/splitledger/splitledger/internal/config"
	"github.com/splitledger/splitledger/internal/event_bus"
	"github.com/splitledger/splitledger/internal/utils"
	"github.com/splitledger/splitledger/pkg/ledger"
	"github.com/splitledger/splitledger/pkg/receipt"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Bus *event_bus.EventBus

	SnapshotRepo  ledger.SnapshotRepo
	LedgerService ledger.Service
	CsvRenderer   *ledger.CsvSummaryRendererImpl
	LedgerHandler *ledger.Handler

	ReceiptClient  receipt.Client
	ReceiptService receipt.Service
	ReceiptHandler *receipt.Handler

	Clock utils.Clock
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *sql.DB, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.Bus = event_bus.NewEventBus()
	deps.Clock = &utils.SystemClock{}

	deps.SnapshotRepo = ledger.NewSnapshotRepo(db, cfg.Database.Driver, deps.Clock)
	deps.LedgerService = ledger.NewService(deps.SnapshotRepo, deps.Bus)
	deps.CsvRenderer = ledger.NewCsvSummaryRenderer()
	deps.LedgerHandler = ledger.NewHandler(deps.LedgerService, deps.CsvRenderer)

	deps.ReceiptClient = receipt.NewClient(cfg.Gemini)
	deps.ReceiptService = receipt.NewService(deps.ReceiptClient, deps.Bus)
	deps.ReceiptHandler = receipt.NewHandler(deps.ReceiptService)

	// Audit trail for ledger activity.
	event_bus.SubscribeTyped[event_bus.LedgerChanged](deps.Bus, event_bus.LedgerChangedEvent,
		func(e event_bus.EventT[event_bus.LedgerChanged]) error {
			log.Debugf("ledger %s changed: %s", e.Data.LedgerId, e.Data.ActionName)
			return nil
		})
	event_bus.SubscribeTyped[event_bus.ReceiptScanned](deps.Bus, event_bus.ReceiptScannedEvent,
		func(e event_bus.EventT[event_bus.ReceiptScanned]) error {
			log.Infof("receipt scanned (%s) for ledger %s: %d candidates", e.Data.Source, e.Data.LedgerId, e.Data.ItemCount)
			return nil
		})

	return deps
}
