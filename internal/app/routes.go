package app

import (
	"github.com/gorilla/mux"

	"github.com/splitledger/splitledger/internal/config"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Ledger
	r.HandleFunc("/api/ledger", deps.LedgerHandler.GetLedger).Methods("GET")
	r.HandleFunc("/api/ledger", deps.LedgerHandler.ClearLedger).Methods("DELETE")
	r.HandleFunc("/api/ledger/summary", deps.LedgerHandler.GetSummary).Methods("GET")

	// People
	r.HandleFunc("/api/ledger/person", deps.LedgerHandler.AddPerson).Methods("POST")
	r.HandleFunc("/api/ledger/person/{personId}", deps.LedgerHandler.RemovePerson).Methods("DELETE")

	// Line items
	r.HandleFunc("/api/ledger/item", deps.LedgerHandler.AddLineItem).Methods("POST")
	r.HandleFunc("/api/ledger/item/import", deps.LedgerHandler.ImportItems).Methods("POST")
	r.HandleFunc("/api/ledger/item/{itemId}", deps.LedgerHandler.RemoveLineItem).Methods("DELETE")
	r.HandleFunc("/api/ledger/item/{itemId}/assignment/{personId}", deps.LedgerHandler.ToggleAssignment).Methods("PUT")

	// Tip / tax
	r.HandleFunc("/api/ledger/tip", deps.LedgerHandler.UpdateTip).Methods("PUT")
	r.HandleFunc("/api/ledger/tax", deps.LedgerHandler.UpdateTax).Methods("PUT")

	// Receipt scanning
	r.HandleFunc("/api/receipt/image", deps.ReceiptHandler.ScanImage).Methods("POST")
	r.HandleFunc("/api/receipt/text", deps.ReceiptHandler.ScanText).Methods("POST")
}
