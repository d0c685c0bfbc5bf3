package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/splitledger/splitledger/internal/rest"
)

type PersonDTO struct {
	Id    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type LineItemDTO struct {
	Id          string   `json:"id"`
	Description string   `json:"description"`
	Amount      float64  `json:"amount"`
	AssignedTo  []string `json:"assignedTo"`
}

type ChargeDTO struct {
	Percentage   float64 `json:"percentage"`
	Amount       float64 `json:"amount"`
	IsAmountMode bool    `json:"isAmountMode"`
}

type SnapshotDTO struct {
	People    []PersonDTO   `json:"people"`
	LineItems []LineItemDTO `json:"lineItems"`
	Tip       ChargeDTO     `json:"tip"`
	Tax       ChargeDTO     `json:"tax"`
	IsLoaded  bool          `json:"isLoaded"`
}

type AddPersonDTO struct {
	Name string `json:"name"`
}

type AddLineItemDTO struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// ChargeUpdateDTO updates tip or tax. Absent fields leave the corresponding
// setting untouched; setting percentage or amount also switches the mode, and
// an explicit isAmountMode applies last.
type ChargeUpdateDTO struct {
	Percentage   *float64 `json:"percentage"`
	Amount       *float64 `json:"amount"`
	IsAmountMode *bool    `json:"isAmountMode"`
}

type ImportItemDTO struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

type PersonSummaryDTO struct {
	Person    PersonDTO `json:"person"`
	ItemCount int       `json:"itemCount"`
	Subtotal  float64   `json:"subtotal"`
	Tip       float64   `json:"tip"`
	Tax       float64   `json:"tax"`
	Total     float64   `json:"total"`
}

type SummaryDTO struct {
	Subtotal   float64            `json:"subtotal"`
	TipTotal   float64            `json:"tipTotal"`
	TaxTotal   float64            `json:"taxTotal"`
	GrandTotal float64            `json:"grandTotal"`
	Unassigned float64            `json:"unassigned"`
	People     []PersonSummaryDTO `json:"people"`
}

type Handler struct {
	service  Service
	renderer SummaryRenderer
}

func NewHandler(service Service, renderer SummaryRenderer) *Handler {
	return &Handler{service: service, renderer: renderer}
}

func (handler *Handler) GetLedger(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	snapshot, err := handler.service.Snapshot(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := json.NewEncoder(w).Encode(SnapshotToDTO(snapshot)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (handler *Handler) ClearLedger(w http.ResponseWriter, r *http.Request) {
	log.Debug("Clearing ledger")
	if err := handler.service.Clear(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (handler *Handler) AddPerson(w http.ResponseWriter, r *http.Request) {
	log.Debug("Adding person to ledger")
	w.Header().Set("Content-Type", "application/json")

	var dto AddPersonDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	person, err := handler.service.AddPerson(r.Context(), dto.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(PersonToDTO(person)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (handler *Handler) RemovePerson(w http.ResponseWriter, r *http.Request) {
	personId := mux.Vars(r)["personId"]
	if err := handler.service.RemovePerson(r.Context(), personId); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (handler *Handler) AddLineItem(w http.ResponseWriter, r *http.Request) {
	log.Debug("Adding line item to ledger")
	w.Header().Set("Content-Type", "application/json")

	var dto AddLineItemDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	item, err := handler.service.AddLineItem(r.Context(), dto.Description, CentsFromFloat(dto.Amount))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(LineItemToDTO(item)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (handler *Handler) RemoveLineItem(w http.ResponseWriter, r *http.Request) {
	itemId := mux.Vars(r)["itemId"]
	if err := handler.service.RemoveLineItem(r.Context(), itemId); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (handler *Handler) ToggleAssignment(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	err := handler.service.ToggleAssignment(r.Context(), vars["itemId"], vars["personId"])
	if errors.Is(err, ErrItemNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (handler *Handler) UpdateTip(w http.ResponseWriter, r *http.Request) {
	handler.updateCharge(w, r,
		handler.service.SetTipPercentage,
		handler.service.SetTipAmount,
		handler.service.SetTipMode,
	)
}

func (handler *Handler) UpdateTax(w http.ResponseWriter, r *http.Request) {
	handler.updateCharge(w, r,
		handler.service.SetTaxPercentage,
		handler.service.SetTaxAmount,
		handler.service.SetTaxMode,
	)
}

func (handler *Handler) updateCharge(
	w http.ResponseWriter,
	r *http.Request,
	setPercentage func(ctx context.Context, percentage float64) error,
	setAmount func(ctx context.Context, amount Cents) error,
	setMode func(ctx context.Context, isAmountMode bool) error,
) {
	w.Header().Set("Content-Type", "application/json")

	var dto ChargeUpdateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if dto.Percentage == nil && dto.Amount == nil && dto.IsAmountMode == nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error:   "empty charge update",
			Details: "provide percentage, amount, or isAmountMode",
		})
		return
	}

	ctx := r.Context()
	if dto.Percentage != nil {
		if err := setPercentage(ctx, *dto.Percentage); err != nil {
			writeServiceError(w, err)
			return
		}
	}
	if dto.Amount != nil {
		if err := setAmount(ctx, CentsFromFloat(*dto.Amount)); err != nil {
			writeServiceError(w, err)
			return
		}
	}
	if dto.IsAmountMode != nil {
		if err := setMode(ctx, *dto.IsAmountMode); err != nil {
			writeServiceError(w, err)
			return
		}
	}

	snapshot, err := handler.service.Snapshot(ctx)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := json.NewEncoder(w).Encode(SnapshotToDTO(snapshot)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (handler *Handler) ImportItems(w http.ResponseWriter, r *http.Request) {
	log.Debug("Importing scanned line items")
	w.Header().Set("Content-Type", "application/json")

	var dtos []ImportItemDTO
	if err := json.NewDecoder(r.Body).Decode(&dtos); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	candidates := make([]CandidateItem, 0, len(dtos))
	for _, dto := range dtos {
		candidates = append(candidates, CandidateItem{
			Description: dto.Description,
			Amount:      CentsFromFloat(dto.Amount),
		})
	}

	added, err := handler.service.ImportItems(r.Context(), candidates)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	itemDTOs := make([]LineItemDTO, 0, len(added))
	for _, item := range added {
		itemDTOs = append(itemDTOs, LineItemToDTO(item))
	}
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(itemDTOs); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (handler *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := handler.service.Summary(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if r.Header.Get("Accept") == "text/csv" {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		csv, err := handler.renderer.RenderSummary(summary)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if _, err := w.Write([]byte(csv)); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(SummaryToDTO(summary)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrEmptyName),
		errors.Is(err, ErrEmptyDescription),
		errors.Is(err, ErrNegativeAmount),
		errors.Is(err, ErrInvalidPercent):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(rest.ErrorResponse{Error: err.Error()})
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func SnapshotToDTO(snapshot Snapshot) SnapshotDTO {
	dto := SnapshotDTO{
		People:    make([]PersonDTO, 0, len(snapshot.People)),
		LineItems: make([]LineItemDTO, 0, len(snapshot.LineItems)),
		Tip:       ChargeToDTO(snapshot.Tip),
		Tax:       ChargeToDTO(snapshot.Tax),
		IsLoaded:  snapshot.IsLoaded,
	}
	for _, person := range snapshot.People {
		dto.People = append(dto.People, PersonToDTO(person))
	}
	for _, item := range snapshot.LineItems {
		dto.LineItems = append(dto.LineItems, LineItemToDTO(item))
	}
	return dto
}

func PersonToDTO(person Person) PersonDTO {
	return PersonDTO{Id: person.Id, Name: person.Name, Color: person.Color}
}

func LineItemToDTO(item LineItem) LineItemDTO {
	assignedTo := item.AssignedTo
	if assignedTo == nil {
		assignedTo = []string{}
	}
	return LineItemDTO{
		Id:          item.Id,
		Description: item.Description,
		Amount:      item.Amount.Float(),
		AssignedTo:  assignedTo,
	}
}

func ChargeToDTO(cfg ChargeConfig) ChargeDTO {
	return ChargeDTO{
		Percentage:   cfg.Percentage,
		Amount:       cfg.Amount.Float(),
		IsAmountMode: cfg.IsAmountMode,
	}
}

func SummaryToDTO(summary BillSummary) SummaryDTO {
	dto := SummaryDTO{
		Subtotal:   summary.Subtotal.Float(),
		TipTotal:   summary.TipTotal.Float(),
		TaxTotal:   summary.TaxTotal.Float(),
		GrandTotal: summary.GrandTotal.Float(),
		Unassigned: summary.Unassigned.Float(),
		People:     make([]PersonSummaryDTO, 0, len(summary.People)),
	}
	for _, person := range summary.People {
		dto.People = append(dto.People, PersonSummaryDTO{
			Person:    PersonToDTO(person.Person),
			ItemCount: person.ItemCount,
			Subtotal:  person.Subtotal.Float(),
			Tip:       person.Tip.Float(),
			Tax:       person.Tax.Float(),
			Total:     person.Total.Float(),
		})
	}
	return dto
}
