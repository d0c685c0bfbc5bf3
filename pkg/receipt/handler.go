package receipt

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/splitledger/splitledger/internal/rest"
)

type ScanImageDTO struct {
	Base64Image string `json:"base64Image"`
	MimeType    string `json:"mimeType"`
}

type ScanTextDTO struct {
	Text string `json:"text"`
}

type ExtractedItemDTO struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Confidence  float64 `json:"confidence"`
}

type ScanResultDTO struct {
	RawText   string             `json:"rawText"`
	Items     []ExtractedItemDTO `json:"items"`
	StoreName string             `json:"storeName,omitempty"`
	Date      string             `json:"date,omitempty"`
	Time      string             `json:"time,omitempty"`
	TaxPaid   float64            `json:"taxPaid,omitempty"`
	TipPaid   float64            `json:"tipPaid,omitempty"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (handler *Handler) ScanImage(w http.ResponseWriter, r *http.Request) {
	log.Debug("Scanning receipt image")
	w.Header().Set("Content-Type", "application/json")

	var dto ScanImageDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if dto.Base64Image == "" {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "No image provided"})
		return
	}

	result, err := handler.service.ScanImage(r.Context(), dto.Base64Image, dto.MimeType)
	if err != nil {
		log.Errorf("Receipt image scan failed: %v", err)
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(rest.ErrorResponse{Error: err.Error()})
		return
	}

	if err := json.NewEncoder(w).Encode(ScanResultToDTO(result)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (handler *Handler) ScanText(w http.ResponseWriter, r *http.Request) {
	log.Debug("Scanning receipt text")
	w.Header().Set("Content-Type", "application/json")

	var dto ScanTextDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if dto.Text == "" {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "No text provided"})
		return
	}

	result, err := handler.service.ScanText(r.Context(), dto.Text)
	if err != nil {
		log.Errorf("Receipt text scan failed: %v", err)
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(rest.ErrorResponse{Error: err.Error()})
		return
	}

	if err := json.NewEncoder(w).Encode(ScanResultToDTO(result)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func ScanResultToDTO(result ScanResult) ScanResultDTO {
	dto := ScanResultDTO{
		RawText:   result.RawText,
		Items:     make([]ExtractedItemDTO, 0, len(result.Items)),
		StoreName: result.StoreName,
		Date:      result.Date,
		Time:      result.Time,
		TaxPaid:   result.TaxPaid,
		TipPaid:   result.TipPaid,
	}
	for _, item := range result.Items {
		dto.Items = append(dto.Items, ExtractedItemDTO{
			Description: item.Description,
			Amount:      item.Amount,
			Confidence:  item.Confidence,
		})
	}
	return dto
}
