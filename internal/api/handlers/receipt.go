package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/accountant-ai/backend/internal/api/middleware"
	"github.com/accountant-ai/backend/internal/archive"
	"github.com/accountant-ai/backend/internal/common"
	"github.com/accountant-ai/backend/internal/domain"
	"github.com/accountant-ai/backend/internal/gemini"
	"github.com/accountant-ai/backend/internal/store"
)

// maxReceiptSize caps uploaded receipt images at 10 MB.
const maxReceiptSize = 10 << 20

// ReceiptHandler turns an uploaded receipt image into a stored transaction.
type ReceiptHandler struct {
	store     store.TransactionStore
	extractor ReceiptExtractor
	archiver  archive.Archiver
	log       zerolog.Logger
}

func NewReceiptHandler(st store.TransactionStore, ex ReceiptExtractor, ar archive.Archiver, log zerolog.Logger) *ReceiptHandler {
	return &ReceiptHandler{store: st, extractor: ex, archiver: ar, log: log}
}

// Upload extracts purchase fields from the multipart "file" part. An
// extraction missing required fields returns 422 with whatever was found;
// nothing is stored in that case.
func (h *ReceiptHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "user_id query parameter is required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxReceiptSize)
	if err := r.ParseMultipartForm(maxReceiptSize); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "expected multipart form with a file part")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "file part is required")
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "could not read uploaded file")
		return
	}
	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	fields, err := h.extractor.ExtractReceipt(r.Context(), image, mimeType)
	if err != nil {
		if errors.Is(err, common.ErrExtractionIncomplete) {
			h.log.Warn().Err(err).Str("user_id", userID).Msg("receipt extraction incomplete")
			middleware.WriteJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error":          "receipt extraction incomplete",
				"detail":         err.Error(),
				"partial_fields": fields,
			})
			return
		}
		h.log.Error().Err(err).Str("user_id", userID).Msg("receipt extraction failed")
		middleware.WriteTaxonomyError(w, err)
		return
	}

	record := receiptTransaction(fields)
	stored, err := h.store.Append(r.Context(), userID, record)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("receipt append failed")
		middleware.WriteTaxonomyError(w, err)
		return
	}

	// Archival is best effort; a failed save never fails the upload.
	archiveURI := ""
	if uri, err := h.archiver.Save(r.Context(), userID, image, mimeType); err != nil {
		h.log.Warn().Err(err).Str("user_id", userID).Msg("receipt archive failed")
	} else {
		archiveURI = uri
	}

	h.log.Info().
		Str("user_id", userID).
		Str("transaction_id", stored.TransactionID).
		Str("merchant", fields.Merchant).
		Msg("receipt stored")

	resp := map[string]any{
		"status":      "stored",
		"transaction": fromDomain(stored),
		"extracted":   fields,
	}
	if archiveURI != "" {
		resp["archive_uri"] = archiveURI
	}
	middleware.WriteJSON(w, http.StatusOK, resp)
}

// receiptTransaction maps extracted fields to a debit record. Receipt
// amounts are magnitudes, so the stored amount is negated.
func receiptTransaction(fields gemini.ReceiptFields) domain.Transaction {
	date, err := fields.ParsedDate()
	if err != nil {
		date = time.Now()
	}
	amount := fields.Amount
	if amount > 0 {
		amount = -amount
	}
	name := fields.Description
	if name == "" {
		name = fields.Merchant
	}
	return domain.Transaction{
		Date:           date,
		Name:           name,
		MerchantName:   fields.Merchant,
		Amount:         amount,
		Category:       []string{fields.Category},
		PaymentChannel: domain.ChannelInStore,
		Source:         domain.SourceReceiptUpload,
	}
}
