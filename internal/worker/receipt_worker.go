package worker

// receipt_worker.go
// Processes receipt jobs from QueueReceipt: renders the PDF, records the
// receipts row, and enqueues a customer email when an address was supplied.
// Failed generations stay "pending" with a next_retry_at for the retry cron.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"brewpos/internal/infra"
	"brewpos/internal/model"
	"brewpos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ReceiptJobPayload carries a frozen order snapshot; the worker never reads
// live state, so a voided-after-checkout order still gets its original receipt.
type ReceiptJobPayload struct {
	OrgID         uuid.UUID   `json:"org_id"`
	Order         model.Order `json:"order"`
	CustomerEmail string      `json:"customer_email,omitempty"`
}

type ReceiptWorker struct {
	receipts       repository.ReceiptRepository
	dispatcher     *Dispatcher
	pdfStoragePath string
}

func NewReceiptWorker(receipts repository.ReceiptRepository, dispatcher *Dispatcher, pdfStoragePath string) *ReceiptWorker {
	return &ReceiptWorker{receipts: receipts, dispatcher: dispatcher, pdfStoragePath: pdfStoragePath}
}

// Process handles a single receipt job:
//  1. Create the receipts row with status="pending"
//  2. Render the PDF
//  3. Mark issued (or schedule a retry on failure)
//  4. Enqueue the email job when a customer address was given
func (w *ReceiptWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload ReceiptJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("receipt_worker: invalid payload")
		return
	}

	rec := &model.Receipt{
		OrgID:   payload.OrgID,
		OrderID: payload.Order.ID,
		Total:   payload.Order.Total,
		Status:  "pending",
	}
	if payload.CustomerEmail != "" {
		email := payload.CustomerEmail
		rec.CustomerEmail = &email
	}
	if err := w.receipts.Create(ctx, rec); err != nil {
		log.Error().Err(err).Str("order_id", payload.Order.ID).
			Msg("receipt_worker: failed to create receipt row")
		return
	}

	pdfPath, pdfErr := infra.GenerateReceiptPDF(&payload.Order, w.pdfStoragePath)
	if pdfErr != nil {
		errMsg := pdfErr.Error()
		rec.LastError = &errMsg
		rec.RetryCount++
		next := time.Now().Add(ComputeRetryBackoff(rec.RetryCount))
		rec.NextRetryAt = &next
		_ = w.receipts.Update(ctx, rec)
		log.Warn().Err(pdfErr).Str("order_id", payload.Order.ID).
			Time("next_retry_at", next).
			Msg("receipt_worker: PDF generation failed, scheduled retry")
		return
	}

	rec.PDFPath = &pdfPath
	rec.Status = "issued"
	rec.NextRetryAt = nil
	rec.LastError = nil
	if err := w.receipts.Update(ctx, rec); err != nil {
		log.Error().Err(err).Str("order_id", payload.Order.ID).
			Msg("receipt_worker: failed to update receipt row")
	}
	log.Info().Str("order_id", payload.Order.ID).Str("pdf", pdfPath).
		Msg("receipt_worker: receipt issued")

	if payload.CustomerEmail != "" {
		emailJob := EmailJobPayload{
			ReceiptID: rec.ID.String(),
			ToEmail:   payload.CustomerEmail,
			Subject:   fmt.Sprintf("Your brewpos receipt (order %.8s)", payload.Order.ID),
			Body:      fmt.Sprintf("Attached is your receipt.\nTotal: $%s", payload.Order.Total.StringFixed(2)),
			PDFPath:   pdfPath,
		}
		if err := w.dispatcher.EnqueueEmail(ctx, emailJob); err != nil {
			log.Warn().Err(err).Str("email", payload.CustomerEmail).
				Msg("receipt_worker: failed to enqueue email")
		}
	}
}

// ComputeRetryBackoff doubles the wait per attempt: 1m, 2m, 4m, ...
func ComputeRetryBackoff(retryCount int) time.Duration {
	if retryCount < 1 {
		retryCount = 1
	}
	return time.Duration(1<<uint(retryCount-1)) * time.Minute
}
