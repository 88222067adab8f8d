package worker

import (
	"context"
	"encoding/json"

	"brewpos/internal/infra"
	"brewpos/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type EmailJobPayload struct {
	ReceiptID string `json:"receipt_id"`
	ToEmail   string `json:"to_email"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	PDFPath   string `json:"pdf_path,omitempty"`
}

type EmailWorker struct {
	mailer   *infra.Mailer
	receipts repository.ReceiptRepository
	rdb      *redis.Client
}

func NewEmailWorker(mailer *infra.Mailer, receipts repository.ReceiptRepository, rdb *redis.Client) *EmailWorker {
	return &EmailWorker{mailer: mailer, receipts: receipts, rdb: rdb}
}

func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return
	}

	if err := w.mailer.SendReceipt(payload.ToEmail, payload.Subject, payload.Body, payload.PDFPath); err != nil {
		log.Warn().Err(err).Str("to", payload.ToEmail).Msg("email_worker: send failed")
		SendToDLQ(ctx, w.rdb, QueueEmail, "email", raw, err.Error(), 1)
		return
	}

	if id, err := uuid.Parse(payload.ReceiptID); err == nil {
		if rec, err := w.receipts.FindByID(ctx, id); err == nil && rec != nil {
			rec.EmailSent = true
			if err := w.receipts.Update(ctx, rec); err != nil {
				log.Warn().Err(err).Str("receipt_id", payload.ReceiptID).
					Msg("email_worker: failed to mark email_sent")
			}
		}
	}

	log.Info().Str("to", payload.ToEmail).Msg("email_worker: receipt email sent")
}
