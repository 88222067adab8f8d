package worker

// retry_cron.go
// Periodically re-attempts receipts whose PDF generation failed. Receipts
// stay "pending" with next_retry_at set by the receipt worker; after
// MaxReceiptRetries attempts they are marked "error" and sent to the DLQ.

import (
	"context"
	"encoding/json"
	"time"

	"brewpos/internal/infra"
	"brewpos/internal/model"
	"brewpos/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	retryCronInterval = 30 * time.Second
	retryBatchSize    = 20

	// MaxReceiptRetries bounds PDF re-attempts before a receipt is abandoned.
	MaxReceiptRetries = 5
)

type RetryCron struct {
	receipts       repository.ReceiptRepository
	dispatcher     *Dispatcher
	cb             *infra.CircuitBreaker
	rdb            *redis.Client
	pdfStoragePath string
}

func NewRetryCron(receipts repository.ReceiptRepository, dispatcher *Dispatcher, cb *infra.CircuitBreaker, rdb *redis.Client, pdfStoragePath string) *RetryCron {
	return &RetryCron{receipts: receipts, dispatcher: dispatcher, cb: cb, rdb: rdb, pdfStoragePath: pdfStoragePath}
}

// Start runs the cron until ctx is cancelled.
func (c *RetryCron) Start(ctx context.Context) {
	ticker := time.NewTicker(retryCronInterval)
	defer ticker.Stop()

	log.Info().Dur("interval", retryCronInterval).Msg("retry_cron: started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("retry_cron: stopped")
			return
		case <-ticker.C:
			c.tick(ctx)
		}
	}
}

func (c *RetryCron) tick(ctx context.Context) {
	if c.cb.State() == infra.CBOpen {
		log.Debug().Msg("retry_cron: circuit open, skipping sweep")
		return
	}

	due, err := c.receipts.FindDueForRetry(ctx, time.Now(), retryBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("retry_cron: failed to list due receipts")
		return
	}
	if len(due) == 0 {
		return
	}

	log.Info().Int("count", len(due)).Msg("retry_cron: re-attempting receipts")

	for i := range due {
		rec := &due[i]
		if rec.RetryCount >= MaxReceiptRetries {
			rec.Status = "error"
			rec.NextRetryAt = nil
			if err := c.receipts.Update(ctx, rec); err != nil {
				log.Error().Err(err).Str("receipt_id", rec.ID.String()).
					Msg("retry_cron: failed to mark receipt as error")
				continue
			}
			entry, _ := json.Marshal(map[string]string{
				"receipt_id": rec.ID.String(),
				"order_id":   rec.OrderID,
			})
			SendToDLQ(ctx, c.rdb, QueueReceipt, "receipt_retry", entry, "retry limit exceeded", rec.RetryCount)
			log.Warn().Str("receipt_id", rec.ID.String()).Int("attempts", rec.RetryCount).
				Msg("retry_cron: receipt abandoned after retry limit")
			continue
		}

		c.retryOne(ctx, rec)
	}
}

// retryOne re-runs PDF generation for one receipt through the breaker. The
// order snapshot is not stored on the receipt row, so the retry renders from
// the receipt's own fields with a minimal order reconstruction.
func (c *RetryCron) retryOne(ctx context.Context, rec *model.Receipt) {
	err := c.cb.Execute(func() error {
		path, genErr := infra.GenerateReceiptSummaryPDF(rec.OrderID, rec.Total, rec.CreatedAt, c.pdfStoragePath)
		if genErr != nil {
			return genErr
		}
		rec.PDFPath = &path
		return nil
	})
	if err != nil {
		errMsg := err.Error()
		rec.LastError = &errMsg
		rec.RetryCount++
		next := time.Now().Add(ComputeRetryBackoff(rec.RetryCount))
		rec.NextRetryAt = &next
		if uerr := c.receipts.Update(ctx, rec); uerr != nil {
			log.Error().Err(uerr).Str("receipt_id", rec.ID.String()).
				Msg("retry_cron: failed to persist retry state")
		}
		return
	}

	rec.Status = "issued"
	rec.NextRetryAt = nil
	rec.LastError = nil
	if err := c.receipts.Update(ctx, rec); err != nil {
		log.Error().Err(err).Str("receipt_id", rec.ID.String()).
			Msg("retry_cron: failed to mark receipt issued")
		return
	}
	log.Info().Str("receipt_id", rec.ID.String()).Msg("retry_cron: receipt recovered")

	if rec.CustomerEmail != nil && *rec.CustomerEmail != "" && !rec.EmailSent && rec.PDFPath != nil {
		job := EmailJobPayload{
			ReceiptID: rec.ID.String(),
			ToEmail:   *rec.CustomerEmail,
			Subject:   "Your brewpos receipt",
			Body:      "Attached is your receipt.",
			PDFPath:   *rec.PDFPath,
		}
		if err := c.dispatcher.EnqueueEmail(ctx, job); err != nil {
			log.Warn().Err(err).Msg("retry_cron: failed to enqueue recovered email")
		}
	}
}
