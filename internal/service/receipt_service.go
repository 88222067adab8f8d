package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"brewpos/internal/apierror"
	"brewpos/internal/model"
	"brewpos/internal/repository"
)

type ReceiptService struct {
	receipts repository.ReceiptRepository
}

func NewReceiptService(receipts repository.ReceiptRepository) *ReceiptService {
	return &ReceiptService{receipts: receipts}
}

// ByOrder returns the receipt record for one order.
func (s *ReceiptService) ByOrder(ctx context.Context, orgID uuid.UUID, orderID string) (*model.Receipt, error) {
	rec, err := s.receipts.FindByOrderID(ctx, orgID, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apierror.NotFoundError{Kind: "receipt", ID: orderID}
		}
		return nil, &apierror.PersistenceError{Op: "load", Err: err}
	}
	return rec, nil
}
