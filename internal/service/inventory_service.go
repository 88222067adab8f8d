package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"brewpos/internal/apierror"
	"brewpos/internal/dto"
	"brewpos/internal/model"
	"brewpos/internal/repository"
	"brewpos/internal/state"
)

type InventoryService struct {
	manager   *state.Manager
	movements repository.StockMovementRepository
}

func NewInventoryService(manager *state.Manager, movements repository.StockMovementRepository) *InventoryService {
	return &InventoryService{manager: manager, movements: movements}
}

// Get returns the org's current inventory snapshot.
func (s *InventoryService) Get(ctx context.Context, orgID uuid.UUID) (*model.Inventory, error) {
	st, err := s.manager.Acquire(ctx, orgID)
	if err != nil {
		return nil, err
	}
	inv := st.Inventory()
	return &inv, nil
}

// Replace swaps the whole inventory document. Incoming lists go through the
// usual normalization, so duplicates and negative stock never land.
func (s *InventoryService) Replace(ctx context.Context, orgID uuid.UUID, req *dto.InventoryResponse) (*model.Inventory, error) {
	st, err := s.manager.Acquire(ctx, orgID)
	if err != nil {
		return nil, err
	}
	err = st.Mutate(ctx, func(m *state.Mutation) error {
		m.SetInventory(model.Inventory{
			Espresso:     req.Espresso,
			SingleOrigin: req.SingleOrigin,
			Beans:        req.Beans,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	inv := st.Inventory()
	log.Info().Str("org_id", orgID.String()).Msg("inventory replaced")
	return &inv, nil
}

// UpsertProduct adds a product to its section or updates it in place when the
// id already exists. A missing id gets a fresh uuid.
func (s *InventoryService) UpsertProduct(ctx context.Context, orgID uuid.UUID, req *dto.UpsertProductRequest) (*model.Product, error) {
	sec, err := model.ParseSection(req.Section)
	if err != nil {
		return nil, &apierror.ValidationError{Field: "section", Detail: err.Error()}
	}

	st, err := s.manager.Acquire(ctx, orgID)
	if err != nil {
		return nil, err
	}

	prod := model.Product{
		ID:    req.ID,
		Name:  req.Name,
		Stock: req.Stock,
		Price: req.Price,
	}
	if prod.ID == "" {
		prod.ID = uuid.NewString()
	}
	if req.UsagePerCup != nil {
		prod.UsagePerCup = *req.UsagePerCup
	}
	if req.Grams != nil {
		prod.Grams = *req.Grams
	}

	err = st.Mutate(ctx, func(m *state.Mutation) error {
		m.UpdateInventory(func(inv model.Inventory) model.Inventory {
			list := inv.Section(sec)
			replaced := false
			for i := range list {
				if list[i].ID == prod.ID {
					list[i] = prod
					replaced = true
					break
				}
			}
			if !replaced {
				inv = withSection(inv, sec, append(list, prod))
			}
			return inv
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &prod, nil
}

// RemoveProduct deletes a product from whichever section holds it.
func (s *InventoryService) RemoveProduct(ctx context.Context, orgID uuid.UUID, productID string) error {
	st, err := s.manager.Acquire(ctx, orgID)
	if err != nil {
		return err
	}
	return st.Mutate(ctx, func(m *state.Mutation) error {
		inv := m.Inventory()
		sec, prod := inv.FindProduct(productID)
		if prod == nil {
			return &apierror.NotFoundError{Kind: "product", ID: productID}
		}
		list := inv.Section(sec)
		kept := make([]model.Product, 0, len(list))
		for _, p := range list {
			if p.ID != productID {
				kept = append(kept, p)
			}
		}
		m.SetInventory(withSection(inv, sec, kept))
		return nil
	})
}

// AdjustStock applies a manual delta (positive or negative) to one product
// and records the movement for auditing. Stock clamps at zero.
func (s *InventoryService) AdjustStock(ctx context.Context, orgID uuid.UUID, req *dto.AdjustStockRequest) (*model.Product, error) {
	st, err := s.manager.Acquire(ctx, orgID)
	if err != nil {
		return nil, err
	}

	var adjusted model.Product
	err = st.Mutate(ctx, func(m *state.Mutation) error {
		inv := m.Inventory()
		_, prod := inv.FindProduct(req.ProductID)
		if prod == nil {
			return &apierror.NotFoundError{Kind: "product", ID: req.ProductID}
		}
		prod.Stock = prod.Stock.Add(req.DeltaKg)
		if prod.Stock.IsNegative() {
			prod.Stock = decimal.Zero
		}
		adjusted = *prod
		m.SetInventory(inv)
		return nil
	})
	if err != nil {
		return nil, err
	}

	mv := &model.StockMovement{
		OrgID:     orgID,
		ProductID: req.ProductID,
		Type:      "manual_adjust",
		DeltaKg:   req.DeltaKg,
		Reason:    req.Reason,
	}
	if err := s.movements.Create(ctx, mv); err != nil {
		log.Warn().Err(err).Str("product_id", req.ProductID).
			Msg("failed to record manual stock movement")
	}
	return &adjusted, nil
}

// Movements lists the org's stock movement audit trail, newest first.
func (s *InventoryService) Movements(ctx context.Context, orgID uuid.UUID, page, limit int) ([]model.StockMovement, int64, error) {
	return s.movements.ListByOrg(ctx, orgID, page, limit)
}

func withSection(inv model.Inventory, sec model.Section, list []model.Product) model.Inventory {
	switch sec {
	case model.SectionEspresso:
		inv.Espresso = list
	case model.SectionSingleOrigin:
		inv.SingleOrigin = list
	case model.SectionBeans:
		inv.Beans = list
	}
	return inv
}
