package service

// order_service.go implements the order engine: checkout, void, restore and
// listing. All state changes go through a single Store.Mutate call so a
// checkout either fully commits (order appended + every deduction applied) or
// leaves state untouched.

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"brewpos/internal/apierror"
	"brewpos/internal/dto"
	"brewpos/internal/model"
	"brewpos/internal/repository"
	"brewpos/internal/state"
	"brewpos/internal/worker"
)

// ReceiptQueue is the slice of the job dispatcher checkout needs.
type ReceiptQueue interface {
	EnqueueReceipt(ctx context.Context, payload interface{}) error
}

type OrderService struct {
	manager   *state.Manager
	movements repository.StockMovementRepository
	receipts  ReceiptQueue
}

func NewOrderService(manager *state.Manager, movements repository.StockMovementRepository, receipts ReceiptQueue) *OrderService {
	return &OrderService{manager: manager, movements: movements, receipts: receipts}
}

// Checkout validates the cart against current stock and, when every line can
// be fulfilled, appends the order and applies all deductions in one commit.
// On any shortfall nothing changes and the error lists every failing line.
func (s *OrderService) Checkout(ctx context.Context, orgID uuid.UUID, req *dto.CheckoutRequest) (*model.Order, error) {
	st, err := s.manager.Acquire(ctx, orgID)
	if err != nil {
		return nil, err
	}

	if req.Channel == model.ChannelDelivery && req.DeliveryAddress == "" {
		return nil, &apierror.ValidationError{Field: "delivery_address", Detail: "required for delivery orders"}
	}

	order := &model.Order{
		ID:              uuid.NewString(),
		CreatedAt:       time.Now().UTC(),
		Payment:         req.Payment,
		Channel:         req.Channel,
		DeliveryAddress: req.DeliveryAddress,
	}
	if req.DeliveryFee != nil {
		order.DeliveryFee = *req.DeliveryFee
	}

	err = st.Mutate(ctx, func(m *state.Mutation) error {
		inv := m.Inventory()

		// Resolve every cart line against the catalog first. Unknown
		// products abort before any stock math happens.
		lines := make([]model.OrderLine, 0, len(req.Items))
		for _, item := range req.Items {
			sec, prod := inv.FindProduct(item.ProductID)
			if prod == nil {
				return &apierror.NotFoundError{Kind: "product", ID: item.ProductID}
			}
			lines = append(lines, model.OrderLine{
				ProductID:   prod.ID,
				Name:        prod.Name,
				Section:     sec,
				Quantity:    item.Quantity,
				Price:       prod.Price,
				UsagePerCup: prod.UsagePerCup,
				Grams:       prod.Grams,
			})
		}

		// Sum required kilograms per product so two lines of the same
		// product are checked against stock together.
		required := make(map[string]decimal.Decimal, len(lines))
		for _, l := range lines {
			required[l.ProductID] = required[l.ProductID].Add(l.Deduction())
		}

		// Check in cart order so the shortfall report reads the way the
		// cashier entered the cart. Each product is reported once.
		var shortfalls []apierror.StockShortfall
		seen := make(map[string]bool, len(lines))
		for _, l := range lines {
			if seen[l.ProductID] {
				continue
			}
			seen[l.ProductID] = true
			_, prod := inv.FindProduct(l.ProductID)
			if need := required[l.ProductID]; need.GreaterThan(prod.Stock) {
				shortfalls = append(shortfalls, apierror.StockShortfall{
					ProductID: prod.ID,
					Name:      prod.Name,
					Required:  need,
					Available: prod.Stock,
				})
			}
		}
		if len(shortfalls) > 0 {
			return &apierror.InsufficientStockError{Shortfalls: shortfalls}
		}

		for id, deduct := range required {
			_, prod := inv.FindProduct(id)
			prod.Stock = prod.Stock.Sub(deduct)
			if prod.Stock.IsNegative() {
				prod.Stock = decimal.Zero
			}
		}

		order.Lines = lines
		if req.Total != nil && req.Total.IsPositive() {
			order.Total = *req.Total
		} else {
			order.Total = order.LinesTotal()
		}

		m.SetInventory(inv)
		// Newest order goes first so the persisted document and every
		// broadcast carry the collection most-recent-first.
		m.SetOrders(append([]model.Order{*order}, m.Orders()...))
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditLines(ctx, orgID, order, "sale", decimal.NewFromInt(-1))
	s.enqueueReceipt(ctx, orgID, order, req.CustomerEmail)

	log.Info().Str("org_id", orgID.String()).Str("order_id", order.ID).
		Str("total", order.Total.StringFixed(2)).Msg("order checked out")
	return order, nil
}

// Void marks an order voided and, unless restock is disabled, returns each
// line's deduction to stock. Voiding an already-voided order is a no-op that
// returns the order unchanged, so double-clicks and replays are safe.
func (s *OrderService) Void(ctx context.Context, orgID uuid.UUID, orderID string, req *dto.VoidRequest) (*model.Order, error) {
	st, err := s.manager.Acquire(ctx, orgID)
	if err != nil {
		return nil, err
	}

	restock := true
	if req != nil && req.Restock != nil {
		restock = *req.Restock
	}

	var voided *model.Order
	var alreadyVoided bool
	err = st.Mutate(ctx, func(m *state.Mutation) error {
		orders := m.Orders()
		idx := -1
		for i := range orders {
			if orders[i].ID == orderID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return &apierror.NotFoundError{Kind: "order", ID: orderID}
		}
		if orders[idx].Voided {
			alreadyVoided = true
			cp := orders[idx]
			voided = &cp
			return nil
		}

		now := time.Now().UTC()
		orders[idx].Voided = true
		orders[idx].VoidedAt = &now
		if req != nil {
			orders[idx].VoidReason = req.Reason
		}

		if restock {
			inv := m.Inventory()
			for _, l := range orders[idx].Lines {
				// Lines whose product has since been deleted are
				// skipped: there is nothing to return stock to.
				_, prod := inv.FindProduct(l.ProductID)
				if prod == nil {
					continue
				}
				prod.Stock = prod.Stock.Add(l.Deduction())
			}
			m.SetInventory(inv)
		}

		cp := orders[idx]
		voided = &cp
		m.SetOrders(orders)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !alreadyVoided && restock {
		s.auditLines(ctx, orgID, voided, "void_restock", decimal.NewFromInt(1))
	}
	if !alreadyVoided {
		log.Info().Str("org_id", orgID.String()).Str("order_id", orderID).
			Bool("restock", restock).Msg("order voided")
	}
	return voided, nil
}

// Restore un-voids an order, re-validating and re-applying its deductions the
// same way a fresh checkout would.
func (s *OrderService) Restore(ctx context.Context, orgID uuid.UUID, orderID string) (*model.Order, error) {
	st, err := s.manager.Acquire(ctx, orgID)
	if err != nil {
		return nil, err
	}

	var restored *model.Order
	err = st.Mutate(ctx, func(m *state.Mutation) error {
		orders := m.Orders()
		idx := -1
		for i := range orders {
			if orders[i].ID == orderID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return &apierror.NotFoundError{Kind: "order", ID: orderID}
		}
		if !orders[idx].Voided {
			cp := orders[idx]
			restored = &cp
			return nil
		}

		inv := m.Inventory()

		// Same aggregated sufficiency check as checkout: two lines of one
		// product must be covered together, not individually.
		required := make(map[string]decimal.Decimal, len(orders[idx].Lines))
		for _, l := range orders[idx].Lines {
			required[l.ProductID] = required[l.ProductID].Add(l.Deduction())
		}

		var shortfalls []apierror.StockShortfall
		seen := make(map[string]bool, len(orders[idx].Lines))
		for _, l := range orders[idx].Lines {
			if seen[l.ProductID] {
				continue
			}
			seen[l.ProductID] = true
			_, prod := inv.FindProduct(l.ProductID)
			if prod == nil {
				return &apierror.NotFoundError{Kind: "product", ID: l.ProductID}
			}
			if need := required[l.ProductID]; need.GreaterThan(prod.Stock) {
				shortfalls = append(shortfalls, apierror.StockShortfall{
					ProductID: prod.ID,
					Name:      prod.Name,
					Required:  need,
					Available: prod.Stock,
				})
			}
		}
		if len(shortfalls) > 0 {
			return &apierror.InsufficientStockError{Shortfalls: shortfalls}
		}

		for id, deduct := range required {
			_, prod := inv.FindProduct(id)
			prod.Stock = prod.Stock.Sub(deduct)
			if prod.Stock.IsNegative() {
				prod.Stock = decimal.Zero
			}
		}

		orders[idx].Voided = false
		orders[idx].VoidReason = ""
		orders[idx].VoidedAt = nil

		cp := orders[idx]
		restored = &cp
		m.SetInventory(inv)
		m.SetOrders(orders)
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("org_id", orgID.String()).Str("order_id", orderID).Msg("order restored")
	return restored, nil
}

// Get returns one order by id.
func (s *OrderService) Get(ctx context.Context, orgID uuid.UUID, orderID string) (*model.Order, error) {
	st, err := s.manager.Acquire(ctx, orgID)
	if err != nil {
		return nil, err
	}
	for _, o := range st.Orders() {
		if o.ID == orderID {
			return &o, nil
		}
	}
	return nil, &apierror.NotFoundError{Kind: "order", ID: orderID}
}

// List returns the org's orders matching filter. The document keeps orders
// most-recent-first so no reordering is needed. A nil filter returns
// everything.
func (s *OrderService) List(ctx context.Context, orgID uuid.UUID, filter *dto.OrderReportFilter) ([]model.Order, error) {
	from, to, err := parseDateRange(filter)
	if err != nil {
		return nil, err
	}
	st, err := s.manager.Acquire(ctx, orgID)
	if err != nil {
		return nil, err
	}
	all := st.Orders()
	orders := make([]model.Order, 0, len(all))
	for i := range all {
		if matchesFilter(&all[i], filter, from, to) {
			orders = append(orders, all[i])
		}
	}
	return orders, nil
}

// auditLines writes one stock movement per order line. Best-effort: an insert
// failure is logged and the sale proceeds.
func (s *OrderService) auditLines(ctx context.Context, orgID uuid.UUID, order *model.Order, movType string, sign decimal.Decimal) {
	for _, l := range order.Lines {
		delta := l.Deduction().Mul(sign)
		if delta.IsZero() {
			continue
		}
		mv := &model.StockMovement{
			OrgID:     orgID,
			ProductID: l.ProductID,
			Type:      movType,
			DeltaKg:   delta,
			OrderID:   &order.ID,
		}
		if err := s.movements.Create(ctx, mv); err != nil {
			log.Warn().Err(err).Str("product_id", l.ProductID).
				Msg("failed to record stock movement")
		}
	}
}

func (s *OrderService) enqueueReceipt(ctx context.Context, orgID uuid.UUID, order *model.Order, customerEmail string) {
	payload := worker.ReceiptJobPayload{
		OrgID:         orgID,
		Order:         *order,
		CustomerEmail: customerEmail,
	}
	if err := s.receipts.EnqueueReceipt(ctx, payload); err != nil {
		log.Warn().Err(err).Str("order_id", order.ID).Msg("failed to enqueue receipt job")
	}
}
