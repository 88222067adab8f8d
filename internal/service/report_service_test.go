package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brewpos/internal/dto"
	"brewpos/internal/model"
)

func exportCSV(t *testing.T, f *fixture, filter *dto.OrderReportFilter) (string, [][]string) {
	t.Helper()
	svc := NewReportService(f.manager)
	var buf bytes.Buffer
	_, err := svc.WriteOrdersCSV(context.Background(), f.org, filter, &buf)
	require.NoError(t, err)

	raw := buf.String()
	records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(raw, "\ufeff"))).ReadAll()
	require.NoError(t, err)
	return raw, records
}

func TestCSVStartsWithBOMAndHeader(t *testing.T) {
	f := newFixture(t)
	checkout(t, f, dto.CheckoutItem{ProductID: "latte", Quantity: 1})

	raw, records := exportCSV(t, f, nil)

	assert.True(t, strings.HasPrefix(raw, "\xEF\xBB\xBF"), "UTF-8 BOM first")
	require.NotEmpty(t, records)
	assert.Equal(t, []string{"Date", "OrderID", "Type", "Channel", "Payment", "Total", "Voided"}, records[0])
	require.Len(t, records, 2)
	assert.Equal(t, "sale", records[1][2])
	assert.Equal(t, "4.50", records[1][5])
	assert.Equal(t, "false", records[1][6])
}

func TestCSVVoidedRow(t *testing.T) {
	f := newFixture(t)
	order := checkout(t, f, dto.CheckoutItem{ProductID: "latte", Quantity: 1})
	_, err := f.svc.Void(context.Background(), f.org, order.ID, &dto.VoidRequest{})
	require.NoError(t, err)

	_, records := exportCSV(t, f, nil)

	require.Len(t, records, 2)
	assert.Equal(t, "void", records[1][2])
	assert.Equal(t, "true", records[1][6])
}

func TestCSVStatusFilter(t *testing.T) {
	f := newFixture(t)
	kept := checkout(t, f, dto.CheckoutItem{ProductID: "latte", Quantity: 1})
	voided := checkout(t, f, dto.CheckoutItem{ProductID: "latte", Quantity: 1})
	_, err := f.svc.Void(context.Background(), f.org, voided.ID, &dto.VoidRequest{})
	require.NoError(t, err)

	_, active := exportCSV(t, f, &dto.OrderReportFilter{Status: "active"})
	require.Len(t, active, 2)
	assert.Equal(t, kept.ID, active[1][1])

	_, onlyVoided := exportCSV(t, f, &dto.OrderReportFilter{Status: "voided"})
	require.Len(t, onlyVoided, 2)
	assert.Equal(t, voided.ID, onlyVoided[1][1])

	_, all := exportCSV(t, f, &dto.OrderReportFilter{Status: "all"})
	assert.Len(t, all, 3)
}

func TestCSVChannelFilter(t *testing.T) {
	f := newFixture(t)
	checkout(t, f, dto.CheckoutItem{ProductID: "latte", Quantity: 1})
	_, err := f.svc.Checkout(context.Background(), f.org, &dto.CheckoutRequest{
		Items:           []dto.CheckoutItem{{ProductID: "latte", Quantity: 1}},
		Payment:         model.PaymentCash,
		Channel:         model.ChannelDelivery,
		DeliveryAddress: "12 Bean St",
	})
	require.NoError(t, err)

	_, delivery := exportCSV(t, f, &dto.OrderReportFilter{Channel: "delivery"})
	require.Len(t, delivery, 2)
	assert.Equal(t, "delivery", delivery[1][3])
}

func TestCSVDateFilterRejectsGarbage(t *testing.T) {
	f := newFixture(t)
	svc := NewReportService(f.manager)

	var buf bytes.Buffer
	_, err := svc.WriteOrdersCSV(context.Background(), f.org, &dto.OrderReportFilter{From: "yesterday"}, &buf)
	require.Error(t, err)
	assert.Zero(t, buf.Len(), "nothing written before validation")
}

func TestCSVDateRangeInclusive(t *testing.T) {
	f := newFixture(t)
	checkout(t, f, dto.CheckoutItem{ProductID: "latte", Quantity: 1})

	today := time.Now().UTC().Format("2006-01-02")
	_, records := exportCSV(t, f, &dto.OrderReportFilter{From: today, To: today})
	assert.Len(t, records, 2, "an order placed today matches from=to=today")
}
