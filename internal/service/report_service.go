package service

// report_service.go streams the order history as CSV for spreadsheet import.
// The file opens with a UTF-8 BOM so Excel detects the encoding.

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"brewpos/internal/apierror"
	"brewpos/internal/dto"
	"brewpos/internal/model"
	"brewpos/internal/state"
)

var csvHeader = []string{"Date", "OrderID", "Type", "Channel", "Payment", "Total", "Voided"}

const reportDateLayout = "2006-01-02"

type ReportService struct {
	manager *state.Manager
}

func NewReportService(manager *state.Manager) *ReportService {
	return &ReportService{manager: manager}
}

// WriteOrdersCSV writes the filtered order report to w. Rows follow the
// document order (most recent first). Returns the number of data rows written.
func (s *ReportService) WriteOrdersCSV(ctx context.Context, orgID uuid.UUID, filter *dto.OrderReportFilter, w io.Writer) (int, error) {
	from, to, err := parseDateRange(filter)
	if err != nil {
		return 0, err
	}

	st, err := s.manager.Acquire(ctx, orgID)
	if err != nil {
		return 0, err
	}

	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return 0, fmt.Errorf("write BOM: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}

	rows := 0
	for _, o := range st.Orders() {
		if !matchesFilter(&o, filter, from, to) {
			continue
		}
		orderType := "sale"
		if o.Voided {
			orderType = "void"
		}
		record := []string{
			o.CreatedAt.Format(time.RFC3339),
			o.ID,
			orderType,
			o.Channel,
			o.Payment,
			o.Total.StringFixed(2),
			fmt.Sprintf("%t", o.Voided),
		}
		if err := cw.Write(record); err != nil {
			return rows, fmt.Errorf("write row: %w", err)
		}
		rows++
	}

	cw.Flush()
	return rows, cw.Error()
}

func parseDateRange(filter *dto.OrderReportFilter) (from, to *time.Time, err error) {
	if filter == nil {
		return nil, nil, nil
	}
	if filter.From != "" {
		t, perr := time.Parse(reportDateLayout, filter.From)
		if perr != nil {
			return nil, nil, &apierror.ValidationError{Field: "from", Detail: "expected YYYY-MM-DD"}
		}
		from = &t
	}
	if filter.To != "" {
		t, perr := time.Parse(reportDateLayout, filter.To)
		if perr != nil {
			return nil, nil, &apierror.ValidationError{Field: "to", Detail: "expected YYYY-MM-DD"}
		}
		// inclusive upper bound
		t = t.Add(24*time.Hour - time.Nanosecond)
		to = &t
	}
	return from, to, nil
}

func matchesFilter(o *model.Order, filter *dto.OrderReportFilter, from, to *time.Time) bool {
	if from != nil && o.CreatedAt.Before(*from) {
		return false
	}
	if to != nil && o.CreatedAt.After(*to) {
		return false
	}
	if filter == nil {
		return true
	}
	switch filter.Status {
	case "active":
		if o.Voided {
			return false
		}
	case "voided":
		if !o.Voided {
			return false
		}
	}
	if filter.Channel != "" && o.Channel != filter.Channel {
		return false
	}
	return true
}
