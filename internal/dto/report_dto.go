package dto

import "brewpos/internal/model"

// OrderReportFilter drives the CSV export. All fields are optional query
// params; zero values mean "no filter".
type OrderReportFilter struct {
	From    string `form:"from"`    // inclusive, YYYY-MM-DD
	To      string `form:"to"`      // inclusive, YYYY-MM-DD
	Status  string `form:"status" binding:"omitempty,oneof=active voided all"`
	Channel string `form:"channel" binding:"omitempty,oneof=instore delivery"`
}

type StockMovementListResponse struct {
	Movements []model.StockMovement `json:"movements"`
	Total     int64                 `json:"total"`
	Page      int                   `json:"page"`
	PageSize  int                   `json:"page_size"`
}
