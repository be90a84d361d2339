package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/huyphamdev/laundry-pos/models"
	"github.com/huyphamdev/laundry-pos/services"
	"github.com/huyphamdev/laundry-pos/utils"
)

type ReportController struct {
	DB *gorm.DB
}

func NewReportController(db *gorm.DB) *ReportController {
	return &ReportController{DB: db}
}

// Revenue is realized on COALESCE(debt_paid_at, updated_at): a debt
// order counts on the day it was collected, not the day it completed,
// and not at all while unpaid.
const realizedRevenueDate = "COALESCE(orders.debt_paid_at, orders.updated_at)"

func (rc *ReportController) scopedRevenueQuery(c *gin.Context) (*gorm.DB, error) {
	p := principalFromContext(c)

	storeID, err := parseUintQuery(c, "store_id")
	if err != nil {
		return nil, utils.NewValidationError(err.Error())
	}
	scope, err := services.ResolveOrderScope(rc.DB, p, storeID)
	if err != nil {
		return nil, err
	}

	q := rc.DB.Model(&models.Order{}).
		Where("orders.status = ?", models.OrderCompleted).
		Where("NOT (orders.is_debt = ? AND orders.debt_paid_at IS NULL)", true)
	q = scope.ApplyOrders(q)

	if start := c.Query("start_date"); start != "" {
		q = q.Where("DATE("+realizedRevenueDate+") >= ?", start)
	}
	if end := c.Query("end_date"); end != "" {
		q = q.Where("DATE("+realizedRevenueDate+") <= ?", end)
	}
	return q, nil
}

// GetRevenueSummary -> totals over a date range
func (rc *ReportController) GetRevenueSummary(c *gin.Context) {
	q, err := rc.scopedRevenueQuery(c)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	var summary struct {
		TotalRevenue  float64 `json:"total_revenue"`
		TotalDiscount float64 `json:"total_discount"`
		OrderCount    int64   `json:"order_count"`
	}
	err = q.Select("COALESCE(SUM(orders.final_amount), 0) AS total_revenue, " +
		"COALESCE(SUM(orders.discount_amount), 0) AS total_discount, " +
		"COUNT(*) AS order_count").
		Scan(&summary).Error
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	// Outstanding debt is reported alongside but never counted as
	// realized revenue.
	p := principalFromContext(c)
	storeID, _ := parseUintQuery(c, "store_id")
	scope, err := services.ResolveOrderScope(rc.DB, p, storeID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	var outstanding float64
	debtQ := rc.DB.Model(&models.Order{}).
		Where("orders.status = ?", models.OrderCompleted).
		Where("orders.is_debt = ? AND orders.debt_paid_at IS NULL", true)
	err = scope.ApplyOrders(debtQ).
		Select("COALESCE(SUM(orders.final_amount), 0)").
		Scan(&outstanding).Error
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Revenue summary", gin.H{
		"total_revenue":    summary.TotalRevenue,
		"total_discount":   summary.TotalDiscount,
		"order_count":      summary.OrderCount,
		"debt_outstanding": outstanding,
	})
}

// GetRevenueDaily -> per-day realized revenue
func (rc *ReportController) GetRevenueDaily(c *gin.Context) {
	q, err := rc.scopedRevenueQuery(c)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	var rows []struct {
		Date       string  `json:"date"`
		Revenue    float64 `json:"revenue"`
		OrderCount int64   `json:"order_count"`
	}
	err = q.Select("DATE(" + realizedRevenueDate + ") AS date, " +
		"COALESCE(SUM(orders.final_amount), 0) AS revenue, " +
		"COUNT(*) AS order_count").
		Group("DATE(" + realizedRevenueDate + ")").
		Order("date").
		Scan(&rows).Error
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Daily revenue", rows)
}

// GetPayroll -> hours and pay per employee over a date range, from
// closed attendance shifts.
func (rc *ReportController) GetPayroll(c *gin.Context) {
	p := principalFromContext(c)

	storeID, err := parseUintQuery(c, "store_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	scope, err := services.ResolveOrderScope(rc.DB, p, storeID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	q := rc.DB.Model(&models.Attendance{}).
		Preload("User").
		Where("attendances.check_out IS NOT NULL")
	q = scope.ApplyStoreColumn(q, "attendances.store_id")
	if start := c.Query("start_date"); start != "" {
		q = q.Where("DATE(attendances.check_in) >= ?", start)
	}
	if end := c.Query("end_date"); end != "" {
		q = q.Where("DATE(attendances.check_in) <= ?", end)
	}

	var shifts []models.Attendance
	if err := q.Find(&shifts).Error; err != nil {
		utils.RespondAppError(c, err)
		return
	}

	type payrollRow struct {
		UserID     uint    `json:"user_id"`
		Name       string  `json:"name"`
		HourlyRate float64 `json:"hourly_rate"`
		Hours      float64 `json:"hours"`
		Pay        float64 `json:"pay"`
	}
	byUser := make(map[uint]*payrollRow)
	order := make([]uint, 0)
	for _, shift := range shifts {
		row, ok := byUser[shift.UserID]
		if !ok {
			row = &payrollRow{UserID: shift.UserID}
			if shift.User != nil {
				row.Name = shift.User.Name
				row.HourlyRate = shift.User.HourlyRate
			}
			byUser[shift.UserID] = row
			order = append(order, shift.UserID)
		}
		row.Hours += shift.Hours()
	}

	rows := make([]payrollRow, 0, len(order))
	for _, id := range order {
		row := byUser[id]
		row.Pay = row.Hours * row.HourlyRate
		rows = append(rows, *row)
	}
	utils.RespondJSON(c, http.StatusOK, "Payroll", rows)
}
