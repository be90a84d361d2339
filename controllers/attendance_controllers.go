package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/huyphamdev/laundry-pos/models"
	"github.com/huyphamdev/laundry-pos/services"
	"github.com/huyphamdev/laundry-pos/utils"
)

type AttendanceController struct {
	DB *gorm.DB
}

func NewAttendanceController(db *gorm.DB) *AttendanceController {
	return &AttendanceController{DB: db}
}

// CheckIn opens a shift for the calling employer.
func (ac *AttendanceController) CheckIn(c *gin.Context) {
	p := principalFromContext(c)
	if p.Role != models.RoleEmployer {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}
	if p.StoreID == nil {
		utils.RespondAppError(c, utils.NewValidationError("your account is not linked to a store"))
		return
	}

	var open int64
	err := ac.DB.Model(&models.Attendance{}).
		Where("user_id = ? AND check_out IS NULL", p.ID).
		Count(&open).Error
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if open > 0 {
		utils.RespondAppError(c, utils.NewValidationError("you already have an open shift"))
		return
	}

	shift := models.Attendance{
		UserID:  p.ID,
		StoreID: *p.StoreID,
		CheckIn: time.Now(),
	}
	if err := ac.DB.Create(&shift).Error; err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Checked in", shift)
}

// CheckOut closes the caller's open shift.
func (ac *AttendanceController) CheckOut(c *gin.Context) {
	p := principalFromContext(c)
	if p.Role != models.RoleEmployer {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	var shift models.Attendance
	err := ac.DB.Where("user_id = ? AND check_out IS NULL", p.ID).
		Order("check_in DESC").
		First(&shift).Error
	if err != nil {
		utils.RespondAppError(c, utils.NewValidationError("no open shift to check out of"))
		return
	}

	now := time.Now()
	shift.CheckOut = &now
	if err := ac.DB.Save(&shift).Error; err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Checked out", shift)
}

// GetAllAttendance -> scoped shift list; employers see their own store,
// admins the whole chain.
func (ac *AttendanceController) GetAllAttendance(c *gin.Context) {
	p := principalFromContext(c)

	storeID, err := parseUintQuery(c, "store_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	scope, err := services.ResolveOrderScope(ac.DB, p, storeID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	q := ac.DB.Model(&models.Attendance{}).Preload("User")
	q = scope.ApplyStoreColumn(q, "attendances.store_id")
	if userID, err := parseUintQuery(c, "user_id"); err == nil && userID != nil {
		q = q.Where("attendances.user_id = ?", *userID)
	}
	if start := c.Query("start_date"); start != "" {
		q = q.Where("DATE(attendances.check_in) >= ?", start)
	}
	if end := c.Query("end_date"); end != "" {
		q = q.Where("DATE(attendances.check_in) <= ?", end)
	}

	var shifts []models.Attendance
	if err := q.Order("attendances.check_in DESC").Find(&shifts).Error; err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Attendance", shifts)
}
