package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/huyphamdev/laundry-pos/models"
	"github.com/huyphamdev/laundry-pos/services"
	"github.com/huyphamdev/laundry-pos/utils"
)

type UserController struct {
	DB *gorm.DB
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{DB: db}
}

// Login -> return JWT
func (uc *UserController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var user models.User
	if err := uc.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid credentials"))
		return
	}
	if user.Status != "active" {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("account is disabled"))
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid credentials"))
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Role, user.StoreID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.InfoLogger.Printf("Login: %s (role=%s)", user.Email, user.Role)
	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"token": token,
		"user":  user,
	})
}

// GetProfile -> the account behind the token
func (uc *UserController) GetProfile(c *gin.Context) {
	p := principalFromContext(c)

	var user models.User
	if err := uc.DB.Preload("Store").First(&user, p.ID).Error; err != nil {
		utils.RespondAppError(c, utils.NewNotFoundError("user"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Profile", user)
}

// CreateUser -> root creates chain admins, admins create employers
// pinned to one of their stores.
func (uc *UserController) CreateUser(c *gin.Context) {
	p := principalFromContext(c)

	var req struct {
		Name       string  `json:"name" binding:"required"`
		Email      string  `json:"email" binding:"required,email"`
		Password   string  `json:"password" binding:"required,min=6"`
		StoreID    *uint   `json:"store_id"`
		HourlyRate float64 `json:"hourly_rate"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	user := models.User{
		Name:       req.Name,
		Email:      req.Email,
		HourlyRate: req.HourlyRate,
		Status:     "active",
	}

	switch p.Role {
	case models.RoleRoot:
		user.Role = models.RoleAdmin
	case models.RoleAdmin:
		if req.StoreID == nil {
			utils.RespondAppError(c, utils.NewValidationError("store_id is required for employer accounts"))
			return
		}
		ok, err := services.StoreInChain(uc.DB, p.ID, *req.StoreID)
		if err != nil {
			utils.RespondAppError(c, err)
			return
		}
		if !ok {
			utils.RespondAppError(c, utils.NewForbiddenError("store does not belong to your chain"))
			return
		}
		user.Role = models.RoleEmployer
		user.StoreID = req.StoreID
	default:
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	user.Password = string(hashed)

	if err := uc.DB.Create(&user).Error; err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.InfoLogger.Printf("New user registered: %s (role=%s)", user.Email, user.Role)
	utils.RespondJSON(c, http.StatusCreated, "User created", gin.H{"user_id": user.ID})
}

// GetAllUsers -> root sees admins, admin sees chain employees
func (uc *UserController) GetAllUsers(c *gin.Context) {
	p := principalFromContext(c)

	var users []models.User
	q := uc.DB.Preload("Store")
	switch p.Role {
	case models.RoleRoot:
		q = q.Where("role = ?", models.RoleAdmin)
	case models.RoleAdmin:
		q = q.Where("role = ? AND store_id IN (SELECT id FROM stores WHERE admin_id = ?)",
			models.RoleEmployer, p.ID)
	default:
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	if err := q.Order("id").Find(&users).Error; err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of users", users)
}

// DeactivateUser -> soft disable; the account keeps its history
func (uc *UserController) DeactivateUser(c *gin.Context) {
	p := principalFromContext(c)

	id, err := parseUintParam(c, "user_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var user models.User
	if err := uc.DB.First(&user, id).Error; err != nil {
		utils.RespondAppError(c, utils.NewNotFoundError("user"))
		return
	}

	switch p.Role {
	case models.RoleRoot:
		if user.Role != models.RoleAdmin {
			utils.RespondAppError(c, utils.NewNotFoundError("user"))
			return
		}
	case models.RoleAdmin:
		ok, chainErr := services.UserInChain(uc.DB, p.ID, user.ID)
		if chainErr != nil {
			utils.RespondAppError(c, chainErr)
			return
		}
		if !ok {
			utils.RespondAppError(c, utils.NewNotFoundError("user"))
			return
		}
	default:
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	if err := uc.DB.Model(&user).Update("status", "inactive").Error; err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "User deactivated", gin.H{"user_id": user.ID})
}
