package Controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/huyphamdev/laundry-pos/controllers"
	"github.com/huyphamdev/laundry-pos/models"
	"github.com/huyphamdev/laundry-pos/utils"
)

func setupTestDBForOrders(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Store{},
		&models.Customer{},
		&models.Product{},
		&models.Promotion{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderStatusHistory{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

// asPrincipal stands in for the auth middleware in tests.
func asPrincipal(userID uint, role string, storeID *uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("role", role)
		c.Set("store_id", storeID)
		c.Next()
	}
}

func setupOrderRouter(db *gorm.DB, userID uint, role string, storeID *uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	router.Use(asPrincipal(userID, role, storeID))

	orderCtrl := controllers.NewOrderController(db)
	router.GET("/orders", orderCtrl.GetAllOrders)
	router.GET("/orders/:order_id", orderCtrl.GetOrderByID)
	router.POST("/orders", orderCtrl.CreateOrder)
	router.POST("/orders/:order_id/status", orderCtrl.UpdateOrderStatus)
	router.PATCH("/orders/:order_id/debt", orderCtrl.MarkDebt)
	router.PATCH("/orders/:order_id/debt/paid", orderCtrl.MarkDebtPaid)
	return router
}

func seedStoreWithEmployer(t *testing.T, db *gorm.DB, tag string) (models.Store, models.User, models.Product) {
	t.Helper()
	admin := models.User{Name: "Admin " + tag, Email: tag + "-admin@test", Password: "x", Role: models.RoleAdmin, Status: "active"}
	db.Create(&admin)
	store := models.Store{Name: "Store " + tag, AdminID: &admin.ID, Status: "active"}
	db.Create(&store)
	employer := models.User{Name: "Emp " + tag, Email: tag + "-emp@test", Password: "x", Role: models.RoleEmployer, StoreID: &store.ID, Status: "active"}
	db.Create(&employer)
	product := models.Product{Name: "Wash", Unit: "kg", Price: 20000, Status: models.ProductActive, StoreID: store.ID}
	db.Create(&product)
	return store, employer, product
}

func doJSON(router *gin.Engine, method, url string, payload interface{}) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if payload != nil {
		b, _ := json.Marshal(payload)
		body = bytes.NewBuffer(b)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req, _ := http.NewRequest(method, url, body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateAndGetOrder(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForOrders(t, "ctl_create")
	store, employer, product := seedStoreWithEmployer(t, db, "a")
	router := setupOrderRouter(db, employer.ID, models.RoleEmployer, &store.ID)

	w := doJSON(router, "POST", "/orders", map[string]interface{}{
		"customer_name":  "Ngoc",
		"customer_phone": "0901234567",
		"items": []map[string]interface{}{
			{"product_id": product.ID, "quantity": 2.5},
		},
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var createResp struct {
		Status  bool   `json:"status"`
		Message string `json:"message"`
		Data    struct {
			ID          uint    `json:"id"`
			Code        string  `json:"code"`
			TotalAmount float64 `json:"total_amount"`
			FinalAmount float64 `json:"final_amount"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &createResp))
	assert.True(t, createResp.Status)
	assert.Equal(t, "Order created", createResp.Message)
	assert.Equal(t, 50000.0, createResp.Data.TotalAmount)
	assert.Equal(t, 50000.0, createResp.Data.FinalAmount)
	assert.NotEmpty(t, createResp.Data.Code)

	w = doJSON(router, "GET", fmt.Sprintf("/orders/%d", createResp.Data.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var getResp struct {
		Data struct {
			ID            uint          `json:"id"`
			OrderItems    []interface{} `json:"order_items"`
			StatusHistory []interface{} `json:"status_history"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &getResp))
	assert.Equal(t, createResp.Data.ID, getResp.Data.ID)
	assert.Len(t, getResp.Data.OrderItems, 1)
	assert.Len(t, getResp.Data.StatusHistory, 1)
}

func TestCreateOrderValidationFailureReturns400(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForOrders(t, "ctl_validation")
	store, employer, _ := seedStoreWithEmployer(t, db, "b")
	router := setupOrderRouter(db, employer.ID, models.RoleEmployer, &store.ID)

	w := doJSON(router, "POST", "/orders", map[string]interface{}{
		"customer_phone": "0909999999",
		"items": []map[string]interface{}{
			{"product_id": 424242, "quantity": 1},
		},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var count int64
	db.Model(&models.Order{}).Count(&count)
	assert.Zero(t, count)
}

func TestDebtEndpointsEnforceGuards(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForOrders(t, "ctl_debt")
	store, employer, product := seedStoreWithEmployer(t, db, "c")
	router := setupOrderRouter(db, employer.ID, models.RoleEmployer, &store.ID)

	w := doJSON(router, "POST", "/orders", map[string]interface{}{
		"customer_phone": "0905555555",
		"items":          []map[string]interface{}{{"product_id": product.ID, "quantity": 1}},
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	var createResp struct {
		Data struct {
			ID uint `json:"id"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &createResp))
	orderID := createResp.Data.ID

	// marking an open order as debt is a 400 and changes nothing
	w = doJSON(router, "PATCH", fmt.Sprintf("/orders/%d/debt", orderID), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var order models.Order
	db.First(&order, orderID)
	assert.False(t, order.IsDebt)

	// complete with payment, then the debt flow works
	w = doJSON(router, "POST", fmt.Sprintf("/orders/%d/status", orderID), map[string]interface{}{
		"status": "completed", "payment_method": "cash",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	// paying before marking is also a 400
	w = doJSON(router, "PATCH", fmt.Sprintf("/orders/%d/debt/paid", orderID), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, "PATCH", fmt.Sprintf("/orders/%d/debt", orderID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = doJSON(router, "PATCH", fmt.Sprintf("/orders/%d/debt/paid", orderID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	db.First(&order, orderID)
	assert.False(t, order.IsDebt)
	assert.NotNil(t, order.DebtPaidAt)
}

func TestCrossChainStoreFilterIsRejected(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForOrders(t, "ctl_crosschain")
	_, employerA, productA := seedStoreWithEmployer(t, db, "d1")
	storeB, _, _ := seedStoreWithEmployer(t, db, "d2")

	// seed an order in chain A
	storeAID := *employerA.StoreID
	routerA := setupOrderRouter(db, employerA.ID, models.RoleEmployer, &storeAID)
	w := doJSON(routerA, "POST", "/orders", map[string]interface{}{
		"customer_phone": "0901112222",
		"items":          []map[string]interface{}{{"product_id": productA.ID, "quantity": 1}},
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	// chain A's admin asking for chain B's store gets a 403, never data
	var adminA models.User
	db.Where("email = ?", "d1-admin@test").First(&adminA)
	routerAdminA := setupOrderRouter(db, adminA.ID, models.RoleAdmin, nil)

	w = doJSON(routerAdminA, "GET", fmt.Sprintf("/orders?store_id=%d", storeB.ID), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// without a filter the admin sees only their own chain
	w = doJSON(routerAdminA, "GET", "/orders", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var listResp struct {
		Data []struct {
			StoreID *uint `json:"store_id"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &listResp))
	assert.Len(t, listResp.Data, 1)
	assert.Equal(t, storeAID, *listResp.Data[0].StoreID)
}
