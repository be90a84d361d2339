package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/huyphamdev/laundry-pos/models"
	"github.com/huyphamdev/laundry-pos/utils"
)

func newTestDB(t *testing.T, name string) *gorm.DB {
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
		&models.Attendance{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

// two chains, one legacy employer without a store, legacy orders with
// NULL store_id
type scopeFixture struct {
	adminA, adminB     models.User
	storeA1, storeB1   models.Store
	empA1, empB1, empL models.User
	// orderA1: store A1; orderB1: store B1; orderLegacyA: NULL store,
	// assigned to empA1; orderLegacyL: NULL store, created by empL.
	orderA1, orderB1, orderLegacyA, orderLegacyL models.Order
}

func seedScopeFixture(t *testing.T, db *gorm.DB) scopeFixture {
	t.Helper()
	f := scopeFixture{}

	f.adminA = models.User{Name: "Admin A", Email: "a@chain.test", Password: "x", Role: models.RoleAdmin, Status: "active"}
	f.adminB = models.User{Name: "Admin B", Email: "b@chain.test", Password: "x", Role: models.RoleAdmin, Status: "active"}
	db.Create(&f.adminA)
	db.Create(&f.adminB)

	f.storeA1 = models.Store{Name: "A1", AdminID: &f.adminA.ID, Status: "active"}
	f.storeB1 = models.Store{Name: "B1", AdminID: &f.adminB.ID, Status: "active"}
	db.Create(&f.storeA1)
	db.Create(&f.storeB1)

	f.empA1 = models.User{Name: "Emp A1", Email: "ea1@chain.test", Password: "x", Role: models.RoleEmployer, StoreID: &f.storeA1.ID, Status: "active"}
	f.empB1 = models.User{Name: "Emp B1", Email: "eb1@chain.test", Password: "x", Role: models.RoleEmployer, StoreID: &f.storeB1.ID, Status: "active"}
	f.empL = models.User{Name: "Emp Legacy", Email: "el@chain.test", Password: "x", Role: models.RoleEmployer, Status: "active"}
	db.Create(&f.empA1)
	db.Create(&f.empB1)
	db.Create(&f.empL)

	cust := models.Customer{Name: "C", Phone: "0900000001"}
	db.Create(&cust)

	f.orderA1 = models.Order{Code: "ORD-A1", CustomerID: cust.ID, Status: models.OrderCreated, StoreID: &f.storeA1.ID, AssignedTo: &f.empA1.ID, CreatedBy: f.empA1.ID}
	f.orderB1 = models.Order{Code: "ORD-B1", CustomerID: cust.ID, Status: models.OrderCreated, StoreID: &f.storeB1.ID, AssignedTo: &f.empB1.ID, CreatedBy: f.empB1.ID}
	f.orderLegacyA = models.Order{Code: "ORD-LA", CustomerID: cust.ID, Status: models.OrderCreated, AssignedTo: &f.empA1.ID, CreatedBy: f.empA1.ID}
	f.orderLegacyL = models.Order{Code: "ORD-LL", CustomerID: cust.ID, Status: models.OrderCreated, CreatedBy: f.empL.ID}
	db.Create(&f.orderA1)
	db.Create(&f.orderB1)
	db.Create(&f.orderLegacyA)
	db.Create(&f.orderLegacyL)

	return f
}

func scopedOrderCodes(t *testing.T, db *gorm.DB, scope Scope) []string {
	t.Helper()
	var orders []models.Order
	err := scope.ApplyOrders(db.Model(&models.Order{})).Order("orders.id").Find(&orders).Error
	assert.NoError(t, err)
	codes := make([]string, 0, len(orders))
	for _, o := range orders {
		codes = append(codes, o.Code)
	}
	return codes
}

func TestRootScopeIsAlwaysEmpty(t *testing.T) {
	db := newTestDB(t, "scope_root")
	f := seedScopeFixture(t, db)

	root := Principal{ID: 999, Role: models.RoleRoot}

	scope, err := ResolveOrderScope(db, root, nil)
	assert.NoError(t, err)
	assert.Equal(t, ScopeEmpty, scope.Kind)
	assert.Empty(t, scopedOrderCodes(t, db, scope))

	// even an explicit store filter cannot widen root's scope
	scope, err = ResolveOrderScope(db, root, &f.storeA1.ID)
	assert.NoError(t, err)
	assert.Equal(t, ScopeEmpty, scope.Kind)
	assert.Empty(t, scopedOrderCodes(t, db, scope))
}

func TestAdminScopeCoversChainAndLegacyRows(t *testing.T) {
	db := newTestDB(t, "scope_admin")
	f := seedScopeFixture(t, db)

	scope, err := ResolveOrderScope(db, Principal{ID: f.adminA.ID, Role: models.RoleAdmin}, nil)
	assert.NoError(t, err)
	assert.Equal(t, ScopeChain, scope.Kind)

	codes := scopedOrderCodes(t, db, scope)
	assert.ElementsMatch(t, []string{"ORD-A1", "ORD-LA"}, codes)
}

func TestAdminRequestedStoreValidation(t *testing.T) {
	db := newTestDB(t, "scope_admin_store")
	f := seedScopeFixture(t, db)
	adminA := Principal{ID: f.adminA.ID, Role: models.RoleAdmin}

	scope, err := ResolveOrderScope(db, adminA, &f.storeA1.ID)
	assert.NoError(t, err)
	assert.Equal(t, ScopeStore, scope.Kind)
	assert.ElementsMatch(t, []string{"ORD-A1", "ORD-LA"}, scopedOrderCodes(t, db, scope))

	// another chain's store is rejected, never silently returned
	_, err = ResolveOrderScope(db, adminA, &f.storeB1.ID)
	assert.Error(t, err)
	appErr := asAppError(t, err)
	assert.Equal(t, 403, appErr.Code)
}

func TestEmployerScopeIsOwnStore(t *testing.T) {
	db := newTestDB(t, "scope_employer")
	f := seedScopeFixture(t, db)

	scope, err := ResolveOrderScope(db, Principal{ID: f.empA1.ID, Role: models.RoleEmployer, StoreID: &f.storeA1.ID}, nil)
	assert.NoError(t, err)
	assert.Equal(t, ScopeStore, scope.Kind)
	assert.ElementsMatch(t, []string{"ORD-A1", "ORD-LA"}, scopedOrderCodes(t, db, scope))

	_, err = ResolveOrderScope(db, Principal{ID: f.empA1.ID, Role: models.RoleEmployer, StoreID: &f.storeA1.ID}, &f.storeB1.ID)
	assert.Error(t, err)
}

func TestEmployerWithoutStoreFallsBackToIdentity(t *testing.T) {
	db := newTestDB(t, "scope_identity")
	f := seedScopeFixture(t, db)

	scope, err := ResolveOrderScope(db, Principal{ID: f.empL.ID, Role: models.RoleEmployer}, nil)
	assert.NoError(t, err)
	assert.Equal(t, ScopeIdentity, scope.Kind)
	assert.ElementsMatch(t, []string{"ORD-LL"}, scopedOrderCodes(t, db, scope))
}

func TestScopeResolutionIsDeterministic(t *testing.T) {
	db := newTestDB(t, "scope_deterministic")
	f := seedScopeFixture(t, db)
	p := Principal{ID: f.adminA.ID, Role: models.RoleAdmin}

	first, err := ResolveOrderScope(db, p, &f.storeA1.ID)
	assert.NoError(t, err)
	second, err := ResolveOrderScope(db, p, &f.storeA1.ID)
	assert.NoError(t, err)
	assert.Equal(t, first, second)
}

func asAppError(t *testing.T, err error) *utils.AppError {
	t.Helper()
	var appErr *utils.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T: %v", err, err)
	}
	return appErr
}

func TestStoreColumnScope(t *testing.T) {
	db := newTestDB(t, "scope_products")
	f := seedScopeFixture(t, db)

	db.Create(&models.Product{Name: "Wash", Unit: "kg", Price: 15000, Status: models.ProductActive, StoreID: f.storeA1.ID})
	db.Create(&models.Product{Name: "Wash", Unit: "kg", Price: 16000, Status: models.ProductActive, StoreID: f.storeB1.ID})

	scope, err := ResolveOrderScope(db, Principal{ID: f.adminA.ID, Role: models.RoleAdmin}, nil)
	assert.NoError(t, err)

	var products []models.Product
	err = scope.ApplyStoreColumn(db.Model(&models.Product{}), "products.store_id").Find(&products).Error
	assert.NoError(t, err)
	assert.Len(t, products, 1)
	assert.Equal(t, f.storeA1.ID, products[0].StoreID)
}
