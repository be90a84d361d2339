package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/huyphamdev/laundry-pos/models"
	"github.com/huyphamdev/laundry-pos/utils"
)

// Principal is the authenticated caller as carried in the JWT claims.
type Principal struct {
	ID      uint
	Role    string
	StoreID *uint
}

type ScopeKind int

const (
	// ScopeEmpty matches nothing. Root is a vendor account, not a store
	// operator; its queries against store-bound resources return empty
	// result sets by explicit rule, never by accident.
	ScopeEmpty ScopeKind = iota
	// ScopeChain matches every store owned by one admin.
	ScopeChain
	// ScopeStore matches exactly one store.
	ScopeStore
	// ScopeIdentity matches orders assigned to or created by one user;
	// fallback for employer accounts that predate store pinning.
	ScopeIdentity
)

// Scope is the resolved store filter for one request. It is a value: the
// same inputs always resolve to the same Scope, and applying it never
// mutates anything.
type Scope struct {
	Kind    ScopeKind
	AdminID uint
	StoreID uint
	UserID  uint
}

// ResolveOrderScope translates the caller plus an optional ?store_id
// filter into a Scope, or fails with Forbidden when the requested store
// is outside the caller's chain.
func ResolveOrderScope(db *gorm.DB, p Principal, requestedStoreID *uint) (Scope, error) {
	switch p.Role {
	case models.RoleRoot:
		return Scope{Kind: ScopeEmpty}, nil

	case models.RoleAdmin:
		if requestedStoreID != nil {
			var store models.Store
			err := db.Where("id = ? AND admin_id = ?", *requestedStoreID, p.ID).First(&store).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return Scope{}, utils.NewForbiddenError("store does not belong to your chain")
			}
			if err != nil {
				return Scope{}, err
			}
			return Scope{Kind: ScopeStore, StoreID: store.ID}, nil
		}
		return Scope{Kind: ScopeChain, AdminID: p.ID}, nil

	case models.RoleEmployer:
		if p.StoreID == nil {
			// Account predates store pinning; match by identity.
			return Scope{Kind: ScopeIdentity, UserID: p.ID}, nil
		}
		if requestedStoreID != nil && *requestedStoreID != *p.StoreID {
			return Scope{}, utils.NewForbiddenError("store does not belong to you")
		}
		return Scope{Kind: ScopeStore, StoreID: *p.StoreID}, nil
	}

	return Scope{}, utils.NewForbiddenError("unknown role")
}

// Predicates for orders. Legacy rows (store_id IS NULL) fall through to
// the assignee's or creator's store so they do not vanish from listings
// and reports; the same fragment is used on every order query.
const (
	chainOrdersCond = `(orders.store_id IN (SELECT id FROM stores WHERE admin_id = ?)
		OR (orders.store_id IS NULL AND (
			orders.assigned_to IN (SELECT users.id FROM users JOIN stores ON stores.id = users.store_id WHERE stores.admin_id = ?)
			OR orders.created_by IN (SELECT users.id FROM users JOIN stores ON stores.id = users.store_id WHERE stores.admin_id = ?))))`

	storeOrdersCond = `(orders.store_id = ?
		OR (orders.store_id IS NULL AND (
			orders.assigned_to IN (SELECT id FROM users WHERE store_id = ?)
			OR orders.created_by IN (SELECT id FROM users WHERE store_id = ?))))`

	identityOrdersCond = `(orders.assigned_to = ? OR orders.created_by = ?)`
)

// ApplyOrders narrows an orders query to the scope.
func (s Scope) ApplyOrders(q *gorm.DB) *gorm.DB {
	switch s.Kind {
	case ScopeChain:
		return q.Where(chainOrdersCond, s.AdminID, s.AdminID, s.AdminID)
	case ScopeStore:
		return q.Where(storeOrdersCond, s.StoreID, s.StoreID, s.StoreID)
	case ScopeIdentity:
		return q.Where(identityOrdersCond, s.UserID, s.UserID)
	}
	return q.Where("1 = 0")
}

// ApplyStoreColumn narrows a query on a table with a non-null store
// column (products, attendances). Identity-scoped callers own no store,
// so they match nothing here.
func (s Scope) ApplyStoreColumn(q *gorm.DB, column string) *gorm.DB {
	switch s.Kind {
	case ScopeChain:
		return q.Where(column+" IN (SELECT id FROM stores WHERE admin_id = ?)", s.AdminID)
	case ScopeStore:
		return q.Where(column+" = ?", s.StoreID)
	}
	return q.Where("1 = 0")
}

// ApplyPromotions narrows a promotions query; chain-wide promotions
// (store_id IS NULL) are visible to every non-root caller.
func (s Scope) ApplyPromotions(q *gorm.DB) *gorm.DB {
	switch s.Kind {
	case ScopeChain:
		return q.Where("promotions.store_id IS NULL OR promotions.store_id IN (SELECT id FROM stores WHERE admin_id = ?)", s.AdminID)
	case ScopeStore:
		return q.Where("promotions.store_id IS NULL OR promotions.store_id = ?", s.StoreID)
	case ScopeIdentity:
		return q.Where("promotions.store_id IS NULL")
	}
	return q.Where("1 = 0")
}

// StoreInChain reports whether the store is owned by the admin.
func StoreInChain(db *gorm.DB, adminID, storeID uint) (bool, error) {
	var count int64
	err := db.Model(&models.Store{}).
		Where("id = ? AND admin_id = ?", storeID, adminID).
		Count(&count).Error
	return count > 0, err
}

// UserInChain reports whether the user works at one of the admin's stores.
func UserInChain(db *gorm.DB, adminID, userID uint) (bool, error) {
	var count int64
	err := db.Model(&models.User{}).
		Joins("JOIN stores ON stores.id = users.store_id").
		Where("users.id = ? AND stores.admin_id = ?", userID, adminID).
		Count(&count).Error
	return count > 0, err
}
