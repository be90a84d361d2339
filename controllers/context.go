package controllers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/huyphamdev/laundry-pos/services"
)

var ErrNoPermission = errors.New("you do not have permission to perform this action")

// principalFromContext rebuilds the caller from what the auth middleware
// stored in the gin context.
func principalFromContext(c *gin.Context) services.Principal {
	p := services.Principal{}
	if v, ok := c.Get("user_id"); ok {
		if id, ok := v.(uint); ok {
			p.ID = id
		}
	}
	if v, ok := c.Get("role"); ok {
		if role, ok := v.(string); ok {
			p.Role = role
		}
	}
	if v, ok := c.Get("store_id"); ok {
		if storeID, ok := v.(*uint); ok {
			p.StoreID = storeID
		}
	}
	return p
}

func parseUintParam(c *gin.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, errors.New("invalid " + name)
	}
	return uint(v), nil
}

// parseUintQuery returns nil when the query parameter is absent.
func parseUintQuery(c *gin.Context, name string) (*uint, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil, errors.New("invalid " + name)
	}
	u := uint(v)
	return &u, nil
}
