package server

import (
	"strings"

	"github.com/gin-gonic/gin"

	inventorydomain "github.com/casaantigua/anticuario/internal/inventory/domain"
	"github.com/casaantigua/anticuario/pkg/db/pagination"
)

func (s *Server) ListItems(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Category string `form:"category"`
		Status   string `form:"status"`
		Featured string `form:"featured"`
		Search   string `form:"search"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	featured, err := parseOptionalBool(query.Featured)
	if err != nil {
		AbortWithError(c, newValidationError("featured", "invalid_featured", "invalid featured"))
		return
	}

	resp, err := s.inventorySvc.List(c.Request.Context(), inventorydomain.ListItemRequest{
		PageToken: query.PageToken,
		PageSize:  int32(query.PageSize),
		Category:  strings.TrimSpace(query.Category),
		Status:    strings.TrimSpace(query.Status),
		Featured:  featured,
		Search:    strings.TrimSpace(query.Search),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondList(c, resp, len(resp.Items))
}

func (s *Server) GetItem(c *gin.Context) {
	item, err := s.inventorySvc.GetByID(c.Request.Context(), inventorydomain.GetItemRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, item)
}

func (s *Server) GetItemByFriendlyID(c *gin.Context) {
	item, err := s.inventorySvc.GetByFriendlyID(c.Request.Context(), strings.TrimSpace(c.Param("friendlyId")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, item)
}

func (s *Server) CreateItem(c *gin.Context) {
	var req inventorydomain.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Category = strings.TrimSpace(req.Category)
	req.FriendlyID = strings.TrimSpace(req.FriendlyID)
	req.Actor = actorLabel(c)

	item, err := s.inventorySvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if s.auditSvc != nil {
		_ = s.auditSvc.Record(c.Request.Context(), "inventory.create", "inventory_item", item.ID.String(), map[string]any{
			"friendly_id": item.FriendlyID,
			"item_name":   item.Name,
			"quantity":    item.CurrentQuantity,
		})
	}

	respondCreated(c, item)
}

func (s *Server) UpdateItem(c *gin.Context) {
	var req inventorydomain.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req.ID = strings.TrimSpace(c.Param("id"))
	req.Actor = actorLabel(c)

	item, err := s.inventorySvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if s.auditSvc != nil {
		_ = s.auditSvc.Record(c.Request.Context(), "inventory.update", "inventory_item", item.ID.String(), map[string]any{
			"friendly_id": item.FriendlyID,
		})
	}

	respondOK(c, item)
}

func (s *Server) DeleteItem(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.inventorySvc.Delete(c.Request.Context(), id, actorLabel(c)); err != nil {
		AbortWithError(c, err)
		return
	}

	if s.auditSvc != nil {
		_ = s.auditSvc.Record(c.Request.Context(), "inventory.delete", "inventory_item", id, nil)
	}

	respondMessage(c, "item deleted")
}

func (s *Server) InventoryStats(c *gin.Context) {
	stats, err := s.inventorySvc.Stats(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, stats)
}

func actorLabel(c *gin.Context) string {
	if claims := claimsFrom(c); claims != nil {
		return claims.Email
	}
	return ""
}
