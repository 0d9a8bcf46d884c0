package inventory

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.POST("/consumables", h.Create)
	r.GET("/consumables", h.List)
	r.GET("/consumables/:sku", h.Get)
	r.DELETE("/consumables/:sku", h.Disable)
	r.POST("/consumables/:sku/consume", h.Consume)
	r.POST("/consumables/:sku/restock", h.Restock)
	r.GET("/consumables/:sku/movements", h.ListMovements)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateConsumableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid json or missing required fields"})
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		c.JSON(toHTTPStatus(err), gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": resp})
}

func (h *Handler) Get(c *gin.Context) {
	resp, err := h.svc.Get(c.Request.Context(), c.Param("sku"))
	if err != nil {
		c.JSON(toHTTPStatus(err), gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": resp})
}

func (h *Handler) List(c *gin.Context) {
	f := SearchQuery{
		LowStockOnly:    c.Query("low_stock") == "true" || c.Query("low_stock") == "1",
		IncludeDisabled: c.Query("all") == "true" || c.Query("all") == "1",
	}
	if v := c.Query("q"); v != "" {
		f.Keyword = &v
	}
	p := Page{
		Limit:  parseIntDefault(c.Query("limit"), 50),
		Offset: parseIntDefault(c.Query("offset"), 0),
	}
	items, total, err := h.svc.List(c.Request.Context(), f, p)
	if err != nil {
		c.JSON(toHTTPStatus(err), gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": items, "total": total})
}

func (h *Handler) Disable(c *gin.Context) {
	if err := h.svc.Disable(c.Request.Context(), c.Param("sku")); err != nil {
		c.JSON(toHTTPStatus(err), gin.H{"success": false, "error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Consume(c *gin.Context) {
	var req AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid json"})
		return
	}
	cn, mv, err := h.svc.Consume(c.Request.Context(), c.Param("sku"), req)
	if err != nil {
		c.JSON(toHTTPStatus(err), gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"consumable": cn, "movement": mv}})
}

func (h *Handler) Restock(c *gin.Context) {
	var req AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid json"})
		return
	}
	cn, mv, err := h.svc.Restock(c.Request.Context(), c.Param("sku"), req)
	if err != nil {
		c.JSON(toHTTPStatus(err), gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"consumable": cn, "movement": mv}})
}

func (h *Handler) ListMovements(c *gin.Context) {
	p := Page{
		Limit:  parseIntDefault(c.Query("limit"), 50),
		Offset: parseIntDefault(c.Query("offset"), 0),
	}
	items, total, err := h.svc.ListMovements(c.Request.Context(), c.Param("sku"), p)
	if err != nil {
		c.JSON(toHTTPStatus(err), gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": items, "total": total})
}

func parseIntDefault(s string, d int) int {
	if s == "" {
		return d
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return v
}
