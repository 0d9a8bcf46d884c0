package assets

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.POST("/assets", h.Create)
	r.GET("/assets", h.List)
	r.GET("/assets/:asset_tag", h.Get)
	r.PUT("/assets/:asset_tag", h.Update)
	r.POST("/assets/:asset_tag/retire", h.Retire)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateAssetRequest
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
	resp, err := h.svc.Get(c.Request.Context(), c.Param("asset_tag"))
	if err != nil {
		c.JSON(toHTTPStatus(err), gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": resp})
}

func (h *Handler) List(c *gin.Context) {
	f := AssetSearchQuery{}
	if v := c.Query("status"); v != "" {
		st := NormalizeStatus(v)
		f.Status = &st
	}
	if v := c.Query("category"); v != "" {
		f.Category = &v
	}
	if v := c.Query("location"); v != "" {
		f.Location = &v
	}
	if v := c.Query("loanable"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			f.Loanable = &b
		}
	}
	if v := c.Query("q"); v != "" {
		f.Keyword = &v
	}
	p := Page{
		Limit:  parseIntDefault(c.Query("limit"), 50),
		Offset: parseIntDefault(c.Query("offset"), 0),
		Order:  c.DefaultQuery("order", "asc"),
	}
	items, total, err := h.svc.List(c.Request.Context(), f, p)
	if err != nil {
		c.JSON(toHTTPStatus(err), gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": items, "total": total})
}

func (h *Handler) Update(c *gin.Context) {
	var req UpdateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid json"})
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), c.Param("asset_tag"), req)
	if err != nil {
		c.JSON(toHTTPStatus(err), gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": resp})
}

func (h *Handler) Retire(c *gin.Context) {
	resp, err := h.svc.Retire(c.Request.Context(), c.Param("asset_tag"))
	if err != nil {
		c.JSON(toHTTPStatus(err), gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": resp})
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
