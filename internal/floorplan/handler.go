package floorplan

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.GET("/floorplans", h.ListFloorIDs)
	r.GET("/floorplans/:floor_id", h.Get)
	r.PUT("/floorplans/:floor_id", h.Save)
}

func (h *Handler) Get(c *gin.Context) {
	resp, err := h.svc.Get(c.Request.Context(), c.Param("floor_id"))
	if err != nil {
		c.JSON(toHTTPStatus(err), gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": resp})
}

func (h *Handler) Save(c *gin.Context) {
	var req SaveLayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid json"})
		return
	}
	resp, err := h.svc.Save(c.Request.Context(), c.Param("floor_id"), req)
	if err != nil {
		c.JSON(toHTTPStatus(err), gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": resp})
}

func (h *Handler) ListFloorIDs(c *gin.Context) {
	ids, err := h.svc.ListFloorIDs(c.Request.Context())
	if err != nil {
		c.JSON(toHTTPStatus(err), gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": ids})
}
