package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	parceldomain "github.com/portpak/portpak/internal/parcel/domain"
)

type createParcelRequest struct {
	CustomerID     string   `json:"customer_id"`
	TrackingNumber string   `json:"tracking_number"`
	Weight         string   `json:"weight"`
	DeclaredValue  string   `json:"declared_value"`
	ItemCount      int      `json:"item_count"`
	Length         string   `json:"length"`
	Width          string   `json:"width"`
	Height         string   `json:"height"`
	Description    string   `json:"description"`
	Tags           []string `json:"tags"`
}

func (s *Server) CreateParcel(c *gin.Context) {
	var req createParcelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.parcelSvc.Create(c.Request.Context(), parceldomain.CreateParcelRequest{
		CustomerID:     strings.TrimSpace(req.CustomerID),
		TrackingNumber: strings.TrimSpace(req.TrackingNumber),
		Weight:         strings.TrimSpace(req.Weight),
		DeclaredValue:  strings.TrimSpace(req.DeclaredValue),
		ItemCount:      req.ItemCount,
		Length:         strings.TrimSpace(req.Length),
		Width:          strings.TrimSpace(req.Width),
		Height:         strings.TrimSpace(req.Height),
		Description:    strings.TrimSpace(req.Description),
		Tags:           req.Tags,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListParcels(c *gin.Context) {
	var query struct {
		CustomerID string `form:"customer_id"`
		Status     string `form:"status"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.parcelSvc.List(c.Request.Context(), parceldomain.ListParcelRequest{
		CustomerID: strings.TrimSpace(query.CustomerID),
		Status:     strings.TrimSpace(query.Status),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetParcelByID(c *gin.Context) {
	resp, err := s.parcelSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateParcelStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) UpdateParcelStatus(c *gin.Context) {
	var req updateParcelStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.parcelSvc.UpdateStatus(
		c.Request.Context(),
		strings.TrimSpace(c.Param("id")),
		parceldomain.Status(strings.TrimSpace(req.Status)),
	)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
