package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	prealertdomain "github.com/portpak/portpak/internal/prealert/domain"
)

type createPreAlertRequest struct {
	CustomerID       string `json:"customer_id"`
	TrackingNumber   string `json:"tracking_number"`
	Courier          string `json:"courier"`
	Description      string `json:"description"`
	EstimatedWeight  string `json:"estimated_weight"`
	EstimatedArrival string `json:"estimated_arrival"`
}

func (s *Server) CreatePreAlert(c *gin.Context) {
	var req createPreAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	arrival, err := parseOptionalTime(req.EstimatedArrival, false)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.preAlertSvc.Create(c.Request.Context(), prealertdomain.CreatePreAlertRequest{
		CustomerID:       strings.TrimSpace(req.CustomerID),
		TrackingNumber:   strings.TrimSpace(req.TrackingNumber),
		Courier:          strings.TrimSpace(req.Courier),
		Description:      strings.TrimSpace(req.Description),
		EstimatedWeight:  strings.TrimSpace(req.EstimatedWeight),
		EstimatedArrival: arrival,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListPreAlerts(c *gin.Context) {
	var query struct {
		CustomerID string `form:"customer_id"`
		Status     string `form:"status"`
		Unmatched  bool   `form:"unmatched"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.preAlertSvc.List(c.Request.Context(), prealertdomain.ListPreAlertRequest{
		CustomerID: strings.TrimSpace(query.CustomerID),
		Status:     strings.TrimSpace(query.Status),
		Unmatched:  query.Unmatched,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPreAlertByID(c *gin.Context) {
	resp, err := s.preAlertSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updatePreAlertRequest struct {
	TrackingNumber   *string `json:"tracking_number"`
	Courier          *string `json:"courier"`
	Description      *string `json:"description"`
	EstimatedWeight  *string `json:"estimated_weight"`
	EstimatedArrival *string `json:"estimated_arrival"`
	Status           *string `json:"status"`
}

func (s *Server) UpdatePreAlert(c *gin.Context) {
	var req updatePreAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	update := prealertdomain.UpdatePreAlertRequest{
		ID:              strings.TrimSpace(c.Param("id")),
		TrackingNumber:  req.TrackingNumber,
		Courier:         req.Courier,
		Description:     req.Description,
		EstimatedWeight: req.EstimatedWeight,
		Status:          req.Status,
	}
	if req.EstimatedArrival != nil {
		arrival, err := parseOptionalTime(*req.EstimatedArrival, false)
		if err != nil || arrival == nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		update.EstimatedArrival = arrival
	}

	resp, err := s.preAlertSvc.Update(c.Request.Context(), update)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CancelPreAlert(c *gin.Context) {
	resp, err := s.preAlertSvc.Cancel(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeletePreAlert(c *gin.Context) {
	if err := s.preAlertSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}
