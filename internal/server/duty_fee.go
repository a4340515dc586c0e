package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	dutydomain "github.com/portpak/portpak/internal/dutyfee/domain"
)

type createDutyFeeRequest struct {
	ParcelID      string `json:"parcel_id"`
	FeeType       string `json:"fee_type"`
	CustomFeeType string `json:"custom_fee_type"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	Description   string `json:"description"`
}

func (s *Server) CreateDutyFee(c *gin.Context) {
	var req createDutyFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.dutyFeeSvc.Create(c.Request.Context(), dutydomain.CreateDutyFeeRequest{
		ParcelID:      strings.TrimSpace(req.ParcelID),
		FeeType:       strings.TrimSpace(req.FeeType),
		CustomFeeType: strings.TrimSpace(req.CustomFeeType),
		Amount:        strings.TrimSpace(req.Amount),
		Currency:      strings.TrimSpace(req.Currency),
		Description:   strings.TrimSpace(req.Description),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateDutyFeeRequest struct {
	FeeType       *string `json:"fee_type"`
	CustomFeeType *string `json:"custom_fee_type"`
	Amount        *string `json:"amount"`
	Currency      *string `json:"currency"`
	Description   *string `json:"description"`
}

func (s *Server) UpdateDutyFee(c *gin.Context) {
	var req updateDutyFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.dutyFeeSvc.Update(c.Request.Context(), dutydomain.UpdateDutyFeeRequest{
		ID:            strings.TrimSpace(c.Param("id")),
		FeeType:       req.FeeType,
		CustomFeeType: req.CustomFeeType,
		Amount:        req.Amount,
		Currency:      req.Currency,
		Description:   req.Description,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteDutyFee(c *gin.Context) {
	if err := s.dutyFeeSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

func (s *Server) ListDutyFeesByParcel(c *gin.Context) {
	resp, err := s.dutyFeeSvc.ListByParcel(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetDutyFeeTotals(c *gin.Context) {
	resp, err := s.dutyFeeSvc.Totals(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
