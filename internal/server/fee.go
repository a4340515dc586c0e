package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	feedomain "github.com/portpak/portpak/internal/fee/domain"
)

type createFeeRequest struct {
	Name              string         `json:"name"`
	Code              string         `json:"code"`
	FeeType           string         `json:"fee_type"`
	CalculationMethod string         `json:"calculation_method"`
	Amount            string         `json:"amount"`
	Currency          string         `json:"currency"`
	AppliesTo         []string       `json:"applies_to"`
	Metadata          map[string]any `json:"metadata"`
	Description       string         `json:"description"`
}

func (s *Server) CreateFee(c *gin.Context) {
	var req createFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.feeSvc.Create(c.Request.Context(), feedomain.CreateFeeRequest{
		Name:              strings.TrimSpace(req.Name),
		Code:              strings.TrimSpace(req.Code),
		FeeType:           strings.TrimSpace(req.FeeType),
		CalculationMethod: strings.TrimSpace(req.CalculationMethod),
		Amount:            strings.TrimSpace(req.Amount),
		Currency:          strings.TrimSpace(req.Currency),
		AppliesTo:         req.AppliesTo,
		Metadata:          req.Metadata,
		Description:       strings.TrimSpace(req.Description),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateFeeRequest struct {
	Name        *string        `json:"name"`
	Amount      *string        `json:"amount"`
	Currency    *string        `json:"currency"`
	AppliesTo   []string       `json:"applies_to"`
	Metadata    map[string]any `json:"metadata"`
	Description *string        `json:"description"`
}

func (s *Server) UpdateFee(c *gin.Context) {
	var req updateFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.feeSvc.Update(c.Request.Context(), feedomain.UpdateFeeRequest{
		ID:          strings.TrimSpace(c.Param("id")),
		Name:        req.Name,
		Amount:      req.Amount,
		Currency:    req.Currency,
		AppliesTo:   req.AppliesTo,
		Metadata:    req.Metadata,
		Description: req.Description,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetFeeByID(c *gin.Context) {
	resp, err := s.feeSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListFees(c *gin.Context) {
	var query struct {
		FeeType    string `form:"fee_type"`
		ActiveOnly bool   `form:"active_only"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.feeSvc.List(c.Request.Context(), feedomain.ListFeeRequest{
		FeeType:    strings.TrimSpace(query.FeeType),
		ActiveOnly: query.ActiveOnly,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ActivateFee(c *gin.Context) {
	s.setFeeActive(c, true)
}

func (s *Server) DeactivateFee(c *gin.Context) {
	s.setFeeActive(c, false)
}

func (s *Server) setFeeActive(c *gin.Context, active bool) {
	resp, err := s.feeSvc.SetActive(c.Request.Context(), strings.TrimSpace(c.Param("id")), active)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteFee(c *gin.Context) {
	if err := s.feeSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}
