package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	settingsdomain "github.com/portpak/portpak/internal/settings/domain"
)

func (s *Server) GetExchangeRate(c *gin.Context) {
	resp, err := s.settingsSvc.GetExchangeRate(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateExchangeRateRequest struct {
	BaseCurrency   string  `json:"base_currency"`
	TargetCurrency string  `json:"target_currency"`
	ExchangeRate   float64 `json:"exchange_rate"`
	AutoUpdate     bool    `json:"auto_update"`
}

func (s *Server) UpdateExchangeRate(c *gin.Context) {
	var req updateExchangeRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.settingsSvc.UpdateExchangeRate(c.Request.Context(), settingsdomain.UpdateExchangeRateRequest{
		BaseCurrency:   strings.TrimSpace(req.BaseCurrency),
		TargetCurrency: strings.TrimSpace(req.TargetCurrency),
		ExchangeRate:   req.ExchangeRate,
		AutoUpdate:     req.AutoUpdate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
