package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

func (s *Server) GetCustomerStatistics(c *gin.Context) {
	resp, err := s.statsSvc.CustomerStats(
		c.Request.Context(),
		strings.TrimSpace(c.Param("id")),
		c.Query("currency"),
	)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetAdminStatistics(c *gin.Context) {
	var query struct {
		Currency string `form:"currency"`
		Months   int    `form:"months"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.statsSvc.AdminStats(c.Request.Context(), query.Currency, query.Months)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
