package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	customerdomain "github.com/portpak/portpak/internal/customer/domain"
	invoicedomain "github.com/portpak/portpak/internal/invoice/domain"
	"github.com/portpak/portpak/internal/invoice/render"
)

type generateInvoiceRequest struct {
	InvoiceID  string   `json:"invoice_id"`
	CustomerID string   `json:"customer_id"`
	ParcelIDs  []string `json:"parcel_ids"`
	Currency   string   `json:"currency"`
	Notes      string   `json:"notes"`
	Strategy   string   `json:"strategy"`
}

func (req generateInvoiceRequest) toDomain() invoicedomain.GenerateInvoiceRequest {
	return invoicedomain.GenerateInvoiceRequest{
		InvoiceID:  strings.TrimSpace(req.InvoiceID),
		CustomerID: strings.TrimSpace(req.CustomerID),
		ParcelIDs:  req.ParcelIDs,
		Currency:   strings.TrimSpace(req.Currency),
		Notes:      strings.TrimSpace(req.Notes),
		Strategy:   invoicedomain.ResolveStrategy(strings.TrimSpace(req.Strategy)),
	}
}

func (s *Server) GenerateInvoice(c *gin.Context) {
	var req generateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.invoiceSvc.Generate(c.Request.Context(), req.toDomain())
	if err != nil {
		// An unresolved mismatch still carries the descriptor so the
		// caller can choose a resolution strategy and retry.
		if errors.Is(err, invoicedomain.ErrMismatchUnresolved) && resp.Mismatch != nil {
			c.JSON(http.StatusConflict, gin.H{
				"error": errorPayload{
					Type:    "currency_mismatch",
					Message: "fee currencies differ from the invoice currency",
				},
				"mismatch": resp.Mismatch,
			})
			return
		}
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) PreviewInvoice(c *gin.Context) {
	var req generateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.invoiceSvc.Preview(c.Request.Context(), req.toDomain())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListInvoices(c *gin.Context) {
	var query struct {
		CustomerID string `form:"customer_id"`
		Status     string `form:"status"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.invoiceSvc.List(c.Request.Context(), invoicedomain.ListInvoiceRequest{
		CustomerID: strings.TrimSpace(query.CustomerID),
		Status:     strings.TrimSpace(query.Status),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetInvoiceByID(c *gin.Context) {
	resp, err := s.invoiceSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type addInvoiceItemRequest struct {
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
}

func (s *Server) AddInvoiceItem(c *gin.Context) {
	var req addInvoiceItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.invoiceSvc.AddItem(c.Request.Context(), invoicedomain.AddItemRequest{
		InvoiceID:   strings.TrimSpace(c.Param("id")),
		Description: strings.TrimSpace(req.Description),
		Quantity:    strings.TrimSpace(req.Quantity),
		UnitPrice:   strings.TrimSpace(req.UnitPrice),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateInvoiceItemRequest struct {
	Quantity  string `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

func (s *Server) UpdateInvoiceItem(c *gin.Context) {
	var req updateInvoiceItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.invoiceSvc.UpdateItem(c.Request.Context(), invoicedomain.UpdateItemRequest{
		InvoiceID: strings.TrimSpace(c.Param("id")),
		ItemID:    strings.TrimSpace(c.Param("itemID")),
		Quantity:  strings.TrimSpace(req.Quantity),
		UnitPrice: strings.TrimSpace(req.UnitPrice),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RemoveInvoiceItem(c *gin.Context) {
	resp, err := s.invoiceSvc.RemoveItem(
		c.Request.Context(),
		strings.TrimSpace(c.Param("id")),
		strings.TrimSpace(c.Param("itemID")),
	)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) FinalizeInvoice(c *gin.Context) {
	resp, err := s.invoiceSvc.Finalize(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CancelInvoice(c *gin.Context) {
	resp, err := s.invoiceSvc.Cancel(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteDraftInvoice(c *gin.Context) {
	if err := s.invoiceSvc.DeleteDraft(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

func (s *Server) GetInvoicePDF(c *gin.Context) {
	ctx := c.Request.Context()

	inv, err := s.invoiceSvc.GetByID(ctx, strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	company, err := s.companySvc.GetByID(ctx, inv.CompanyID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	cust, err := s.customerSvc.GetByID(ctx, customerdomain.GetCustomerRequest{
		ID: inv.CustomerID.String(),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	data := render.BuildData(inv, company.Name, cust.Name, cust.AccountNumber, cust.Email)
	doc, err := s.renderer.Render(data)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+inv.InvoiceNumber+`.pdf"`)
	c.DataFromReader(http.StatusOK, -1, "application/pdf", doc, nil)
}
