package domain

import "context"

type GenerateInvoiceRequest struct {
	// InvoiceID targets an existing draft; empty creates a new one.
	InvoiceID  string
	CustomerID string
	ParcelIDs  []string
	Currency   string
	Notes      string
	// Strategy resolves a currency mismatch when set. Without it a
	// mismatch aborts generation and is returned to the caller.
	Strategy ResolveStrategy
}

type GenerateInvoiceResponse struct {
	Invoice  Invoice           `json:"invoice"`
	Mismatch *CurrencyMismatch `json:"mismatch,omitempty"`
}

type PreviewResponse struct {
	Items    []LineItem        `json:"items"`
	Totals   Totals            `json:"totals"`
	Mismatch *CurrencyMismatch `json:"mismatch,omitempty"`
}

type AddItemRequest struct {
	InvoiceID   string
	Description string
	Quantity    string
	UnitPrice   string
}

type UpdateItemRequest struct {
	InvoiceID string
	ItemID    string
	Quantity  string
	UnitPrice string
}

type ListInvoiceRequest struct {
	CustomerID string
	Status     string
}

type Service interface {
	Generate(context.Context, GenerateInvoiceRequest) (GenerateInvoiceResponse, error)
	Preview(context.Context, GenerateInvoiceRequest) (PreviewResponse, error)
	GetByID(ctx context.Context, id string) (Invoice, error)
	List(context.Context, ListInvoiceRequest) ([]Invoice, error)
	AddItem(context.Context, AddItemRequest) (Invoice, error)
	RemoveItem(ctx context.Context, invoiceID, itemID string) (Invoice, error)
	UpdateItem(context.Context, UpdateItemRequest) (Invoice, error)
	Finalize(ctx context.Context, id string) (Invoice, error)
	Cancel(ctx context.Context, id string) (Invoice, error)
	MarkPaid(ctx context.Context, id string) (Invoice, error)
	DeleteDraft(ctx context.Context, id string) error
}
