package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// Module wires telemetry components via Fx.
var Module = fx.Options(
	fx.Provide(NewMetrics),
)

// Metrics exposes Prometheus observability primitives for the platform.
type Metrics struct {
	apiRequests     *prometheus.CounterVec
	apiDuration     *prometheus.HistogramVec
	invoices        *prometheus.CounterVec
	invoiceAmount   *prometheus.HistogramVec
	feeEvaluations  *prometheus.CounterVec
	conversions     *prometheus.CounterVec
	conversionFails *prometheus.CounterVec
	pdfRenderTime   prometheus.Histogram
}

// NewMetrics registers and returns Prometheus metrics.
func NewMetrics() *Metrics {
	apiRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "portpak_api_requests_total",
		Help: "Counts API requests by method, status, and company.",
	}, []string{"method", "status", "company"})

	apiDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "portpak_api_duration_seconds",
		Help:    "API request latency per method/company.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "company"})

	invoices := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "portpak_invoices_total",
		Help: "Invoices created by status.",
	}, []string{"status", "company"})

	invoiceAmount := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "portpak_invoice_amount",
		Help:    "Invoice total distribution by currency.",
		Buckets: []float64{10, 50, 100, 500, 1000, 5000, 10000, 50000},
	}, []string{"company", "currency"})

	feeEvaluations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "portpak_fee_evaluations_total",
		Help: "Fee rule evaluations by calculation method.",
	}, []string{"method"})

	conversions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "portpak_currency_conversions_total",
		Help: "Currency conversions by source/target pair.",
	}, []string{"from", "to"})

	conversionFails := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "portpak_currency_conversion_errors_total",
		Help: "Failed currency conversions by reason.",
	}, []string{"reason"})

	pdfRenderTime := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "portpak_invoice_pdf_render_seconds",
		Help:    "Invoice PDF render durations.",
		Buckets: prometheus.DefBuckets,
	})

	prometheus.MustRegister(
		apiRequests,
		apiDuration,
		invoices,
		invoiceAmount,
		feeEvaluations,
		conversions,
		conversionFails,
		pdfRenderTime,
	)

	return &Metrics{
		apiRequests:     apiRequests,
		apiDuration:     apiDuration,
		invoices:        invoices,
		invoiceAmount:   invoiceAmount,
		feeEvaluations:  feeEvaluations,
		conversions:     conversions,
		conversionFails: conversionFails,
		pdfRenderTime:   pdfRenderTime,
	}
}

// ObserveAPIRequest records an API request and latency.
func (m *Metrics) ObserveAPIRequest(method, status, company string, duration time.Duration) {
	if m == nil {
		return
	}
	companyLabel := sanitizeLabel(company)
	methodLabel := sanitizeLabel(method)
	m.apiRequests.WithLabelValues(methodLabel, status, companyLabel).Inc()
	m.apiDuration.WithLabelValues(methodLabel, companyLabel).Observe(duration.Seconds())
}

// ObserveInvoice records invoice creation stats by status and amount.
func (m *Metrics) ObserveInvoice(status, company, currency string, amount float64) {
	if m == nil {
		return
	}
	companyLabel := sanitizeLabel(company)
	m.invoices.WithLabelValues(sanitizeLabel(status), companyLabel).Inc()
	m.invoiceAmount.WithLabelValues(companyLabel, sanitizeLabel(currency)).Observe(amount)
}

// ObserveFeeEvaluation increments the evaluation counter for a calculation method.
func (m *Metrics) ObserveFeeEvaluation(method string) {
	if m == nil {
		return
	}
	m.feeEvaluations.WithLabelValues(sanitizeLabel(method)).Inc()
}

// ObserveConversion records a successful currency conversion.
func (m *Metrics) ObserveConversion(from, to string) {
	if m == nil {
		return
	}
	m.conversions.WithLabelValues(sanitizeLabel(from), sanitizeLabel(to)).Inc()
}

// ObserveConversionError records a failed conversion by reason.
func (m *Metrics) ObserveConversionError(reason string) {
	if m == nil {
		return
	}
	m.conversionFails.WithLabelValues(sanitizeLabel(reason)).Inc()
}

// ObservePDFRender records an invoice PDF render duration.
func (m *Metrics) ObservePDFRender(duration time.Duration) {
	if m == nil {
		return
	}
	m.pdfRenderTime.Observe(duration.Seconds())
}

func sanitizeLabel(val string) string {
	if val == "" {
		return "unknown"
	}
	return val
}
