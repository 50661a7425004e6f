package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"lms-service/internal/model"
	"lms-service/internal/store"
	"lms-service/pkg/logger"
	"lms-service/prometheus"
)

// ListInvoices returns the invoices visible to the caller
func ListInvoices(c echo.Context) error {
	log := logger.FromContext(c)

	prin, ok := currentPrincipal(c)
	if !ok {
		return unauthenticated(c)
	}

	query := store.Invoices().Scoped(prin, requestHint(c))

	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if userID := c.QueryParam("user_id"); userID != "" {
		query = query.Where("user_id = ?", userID)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var invoices []model.Invoice
	result := query.Find(&invoices)
	if result.Error != nil {
		log.Error("Failed to list invoices", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve invoices"})
	}

	return c.JSON(http.StatusOK, invoices)
}

// GetInvoice returns a single invoice by ID
func GetInvoice(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	prin, ok := currentPrincipal(c)
	if !ok {
		return unauthenticated(c)
	}

	var invoice model.Invoice
	result := store.Invoices().Scoped(prin, requestHint(c)).First(&invoice, id)
	if result.Error != nil {
		log.Error("Invoice not found", zap.String("invoice_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "invoice not found"})
	}

	return c.JSON(http.StatusOK, invoice)
}
