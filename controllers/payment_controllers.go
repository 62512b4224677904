package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/kebab-storefront/feed"
	"github.com/yeremiapane/kebab-storefront/models"
	"github.com/yeremiapane/kebab-storefront/services"
	"github.com/yeremiapane/kebab-storefront/utils"
)

// maxWebhookBody bounds what the gateway may post.
const maxWebhookBody = 1 << 20

type PaymentController struct {
	Wompi      *services.WompiService
	Reconciler *services.Reconciler
	Hub        *feed.Hub
}

func NewPaymentController(wompi *services.WompiService, reconciler *services.Reconciler, hub *feed.Hub) *PaymentController {
	return &PaymentController{Wompi: wompi, Reconciler: reconciler, Hub: hub}
}

// CreateSignature -> POST /payment-signature
func (pc *PaymentController) CreateSignature(c *gin.Context) {
	var body struct {
		Reference string           `json:"reference"`
		Amount    *decimal.Decimal `json:"amount"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if body.Reference == "" || body.Amount == nil {
		utils.RespondError(c, http.StatusBadRequest, services.ErrMissingReference)
		return
	}

	sig, err := pc.Wompi.IntegritySignature(body.Reference, *body.Amount)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Signature generated", sig)
}

// HandleWebhook -> POST /webhook
func (pc *PaymentController) HandleWebhook(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody)
	raw, err := c.GetRawData()
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	result, err := pc.Reconciler.HandleWebhook(c.Request.Context(), raw)
	if err != nil {
		if services.IsNotFound(err) {
			// on this path an unknown order means a bad reference
			utils.ErrorLogger.WithError(err).Warn("webhook references an unknown order")
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
		respondServiceError(c, err)
		return
	}

	switch result.Action {
	case services.ActionApplied:
		pc.Hub.PublishPaymentUpdated(result.Order)
		if result.Status == models.PaymentDeclined {
			pc.Hub.PublishStaffNotification(fmt.Sprintf("Payment declined for order #%d (%s)", result.Order.ShortOrderID, utils.FormatCOP(result.Order.Total)))
		}
		utils.RespondJSON(c, http.StatusOK, "Order status updated successfully", result)
	case services.ActionAttached:
		utils.RespondJSON(c, http.StatusOK, "Transaction attached to order", result)
	case services.ActionIgnored:
		utils.RespondJSON(c, http.StatusOK, "Event received, but no action taken", result)
	default:
		utils.RespondJSON(c, http.StatusOK, "Event already processed", result)
	}
}
