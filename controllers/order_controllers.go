package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/kebab-storefront/feed"
	"github.com/yeremiapane/kebab-storefront/middlewares"
	"github.com/yeremiapane/kebab-storefront/models"
	"github.com/yeremiapane/kebab-storefront/services"
	"github.com/yeremiapane/kebab-storefront/utils"
)

type OrderController struct {
	Orders     *services.OrderService
	Reconciler *services.Reconciler
	Wompi      *services.WompiService
	Hub        *feed.Hub
}

func NewOrderController(orders *services.OrderService, reconciler *services.Reconciler, wompi *services.WompiService, hub *feed.Hub) *OrderController {
	return &OrderController{Orders: orders, Reconciler: reconciler, Wompi: wompi, Hub: hub}
}

// CreateOrder -> POST /orders
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var req services.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Orders.CreateOrder(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.WithField("short_order_id", order.ShortOrderID).
		WithField("payment_method", order.PaymentMethod).
		WithField("total", utils.FormatCOP(order.Total)).
		Info("order created")
	oc.Hub.PublishOrderCreated(order)

	data := gin.H{"order": order}
	if order.PaymentMethod == models.PaymentMethodWompi {
		data["reference"] = oc.Wompi.Reference(order.ID)
	}
	utils.RespondJSON(c, http.StatusCreated, "Order received successfully", data)
}

// GetOrderStatus -> GET /orders?id=<shortOrderId>
func (oc *OrderController) GetOrderStatus(c *gin.Context) {
	raw := strings.TrimSpace(c.Query("id"))
	if raw == "" {
		utils.RespondError(c, http.StatusBadRequest, services.ErrMissingOrderID)
		return
	}
	shortID, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("order id must be a positive number"))
		return
	}

	order, err := oc.Orders.FindByShortID(c.Request.Context(), uint(shortID))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order status", order.StatusView())
}

// GetOrderByTransaction -> GET /orders/transaction/:transaction_id
func (oc *OrderController) GetOrderByTransaction(c *gin.Context) {
	transactionID := strings.TrimSpace(c.Param("transaction_id"))
	if transactionID == "" {
		utils.RespondError(c, http.StatusBadRequest, services.ErrMissingOrderID)
		return
	}

	order, err := oc.Reconciler.SyncTransaction(c.Request.Context(), transactionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order status", order.StatusView())
}

// ListOrders -> GET /admin/orders[?status=]
func (oc *OrderController) ListOrders(c *gin.Context) {
	filter := services.OrderFilter{Status: models.PaymentStatus(c.Query("status"))}
	orders, err := oc.Orders.ListOrders(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

// UpdateFulfillmentStatus -> PATCH /orders/:order_id
func (oc *OrderController) UpdateFulfillmentStatus(c *gin.Context) {
	var body struct {
		FulfillmentStatus models.FulfillmentStatus `json:"fulfillmentStatus" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Orders.UpdateFulfillmentStatus(c.Request.Context(), c.Param("order_id"), body.FulfillmentStatus)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.WithField("short_order_id", order.ShortOrderID).
		WithField("fulfillment_status", order.FulfillmentStatus).
		WithField("by", c.GetString(middlewares.ContextEmail)).
		Info("fulfillment status updated")
	oc.Hub.PublishFulfillmentUpdated(order)

	utils.RespondJSON(c, http.StatusOK, "Order status updated successfully", order)
}
