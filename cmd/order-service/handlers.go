package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jmoralesq/tienda-orders/internal/httpx"
	ord "github.com/jmoralesq/tienda-orders/internal/order"
)

// actorFrom reads the verified identity the upstream auth layer injects.
// Authorization itself happens there; we only honor the capability bit.
func actorFrom(c *gin.Context) ord.Actor {
	return ord.Actor{
		ID:    c.GetHeader("X-Actor-ID"),
		Admin: c.GetHeader("X-Actor-Role") == "admin",
	}
}

func placeOrderHandler(svc *ord.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ord.PlaceOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"kind": "validation", "error": "invalid json"})
			return
		}
		o, err := svc.PlaceOrder(c.Request.Context(), ord.PlaceOrderInput{
			UserID:          req.UserID,
			Lines:           req.Items,
			ShippingAddress: req.ShippingAddress,
			PaymentMethod:   req.PaymentMethod,
		})
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, o)
	}
}

func getOrderHandler(svc *ord.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := svc.GetOrder(c.Request.Context(), c.Param("id"))
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

func listOrdersByUserHandler(svc *ord.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
		orders, err := svc.ListByUser(c.Request.Context(), c.Param("user_id"), limit, offset)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		if orders == nil {
			orders = []ord.Order{}
		}
		c.JSON(http.StatusOK, gin.H{"items": orders, "limit": limit, "offset": offset})
	}
}

func updateOrderStatusHandler(svc *ord.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ord.UpdateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"kind": "validation", "error": "invalid json"})
			return
		}
		o, err := svc.SetStatus(c.Request.Context(), c.Param("id"), ord.Status(req.Status), actorFrom(c))
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

func orderSlipHandler(svc *ord.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		slip, err := svc.GenerateSlip(c.Request.Context(), c.Param("id"))
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, slip)
	}
}

func quoteCartHandler(svc *ord.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ord.QuoteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"kind": "validation", "error": "invalid json"})
			return
		}
		q, err := svc.QuoteCart(c.Request.Context(), req.Items)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, q)
	}
}

func orderStatsHandler(svc *ord.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !actorFrom(c).Admin {
			httpx.Error(c, ord.ErrForbidden)
			return
		}
		stats, err := svc.Stats(c.Request.Context())
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"stats": stats})
	}
}
