package main

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jmoralesq/tienda-orders/internal/catalog"
	"github.com/jmoralesq/tienda-orders/internal/config"
	"github.com/jmoralesq/tienda-orders/internal/db"
	"github.com/jmoralesq/tienda-orders/internal/httpx"
	ord "github.com/jmoralesq/tienda-orders/internal/order"
	"github.com/jmoralesq/tienda-orders/internal/user"
)

func buildRouter(svc *ord.Service) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger())

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	r.POST("/orders", placeOrderHandler(svc))
	r.GET("/orders/:id", getOrderHandler(svc))
	r.GET("/orders/:id/slip", orderSlipHandler(svc))
	r.PUT("/orders/:id/status", updateOrderStatusHandler(svc))
	r.GET("/users/:user_id/orders", listOrdersByUserHandler(svc))
	r.POST("/cart/quote", quoteCartHandler(svc))
	r.GET("/admin/stats", orderStatsHandler(svc))
	return r
}

func main() {
	cfg := config.Load()
	ctx := context.Background()

	if cfg.RunMigrations {
		if err := db.RunMigrations(cfg.PostgresDSN); err != nil {
			log.Fatalf("[db] migrations: %v", err)
		}
	}
	pool, err := db.NewPool(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("[db] connect: %v", err)
	}
	defer pool.Close()

	svc := ord.NewService(ord.NewPGRepo(pool), catalog.NewPGRepo(pool), user.NewPGRepo(pool))

	log.Printf("order-service listening on %s", cfg.OrderSvcAddr)
	log.Fatal(buildRouter(svc).Run(cfg.OrderSvcAddr))
}
