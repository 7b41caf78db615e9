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
)

func buildRouter(repo catalog.Repository) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger())

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	r.GET("/products", listProductsHandler(repo))
	r.POST("/products", createProductHandler(repo))
	r.GET("/products/:id", getProductHandler(repo))
	r.PUT("/products/:id", updateProductHandler(repo))
	r.DELETE("/products/:id", deleteProductHandler(repo))
	r.PUT("/products/:id/inventory", setInventoryHandler(repo))

	r.GET("/categories", listCategoriesHandler(repo))
	r.POST("/categories", createCategoryHandler(repo))
	r.PUT("/categories/:id", updateCategoryHandler(repo))
	r.DELETE("/categories/:id", deleteCategoryHandler(repo))
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

	log.Printf("product-service listening on %s", cfg.ProductSvcAddr)
	log.Fatal(buildRouter(catalog.NewPGRepo(pool)).Run(cfg.ProductSvcAddr))
}
