package controllers

import (
	"net/http"

	"github.com/ViBaTo/panel-control-tm/handlers"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// rootHandler sends visitors to the dashboard.
func rootHandler(c *gin.Context) {
	c.Redirect(http.StatusFound, handlers.DashboardPath)
}

func notFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "Página no encontrada", "path": c.Request.URL.Path})
}

// SetupRootRoute mounts the root redirect, health, metrics and the 404 fallback.
func SetupRootRoute(router *gin.Engine, health *handlers.HealthHandler, gatherer prometheus.Gatherer) {
	router.GET("/", rootHandler)
	router.GET("/healthz", health.Health)
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	router.NoRoute(notFoundHandler)
}
