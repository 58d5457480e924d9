package router

import (
	"os"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

// setupHealthRoutes registers health check endpoints
func (r *Router) setupHealthRoutes() {
	healthHandler := func(c *gin.Context) {
		// Probe the store with a throwaway read
		storeStatus := "ok"
		var probe string
		if _, err := r.Container.Store.Load("health_probe", &probe); err != nil {
			storeStatus = err.Error()
			r.Logger.Error("store health check failed", "error", err)
		}

		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		c.JSON(200, gin.H{
			"status":    "ok",
			"version":   os.Getenv("APP_VERSION"),
			"timestamp": time.Now().Format(time.RFC3339),
			"uptime_s":  int64(time.Since(startTime).Seconds()),
			"components": gin.H{
				"store": storeStatus,
				"chat": gin.H{
					"status":        "ok",
					"is_processing": r.Container.ChatService.IsProcessing(),
				},
			},
			"memory": gin.H{
				"alloc_mb":  memStats.Alloc / 1024 / 1024,
				"sys_mb":    memStats.Sys / 1024 / 1024,
				"gc_cycles": memStats.NumGC,
			},
		})
	}

	// Register both health endpoint paths for compatibility
	r.Engine.GET("/health", healthHandler)
	r.Engine.GET("/api/health", healthHandler)
}
