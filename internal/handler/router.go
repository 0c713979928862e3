package handler

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"dayflow/internal/httpmiddleware"
)

// RouterConfig holds the cross-cutting pieces wrapped around the routes.
type RouterConfig struct {
	CORSOrigins []string
	// Auth identifies the caller on /api routes.
	Auth gin.HandlerFunc
	// Limiter is optional.
	Limiter httpmiddleware.Limiter
	// AccessLog enables gin's request logger.
	AccessLog bool
}

// Router builds the engine with middleware and every route.
func Router(h *Handler, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.AccessLog {
		r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
			SkipPaths: []string{"/healthz", "/metrics"},
		}))
	}
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	r.Use(httpmiddleware.SecurityHeaders())
	if h.metrics != nil {
		r.Use(h.metrics.Middleware())
		r.GET("/metrics", h.metrics.Handler())
	}
	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	if cfg.Auth != nil {
		api.Use(cfg.Auth)
	}
	if cfg.Limiter != nil {
		api.Use(httpmiddleware.RateLimit(cfg.Limiter))
	}
	{
		att := api.Group("/attendance")
		att.POST("/clockin", h.ClockIn)
		att.POST("/clockout", h.ClockOut)
		att.GET("/status", h.AttendanceStatus)
		att.GET("/history", h.AttendanceHistory)
		att.GET("/present", h.Present)

		lv := api.Group("/leaves")
		lv.POST("/apply", h.ApplyLeave)
		lv.GET("", h.ListLeaves)
		lv.GET("/:id", h.GetLeave)

		pay := api.Group("/payroll")
		pay.GET("", h.ListPayroll)
		pay.POST("/generate", h.GeneratePayroll)
		pay.GET("/:id", h.GetPayroll)

		prof := api.Group("/profile")
		prof.GET("/me", h.MyProfile)
		prof.POST("", h.UpdateProfile)
		prof.POST("/avatar", h.UploadAvatar)
	}
	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
