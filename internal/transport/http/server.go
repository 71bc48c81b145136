package http

import (
	stdhttp "net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/lobbychat/internal/config"
	"github.com/vovakirdan/lobbychat/internal/upload"
)

// NewServer builds the HTTP server. /ws is served directly by the WebSocket
// handler; everything else goes through gin.
func NewServer(hub Hub, uploads *upload.Store, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))

	ws := NewWSHandler(hub, WSOptions{
		AllowedOrigins:     originPatterns(cfg.AllowedOrigins),
		MaxMessageBytes:    cfg.MaxMessageBytes,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		ClientBuffer:       cfg.ClientBuffer,
	}, logger)

	router.GET("/health", healthHandler)

	api := router.Group("/")
	api.Use(CORSMiddleware(cfg.AllowedOrigins))
	{
		roster := NewRosterHandlers(hub, logger)
		api.GET("/connected-users", roster.ListConnected)

		if uploads != nil {
			profiles := NewProfileHandlers(uploads, logger)
			api.POST("/upload-profile", profiles.UploadProfile)
			api.OPTIONS("/upload-profile", func(c *gin.Context) { c.Status(stdhttp.StatusNoContent) })
			router.Static(uploads.URLPrefix(), uploads.Dir())
		}
	}

	// gin's writer refuses to hijack, so the upgrade bypasses the router.
	mux := stdhttp.NewServeMux()
	mux.Handle("/ws", ws)
	mux.Handle("/", router)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}

// originPatterns converts full origins into the host patterns the
// websocket library matches against.
func originPatterns(origins []string) []string {
	patterns := make([]string, 0, len(origins))
	for _, o := range origins {
		u, err := url.Parse(o)
		if err != nil || u.Host == "" {
			patterns = append(patterns, o)
			continue
		}
		patterns = append(patterns, u.Host)
	}
	return patterns
}
