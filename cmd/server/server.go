package server

import (
	"context"
	"net/http"
	"time"

	appkafka "example.com/socialfeed/internal/broker"
	config "example.com/socialfeed/internal/init"
	"example.com/socialfeed/internal/logger"
	"example.com/socialfeed/internal/media"
	"example.com/socialfeed/internal/middleware"
	"example.com/socialfeed/internal/store"
	"github.com/gin-gonic/gin"
)

type Server struct {
	store      store.StoreInterface
	events     *appkafka.Publisher
	media      media.Store
	sessions   *middleware.Sessions
	bcryptCost int
	statusURL  string
	mediaURL   string
	uploadDir  string // served under /static/uploads when set
	maxUpload  int64
	now        func() time.Time
}

// Options carries the collaborators a Server is built from.
type Options struct {
	Store     store.StoreInterface
	Events    *appkafka.Publisher
	Media     media.Store
	UploadDir string
}

var logg = logger.New()

// New builds a Server from configuration and injected collaborators.
func New(cfg *config.Config, opts Options) *Server {
	return &Server{
		store:  opts.Store,
		events: opts.Events,
		media:  opts.Media,
		sessions: &middleware.Sessions{
			Secret:     []byte(cfg.SessionSecret),
			CookieName: cfg.SessionCookie,
			TTL:        cfg.SessionTTL,
			Secure:     cfg.TLSCertFile != "",
		},
		bcryptCost: cfg.BcryptCost,
		statusURL:  cfg.StatusURL,
		mediaURL:   cfg.MediaBaseURL,
		uploadDir:  opts.UploadDir,
		maxUpload:  cfg.MaxUploadMB << 20,
		now:        time.Now,
	}
}

// Router wires every route onto a new gin engine.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(logg.Gin("http"), gin.Recovery())
	r.SetHTMLTemplate(s.templates())
	if s.maxUpload > 0 {
		r.MaxMultipartMemory = s.maxUpload
	}

	if s.uploadDir != "" {
		r.Static("/static/uploads", s.uploadDir)
	}

	r.Use(s.sessions.Authenticate(s.store))

	// Public endpoints
	r.GET("/", s.homeHandler)
	r.GET("/register", s.registerPageHandler)
	r.POST("/register", s.registerHandler)
	r.GET("/login", s.loginPageHandler)
	r.POST("/login", s.loginHandler)
	r.GET("/status", s.statusHandler)
	r.GET("/healthz", s.healthHandler)

	// Endpoints requiring a session
	authed := r.Group("/", middleware.RequireLogin("/login"))
	authed.GET("/logout", s.logoutHandler)
	authed.GET("/create", s.createPostPageHandler)
	authed.POST("/create", s.createPostHandler)
	authed.GET("/follow/:username", s.followHandler)
	authed.GET("/unfollow/:username", s.unfollowHandler)
	authed.GET("/following", s.followingHandler)
	authed.GET("/notifications", s.notificationsHandler)

	return r
}

// Run serves until ctx is canceled, then shuts down gracefully.
// TLS is used when both certFile and keyFile are set.
func Run(ctx context.Context, s *Server, addr, certFile, keyFile string) {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  30 * time.Second, // uploads need more than the default
		WriteTimeout: 30 * time.Second,
	}

	// --- Start server in a goroutine ---
	go func() {
		var err error
		if certFile != "" && keyFile != "" {
			logg.Info("server", "Starting HTTPS server on "+addr)
			err = srv.ListenAndServeTLS(certFile, keyFile)
		} else {
			logg.Info("server", "Starting HTTP server on "+addr)
			err = srv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			logg.Error("server", "Server stopped unexpectedly", err)
		}
	}()

	// --- Graceful shutdown ---
	<-ctx.Done()
	logg.Info("server", "Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Error("server", "Error during server shutdown", err)
	} else {
		logg.Info("server", "Server stopped gracefully")
	}
}
