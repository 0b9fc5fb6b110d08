// Package rest exposes the DocVault API over HTTP using gin.
package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/docvault/internal/logging"
	"github.com/dmitrijs2005/docvault/internal/server/config"
	"github.com/dmitrijs2005/docvault/internal/server/models"
	"github.com/dmitrijs2005/docvault/internal/server/services"
	"github.com/gin-gonic/gin"
)

type UserService interface {
	Register(ctx context.Context, email, password, name string) (*services.Session, error)
	Login(ctx context.Context, email, password string) (*services.Session, error)
	Profile(ctx context.Context, userID string) (*models.User, error)
	RequestReset(ctx context.Context, email string) error
	ConsumeReset(ctx context.Context, email, code, newPassword string) error
}

type DocumentService interface {
	Create(ctx context.Context, userID, name, pdfURL, originalFileName string) (*models.Document, error)
	List(ctx context.Context, userID string) ([]*models.Document, error)
	UploadURL(ctx context.Context, userID string) (string, string, error)
	DownloadURL(ctx context.Context, userID, documentID string) (string, error)
}

type TokenVerifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

type Server struct {
	address           string
	readHeaderTimeout time.Duration
	shutdownTimeout   time.Duration
	corsOrigin        string
	cookie            cookieSettings

	users  UserService
	docs   DocumentService
	tokens TokenVerifier
	logger logging.Logger

	engine *gin.Engine
}

func NewServer(cfg *config.Config, l logging.Logger, us UserService, ds DocumentService, tv TokenVerifier) *Server {
	s := &Server{
		address:           cfg.EndpointAddrHTTP,
		readHeaderTimeout: cfg.ReadHeaderTimeout,
		shutdownTimeout:   cfg.ShutdownTimeout,
		corsOrigin:        cfg.CORSOrigin,
		cookie:            newCookieSettings(cfg),
		users:             us,
		docs:              ds,
		tokens:            tv,
		logger:            l.With("module", "http_server"),
	}
	useJSONFieldNames()
	s.engine = s.routes()
	return s
}

// Handler returns the configured router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(s.recovery(), s.accessLog(), s.cors())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	api := r.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", s.register)
	auth.POST("/login", s.login)
	auth.POST("/send-otp", s.sendOTP)
	auth.POST("/reset-password", s.resetPassword)
	auth.GET("/profile", s.SessionMiddleware(), s.profile)
	auth.GET("/logout", s.SessionMiddleware(), s.logout)

	projects := api.Group("/projects", s.SessionMiddleware())
	projects.POST("", s.createProject)
	projects.GET("", s.listProjects)
	projects.POST("/upload-url", s.uploadURL)
	projects.GET("/:id/download-url", s.downloadURL)

	return r
}

// Run serves until ctx is cancelled, then drains in-flight requests for at
// most the configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: s.readHeaderTimeout,
	}

	done := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		done <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return <-done
}
