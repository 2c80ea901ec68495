package webapi

import (
	"context"

	"github.com/gin-gonic/gin"

	"gatepass-server-go/internal/domain/auth"
	"gatepass-server-go/internal/domain/directory"
	"gatepass-server-go/internal/domain/visit"
	"gatepass-server-go/internal/platform/errors"
	"gatepass-server-go/internal/platform/logging"
)

// Service is the HTTP surface of the visitor-pass backend. It binds the
// domain services to routes; authorization decisions live in the auth
// policy table, not in handlers.
type Service struct {
	auth      *auth.Service
	visits    *visit.Service
	directory *directory.Service
	logger    *logging.Logger
}

// NewService wires the web API transport.
func NewService(
	authSvc *auth.Service,
	visitSvc *visit.Service,
	directorySvc *directory.Service,
	logger *logging.Logger,
) (*Service, error) {
	if authSvc == nil || visitSvc == nil || directorySvc == nil {
		return nil, errors.New(errors.KindBootstrap, "webapi.new", "all domain services are required")
	}
	if logger == nil {
		return nil, errors.New(errors.KindBootstrap, "webapi.new", "logger is required")
	}

	return &Service{
		auth:      authSvc,
		visits:    visitSvc,
		directory: directorySvc,
		logger:    logger,
	}, nil
}

// Register attaches all routes. Public routes carry no middleware; every
// other route passes through token verification plus the policy check.
func (s *Service) Register(ctx context.Context, router *gin.RouterGroup) error {
	router.GET("/health", s.handleHealth)
	router.POST("/register", s.handleRegister)
	router.POST("/login", s.handleLogin)

	secured := router.Group("")
	secured.Use(s.authMiddleware())
	{
		secured.GET("/check-admin", s.handleCheckAdmin)

		secured.POST("/visitor-pass", s.handleVisitorPassCreate)
		secured.GET("/visitor-pass/:id/qr", s.handleVisitorPassQR)
		secured.GET("/visitors", s.handleVisitorsList)

		secured.GET("/users", s.handleUsersList)
		secured.GET("/users/:username", s.handleUserGet)
		secured.PUT("/users/:id", s.handleUserUpdate)
		secured.DELETE("/users/:id", s.handleUserDelete)

		secured.POST("/departments", s.handleDepartmentCreate)
		secured.GET("/departments", s.handleDepartmentsList)
		secured.DELETE("/departments/:id", s.handleDepartmentDelete)
	}

	s.logger.InfoTag("HTTP", "web api routes registered")
	return nil
}

func (s *Service) handleHealth(c *gin.Context) {
	s.respondSuccess(c, 200, gin.H{"status": "up"}, "service is running")
}
