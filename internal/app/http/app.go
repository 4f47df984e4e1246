package httpapp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"premium_gallery/internal/domain/models"
	"premium_gallery/internal/metrics"
	mw "premium_gallery/internal/middleware"
	httprouters "premium_gallery/internal/transport/http"
	"premium_gallery/internal/transport/http/dto/response"

	"github.com/arl/statsviz"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// HealthCheck pings one dependency.
type HealthCheck func(ctx context.Context) error

type Options struct {
	Env           string
	Host          string
	Port          string
	BodyLimit     string
	SessionSecret string
	UploadsDir    string
	UploadsURL    string
	Postgres      HealthCheck
	Redis         HealthCheck
}

type Server struct {
	m       *http.ServeMux
	log     *slog.Logger
	e       *echo.Echo
	routers *httprouters.Routers
	auth    mw.Authenticator
	opts    Options
}

func New(log *slog.Logger, opts Options, routers *httprouters.Routers, auth mw.Authenticator) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Validator = &CustomValidator{validator: validator.New()}
	e.HTTPErrorHandler = httprouters.NewHTTPErrorHandler(log, opts.Env)

	metrics.Init()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogMethod:   true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info("request",
				slog.String("method", v.Method),
				slog.String("URI", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("remote ip", v.RemoteIP),
			)

			return nil
		},
	}))
	e.Use(mw.PrometheusMetrics)
	if opts.BodyLimit != "" {
		e.Use(middleware.BodyLimit(opts.BodyLimit))
	}
	e.Use(session.Middleware(sessions.NewCookieStore([]byte(opts.SessionSecret))))

	mux := http.NewServeMux()
	if err := statsviz.Register(mux); err != nil {
		log.Info("Statsviz start with error", slog.Any("error:", err.Error()))
	}

	return &Server{
		m:       mux,
		log:     log,
		e:       e,
		routers: routers,
		auth:    auth,
		opts:    opts,
	}
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.e
}

func (s *Server) MustRun() {
	const op = "http.Server.MustRun"

	s.log.Info(op, slog.String("Start", "server"), slog.String("addr", s.addr()))

	if err := s.Start(); err != nil {
		panic(err)
	}
}

func (s *Server) Start() error {
	const op = "http.Server.Start"

	if err := s.e.Start(s.addr()); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("%s server stopped: %w", op, err)
	}

	return nil
}

func (s *Server) Stop() error {
	const op = "http.Server.Stop"

	optCtx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	s.log.Info("stopping", slog.String("op", op))

	if err := s.e.Shutdown(optCtx); err != nil {
		return fmt.Errorf("%s could not shutdown server gracefuly: %w", op, err)
	}

	return nil
}

func (s *Server) addr() string {
	return fmt.Sprintf("%s:%s", s.opts.Host, s.opts.Port)
}

func (s *Server) health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	res := response.HealthResponse{Status: "ok", Postgres: "ok", Redis: "ok"}
	status := http.StatusOK

	check := func(hc HealthCheck, field *string) {
		if hc == nil {
			*field = "disabled"
			return
		}
		if err := hc(ctx); err != nil {
			*field = "down"
			res.Status = "degraded"
			status = http.StatusServiceUnavailable
		}
	}
	check(s.opts.Postgres, &res.Postgres)
	check(s.opts.Redis, &res.Redis)

	return c.JSON(status, res)
}

func (s *Server) BuildRouters() {
	var (
		r        = s.routers
		authed   = mw.RequireAuth(s.auth)
		admin    = mw.RequireAuth(s.auth, models.RoleAdmin)
		creator  = mw.RequireAuth(s.auth, models.RoleCreator)
		follower = mw.RequireAuth(s.auth, models.RoleFollower)
		staff    = mw.RequireAuth(s.auth, models.RoleAdmin, models.RoleCreator)
		optional = mw.OptionalAuth(s.auth)
	)

	s.e.GET("/health", s.health)
	s.e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	if s.opts.UploadsDir != "" {
		s.e.Static(s.opts.UploadsURL, s.opts.UploadsDir)
	}

	debug := s.e.Group("/debug")
	{
		debug.GET("/statsviz/", echo.WrapHandler(s.m))
		debug.GET("/statsviz/*", echo.WrapHandler(s.m))
	}

	swagger := s.e.Group("/swag")
	{
		swagger.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	api := s.e.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", r.Register)
		authGroup.POST("/login", r.Login)
		authGroup.POST("/logout", r.Logout, authed)
		authGroup.GET("/me", r.Me, authed)
	}

	api.GET("/gallery", r.ListGallery)
	api.GET("/featured", r.ListFeatured)
	api.POST("/gallery", r.UploadGallery(models.GalleryTypeGallery), authed)
	api.POST("/featured", r.UploadGallery(models.GalleryTypeFeatured), authed)

	galleryGroup := api.Group("/gallery")
	{
		galleryGroup.POST("/remove-premium", r.RemoveAllPremium, admin)
		galleryGroup.PATCH("/:id/premium", r.SetPremium, staff)
		galleryGroup.DELETE("/:id", r.DeleteItem, staff)
		galleryGroup.POST("/:id/purchase", r.Purchase, follower)
		galleryGroup.GET("/:id/access", r.CheckAccess, authed)
	}

	contentGroup := api.Group("/content")
	{
		contentGroup.POST("/upload", r.UploadContent, staff)
		contentGroup.GET("/mine", r.ListMyContent, staff)
		contentGroup.GET("/:id", r.GetContent, optional)
	}

	creatorsGroup := api.Group("/creators")
	{
		creatorsGroup.GET("/me", r.MyProfile, creator)
		creatorsGroup.PUT("/me", r.UpdateMyProfile, creator)
		creatorsGroup.POST("/me/photo", r.UploadPhoto, creator)
		creatorsGroup.POST("/:id/subscription", r.Subscribe, follower)
		creatorsGroup.DELETE("/:id/subscription", r.Unsubscribe, follower)
	}

	api.GET("/subscriptions", r.ListSubscriptions, follower)

	adminGroup := api.Group("/admin", admin)
	{
		adminGroup.GET("/creators", r.ListCreators)
		adminGroup.POST("/creators/:id/approve", r.ApproveCreator)
		adminGroup.POST("/creators/:id/reject", r.RejectCreator)
	}
}
