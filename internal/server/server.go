package server

import (
	"context"
	"crypto/subtle"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/shinyyama/trace-green-backend/internal/ai"
	"github.com/shinyyama/trace-green-backend/internal/config"
	"github.com/shinyyama/trace-green-backend/internal/events"
	"github.com/shinyyama/trace-green-backend/internal/handler"
	appmw "github.com/shinyyama/trace-green-backend/internal/middleware"
	"github.com/shinyyama/trace-green-backend/internal/repository"
	"github.com/shinyyama/trace-green-backend/internal/service"
	"github.com/shinyyama/trace-green-backend/internal/storage"
)

// Deps are the process-level collaborators built by cmd/api.
type Deps struct {
	DB          *gorm.DB
	Config      *config.Config
	Logger      *zap.Logger
	Auth        *appmw.AuthMiddleware
	RateLimiter *appmw.RateLimiter
	Publisher   events.Publisher
	Uploader    storage.Uploader
	Tips        ai.TipClient
	SHA         string
	BuildTime   string
}

type Server struct {
	e *echo.Echo
}

func New(d Deps) *Server {
	cfg := d.Config
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))
	e.Use(appmw.RequestContext)
	e.Use(appmw.RequestLogger(d.Logger))
	e.Use(appmw.Metrics)
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization", echo.HeaderXRequestID},
		ExposeHeaders:    []string{echo.HeaderXRequestID},
		AllowCredentials: true,
		AllowOriginFunc:  allowOrigin(cfg.AllowedOrigins),
	}))
	if d.RateLimiter != nil {
		e.Use(d.RateLimiter.Middleware)
	}
	e.Use(appmw.Timeout(cfg.RequestTimeout))

	activityRepo := repository.NewActivityRepository(d.DB)
	streakRepo := repository.NewStreakRepository(d.DB)
	pointRepo := repository.NewUserPointRepository(d.DB)
	profileRepo := repository.NewProfileRepository(d.DB)
	badgeRepo := repository.NewBadgeRepository(d.DB)
	challengeRepo := repository.NewChallengeRepository(d.DB)
	rewardRepo := repository.NewRewardRepository(d.DB)
	redemptionRepo := repository.NewRedemptionRepository(d.DB)
	notificationRepo := repository.NewNotificationRepository(d.DB)
	articleRepo := repository.NewArticleRepository(d.DB)
	communityRepo := repository.NewCommunityRepository(d.DB)

	notificationSvc := service.NewNotificationService(notificationRepo, d.Logger)
	pointSvc := service.NewPointService(pointRepo)
	badgeSvc := service.NewBadgeService(badgeRepo, activityRepo, streakRepo, pointRepo, notificationSvc, d.Logger)
	challengeSvc := service.NewChallengeService(challengeRepo, activityRepo, streakRepo, pointSvc, notificationSvc, d.Logger)
	activitySvc := service.NewActivityService(service.ActivityDeps{
		Activities:        activityRepo,
		Streaks:           streakRepo,
		Points:            pointRepo,
		Profiles:          profileRepo,
		PointService:      pointSvc,
		Badges:            badgeSvc,
		Challenges:        challengeSvc,
		Publisher:         d.Publisher,
		Logger:            d.Logger,
		PointsPerActivity: cfg.PointsPerActivity,
	})
	rewardSvc := service.NewRewardService(rewardRepo, redemptionRepo, notificationSvc, d.Logger)

	activityHandler := handler.NewActivityHandler(activitySvc, d.Tips)
	profileHandler := handler.NewProfileHandler(service.NewProfileService(profileRepo))
	pointHandler := handler.NewPointHandler(pointSvc)
	badgeHandler := handler.NewBadgeHandler(badgeSvc)
	challengeHandler := handler.NewChallengeHandler(challengeSvc)
	rewardHandler := handler.NewRewardHandler(rewardSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)
	leaderboardHandler := handler.NewLeaderboardHandler(service.NewLeaderboardService(pointRepo, profileRepo))
	contentHandler := handler.NewContentHandler(service.NewContentService(articleRepo, d.Uploader))
	communityHandler := handler.NewCommunityHandler(service.NewCommunityService(communityRepo))

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"ok":         "true",
			"git_sha":    d.SHA,
			"build_time": d.BuildTime,
		})
	})
	if cfg.MetricsUser != "" {
		e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), middleware.BasicAuth(metricsAuth(cfg.MetricsUser, cfg.MetricsPass)))
	}

	api := e.Group("/api")
	api.GET("/emission-factors", activityHandler.Catalog)
	api.GET("/content", contentHandler.ListPublished)
	api.GET("/content/:id", contentHandler.GetPublished)
	api.GET("/communities", communityHandler.List)
	api.GET("/communities/:id/members", communityHandler.ListMembers)
	api.GET("/challenges", challengeHandler.ListOpen)

	me := api.Group("/me", d.Auth.RequireAuth)
	me.GET("/profile", profileHandler.Get)
	me.PUT("/profile", profileHandler.Update)
	me.POST("/activities", activityHandler.Log)
	me.GET("/activities", activityHandler.List)
	me.GET("/summary", activityHandler.Summary)
	me.GET("/dashboard", activityHandler.Dashboard)
	me.GET("/tips", activityHandler.Tip)
	me.GET("/points", pointHandler.Get)
	me.GET("/badges", badgeHandler.ListMine)
	me.GET("/notifications", notificationHandler.List)
	me.POST("/notifications/:id/read", notificationHandler.MarkRead)
	me.POST("/notifications/read-all", notificationHandler.MarkAllRead)
	me.GET("/leaderboard", leaderboardHandler.Get)
	me.POST("/challenges/:id/join", challengeHandler.Join)
	me.GET("/challenges/:id/progress", challengeHandler.Progress)
	me.GET("/rewards", rewardHandler.ListActive)
	me.POST("/rewards/:id/redeem", rewardHandler.Redeem)
	me.GET("/redemptions", rewardHandler.ListMine)
	me.POST("/redemptions/:id/cancel", rewardHandler.Cancel)
	me.GET("/communities", communityHandler.ListJoined)
	me.POST("/communities/:id/join", communityHandler.Join)
	me.DELETE("/communities/:id/join", communityHandler.Leave)

	admin := api.Group("/admin", d.Auth.RequireAuth, d.Auth.RequireAdmin)
	admin.GET("/badges", badgeHandler.List)
	admin.POST("/badges", badgeHandler.Create)
	admin.PUT("/badges/:id", badgeHandler.Update)
	admin.DELETE("/badges/:id", badgeHandler.Delete)
	admin.GET("/challenges", challengeHandler.List)
	admin.POST("/challenges", challengeHandler.Create)
	admin.PUT("/challenges/:id", challengeHandler.Update)
	admin.DELETE("/challenges/:id", challengeHandler.Delete)
	admin.GET("/rewards", rewardHandler.List)
	admin.POST("/rewards", rewardHandler.Create)
	admin.PUT("/rewards/:id", rewardHandler.Update)
	admin.DELETE("/rewards/:id", rewardHandler.Delete)
	admin.GET("/redemptions", rewardHandler.ListRedemptions)
	admin.POST("/redemptions/:id/fulfill", rewardHandler.Fulfill)
	admin.GET("/content", contentHandler.List)
	admin.GET("/content/:id", contentHandler.Get)
	admin.POST("/content", contentHandler.Create)
	admin.PUT("/content/:id", contentHandler.Update)
	admin.DELETE("/content/:id", contentHandler.Delete)
	admin.POST("/communities", communityHandler.Create)
	admin.PUT("/communities/:id", communityHandler.Update)
	admin.DELETE("/communities/:id", communityHandler.Delete)
	admin.DELETE("/activities/:id", activityHandler.Delete)
	admin.POST("/uploads", contentHandler.UploadImage, middleware.BodyLimit("6M"))

	return &Server{e: e}
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.e
}

func allowOrigin(allowed []string) func(string) (bool, error) {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			set[strings.ToLower(o)] = struct{}{}
		}
	}
	return func(origin string) (bool, error) {
		low := strings.ToLower(origin)
		if _, ok := set[low]; ok {
			return true, nil
		}
		u, err := url.Parse(low)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return false, nil
		}
		host := u.Hostname()
		return host == "localhost" || host == "127.0.0.1", nil
	}
}

func metricsAuth(user, pass string) middleware.BasicAuthValidator {
	return func(u, p string, _ echo.Context) (bool, error) {
		okUser := subtle.ConstantTimeCompare([]byte(u), []byte(user)) == 1
		okPass := subtle.ConstantTimeCompare([]byte(p), []byte(pass)) == 1
		return okUser && okPass, nil
	}
}
