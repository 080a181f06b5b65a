// Package rest exposes the nutrition tracking API over HTTP using chi.
package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/nutritracker/internal/logging"
	"github.com/dmitrijs2005/nutritracker/internal/server/config"
	"github.com/dmitrijs2005/nutritracker/internal/server/models"
	"github.com/dmitrijs2005/nutritracker/internal/server/services"
)

type UserService interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
	Login(ctx context.Context, userName, password string) (*services.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	CurrentUser(ctx context.Context, accessToken string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error)
	SetActive(ctx context.Context, id string, active bool) (*models.User, error)
	Delete(ctx context.Context, id string) error
}

type FoodService interface {
	SearchAndAdd(ctx context.Context, userID string, in services.SearchInput) (*models.FoodEntry, *models.DailyTracker, error)
	Add(ctx context.Context, userID string, in services.FoodInput) (*models.FoodEntry, error)
	List(ctx context.Context, userID string) ([]*models.FoodEntry, error)
	Get(ctx context.Context, userID string, id int64) (*models.FoodEntry, error)
	ListToday(ctx context.Context, userID string) ([]*models.FoodEntry, error)
}

type TrackerService interface {
	AttributeFood(ctx context.Context, userID string, foodID int64) (*models.DailyTracker, error)
	Today(ctx context.Context, userID string) (*models.DailyTracker, error)
	ForDay(ctx context.Context, userID string, day time.Time) (*models.DailyTracker, error)
}

type Server struct {
	address      string
	corsOrigins  []string
	users        UserService
	foods        FoodService
	trackers     TrackerService
	logger       logging.Logger
	loginLimiter *ipLimiter
}

func NewServer(cfg *config.Config, users UserService, foods FoodService, trackers TrackerService, l logging.Logger) *Server {
	return &Server{
		address:      cfg.EndpointAddrHTTP,
		corsOrigins:  cfg.CORSAllowedOrigins,
		users:        users,
		foods:        foods,
		trackers:     trackers,
		logger:       l.With("module", "http_server"),
		loginLimiter: newIPLimiter(cfg.LoginRateLimit, cfg.LoginRateBurst),
	}
}

func (s *Server) Run(ctx context.Context) error {

	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve handles requests on lis until ctx is cancelled, then drains
// in-flight requests for up to ten seconds.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	srv := &http.Server{
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
