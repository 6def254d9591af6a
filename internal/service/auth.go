package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/iliyamo/restaurant-dashboard/internal/backend"
	"github.com/iliyamo/restaurant-dashboard/internal/model"
	"github.com/iliyamo/restaurant-dashboard/internal/repository"
	"github.com/iliyamo/restaurant-dashboard/internal/session"
)

// AuthService opens and closes the backend session and keeps the
// last-known identity in the session store.
type AuthService struct {
	client      *backend.Client
	store       *session.Store
	restaurants *RestaurantService
	log         *slog.Logger
}

// NewAuthService also makes the client forget the stored identity when a
// request ends in backend.ErrLoginRequired.
func NewAuthService(client *backend.Client, store *session.Store, restaurants *RestaurantService, log *slog.Logger) *AuthService {
	if client == nil || store == nil || restaurants == nil {
		panic("nil dependency passed to NewAuthService")
	}
	if log == nil {
		log = slog.Default()
	}
	s := &AuthService{client: client, store: store, restaurants: restaurants, log: log.With("component", "auth")}
	client.OnLoginRequired = func() {
		if err := store.Clear(context.Background()); err != nil {
			s.log.Warn("session expired, could not clear identity", "error", err)
			return
		}
		s.log.Info("session expired, identity cleared")
	}
	return s
}

// Login signs in and resolves the user's restaurant.  A user without a
// restaurant still signs in; RestaurantID stays empty.
func (s *AuthService) Login(ctx context.Context, cred model.Credentials) (model.User, error) {
	if err := firstErr(required("email", cred.Email), required("password", cred.Password)); err != nil {
		return model.User{}, err
	}
	sess, err := s.client.Login(ctx, cred)
	if err != nil {
		return model.User{}, fmt.Errorf("login: %w", err)
	}
	u, err := s.client.Me(ctx)
	if err != nil {
		s.log.Warn("could not load profile, using login reply", "error", err)
		u = model.User{UserID: sess.User.ID, Email: sess.User.Email}
	}
	if u.RestaurantID == "" {
		r, err := s.restaurants.Mine(ctx)
		switch {
		case err == nil:
			u.RestaurantID = r.ID
		case errors.Is(err, repository.ErrNoRestaurant):
		default:
			s.log.Warn("could not resolve restaurant", "error", err)
		}
	}
	if err := s.store.Save(ctx, u, sess.AccessToken); err != nil {
		return model.User{}, fmt.Errorf("save identity: %w", err)
	}
	s.log.Info("signed in", "user_id", u.UserID, "restaurant_id", u.RestaurantID)
	return u, nil
}

// Logout closes the backend session.  The local identity is cleared even
// when the backend cannot be reached.
func (s *AuthService) Logout(ctx context.Context) error {
	err := s.client.Logout(ctx)
	if cerr := s.store.Clear(ctx); cerr != nil {
		s.log.Warn("could not clear identity", "error", cerr)
	}
	if err != nil && backend.Classify(err) != backend.KindUnauthorized {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// Current returns the last-known identity.
func (s *AuthService) Current(ctx context.Context) (model.User, bool) {
	return s.store.Load(ctx)
}
