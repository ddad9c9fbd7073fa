package service

import (
	"context"
	"strings"
	"time"

	"github.com/MKhiriev/go-fit-offline/internal/logger"
	"github.com/MKhiriev/go-fit-offline/internal/store"
	"github.com/MKhiriev/go-fit-offline/internal/utils"
	"github.com/MKhiriev/go-fit-offline/models"
)

type sessionService struct {
	repo   store.SessionRepository
	now    func() time.Time
	logger *logger.Logger
}

func NewSessionService(repo store.SessionRepository, log *logger.Logger) SessionService {
	return &sessionService{repo: repo, now: time.Now, logger: log.WithComponent("session")}
}

// Login stores token as the current credential, replacing any previous one.
// A JWT "exp" claim is read without verification; opaque tokens are stored
// without an expiry.
func (s *sessionService) Login(ctx context.Context, token string) (models.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return models.Session{}, ErrEmptyToken
	}

	session := models.Session{Token: token, UpdatedAt: s.now().UTC()}
	exp, err := utils.TokenExpiry(token)
	if err != nil {
		s.logger.Debug().Err(err).Msg("token is not a readable JWT, storing without expiry")
	} else {
		session.ExpiresAt = exp
	}

	if session.Expired(s.now()) {
		return models.Session{}, ErrSessionExpired
	}
	if err = s.repo.SaveSession(ctx, session); err != nil {
		return models.Session{}, err
	}
	return session, nil
}

func (s *sessionService) Current(ctx context.Context) (models.Session, error) {
	return s.repo.GetSession(ctx)
}

func (s *sessionService) Logout(ctx context.Context) error {
	return s.repo.ClearSession(ctx)
}
