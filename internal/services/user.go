package services

import (
	"context"
	"strconv"

	"sikseb/internal/models"
	"sikseb/pkg/logger"
	"sikseb/pkg/pagination"
	"sikseb/pkg/response"

	"github.com/sirupsen/logrus"
)

// UserService is the read-only users listing.
type UserService struct {
	api API
	log logrus.FieldLogger
}

func NewUserService(api API) *UserService {
	return &UserService{
		api: api,
		log: logger.GetLogger().WithField("component", "users"),
	}
}

// List returns one page of GET /api/users. page < 1 means the first page.
func (s *UserService) List(ctx context.Context, page int) ([]models.User, pagination.Meta, error) {
	endpoint := "/api/users"
	if page > 1 {
		endpoint += "?page=" + strconv.Itoa(page)
	}

	var env response.ListEnvelope[models.User]
	if err := s.api.Get(ctx, endpoint, &env); err != nil {
		s.log.WithError(err).Warn("cannot list users")
		return nil, pagination.Meta{}, err
	}
	return env.Data, env.Meta, nil
}

// Me returns the user owning the current token (GET /api/user).
func (s *UserService) Me(ctx context.Context) (models.User, error) {
	var env response.EntityEnvelope[models.User]
	if err := s.api.Get(ctx, "/api/user", &env); err != nil {
		return models.User{}, err
	}
	return env.Data, nil
}
