package services

import (
	"context"

	"sikseb/internal/catalog"
	"sikseb/pkg/logger"
	"sikseb/pkg/response"

	"github.com/sirupsen/logrus"
)

// PermissionService reads the backend's permission catalog.
type PermissionService struct {
	api API
	log logrus.FieldLogger
}

func NewPermissionService(api API) *PermissionService {
	return &PermissionService{
		api: api,
		log: logger.GetLogger().WithField("component", "permissions"),
	}
}

func (s *PermissionService) SetLogger(l logrus.FieldLogger) {
	s.log = l
}

// Groups GET /api/permissions
func (s *PermissionService) Groups(ctx context.Context) ([]catalog.Group, error) {
	var env response.ListEnvelope[catalog.Group]
	if err := s.api.Get(ctx, "/api/permissions", &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// CatalogDrift lists the codes only one side knows about.
type CatalogDrift struct {
	BackendOnly []catalog.PermissionCode
	LocalOnly   []catalog.PermissionCode
}

func (d CatalogDrift) Empty() bool {
	return len(d.BackendOnly) == 0 && len(d.LocalOnly) == 0
}

// Drift compares the backend catalog with the compiled-in one.
func (s *PermissionService) Drift(ctx context.Context) (CatalogDrift, error) {
	groups, err := s.Groups(ctx)
	if err != nil {
		return CatalogDrift{}, err
	}

	seen := make(map[catalog.PermissionCode]bool)
	var drift CatalogDrift
	for _, g := range groups {
		for _, p := range g.Permissions {
			if seen[p] {
				continue
			}
			seen[p] = true
			if !catalog.IsKnown(p) {
				drift.BackendOnly = append(drift.BackendOnly, p)
			}
		}
	}
	for _, p := range catalog.AllPermissions() {
		if !seen[p] {
			drift.LocalOnly = append(drift.LocalOnly, p)
		}
	}

	if !drift.Empty() {
		s.log.WithFields(logrus.Fields{
			"backend_only": drift.BackendOnly,
			"local_only":   drift.LocalOnly,
		}).Warn("permission catalog differs from backend")
	}
	return drift, nil
}
