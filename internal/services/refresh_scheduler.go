package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"sikseb/internal/models"
	"sikseb/pkg/logger"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// RefreshFunc receives the outcome of every scheduled refresh.
type RefreshFunc func(roles []models.Role, err error)

// RefreshScheduler re-lists roles on a cron schedule. Refreshes never overlap;
// a tick that fires while one is running is skipped.
type RefreshScheduler struct {
	roles     *RoleService
	cron      *cron.Cron
	spec      string
	timeout   time.Duration
	onRefresh RefreshFunc
	log       logrus.FieldLogger

	mu      sync.Mutex
	entryID cron.EntryID
	running bool
}

// NewRefreshScheduler accepts standard five-field specs and descriptors such as "@every 30s".
func NewRefreshScheduler(roles *RoleService, spec string, timeout time.Duration, onRefresh RefreshFunc) (*RefreshScheduler, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	log := logger.GetLogger().WithField("component", "refresh_scheduler")
	return &RefreshScheduler{
		roles:     roles,
		cron:      cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		spec:      spec,
		timeout:   timeout,
		onRefresh: onRefresh,
		log:       log,
	}, nil
}

func (s *RefreshScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}

	id, err := s.cron.AddFunc(s.spec, s.refresh)
	if err != nil {
		return err
	}
	s.entryID = id
	s.cron.Start()
	s.running = true
	s.log.WithField("spec", s.spec).Info("role refresh scheduler started")
	return nil
}

// Stop halts the schedule and waits for a running refresh to finish.
func (s *RefreshScheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.cron.Remove(s.entryID)
	s.running = false
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	s.log.Info("role refresh scheduler stopped")
}

// NextRun reports the next scheduled refresh, zero when stopped.
func (s *RefreshScheduler) NextRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

func (s *RefreshScheduler) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	roles, err := s.roles.List(ctx)
	if err != nil {
		s.log.WithError(err).Warn("scheduled refresh failed")
	}
	if s.onRefresh != nil {
		s.onRefresh(roles, err)
	}
}
