package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/clienttracker/crm-system/internal/core/domain"
	"github.com/clienttracker/crm-system/internal/core/policy"
	"github.com/clienttracker/crm-system/internal/core/ports"
)

// DashboardService computes summary statistics from the principal's visible
// client and task sets. Malformed stored deadlines never abort a
// computation; they are simply excluded from the overdue count.
type DashboardService struct {
	clients ports.ClientRepository
	tasks   ports.TaskRepository
	cache   ports.StatsCache
	now     func() time.Time
	logger  zerolog.Logger
}

func NewDashboardService(
	clients ports.ClientRepository,
	tasks ports.TaskRepository,
	cache ports.StatsCache,
	logger zerolog.Logger,
) *DashboardService {
	return &DashboardService{
		clients: clients,
		tasks:   tasks,
		cache:   cache,
		now:     time.Now,
		logger:  logger,
	}
}

// ComputeStats scans the principal's visible clients and tasks. Results are
// cached per visibility scope for a short interval.
func (s *DashboardService) ComputeStats(ctx context.Context, p domain.Principal) (*ports.DashboardStats, error) {
	scope := policy.Scope(p)
	cacheKey := scope
	if cacheKey == "" {
		cacheKey = "all"
	}

	if s.cache != nil {
		if stats, ok := s.cache.Get(ctx, cacheKey); ok {
			return stats, nil
		}
	}

	clients, err := s.clients.List(ctx, ports.ClientFilter{OwnerID: scope})
	if err != nil {
		return nil, err
	}

	stats := &ports.DashboardStats{ClientsByStage: make(map[domain.Stage]int, len(domain.Stages()))}
	for _, stage := range domain.Stages() {
		stats.ClientsByStage[stage] = 0
	}
	for _, c := range clients {
		if c.IsDropped {
			stats.DroppedClients++
			continue
		}
		stats.TotalClients++
		if c.Stage.Valid() {
			stats.ClientsByStage[c.Stage]++
		}
	}

	filter := ports.TaskFilter{}
	if scope != "" {
		ownedIDs, err := s.clients.IDsOwnedBy(ctx, scope)
		if err != nil {
			return nil, err
		}
		filter.VisibleTo = scope
		filter.OwnedClientIDs = ownedIDs
	}
	tasks, err := s.tasks.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	for _, t := range tasks {
		if t.Status != domain.TaskPending {
			continue
		}
		stats.PendingTasks++
		if !t.Deadline.Valid && t.Deadline.Raw != "" {
			s.logger.Debug().Str("task_id", t.ID).Str("deadline", t.Deadline.Raw).Msg("unparseable deadline excluded from overdue count")
			continue
		}
		if t.Deadline.Before(now) {
			stats.OverdueTasks++
		}
	}

	if s.cache != nil {
		s.cache.Set(ctx, cacheKey, stats)
	}
	return stats, nil
}
