package ports

import (
	"context"

	"github.com/clienttracker/crm-system/internal/core/domain"
)

// DashboardStats is the summary computed from the principal's visible
// clients and tasks. ClientsByStage contains every pipeline stage, including
// stages with zero clients.
type DashboardStats struct {
	TotalClients   int                  `json:"total_clients"`
	ClientsByStage map[domain.Stage]int `json:"clients_by_stage"`
	DroppedClients int                  `json:"dropped_clients"`
	PendingTasks   int                  `json:"pending_tasks"`
	OverdueTasks   int                  `json:"overdue_tasks"`
}

// DashboardService computes summary statistics on demand.
type DashboardService interface {
	ComputeStats(ctx context.Context, p domain.Principal) (*DashboardStats, error)
}

// StatsCache is an optional read-through cache for dashboard stats, keyed by
// visibility scope. Failures are non-fatal: a miss or error just means the
// stats are recomputed.
type StatsCache interface {
	Get(ctx context.Context, scope string) (*DashboardStats, bool)
	Set(ctx context.Context, scope string, stats *DashboardStats)
}
