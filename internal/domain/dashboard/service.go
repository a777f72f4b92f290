package dashboard

import (
	"context"

	"github.com/google/uuid"

	"github.com/cytolab/lims/internal/domain/identity"
	"github.com/cytolab/lims/internal/platform/apierr"
)

type Service struct {
	stats Repository
}

func NewService(stats Repository) *Service {
	return &Service{stats: stats}
}

// StatsFor assembles the aggregate view for one role. The caller is expected
// to have verified that the actor may see this role's dashboard.
func (s *Service) StatsFor(ctx context.Context, role string, actorID uuid.UUID) (*Stats, error) {
	out := &Stats{Role: role}

	scope := uuid.Nil
	if role == identity.RoleCustomer {
		scope = actorID
	}

	counts, err := s.stats.StatusCounts(ctx, scope)
	if err != nil {
		return nil, err
	}
	out.StatusCounts = counts

	urgent, err := s.stats.UrgentCount(ctx, scope)
	if err != nil {
		return nil, err
	}
	out.UrgentCount = urgent

	switch role {
	case identity.RoleAdmin:
		if out.TotalUsers, err = s.stats.UserCount(ctx); err != nil {
			return nil, err
		}
		if out.TotalCustomers, err = s.stats.CustomerCount(ctx); err != nil {
			return nil, err
		}
		if out.PendingReview, err = s.stats.PendingReview(ctx); err != nil {
			return nil, err
		}
	case identity.RoleAccession:
		if out.TodayAccessions, err = s.stats.TodayAccessions(ctx); err != nil {
			return nil, err
		}
	case identity.RoleTechnician:
		if out.MyAssignments, err = s.stats.TechnicianAssignments(ctx, actorID); err != nil {
			return nil, err
		}
	case identity.RolePathologist:
		if out.PendingReview, err = s.stats.PendingReview(ctx); err != nil {
			return nil, err
		}
		if out.MyAssignments, err = s.stats.PathologistAssignments(ctx, actorID); err != nil {
			return nil, err
		}
	case identity.RoleCustomer:
		// status and urgent counts above are already customer-scoped
	default:
		return nil, apierr.Validation("unknown role")
	}
	return out, nil
}
