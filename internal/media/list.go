package media

import (
	"context"
	"strings"

	"github.com/angelmondragon/moments-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/moments-backend/pkg/errors"
)

// FilterAll selects every record in the admin listing.
const FilterAll = "all"

func (s *service) ListApproved(ctx context.Context) ([]MediaDTO, error) {
	approved := enums.MediaStatusApproved
	rows, err := s.repo.List(ctx, ListFilter{Status: &approved})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list approved media")
	}
	return s.toDTOs(ctx, rows)
}

func (s *service) ListAll(ctx context.Context, filter string) (*AdminListResult, error) {
	filter = strings.ToLower(strings.TrimSpace(filter))
	if filter == "" {
		filter = FilterAll
	}

	var listFilter ListFilter
	if filter != FilterAll {
		status, err := enums.ParseMediaStatus(filter)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "status must be one of all, pending, approved, rejected")
		}
		listFilter.Status = &status
	}

	rows, err := s.repo.List(ctx, listFilter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list media")
	}
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count media by status")
	}
	items, err := s.toDTOs(ctx, rows)
	if err != nil {
		return nil, err
	}

	result := &AdminListResult{
		Filter: filter,
		Items:  items,
		Counts: FilterCounts{
			Pending:  counts[enums.MediaStatusPending],
			Approved: counts[enums.MediaStatusApproved],
			Rejected: counts[enums.MediaStatusRejected],
		},
	}
	result.Counts.All = result.Counts.Pending + result.Counts.Approved + result.Counts.Rejected
	return result, nil
}
