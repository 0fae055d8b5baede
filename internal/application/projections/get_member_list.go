package projections

import (
	"context"
	"time"

	"gymdesk/internal/adapters/storage/member"
	"gymdesk/internal/application/listutil"
)

// GetMemberListQuery carries query parameters.
type GetMemberListQuery struct {
	Status string // empty lists everyone except archived members
	Search string
	Page   listutil.PageParams
	Sort   listutil.SortParams
}

// MemberWithPresence represents a member with check-in status.
type MemberWithPresence struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	Status         string    `json:"status"`
	HasKioskPIN    bool      `json:"has_kiosk_pin"`
	CheckedIn      bool      `json:"checked_in"`
	CheckedInSince time.Time `json:"checked_in_since,omitzero"`
}

// GetMemberListResult carries the query result.
type GetMemberListResult struct {
	Members []MemberWithPresence `json:"members"`
	Page    listutil.PageInfo    `json:"page"`
}

// GetMemberListDeps holds dependencies for GetMemberList.
type GetMemberListDeps struct {
	MemberStore  MemberStore
	SessionStore SessionStore
}

// QueryGetMemberList retrieves one page of members with check-in flags.
// PRE: Valid query parameters
// POST: Returns members matching the filter; members in the building carry CheckedIn
func QueryGetMemberList(ctx context.Context, query GetMemberListQuery, deps GetMemberListDeps) (GetMemberListResult, error) {
	filter := member.ListFilter{
		Status: query.Status,
		Search: query.Search,
		Sort:   query.Sort.Sort,
		Desc:   query.Sort.Desc,
	}
	total, err := deps.MemberStore.Count(ctx, filter)
	if err != nil {
		return GetMemberListResult{}, err
	}
	page := listutil.NewPageInfo(query.Page.Page, query.Page.PerPage, total)
	filter.Limit = page.PerPage
	filter.Offset = (page.Page - 1) * page.PerPage

	members, err := deps.MemberStore.List(ctx, filter)
	if err != nil {
		return GetMemberListResult{}, err
	}

	open, err := deps.SessionStore.ListOpen(ctx)
	if err != nil {
		return GetMemberListResult{}, err
	}
	since := make(map[string]time.Time, len(open))
	for _, s := range open {
		since[s.MemberID] = s.CheckInTime
	}

	result := make([]MemberWithPresence, 0, len(members))
	for _, m := range members {
		row := MemberWithPresence{
			ID:          m.ID,
			Name:        m.Name,
			Email:       m.Email,
			Phone:       m.Phone,
			Status:      m.Status,
			HasKioskPIN: m.PINHash != "",
		}
		if t, ok := since[m.ID]; ok {
			row.CheckedIn = true
			row.CheckedInSince = t
		}
		result = append(result, row)
	}

	return GetMemberListResult{Members: result, Page: page}, nil
}
