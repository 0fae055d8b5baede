package orchestrators

import (
	"context"
	"log/slog"

	"gymdesk/internal/domain/apperr"
	"gymdesk/internal/domain/audit"
)

// ArchiveMemberInput carries input for the archive and restore orchestrators.
type ArchiveMemberInput struct {
	MemberID string
	Actor    string
}

// ArchiveMemberDeps holds dependencies for ArchiveMember and RestoreMember.
type ArchiveMemberDeps struct {
	Members MemberStore
	Audit   AuditRecorder // optional
	Clock   Clock
}

// ExecuteArchiveMember archives a member. Their history is kept.
// PRE: member exists and is not archived
// POST: Member status set to archived
func ExecuteArchiveMember(ctx context.Context, input ArchiveMemberInput, deps ArchiveMemberDeps) error {
	return changeArchived(ctx, input, deps, true)
}

// ExecuteRestoreMember brings an archived member back.
// PRE: member exists and is archived
// POST: Member status set to active
func ExecuteRestoreMember(ctx context.Context, input ArchiveMemberInput, deps ArchiveMemberDeps) error {
	return changeArchived(ctx, input, deps, false)
}

func changeArchived(ctx context.Context, input ArchiveMemberInput, deps ArchiveMemberDeps, archive bool) error {
	if input.MemberID == "" {
		return apperr.Validation("member ID is required")
	}
	m, err := deps.Members.GetByID(ctx, input.MemberID)
	if err != nil {
		return err
	}

	event, action := "member_restored", audit.ActionRestore
	if archive {
		event, action = "member_archived", audit.ActionArchive
		err = m.Archive()
	} else {
		err = m.Restore()
	}
	if err != nil {
		return apperr.Invalid(err)
	}
	if err := deps.Members.Save(ctx, m); err != nil {
		return err
	}

	slog.Info("member_event", "event", event, "member_id", m.ID)
	recordAudit(ctx, deps.Audit, audit.NewEvent(deps.Clock.Instant(), input.Actor, audit.CategoryMember, action).
		WithResource("member", m.ID))
	return nil
}
