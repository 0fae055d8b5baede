package orchestrators

import (
	"context"
	"errors"
	"testing"

	"gymdesk/internal/domain/apperr"
	"gymdesk/internal/domain/audit"
	"gymdesk/internal/domain/member"
	"gymdesk/internal/domain/staff"
)

func TestExecuteRegisterMember(t *testing.T) {
	tests := []struct {
		name    string
		input   RegisterMemberInput
		wantErr bool
	}{
		{"valid", RegisterMemberInput{Name: " Jane Doe ", Email: "jane@example.com"}, false},
		{"with PIN", RegisterMemberInput{Name: "Jane Doe", PIN: "2468"}, false},
		{"empty name", RegisterMemberInput{Name: "  "}, true},
		{"bad email", RegisterMemberInput{Name: "Jane", Email: "jane.example.com"}, true},
		{"bad PIN", RegisterMemberInput{Name: "Jane", PIN: "12"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			members := newMockMembers()
			got, err := ExecuteRegisterMember(context.Background(), tt.input, RegisterMemberDeps{
				Members: members, Clock: testClock, GenerateID: sequentialIDs("mem"),
			})
			if tt.wantErr {
				if !errors.Is(err, apperr.ErrValidation) {
					t.Fatalf("err = %v, want validation", err)
				}
				if len(members.byID) != 0 {
					t.Error("invalid member was saved")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.ID != "mem-1" || got.Status != member.StatusActive || got.Name != "Jane Doe" {
				t.Errorf("member = %+v", got)
			}
			if (tt.input.PIN != "") != (got.PINHash != "") {
				t.Errorf("PINHash set = %v, want %v", got.PINHash != "", tt.input.PIN != "")
			}
		})
	}
}

func TestExecuteRegisterStaff(t *testing.T) {
	saved := newMockStaff()
	got, err := ExecuteRegisterStaff(context.Background(), RegisterStaffInput{Name: "Ravi", Role: staff.RoleTrainer}, RegisterStaffDeps{
		Staff: saved, Clock: testClock,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.JoiningDate.Equal(day("2025-03-10")) {
		t.Errorf("JoiningDate = %v, want today", got.JoiningDate)
	}
	if _, ok := saved.byID[got.ID]; !ok {
		t.Error("staff not saved")
	}

	_, err = ExecuteRegisterStaff(context.Background(), RegisterStaffInput{Name: "Ravi", Role: "janitor"}, RegisterStaffDeps{Staff: saved, Clock: testClock})
	if !errors.Is(err, staff.ErrInvalidRole) {
		t.Errorf("bad role err = %v", err)
	}
}

func TestArchiveAndRestoreMember(t *testing.T) {
	members := newMockMembers(activeMember("m1", "Jane Doe"))
	log := &mockAudit{}
	deps := ArchiveMemberDeps{Members: members, Audit: log, Clock: testClock}
	ctx := context.Background()

	if err := ExecuteArchiveMember(ctx, ArchiveMemberInput{MemberID: "m1", Actor: "owner"}, deps); err != nil {
		t.Fatalf("archive: %v", err)
	}
	archived := members.byID["m1"]
	if !archived.IsArchived() {
		t.Fatal("member not archived")
	}
	if err := ExecuteArchiveMember(ctx, ArchiveMemberInput{MemberID: "m1"}, deps); !errors.Is(err, member.ErrAlreadyArchived) {
		t.Errorf("archive twice err = %v", err)
	}

	if err := ExecuteRestoreMember(ctx, ArchiveMemberInput{MemberID: "m1"}, deps); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if members.byID["m1"].Status != member.StatusActive {
		t.Errorf("Status = %q after restore", members.byID["m1"].Status)
	}
	if err := ExecuteRestoreMember(ctx, ArchiveMemberInput{MemberID: "m1"}, deps); !errors.Is(err, member.ErrNotArchived) {
		t.Errorf("restore twice err = %v", err)
	}

	if len(log.events) != 2 || log.events[0].Action != audit.ActionArchive || log.events[1].Action != audit.ActionRestore {
		t.Errorf("audit = %+v", log.events)
	}
}

func TestAuditFailureDoesNotFailOperation(t *testing.T) {
	members := newMockMembers(activeMember("m1", "Jane Doe"))
	deps := ArchiveMemberDeps{Members: members, Audit: &mockAudit{fail: true}, Clock: testClock}
	if err := ExecuteArchiveMember(context.Background(), ArchiveMemberInput{MemberID: "m1"}, deps); err != nil {
		t.Fatalf("archive with failing audit: %v", err)
	}
}
