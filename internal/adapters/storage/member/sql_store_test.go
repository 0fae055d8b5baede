package member

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"gymdesk/internal/adapters/storage/storagetest"
	"gymdesk/internal/domain/apperr"
	domain "gymdesk/internal/domain/member"
)

func TestSQLStore_SaveGetList(t *testing.T) {
	db := storagetest.Open(t)
	store := NewSQLStore(db)
	ctx := context.Background()
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	for _, m := range []domain.Member{
		{ID: "m1", Name: "Zoya Khan", Status: domain.StatusActive, CreatedAt: created},
		{ID: "m2", Name: "Arjun Rao", Email: "arjun@example.com", Status: domain.StatusInactive, CreatedAt: created},
		{ID: "m3", Name: "Old Timer", Status: domain.StatusArchived, CreatedAt: created},
	} {
		if err := store.Save(ctx, m); err != nil {
			t.Fatalf("Save %s: %v", m.ID, err)
		}
	}

	got, err := store.GetByID(ctx, "m2")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Email != "arjun@example.com" || !got.CreatedAt.Equal(created) {
		t.Errorf("GetByID = %+v", got)
	}

	list, err := store.List(ctx, ListFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].ID != "m2" || list[1].ID != "m1" {
		t.Errorf("List = %+v, want m2, m1 (archived hidden, by name)", list)
	}

	archived, _ := store.List(ctx, ListFilter{Status: domain.StatusArchived})
	if len(archived) != 1 || archived[0].ID != "m3" {
		t.Errorf("archived = %+v", archived)
	}

	search, _ := store.List(ctx, ListFilter{Search: "zoy"})
	if len(search) != 1 || search[0].ID != "m1" {
		t.Errorf("search = %+v", search)
	}

	names, err := store.NamesByID(ctx)
	if err != nil || len(names) != 3 || names["m3"] != "Old Timer" {
		t.Errorf("NamesByID = %v, %v", names, err)
	}
}

func TestSQLStore_UpdateKeepsCreatedAt(t *testing.T) {
	db := storagetest.Open(t)
	store := NewSQLStore(db)
	ctx := context.Background()
	created := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

	m := domain.Member{ID: "m1", Name: "Asha", Status: domain.StatusActive, CreatedAt: created}
	if err := store.Save(ctx, m); err != nil {
		t.Fatal(err)
	}
	m.Status = domain.StatusArchived
	m.CreatedAt = created.Add(time.Hour)
	if err := store.Save(ctx, m); err != nil {
		t.Fatal(err)
	}
	got, _ := store.GetByID(ctx, "m1")
	if got.Status != domain.StatusArchived || !got.CreatedAt.Equal(created) {
		t.Errorf("after update: %+v", got)
	}
}

func TestSQLStore_GetByID_NotFound(t *testing.T) {
	store := NewSQLStore(storagetest.Open(t))
	_, err := store.GetByID(context.Background(), "missing")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestSQLStore_SortAndCount(t *testing.T) {
	store := NewSQLStore(storagetest.Open(t))
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, name := range []string{"Chitra", "Arjun", "Bela"} {
		m := domain.Member{ID: "m" + string(rune('1'+i)), Name: name, Status: domain.StatusActive, CreatedAt: base.AddDate(0, 0, i)}
		if err := store.Save(ctx, m); err != nil {
			t.Fatal(err)
		}
	}
	store.Save(ctx, domain.Member{ID: "m9", Name: "Gone", Status: domain.StatusArchived, CreatedAt: base})

	tests := []struct {
		name   string
		filter ListFilter
		want   []string
	}{
		{"default by name", ListFilter{}, []string{"m2", "m3", "m1"}},
		{"name desc", ListFilter{Desc: true}, []string{"m1", "m3", "m2"}},
		{"joined", ListFilter{Sort: SortJoined}, []string{"m1", "m2", "m3"}},
		{"joined desc, paged", ListFilter{Sort: SortJoined, Desc: true, Limit: 2, Offset: 1}, []string{"m2", "m1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := store.List(ctx, tt.filter)
			if err != nil {
				t.Fatal(err)
			}
			var ids []string
			for _, m := range list {
				ids = append(ids, m.ID)
			}
			if strings.Join(ids, ",") != strings.Join(tt.want, ",") {
				t.Errorf("ids = %v, want %v", ids, tt.want)
			}
		})
	}

	n, err := store.Count(ctx, ListFilter{Limit: 1})
	if err != nil || n != 3 {
		t.Errorf("Count = %d, %v; want 3 (archived hidden, limit ignored)", n, err)
	}
	n, _ = store.Count(ctx, ListFilter{Search: "be"})
	if n != 1 {
		t.Errorf("Count(search) = %d, want 1", n)
	}
}
