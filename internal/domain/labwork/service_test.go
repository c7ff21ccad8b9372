package labwork

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/dencare/dencare/internal/platform/apperr"
)

type mockLabWorkRepo struct {
	nextID int64
	works  map[int64]*LabWork
}

func newMockLabWorkRepo() *mockLabWorkRepo {
	return &mockLabWorkRepo{works: make(map[int64]*LabWork)}
}

func (m *mockLabWorkRepo) Create(_ context.Context, w *LabWork) error {
	m.nextID++
	w.ID = m.nextID
	w.CreatedAt = time.Now()
	clone := *w
	m.works[w.ID] = &clone
	return nil
}

func (m *mockLabWorkRepo) List(_ context.Context, pendingOnly bool) ([]*LabWork, error) {
	var items []*LabWork
	for _, w := range m.works {
		if pendingOnly && w.Delivered {
			continue
		}
		clone := *w
		items = append(items, &clone)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (m *mockLabWorkRepo) MarkDelivered(_ context.Context, id int64) (*LabWork, error) {
	w, ok := m.works[id]
	if !ok {
		return nil, apperr.NotFound("lab work %d not found", id)
	}
	w.Delivered = true
	clone := *w
	return &clone, nil
}

func (m *mockLabWorkRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.works[id]; !ok {
		return apperr.NotFound("lab work %d not found", id)
	}
	delete(m.works, id)
	return nil
}

func (m *mockLabWorkRepo) CountPending(_ context.Context) (int, error) {
	count := 0
	for _, w := range m.works {
		if !w.Delivered {
			count++
		}
	}
	return count, nil
}

func TestCreateLabWork(t *testing.T) {
	svc := NewService(newMockLabWorkRepo())
	w, err := svc.Create(context.Background(), CreateLabWorkInput{
		PatientID: 1, LabName: "Smile Lab", WorkType: "Crown", ExpectedDeliveryDate: "2024-06-15",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if w.ID == 0 || w.Delivered {
		t.Errorf("unexpected lab work %+v", w)
	}
	if w.ExpectedDeliveryDate == nil || w.ExpectedDeliveryDate.Format("2006-01-02") != "2024-06-15" {
		t.Errorf("unexpected delivery date %v", w.ExpectedDeliveryDate)
	}
}

func TestCreateLabWork_Invalid(t *testing.T) {
	svc := NewService(newMockLabWorkRepo())
	ctx := context.Background()

	cases := []CreateLabWorkInput{
		{PatientID: 0, LabName: "L", WorkType: "Crown"},
		{PatientID: 1, LabName: "", WorkType: "Crown"},
		{PatientID: 1, LabName: "L", WorkType: ""},
		{PatientID: 1, LabName: "L", WorkType: "Crown", ExpectedDeliveryDate: "soon"},
	}
	for i, input := range cases {
		if _, err := svc.Create(ctx, input); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}

func TestPendingFilterAndCount(t *testing.T) {
	repo := newMockLabWorkRepo()
	svc := NewService(repo)
	ctx := context.Background()

	first, err := svc.Create(ctx, CreateLabWorkInput{PatientID: 1, LabName: "A", WorkType: "Crown"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.Create(ctx, CreateLabWorkInput{PatientID: 2, LabName: "B", WorkType: "Denture"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	delivered, err := svc.MarkDelivered(ctx, first.ID)
	if err != nil {
		t.Fatalf("mark delivered: %v", err)
	}
	if !delivered.Delivered {
		t.Error("expected delivered flag set")
	}

	pending, err := svc.List(ctx, true)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(pending) != 1 || pending[0].LabName != "B" {
		t.Errorf("expected only the undelivered item, got %+v", pending)
	}

	all, err := svc.List(ctx, false)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 items, got %d", len(all))
	}

	count, err := svc.CountPending(ctx)
	if err != nil || count != 1 {
		t.Errorf("expected 1 pending, got %d (%v)", count, err)
	}
}

func TestDeleteLabWork(t *testing.T) {
	svc := NewService(newMockLabWorkRepo())
	w, err := svc.Create(context.Background(), CreateLabWorkInput{PatientID: 1, LabName: "A", WorkType: "Crown"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := svc.Delete(context.Background(), w.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := svc.Delete(context.Background(), w.ID); err == nil {
		t.Fatal("expected not found on second delete")
	}
}

func TestMarkDelivered_Missing(t *testing.T) {
	svc := NewService(newMockLabWorkRepo())
	if _, err := svc.MarkDelivered(context.Background(), 9); err == nil {
		t.Fatal("expected not found")
	}
}
