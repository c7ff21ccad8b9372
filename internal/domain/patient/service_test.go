package patient

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/dencare/dencare/internal/platform/apperr"
)

type mockPatientRepo struct {
	nextID   int64
	patients map[int64]*Patient
	history  map[HistorySet]map[int64][]int64 // set -> patient id -> option ids
}

func newMockPatientRepo() *mockPatientRepo {
	return &mockPatientRepo{
		patients: make(map[int64]*Patient),
		history: map[HistorySet]map[int64][]int64{
			DentalHistory:  {},
			MedicalHistory: {},
			Allergies:      {},
		},
	}
}

func (m *mockPatientRepo) Create(_ context.Context, p *Patient) error {
	m.nextID++
	p.ID = m.nextID
	p.CreatedAt = time.Unix(p.ID, 0)
	p.UpdatedAt = p.CreatedAt
	clone := *p
	m.patients[p.ID] = &clone
	return nil
}

func (m *mockPatientRepo) GetByID(_ context.Context, id int64) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, apperr.NotFound("patient %d not found", id)
	}
	clone := *p
	return &clone, nil
}

func (m *mockPatientRepo) List(_ context.Context, limit, offset int) ([]*Patient, int, error) {
	ordered := m.byDisplay()
	total := len(ordered)
	if offset > len(ordered) {
		offset = len(ordered)
	}
	ordered = ordered[offset:]
	if limit < len(ordered) {
		ordered = ordered[:limit]
	}
	return ordered, total, nil
}

func (m *mockPatientRepo) byDisplay() []*Patient {
	var items []*Patient
	for _, p := range m.patients {
		clone := *p
		items = append(items, &clone)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].DisplayNumber < items[j].DisplayNumber })
	return items
}

func (m *mockPatientRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.patients[id]; !ok {
		return apperr.NotFound("patient %d not found", id)
	}
	delete(m.patients, id)
	return nil
}

func (m *mockPatientRepo) MaxDisplayNumber(_ context.Context) (int, error) {
	max := 0
	for _, p := range m.patients {
		if p.DisplayNumber > max {
			max = p.DisplayNumber
		}
	}
	return max, nil
}

func (m *mockPatientRepo) ShiftDisplayFrom(_ context.Context, from int) error {
	for _, p := range m.patients {
		if p.DisplayNumber >= from {
			p.DisplayNumber++
		}
	}
	return nil
}

func (m *mockPatientRepo) ShiftDisplayRange(_ context.Context, lo, hi, delta int) error {
	for _, p := range m.patients {
		if p.DisplayNumber >= lo && p.DisplayNumber <= hi {
			p.DisplayNumber += delta
		}
	}
	return nil
}

func (m *mockPatientRepo) SetDisplayNumber(_ context.Context, id int64, displayNumber int) error {
	if p, ok := m.patients[id]; ok {
		p.DisplayNumber = displayNumber
	}
	return nil
}

func (m *mockPatientRepo) IDsByCreation(_ context.Context) ([]int64, error) {
	var ids []int64
	for id := range m.patients {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (m *mockPatientRepo) History(_ context.Context, patientID int64, set HistorySet) ([]HistoryItem, error) {
	var items []HistoryItem
	for i, optionID := range m.history[set][patientID] {
		items = append(items, HistoryItem{
			ID:     int64(i + 1),
			Option: HistoryOption{ID: optionID, Label: "option"},
		})
	}
	return items, nil
}

func (m *mockPatientRepo) ReplaceHistory(_ context.Context, patientID int64, set HistorySet, optionIDs []int64) error {
	m.history[set][patientID] = append([]int64{}, optionIDs...)
	return nil
}

func nopTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestService() (*Service, *mockPatientRepo) {
	repo := newMockPatientRepo()
	return NewService(repo, nopTx), repo
}

func mustCreate(t *testing.T, svc *Service, name string, override int) *Patient {
	t.Helper()
	p, err := svc.CreatePatient(context.Background(), CreatePatientInput{
		Name: name, Sex: "F", DisplayNumberOverride: override,
	})
	if err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	return p
}

func assertDense(t *testing.T, repo *mockPatientRepo) {
	t.Helper()
	ordered := repo.byDisplay()
	for i, p := range ordered {
		if p.DisplayNumber != i+1 {
			t.Fatalf("display numbers not dense: %v", displayNumbers(ordered))
		}
	}
}

func displayNumbers(patients []*Patient) []int {
	nums := make([]int, len(patients))
	for i, p := range patients {
		nums[i] = p.DisplayNumber
	}
	return nums
}

func TestCreatePatient_SequentialNumbers(t *testing.T) {
	svc, repo := newTestService()
	for i, name := range []string{"Asha", "Bilal", "Chitra"} {
		p := mustCreate(t, svc, name, 0)
		if p.DisplayNumber != i+1 {
			t.Errorf("%s: expected display %d, got %d", name, i+1, p.DisplayNumber)
		}
	}
	assertDense(t, repo)
}

func TestCreatePatient_OverrideShiftsUp(t *testing.T) {
	svc, repo := newTestService()
	a := mustCreate(t, svc, "Asha", 0)
	b := mustCreate(t, svc, "Bilal", 0)

	c := mustCreate(t, svc, "Chitra", 1)
	if c.DisplayNumber != 1 {
		t.Errorf("expected override honored, got %d", c.DisplayNumber)
	}
	if got, _ := repo.GetByID(context.Background(), a.ID); got.DisplayNumber != 2 {
		t.Errorf("expected Asha shifted to 2, got %d", got.DisplayNumber)
	}
	if got, _ := repo.GetByID(context.Background(), b.ID); got.DisplayNumber != 3 {
		t.Errorf("expected Bilal shifted to 3, got %d", got.DisplayNumber)
	}
	assertDense(t, repo)
}

func TestCreatePatient_Invalid(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	cases := []CreatePatientInput{
		{Name: "", Sex: "F"},
		{Name: "A", Sex: "X"},
		{Name: "A", Sex: "M", Age: intPtr(-3)},
		{Name: "A", Sex: "M", DisplayNumberOverride: -1},
	}
	for i, input := range cases {
		if _, err := svc.CreatePatient(ctx, input); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}

func intPtr(v int) *int { return &v }

func TestUpdateDisplayNumber_MoveUp(t *testing.T) {
	svc, repo := newTestService()
	var patients []*Patient
	for _, name := range []string{"A", "B", "C", "D"} {
		patients = append(patients, mustCreate(t, svc, name, 0))
	}

	// D from 4 to 2: B and C shift down the list
	moved, err := svc.UpdateDisplayNumber(context.Background(), patients[3].ID, 2)
	if err != nil {
		t.Fatalf("move failed: %v", err)
	}
	if moved.DisplayNumber != 2 {
		t.Errorf("expected 2, got %d", moved.DisplayNumber)
	}
	if got, _ := repo.GetByID(context.Background(), patients[1].ID); got.DisplayNumber != 3 {
		t.Errorf("expected B at 3, got %d", got.DisplayNumber)
	}
	if got, _ := repo.GetByID(context.Background(), patients[2].ID); got.DisplayNumber != 4 {
		t.Errorf("expected C at 4, got %d", got.DisplayNumber)
	}
	assertDense(t, repo)
}

func TestUpdateDisplayNumber_MoveDown(t *testing.T) {
	svc, repo := newTestService()
	var patients []*Patient
	for _, name := range []string{"A", "B", "C", "D"} {
		patients = append(patients, mustCreate(t, svc, name, 0))
	}

	// A from 1 to 3: B and C close the gap
	moved, err := svc.UpdateDisplayNumber(context.Background(), patients[0].ID, 3)
	if err != nil {
		t.Fatalf("move failed: %v", err)
	}
	if moved.DisplayNumber != 3 {
		t.Errorf("expected 3, got %d", moved.DisplayNumber)
	}
	if got, _ := repo.GetByID(context.Background(), patients[1].ID); got.DisplayNumber != 1 {
		t.Errorf("expected B at 1, got %d", got.DisplayNumber)
	}
	assertDense(t, repo)
}

func TestUpdateDisplayNumber_NoopAndInvalid(t *testing.T) {
	svc, repo := newTestService()
	p := mustCreate(t, svc, "A", 0)

	same, err := svc.UpdateDisplayNumber(context.Background(), p.ID, 1)
	if err != nil || same.DisplayNumber != 1 {
		t.Errorf("expected no-op move, got %+v (%v)", same, err)
	}
	if _, err := svc.UpdateDisplayNumber(context.Background(), p.ID, 0); err == nil {
		t.Error("expected validation error for zero")
	}
	if _, err := svc.UpdateDisplayNumber(context.Background(), 99, 1); err == nil {
		t.Error("expected not found for missing patient")
	}
	assertDense(t, repo)
}

func TestDeletePatient_Resequences(t *testing.T) {
	svc, repo := newTestService()
	var patients []*Patient
	for _, name := range []string{"A", "B", "C"} {
		patients = append(patients, mustCreate(t, svc, name, 0))
	}

	if err := svc.DeletePatient(context.Background(), patients[1].ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if len(repo.patients) != 2 {
		t.Fatalf("expected 2 patients, got %d", len(repo.patients))
	}
	assertDense(t, repo)
	if got, _ := repo.GetByID(context.Background(), patients[2].ID); got.DisplayNumber != 2 {
		t.Errorf("expected C renumbered to 2, got %d", got.DisplayNumber)
	}
}

func TestUpdateHistory_PresentSetsOnly(t *testing.T) {
	svc, repo := newTestService()
	p := mustCreate(t, svc, "A", 0)
	ctx := context.Background()

	dental := []int64{1, 2}
	allergies := []int64{5}
	if err := svc.UpdateHistory(ctx, p.ID, UpdateHistoryInput{
		DentalHistoryIDs: &dental,
		AllergyIDs:       &allergies,
	}); err != nil {
		t.Fatalf("update history: %v", err)
	}

	if got := repo.history[DentalHistory][p.ID]; len(got) != 2 {
		t.Errorf("expected 2 dental selections, got %v", got)
	}
	if got := repo.history[Allergies][p.ID]; len(got) != 1 {
		t.Errorf("expected 1 allergy selection, got %v", got)
	}
	if got := repo.history[MedicalHistory][p.ID]; got != nil {
		t.Errorf("medical set must stay untouched, got %v", got)
	}

	// empty slice clears; nil leaves alone
	empty := []int64{}
	if err := svc.UpdateHistory(ctx, p.ID, UpdateHistoryInput{DentalHistoryIDs: &empty}); err != nil {
		t.Fatalf("update history: %v", err)
	}
	if got := repo.history[DentalHistory][p.ID]; len(got) != 0 {
		t.Errorf("expected dental cleared, got %v", got)
	}
	if got := repo.history[Allergies][p.ID]; len(got) != 1 {
		t.Errorf("allergies must survive, got %v", got)
	}
}

func TestUpdateHistory_MissingPatient(t *testing.T) {
	svc, _ := newTestService()
	err := svc.UpdateHistory(context.Background(), 42, UpdateHistoryInput{})
	appErr, ok := err.(*apperr.Error)
	if !ok || appErr.Kind != apperr.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestExportXLSX(t *testing.T) {
	svc, _ := newTestService()
	mustCreate(t, svc, "Asha", 0)
	mustCreate(t, svc, "Bilal", 0)

	f, err := svc.ExportXLSX(context.Background())
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Patients")
	if err != nil {
		t.Fatalf("read sheet: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "No" || rows[0][1] != "Name" {
		t.Errorf("unexpected header %v", rows[0])
	}
	if rows[1][1] != "Asha" || rows[2][1] != "Bilal" {
		t.Errorf("unexpected rows %v", rows[1:])
	}
}
