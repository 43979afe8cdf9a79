package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/sakif/birdwatch/internal/apperror"
	"github.com/sakif/birdwatch/internal/model"
	"github.com/sakif/birdwatch/internal/repository/memory"
)

// =========================================================================
// SAVE / GET / UPDATE
// =========================================================================

func TestBirdSave_RoundTrip(t *testing.T) {
	svc := newTestServices(t)

	draft := model.BirdDraft{Name: "Sparrow", Color: "Black", Weight: 50.5, Height: 15.0}
	saved, err := svc.birds.Save(context.Background(), draft)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if saved.ID == "" {
		t.Fatal("expected bird to have an ID")
	}

	found, err := svc.birds.GetByID(context.Background(), saved.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}

	want := model.BirdView{ID: saved.ID, Name: "Sparrow", Color: "Black", Weight: 50.5, Height: 15.0}
	if *found != want {
		t.Errorf("GetByID() = %+v, want %+v", *found, want)
	}
}

func TestBirdGetByID_NotFound(t *testing.T) {
	svc := newTestServices(t)

	_, err := svc.birds.GetByID(context.Background(), "nonexistent")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestBirdUpdate_Success(t *testing.T) {
	svc := newTestServices(t)
	created := saveBird(t, svc.birds, "Sparrow", "Black")

	updated, err := svc.birds.Update(context.Background(), created.ID,
		model.BirdDraft{Name: "Robin", Color: "Red", Weight: 77, Height: 21})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	want := model.BirdView{ID: created.ID, Name: "Robin", Color: "Red", Weight: 77, Height: 21}
	if *updated != want {
		t.Errorf("Update() = %+v, want %+v", *updated, want)
	}

	found, _ := svc.birds.GetByID(context.Background(), created.ID)
	if *found != want {
		t.Errorf("stored = %+v, want %+v", *found, want)
	}
}

func TestBirdUpdate_NotFound(t *testing.T) {
	svc := newTestServices(t)

	_, err := svc.birds.Update(context.Background(), "nonexistent", model.BirdDraft{Name: "x"})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// SEARCH
// =========================================================================

func TestBirdCriteria_Filter(t *testing.T) {
	tests := []struct {
		name     string
		criteria BirdCriteria
		want     BirdFilter
	}{
		{"nothing set", BirdCriteria{}, BirdFilterAll},
		{"name only", BirdCriteria{Name: "Sparrow"}, BirdFilterName},
		{"color only", BirdCriteria{Color: "Black"}, BirdFilterColor},
		{"name wins over color", BirdCriteria{Name: "Sparrow", Color: "Black"}, BirdFilterName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.criteria.Filter(); got != tt.want {
				t.Errorf("Filter() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBirdGetByCriteria(t *testing.T) {
	svc := newTestServices(t)
	sparrow := saveBird(t, svc.birds, "Sparrow", "Brown")
	crow := saveBird(t, svc.birds, "Crow", "Black")
	raven := saveBird(t, svc.birds, "Raven", "Black")

	tests := []struct {
		name     string
		criteria BirdCriteria
		wantIDs  []string
	}{
		{"no criteria returns all", BirdCriteria{}, []string{sparrow.ID, crow.ID, raven.ID}},
		{"by name", BirdCriteria{Name: "Crow"}, []string{crow.ID}},
		{"by color", BirdCriteria{Color: "Black"}, []string{crow.ID, raven.ID}},
		{"name wins even when color would match more", BirdCriteria{Name: "Sparrow", Color: "Black"}, []string{sparrow.ID}},
		{"unknown name", BirdCriteria{Name: "Dodo"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			views, err := svc.birds.GetByCriteria(context.Background(), tt.criteria)
			if err != nil {
				t.Fatalf("GetByCriteria() error = %v", err)
			}
			if len(views) != len(tt.wantIDs) {
				t.Fatalf("got %d birds, want %d", len(views), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if views[i].ID != id {
					t.Errorf("views[%d].ID = %q, want %q", i, views[i].ID, id)
				}
			}
		})
	}
}

func TestBirdGetByCriteria_NameAndColorEqualsNameOnly(t *testing.T) {
	svc := newTestServices(t)
	saveBird(t, svc.birds, "Sparrow", "Black")
	saveBird(t, svc.birds, "Sparrow", "Brown")
	saveBird(t, svc.birds, "Crow", "Black")

	both, err := svc.birds.GetByCriteria(context.Background(), BirdCriteria{Name: "Sparrow", Color: "Black"})
	if err != nil {
		t.Fatalf("GetByCriteria(both) error = %v", err)
	}
	nameOnly, err := svc.birds.GetByCriteria(context.Background(), BirdCriteria{Name: "Sparrow"})
	if err != nil {
		t.Fatalf("GetByCriteria(name) error = %v", err)
	}

	if len(both) != 2 || len(both) != len(nameOnly) {
		t.Fatalf("len(both) = %d, len(nameOnly) = %d, want 2 and equal", len(both), len(nameOnly))
	}
	for i := range both {
		if both[i] != nameOnly[i] {
			t.Errorf("both[%d] = %+v, nameOnly[%d] = %+v", i, both[i], i, nameOnly[i])
		}
	}
}

// =========================================================================
// CASCADING DELETE
// =========================================================================

func TestBirdDelete_CascadesToSightings(t *testing.T) {
	svc := newTestServices(t)
	bird := saveBird(t, svc.birds, "Sparrow", "Black")
	other := saveBird(t, svc.birds, "Crow", "Black")

	var sightingIDs []string
	for _, loc := range []string{"Park", "Beach", "Garden"} {
		sightingIDs = append(sightingIDs, saveSighting(t, svc.sightings, bird.ID, loc, "").ID)
	}
	kept := saveSighting(t, svc.sightings, other.ID, "Park", "")

	if err := svc.birds.Delete(context.Background(), bird.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := svc.birds.GetByID(context.Background(), bird.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("bird after delete: error = %v, want ErrNotFound", err)
	}
	for _, id := range sightingIDs {
		if _, err := svc.sightings.GetByID(context.Background(), id); !errors.Is(err, apperror.ErrNotFound) {
			t.Errorf("sighting %s after delete: error = %v, want ErrNotFound", id, err)
		}
	}

	refs, _ := svc.sightingStore.FindIDsByBirdID(context.Background(), bird.ID)
	if len(refs) != 0 {
		t.Errorf("%d sightings still reference the deleted bird", len(refs))
	}

	// The other bird's sighting survives and the store stays consistent.
	all, err := svc.sightings.GetAll(context.Background())
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if len(all) != 1 || all[0].ID != kept.ID {
		t.Errorf("GetAll() = %+v, want only %s", all, kept.ID)
	}
}

func TestBirdDelete_WithoutSightings(t *testing.T) {
	svc := newTestServices(t)
	bird := saveBird(t, svc.birds, "Sparrow", "Black")

	if err := svc.birds.Delete(context.Background(), bird.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := svc.birds.GetByID(context.Background(), bird.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

// recordingBirdRepo and recordingSightingRepo log the order of the calls
// that make up a cascading delete.
type recordingBirdRepo struct {
	*memory.BirdStore
	calls *[]string
}

func (r recordingBirdRepo) Delete(ctx context.Context, id string) error {
	*r.calls = append(*r.calls, "birds.Delete")
	return r.BirdStore.Delete(ctx, id)
}

type recordingSightingRepo struct {
	*memory.SightingStore
	calls *[]string
}

func (r recordingSightingRepo) FindIDsByBirdID(ctx context.Context, birdID string) ([]string, error) {
	*r.calls = append(*r.calls, "sightings.FindIDsByBirdID")
	return r.SightingStore.FindIDsByBirdID(ctx, birdID)
}

func (r recordingSightingRepo) DeleteMany(ctx context.Context, ids []string) error {
	*r.calls = append(*r.calls, "sightings.DeleteMany")
	return r.SightingStore.DeleteMany(ctx, ids)
}

func TestBirdDelete_DeletesSightingsBeforeBird(t *testing.T) {
	var calls []string
	birdStore := memory.NewBirdStore()
	sightingStore := memory.NewSightingStore()
	svc := wireServices(
		recordingBirdRepo{BirdStore: birdStore, calls: &calls},
		recordingSightingRepo{SightingStore: sightingStore, calls: &calls},
		birdStore, sightingStore,
	)

	bird := saveBird(t, svc.birds, "Sparrow", "Black")
	saveSighting(t, svc.sightings, bird.ID, "Park", "")

	if err := svc.birds.Delete(context.Background(), bird.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	want := []string{"sightings.FindIDsByBirdID", "sightings.DeleteMany", "birds.Delete"}
	if len(calls) != len(want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("calls[%d] = %q, want %q", i, calls[i], want[i])
		}
	}
}

// mockSightingRepo fails the cascade steps on demand; everything else falls
// through to the in-memory store.
type mockSightingRepo struct {
	*memory.SightingStore
	mock.Mock
}

func (m *mockSightingRepo) FindIDsByBirdID(ctx context.Context, birdID string) ([]string, error) {
	args := m.Called(ctx, birdID)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

func (m *mockSightingRepo) DeleteMany(ctx context.Context, ids []string) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

type mockBirdRepo struct {
	*memory.BirdStore
	mock.Mock
}

func (m *mockBirdRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestBirdDelete_SightingFailureLeavesBirdUntouched(t *testing.T) {
	storeDown := errors.New("store unavailable")

	tests := []struct {
		name  string
		setup func(m *mockSightingRepo)
	}{
		{
			name: "finding sighting ids fails",
			setup: func(m *mockSightingRepo) {
				m.On("FindIDsByBirdID", mock.Anything, mock.Anything).Return(nil, storeDown)
			},
		},
		{
			name: "deleting sightings fails",
			setup: func(m *mockSightingRepo) {
				m.On("FindIDsByBirdID", mock.Anything, mock.Anything).Return([]string{"s1"}, nil)
				m.On("DeleteMany", mock.Anything, []string{"s1"}).Return(storeDown)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			birdStore := memory.NewBirdStore()
			sightingStore := memory.NewSightingStore()
			birdRepo := &mockBirdRepo{BirdStore: birdStore}
			sightingRepo := &mockSightingRepo{SightingStore: sightingStore}
			tt.setup(sightingRepo)

			svc := wireServices(birdRepo, sightingRepo, birdStore, sightingStore)
			bird := saveBird(t, svc.birds, "Sparrow", "Black")

			err := svc.birds.Delete(context.Background(), bird.ID)
			if !errors.Is(err, storeDown) {
				t.Fatalf("Delete() error = %v, want %v", err, storeDown)
			}

			birdRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
			sightingRepo.AssertExpectations(t)
			if _, err := svc.birds.GetByID(context.Background(), bird.ID); err != nil {
				t.Errorf("bird should survive a failed cascade, got %v", err)
			}
		})
	}
}

// When the final step fails, the bird survives without sightings: never an
// orphan.
func TestBirdDelete_BirdFailureLeavesNoOrphans(t *testing.T) {
	storeDown := errors.New("store unavailable")
	birdStore := memory.NewBirdStore()
	sightingStore := memory.NewSightingStore()
	birdRepo := &mockBirdRepo{BirdStore: birdStore}
	birdRepo.On("Delete", mock.Anything, mock.Anything).Return(storeDown)

	svc := wireServices(birdRepo, sightingStore, birdStore, sightingStore)
	bird := saveBird(t, svc.birds, "Sparrow", "Black")
	saveSighting(t, svc.sightings, bird.ID, "Park", "")
	saveSighting(t, svc.sightings, bird.ID, "Beach", "")

	err := svc.birds.Delete(context.Background(), bird.ID)
	if !errors.Is(err, storeDown) {
		t.Fatalf("Delete() error = %v, want %v", err, storeDown)
	}

	if _, err := svc.birds.GetByID(context.Background(), bird.ID); err != nil {
		t.Errorf("bird should still exist, got %v", err)
	}
	all, err := svc.sightings.GetAll(context.Background())
	if err != nil {
		t.Fatalf("GetAll() error = %v, want consistent store", err)
	}
	if len(all) != 0 {
		t.Errorf("GetAll() returned %d sightings, want 0", len(all))
	}
	birdRepo.AssertExpectations(t)
}
