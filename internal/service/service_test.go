package service

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/sakif/birdwatch/internal/model"
	"github.com/sakif/birdwatch/internal/repository"
	"github.com/sakif/birdwatch/internal/repository/memory"
)

// =========================================================================
// TEST HELPERS
// =========================================================================

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

type testServices struct {
	birds         *BirdService
	sightings     *SightingService
	birdStore     *memory.BirdStore
	sightingStore *memory.SightingStore
}

// newTestServices wires both services to fresh in-memory stores.
func newTestServices(t *testing.T) testServices {
	t.Helper()
	birdStore := memory.NewBirdStore()
	sightingStore := memory.NewSightingStore()
	return wireServices(birdStore, sightingStore, birdStore, sightingStore)
}

func wireServices(
	birdRepo repository.BirdRepository,
	sightingRepo repository.SightingRepository,
	birdStore *memory.BirdStore,
	sightingStore *memory.SightingStore,
) testServices {
	logger := newTestLogger()
	birds := NewBirdService(birdRepo, sightingRepo, nil, logger)
	return testServices{
		birds:         birds,
		sightings:     NewSightingService(sightingRepo, birds, nil, logger),
		birdStore:     birdStore,
		sightingStore: sightingStore,
	}
}

func saveBird(t *testing.T, svc *BirdService, name, color string) *model.BirdView {
	t.Helper()
	view, err := svc.Save(context.Background(), model.BirdDraft{Name: name, Color: color, Weight: 50.5, Height: 15})
	if err != nil {
		t.Fatalf("setup: Save() error = %v", err)
	}
	return view
}

func saveSighting(t *testing.T, svc *SightingService, birdID, location, dateTime string) *model.SightingView {
	t.Helper()
	draft := model.SightingDraft{BirdID: birdID, Location: location}
	if dateTime != "" {
		draft.DateTime = &dateTime
	}
	view, err := svc.Save(context.Background(), draft)
	if err != nil {
		t.Fatalf("setup: Save() error = %v", err)
	}
	return view
}
