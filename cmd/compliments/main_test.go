package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"compliment-deck/app"
	"compliment-deck/catalog"
	"compliment-deck/model"
	"compliment-deck/store"
)

func newTestService(t *testing.T, cards ...model.Card) *app.Service {
	t.Helper()
	cat, err := catalog.New(cards...)
	if err != nil {
		t.Fatalf("catalog failed: %v", err)
	}
	return app.NewService(store.NewMemoryStore(), cat, app.Options{
		Deck: app.DeckOptions{Logger: zap.NewNop(), SecretUnlockDraws: 1000},
	})
}

func TestRunDrawPrintsCardsAndEndOfDeck(t *testing.T) {
	svc := newTestService(t,
		model.NewText("a", model.CategorySweet, model.RarityCommon, model.TextBody{Text: "alpha", Intensity: 1}),
		model.NewText("b", model.CategorySweet, model.RarityCommon, model.TextBody{Text: "beta", Intensity: 1}),
	)
	var out bytes.Buffer
	if err := runDraw(&out, svc, 2); err != nil {
		t.Fatalf("draw failed: %v", err)
	}
	text := out.String()
	if !strings.Contains(text, "alpha") || !strings.Contains(text, "beta") {
		t.Fatalf("expected both cards, got %q", text)
	}
	if !strings.Contains(text, "whole deck") {
		t.Fatalf("expected exhaustion notice, got %q", text)
	}
	if err := runDraw(&out, svc, 0); err == nil {
		t.Fatalf("expected error for zero count")
	}
}

func TestRunDrawStopsAtDailyLimit(t *testing.T) {
	svc := newTestService(t,
		model.NewText("a", model.CategorySweet, model.RarityCommon, model.TextBody{Text: "alpha", Intensity: 1}),
		model.NewText("b", model.CategorySweet, model.RarityCommon, model.TextBody{Text: "beta", Intensity: 1}),
		model.NewText("c", model.CategorySweet, model.RarityCommon, model.TextBody{Text: "gamma", Intensity: 1}),
		model.NewText("d", model.CategorySweet, model.RarityCommon, model.TextBody{Text: "delta", Intensity: 1}),
	)
	svc.Deck().ToggleDailyMode()

	var out bytes.Buffer
	if err := runDraw(&out, svc, 4); err != nil {
		t.Fatalf("draw failed: %v", err)
	}
	if !strings.Contains(out.String(), "Daily limit reached") {
		t.Fatalf("expected daily limit notice, got %q", out.String())
	}
	if svc.Deck().DrawCount() != app.DefaultDailyDrawLimit {
		t.Fatalf("expected %d draws, got %d", app.DefaultDailyDrawLimit, svc.Deck().DrawCount())
	}
}

func TestPrintStatus(t *testing.T) {
	svc := newTestService(t,
		model.NewText("a", model.CategorySweet, model.RarityCommon, model.TextBody{Text: "alpha", Intensity: 1}),
	)
	var out bytes.Buffer
	printStatus(&out, svc.Status())
	for _, want := range []string{"seen:        0/1", "filter:      all", "theme:       blush"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("status missing %q:\n%s", want, out.String())
		}
	}
}

func TestPrintStatusNeverReportsMoreSeenThanPool(t *testing.T) {
	svc := newTestService(t,
		model.NewText("a", model.CategorySweet, model.RarityCommon, model.TextBody{Text: "alpha", Intensity: 1}),
		model.NewText("b", model.CategorySweet, model.RarityCommon, model.TextBody{Text: "beta", Intensity: 1}),
		model.NewText("c", model.CategoryFunny, model.RarityCommon, model.TextBody{Text: "gamma", Intensity: 1}),
	)
	if err := runDraw(&bytes.Buffer{}, svc, 3); err != nil {
		t.Fatalf("draw failed: %v", err)
	}
	svc.Deck().SetMood(model.MoodFunny)

	var out bytes.Buffer
	printStatus(&out, svc.Status())
	for _, want := range []string{"seen:        1/1", "seen total:  3"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("status missing %q:\n%s", want, out.String())
		}
	}
}

func TestOpenSessionUsesFlags(t *testing.T) {
	dir := t.TempDir()
	dataDir = dir
	backend = "sqlite"
	configPath = filepath.Join(dir, "missing.yaml")
	defer func() { dataDir, backend, configPath = "", "", "" }()

	s, err := openSession()
	if err != nil {
		t.Fatalf("open session failed: %v", err)
	}
	defer s.Close()

	if _, ok := s.kv.(*store.SQLiteStore); !ok {
		t.Fatalf("expected sqlite store, got %T", s.kv)
	}
	if _, err := os.Stat(filepath.Join(dir, "state.db")); err != nil {
		t.Fatalf("expected sqlite file: %v", err)
	}
	if s.svc.Deck().PoolSize() == 0 {
		t.Fatalf("expected the built-in deck")
	}
}
