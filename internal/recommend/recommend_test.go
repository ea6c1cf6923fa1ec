// Soundwave - Media Discovery and Playlist Platform
// Copyright 2026 Soundwave contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soundwavehq/soundwave

package recommend

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/soundwavehq/soundwave/internal/config"
	"github.com/soundwavehq/soundwave/internal/models"
)

func at(minute int) time.Time {
	return time.Date(2026, 8, 1, 12, minute, 0, 0, time.UTC)
}

func interaction(user, item string, weight float64, minute int) models.Interaction {
	return models.Interaction{UserID: user, ItemID: item, Weight: weight, OccurredAt: at(minute)}
}

func TestBuildDataset_StableMappings(t *testing.T) {
	interactions := []models.Interaction{
		interaction("zoe", "movie:2", 1.0, 0),
		interaction("amy", "movie:1", 1.5, 1),
		interaction("amy", "movie:3", 1.0, 2),
	}

	a := BuildDataset(interactions)
	b := BuildDataset(interactions)
	if !reflect.DeepEqual(a.UserIndex, b.UserIndex) || !reflect.DeepEqual(a.ItemIndex, b.ItemIndex) {
		t.Error("identical inputs must produce identical mappings")
	}
	if a.UserIndex["amy"] != 0 || a.UserIndex["zoe"] != 1 {
		t.Errorf("user indices not in sorted ID order: %v", a.UserIndex)
	}
	if a.ItemIndex["movie:1"] != 0 || a.ItemIndex["movie:2"] != 1 || a.ItemIndex["movie:3"] != 2 {
		t.Errorf("item indices not in sorted ID order: %v", a.ItemIndex)
	}
}

func TestBuildDataset_PopularityRanking(t *testing.T) {
	ds := BuildDataset([]models.Interaction{
		interaction("u1", "a", 1.0, 0),
		interaction("u2", "a", 1.0, 1),
		interaction("u1", "b", 1.5, 2),
		interaction("u3", "c", 1.5, 3),
	})

	// a: 2.0, b: 1.5, c: 1.5 (b before c on ID tiebreak)
	want := []string{"a", "b", "c"}
	for i, s := range ds.Popularity {
		if s.ItemID != want[i] {
			t.Errorf("popularity rank %d: got %s, want %s", i, s.ItemID, want[i])
		}
	}
}

func testParams() Params {
	return Params{SessionWindow: time.Hour, MinCoOccurrence: 1, MinInteractions: 1}
}

func TestModel_ExcludesSeenItems(t *testing.T) {
	// u1 and u2 both pair a with b; u1 has seen both.
	ds := BuildDataset([]models.Interaction{
		interaction("u1", "a", 1.0, 0),
		interaction("u1", "b", 1.0, 1),
		interaction("u2", "a", 1.0, 0),
		interaction("u2", "b", 1.0, 1),
		interaction("u3", "b", 1.0, 0),
		interaction("u3", "c", 1.0, 1),
	})
	m := Train(ds, testParams())

	items, _ := m.Recommend("u1", 10)
	for _, id := range items {
		if id == "a" || id == "b" {
			t.Errorf("recommendation contains seen item %s", id)
		}
	}
	// b pairs with c via u3, so u1 should see c personalized.
	if len(items) == 0 || items[0] != "c" {
		t.Errorf("expected c first, got %v", items)
	}
}

func TestModel_UnknownUserFallsBack(t *testing.T) {
	ds := BuildDataset([]models.Interaction{
		interaction("u1", "a", 1.5, 0),
		interaction("u1", "b", 1.0, 1),
	})
	m := Train(ds, testParams())

	items, fallback := m.Recommend("stranger", 10)
	if !fallback {
		t.Error("unknown user must use the fallback")
	}
	if !reflect.DeepEqual(items, []string{"a", "b"}) {
		t.Errorf("expected popularity order [a b], got %v", items)
	}
}

func TestModel_ShortPersonalizedListTopsUpFromPopularity(t *testing.T) {
	ds := BuildDataset([]models.Interaction{
		interaction("u1", "a", 1.0, 0),
		interaction("u1", "b", 1.0, 1),
		interaction("u2", "b", 1.0, 0),
		interaction("u2", "c", 1.0, 1),
		interaction("u3", "d", 1.5, 0),
	})
	m := Train(ds, testParams())

	items, fallback := m.Recommend("u1", 3)
	if !fallback {
		t.Error("top-up from popularity must set the fallback flag")
	}
	if len(items) != 2 {
		t.Fatalf("expected c personalized plus d from popularity, got %v", items)
	}
	if items[0] != "c" || items[1] != "d" {
		t.Errorf("expected [c d], got %v", items)
	}
}

func TestModel_SessionWindowSplitsPairs(t *testing.T) {
	// Same user, but the second item is far outside the session window.
	ds := BuildDataset([]models.Interaction{
		interaction("u1", "a", 1.0, 0),
		{UserID: "u1", ItemID: "b", Weight: 1.0, OccurredAt: at(0).Add(48 * time.Hour)},
	})
	m := Train(ds, Params{SessionWindow: time.Hour, MinCoOccurrence: 1, MinInteractions: 1})

	if m.personalized {
		t.Error("items in separate sessions must not form pairs")
	}
}

func TestModel_MinInteractionsGate(t *testing.T) {
	ds := BuildDataset([]models.Interaction{
		interaction("u1", "a", 1.0, 0),
		interaction("u1", "b", 1.0, 1),
	})
	m := Train(ds, Params{SessionWindow: time.Hour, MinCoOccurrence: 1, MinInteractions: 10})

	if m.personalized {
		t.Error("model below the interaction gate must be popularity-only")
	}
	items, fallback := m.Recommend("u1", 5)
	if !fallback {
		t.Error("popularity-only model must report fallback")
	}
	// Seen items are still excluded for known users.
	if len(items) != 0 {
		t.Errorf("u1 has seen everything, expected empty, got %v", items)
	}
}

type staticSource struct {
	interactions []models.Interaction
	err          error
}

func (s staticSource) Interactions(context.Context, map[string]float64) ([]models.Interaction, error) {
	return s.interactions, s.err
}

func engineConfig() config.RecommendConfig {
	return config.RecommendConfig{
		TrainInterval:   time.Minute,
		MinInteractions: 1,
		MinCoOccurrence: 1,
		SessionWindow:   time.Hour,
		EventWeights:    map[string]float64{"like": 1.0, "playlist_add": 1.5},
		MaxResults:      100,
	}
}

func TestEngine_UntrainedAndEmpty(t *testing.T) {
	e := NewEngine(staticSource{}, engineConfig())

	if _, _, err := e.Recommend("u1", 10); !errors.Is(err, ErrNotTrained) {
		t.Errorf("expected ErrNotTrained, got %v", err)
	}

	if err := e.Train(context.Background()); err != nil {
		t.Fatalf("training on empty source failed: %v", err)
	}
	if _, _, err := e.Recommend("u1", 10); !errors.Is(err, ErrNoRecommendations) {
		t.Errorf("expected ErrNoRecommendations, got %v", err)
	}
}

func TestEngine_TrainAndRecommend(t *testing.T) {
	e := NewEngine(staticSource{interactions: []models.Interaction{
		interaction("u1", "a", 1.5, 0),
		interaction("u2", "b", 1.0, 0),
	}}, engineConfig())

	if err := e.Train(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !e.Trained() {
		t.Fatal("engine should report trained")
	}

	items, fallback, err := e.Recommend("stranger", 2)
	if err != nil {
		t.Fatal(err)
	}
	if !fallback || !reflect.DeepEqual(items, []string{"a", "b"}) {
		t.Errorf("unexpected recommendation: %v (fallback=%v)", items, fallback)
	}
}

func TestEngine_TrainErrorKeepsOldModel(t *testing.T) {
	src := &staticSource{interactions: []models.Interaction{interaction("u1", "a", 1.0, 0)}}
	e := NewEngine(src, engineConfig())
	if err := e.Train(context.Background()); err != nil {
		t.Fatal(err)
	}

	e.source = staticSource{err: errors.New("boom")}
	if err := e.Train(context.Background()); err == nil {
		t.Fatal("expected training error")
	}
	if _, _, err := e.Recommend("anyone", 1); err != nil {
		t.Errorf("old model should keep serving, got %v", err)
	}
}
