// Soundwave - Media Discovery and Playlist Platform
// Copyright 2026 Soundwave contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soundwavehq/soundwave

// Package recommend builds recommendation models from weighted interactions
// and serves per-user item rankings with a popularity fallback.
package recommend

import (
	"sort"

	"github.com/soundwavehq/soundwave/internal/models"
)

// ScoredItem is one item with its aggregate score.
type ScoredItem struct {
	ItemID string
	Score  float64
}

// Dataset is the normalized training input: stable index mappings, per-user
// histories, and the popularity ranking.
type Dataset struct {
	// UserIndex and ItemIndex assign dense indices in sorted ID order, so
	// identical inputs always produce identical mappings.
	UserIndex map[string]int
	ItemIndex map[string]int

	// Interactions, ordered by occurrence time.
	Interactions []models.Interaction

	// UserHistory holds the set of items each user has interacted with.
	UserHistory map[string]map[string]bool

	// Popularity ranks items by total interaction weight, descending, with
	// ties broken by item ID.
	Popularity []ScoredItem
}

// BuildDataset normalizes interactions into a training dataset.
func BuildDataset(interactions []models.Interaction) *Dataset {
	ds := &Dataset{
		UserIndex:    map[string]int{},
		ItemIndex:    map[string]int{},
		Interactions: interactions,
		UserHistory:  map[string]map[string]bool{},
	}

	userIDs := map[string]bool{}
	itemIDs := map[string]bool{}
	scores := map[string]float64{}
	for _, in := range interactions {
		userIDs[in.UserID] = true
		itemIDs[in.ItemID] = true
		scores[in.ItemID] += in.Weight

		if ds.UserHistory[in.UserID] == nil {
			ds.UserHistory[in.UserID] = map[string]bool{}
		}
		ds.UserHistory[in.UserID][in.ItemID] = true
	}

	for i, id := range sortedKeys(userIDs) {
		ds.UserIndex[id] = i
	}
	for i, id := range sortedKeys(itemIDs) {
		ds.ItemIndex[id] = i
	}

	ds.Popularity = make([]ScoredItem, 0, len(scores))
	for id, score := range scores {
		ds.Popularity = append(ds.Popularity, ScoredItem{ItemID: id, Score: score})
	}
	sort.Slice(ds.Popularity, func(i, j int) bool {
		if ds.Popularity[i].Score != ds.Popularity[j].Score {
			return ds.Popularity[i].Score > ds.Popularity[j].Score
		}
		return ds.Popularity[i].ItemID < ds.Popularity[j].ItemID
	})
	return ds
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
