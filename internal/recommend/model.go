// Soundwave - Media Discovery and Playlist Platform
// Copyright 2026 Soundwave contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soundwavehq/soundwave

package recommend

import (
	"sort"
	"time"

	"github.com/soundwavehq/soundwave/internal/models"
)

// Params controls model training.
type Params struct {
	// SessionWindow groups a user's interactions into co-visitation
	// sessions; a gap longer than the window starts a new session.
	SessionWindow time.Duration

	// MinCoOccurrence drops item pairs seen together fewer times.
	MinCoOccurrence int

	// MinInteractions gates personalized training. Below it the model only
	// serves the popularity ranking.
	MinInteractions int
}

// Model is an immutable trained recommendation model. The engine swaps whole
// models atomically, so readers never see partial state.
type Model struct {
	dataset      *Dataset
	covisit      map[string]map[string]float64
	personalized bool
	trainedAt    time.Time
}

// Train builds a model from the dataset. With enough interactions the model
// scores candidates by session co-visitation; otherwise it is
// popularity-only.
func Train(ds *Dataset, params Params) *Model {
	m := &Model{
		dataset:   ds,
		trainedAt: time.Now().UTC(),
	}
	if len(ds.Interactions) < params.MinInteractions {
		return m
	}

	type pairStat struct {
		count int
		score float64
	}
	pairs := map[string]map[string]*pairStat{}
	record := func(a, b string, weight float64) {
		if pairs[a] == nil {
			pairs[a] = map[string]*pairStat{}
		}
		stat := pairs[a][b]
		if stat == nil {
			stat = &pairStat{}
			pairs[a][b] = stat
		}
		stat.count++
		stat.score += weight
	}

	for _, session := range sessions(ds.Interactions, params.SessionWindow) {
		for i := 0; i < len(session); i++ {
			for j := i + 1; j < len(session); j++ {
				if session[i].ItemID == session[j].ItemID {
					continue
				}
				weight := (session[i].Weight + session[j].Weight) / 2
				record(session[i].ItemID, session[j].ItemID, weight)
				record(session[j].ItemID, session[i].ItemID, weight)
			}
		}
	}

	m.covisit = map[string]map[string]float64{}
	for item, neighbors := range pairs {
		for other, stat := range neighbors {
			if stat.count < params.MinCoOccurrence {
				continue
			}
			if m.covisit[item] == nil {
				m.covisit[item] = map[string]float64{}
			}
			m.covisit[item][other] = stat.score
		}
	}
	m.personalized = len(m.covisit) > 0
	return m
}

// sessions splits each user's time-ordered interactions on gaps longer than
// the window. A non-positive window yields one session per user.
func sessions(interactions []models.Interaction, window time.Duration) [][]models.Interaction {
	byUser := map[string][]models.Interaction{}
	for _, in := range interactions {
		byUser[in.UserID] = append(byUser[in.UserID], in)
	}

	var out [][]models.Interaction
	for _, list := range byUser {
		sort.Slice(list, func(i, j int) bool { return list[i].OccurredAt.Before(list[j].OccurredAt) })

		start := 0
		for i := 1; i <= len(list); i++ {
			if i == len(list) || (window > 0 && list[i].OccurredAt.Sub(list[i-1].OccurredAt) > window) {
				out = append(out, list[start:i])
				start = i
			}
		}
	}
	return out
}

// ItemCount returns the number of distinct items the model knows.
func (m *Model) ItemCount() int {
	return len(m.dataset.ItemIndex)
}

// KnowsUser reports whether the user appeared in training data.
func (m *Model) KnowsUser(userID string) bool {
	_, ok := m.dataset.UserIndex[userID]
	return ok
}

// scoreForUser ranks unseen candidates by co-visitation with the user's
// history, descending, ties broken by item ID.
func (m *Model) scoreForUser(userID string) []ScoredItem {
	if !m.personalized {
		return nil
	}
	history := m.dataset.UserHistory[userID]
	if len(history) == 0 {
		return nil
	}

	scores := map[string]float64{}
	for item := range history {
		for other, score := range m.covisit[item] {
			if history[other] {
				continue
			}
			scores[other] += score
		}
	}

	ranked := make([]ScoredItem, 0, len(scores))
	for id, score := range scores {
		ranked = append(ranked, ScoredItem{ItemID: id, Score: score})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].ItemID < ranked[j].ItemID
	})
	return ranked
}

// Recommend returns up to limit item IDs for the user. The boolean reports
// whether the popularity fallback contributed: unknown users, popularity-only
// models, and personalized rankings too short to fill the limit all count.
func (m *Model) Recommend(userID string, limit int) ([]string, bool) {
	if limit <= 0 {
		return []string{}, true
	}

	if !m.KnowsUser(userID) {
		return m.popularFallback(limit, nil), true
	}

	history := m.dataset.UserHistory[userID]
	recommendations := make([]string, 0, limit)
	for _, cand := range m.scoreForUser(userID) {
		recommendations = append(recommendations, cand.ItemID)
		if len(recommendations) == limit {
			break
		}
	}

	fallbackUsed := len(recommendations) < limit
	if fallbackUsed {
		exclude := make(map[string]bool, len(history)+len(recommendations))
		for id := range history {
			exclude[id] = true
		}
		for _, id := range recommendations {
			exclude[id] = true
		}
		recommendations = append(recommendations, m.popularFallback(limit-len(recommendations), exclude)...)
	}
	return recommendations, fallbackUsed
}

func (m *Model) popularFallback(limit int, exclude map[string]bool) []string {
	out := make([]string, 0, limit)
	for _, item := range m.dataset.Popularity {
		if exclude[item.ItemID] {
			continue
		}
		out = append(out, item.ItemID)
		if len(out) == limit {
			break
		}
	}
	return out
}
