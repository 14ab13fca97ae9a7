// Package stats aggregates stored results into per-creator statistics and
// the global leaderboard.
package stats

import (
	"context"
	"fmt"
	"sort"

	"github.com/abhisek/knowme/internal/scoring"
	"github.com/abhisek/knowme/internal/store"
)

// FriendsLimit caps the best and worst friends lists.
const FriendsLimit = 5

// Source is the slice of the repository the aggregator reads.
type Source interface {
	ListTests(ctx context.Context, creatorID int64) ([]store.TestSummary, error)
	ResultsForTest(ctx context.Context, testID string) ([]store.ResultRecord, error)
	ResultGroups(ctx context.Context) ([]store.ResultGroup, error)
}

// Performer is one taker's result on one test.
type Performer struct {
	TestID    string `json:"test_id"`
	TakerID   int64  `json:"taker_id"`
	TakerName string `json:"taker_name"`
	Score     int    `json:"score"`
}

// TestStats summarizes the results of one test. Top and Bottom are nil
// when the test has no results.
type TestStats struct {
	TestID       string     `json:"test_id"`
	Passes       int        `json:"passes"`
	AverageScore int        `json:"average_score"`
	Top          *Performer `json:"top,omitempty"`
	Bottom       *Performer `json:"bottom,omitempty"`
}

// Stats is everything a creator can learn about their tests.
type Stats struct {
	TestsCount   int         `json:"tests_count"`
	TotalPasses  int         `json:"total_passes"`
	AverageScore int         `json:"average_score"`
	Tests        []TestStats `json:"tests"`
	BestFriends  []Performer `json:"best_friends"`
	WorstFriends []Performer `json:"worst_friends"`
}

// LeaderboardEntry is one taker name's aggregate across all tests.
type LeaderboardEntry struct {
	TakerName    string `json:"taker_name"`
	AverageScore int    `json:"average_score"`
	Count        int    `json:"count"`
}

// Service computes statistics from a Source.
type Service struct {
	src Source
}

// NewService returns a Service reading from src.
func NewService(src Source) *Service {
	return &Service{src: src}
}

// CreatorStatistics returns the creator's statistics, or nil when they
// have no tests.
func (s *Service) CreatorStatistics(ctx context.Context, creatorID int64) (*Stats, error) {
	tests, err := s.src.ListTests(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("list tests: %w", err)
	}
	if len(tests) == 0 {
		return nil, nil
	}

	st := &Stats{
		TestsCount:   len(tests),
		Tests:        make([]TestStats, 0, len(tests)),
		BestFriends:  []Performer{},
		WorstFriends: []Performer{},
	}
	var tops, bottoms []Performer
	weighted := 0

	for _, t := range tests {
		results, err := s.src.ResultsForTest(ctx, t.ID)
		if err != nil {
			return nil, fmt.Errorf("results for %s: %w", t.ID, err)
		}
		ts := TestStats{TestID: t.ID, Passes: len(results)}
		if len(results) > 0 {
			sum := 0
			for _, r := range results {
				sum += r.Score
			}
			ts.AverageScore = scoring.Round(float64(sum) / float64(len(results)))

			top := performer(results[0])
			bottom := performer(results[len(results)-1])
			ts.Top, ts.Bottom = &top, &bottom
			tops = append(tops, top)
			bottoms = append(bottoms, bottom)

			st.TotalPasses += len(results)
			weighted += ts.AverageScore * len(results)
		}
		st.Tests = append(st.Tests, ts)
	}

	if st.TotalPasses > 0 {
		st.AverageScore = scoring.Round(float64(weighted) / float64(st.TotalPasses))
	}

	sort.SliceStable(tops, func(i, j int) bool { return tops[i].Score > tops[j].Score })
	sort.SliceStable(bottoms, func(i, j int) bool { return bottoms[i].Score < bottoms[j].Score })
	st.BestFriends = append(st.BestFriends, head(tops, FriendsLimit)...)
	st.WorstFriends = append(st.WorstFriends, head(bottoms, FriendsLimit)...)
	return st, nil
}

// Leaderboard ranks taker names by mean score, highest first, keeping at
// most limit entries. A non-positive limit keeps every entry.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	groups, err := s.src.ResultGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("result groups: %w", err)
	}

	entries := make([]LeaderboardEntry, 0, len(groups))
	means := make([]float64, 0, len(groups))
	for _, g := range groups {
		if g.Count <= 0 {
			continue
		}
		entries = append(entries, LeaderboardEntry{
			TakerName:    g.TakerName,
			AverageScore: scoring.Round(g.Mean),
			Count:        g.Count,
		})
		means = append(means, g.Mean)
	}

	idx := make([]int, len(entries))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return means[idx[a]] > means[idx[b]] })

	out := make([]LeaderboardEntry, 0, len(entries))
	for _, i := range idx {
		out = append(out, entries[i])
	}
	if limit > 0 {
		out = head(out, limit)
	}
	return out, nil
}

func performer(r store.ResultRecord) Performer {
	return Performer{
		TestID:    r.TestID,
		TakerID:   r.TakerID,
		TakerName: r.TakerName,
		Score:     r.Score,
	}
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}
