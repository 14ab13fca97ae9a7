package texts

import (
	"strings"
	"testing"
)

func TestQuestion(t *testing.T) {
	got := Question(2, 10, "Favourite colour?")
	want := "Question 2/10:\n\nFavourite colour?"
	if got != want {
		t.Errorf("Question = %q, want %q", got, want)
	}
}

func TestHandle(t *testing.T) {
	tests := []struct{ in, want string }{
		{"alice", "@alice"},
		{"@bob", "@bob"},
		{"12345", "@12345"},
	}
	for _, tt := range tests {
		if got := Handle(tt.in); got != tt.want {
			t.Errorf("Handle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCreatorNameFallback(t *testing.T) {
	if got := TakingStart(""); !strings.Contains(got, "this user's test") {
		t.Errorf("TakingStart(\"\") = %q", got)
	}
	if got := TestCompleted("Ann", 67, "🤗 Close friend"); !strings.Contains(got, "You know Ann 67%") {
		t.Errorf("TestCompleted = %q", got)
	}
}

func TestDetails(t *testing.T) {
	got := Details([]Detail{
		{Symbol: "✅", Question: "Q1", Selected: "Tea"},
		{Symbol: "❌", Question: "Q2", Selected: "Cats", Correct: "Dogs", ShowCorrect: true},
		{Symbol: "❓", Question: "Q3", Selected: "Summer", CreatorMissed: true},
	})
	want := "✅ Q1\n- Selected: Tea\n\n" +
		"❌ Q2\n- Selected: Cats\n- Correct answer: Dogs\n\n" +
		"❓ Q3\n- Selected: Summer\n" + CreatorUnanswered + "\n\n"
	if got != want {
		t.Errorf("Details =\n%s\nwant\n%s", got, want)
	}
}

func TestStats_NoPasses(t *testing.T) {
	got := Stats(StatsView{TestsCount: 1, Tests: []StatsTest{{Number: 1}}})
	if !strings.Contains(got, "Nobody has taken your tests yet") {
		t.Errorf("Stats = %q", got)
	}
	if strings.Contains(got, "Average score") {
		t.Errorf("Stats should omit the average without passes: %q", got)
	}
}

func TestStats_Full(t *testing.T) {
	got := Stats(StatsView{
		TestsCount:   2,
		TotalPasses:  2,
		AverageScore: 80,
		Tests: []StatsTest{
			{Number: 1, Passes: 2, Average: 80, Top: "ann", TopPct: 90, Low: "ben", LowPct: 70},
			{Number: 2},
		},
		BestFriends:  []StatsFriend{{Name: "ann", Score: 90}},
		WorstFriends: []StatsFriend{{Name: "ben", Score: 70}},
	})
	for _, want := range []string{
		"Tests created: 2",
		"Average score: 80%",
		"Test #1: 2 passes, average 80%",
		"🥇 ann (90%)",
		"Test #2: 0 passes",
		"1. ann: 90%",
		"1. ben: 70%",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Stats missing %q in:\n%s", want, got)
		}
	}
}

func TestLeaderboard(t *testing.T) {
	if got := Leaderboard(nil); got != NoResults {
		t.Errorf("Leaderboard(nil) = %q, want %q", got, NoResults)
	}
	got := Leaderboard([]LeaderRow{{Name: "alice", Average: 80, Count: 2}, {Name: "bob", Average: 50, Count: 1}})
	if !strings.Contains(got, "1. alice: 80% (2 tests)") || !strings.Contains(got, "2. bob: 50% (1 test)") {
		t.Errorf("Leaderboard = %q", got)
	}
}
