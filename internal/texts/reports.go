package texts

import (
	"fmt"
	"strings"
)

// TestLine is one entry of the /mytests listing.
type TestLine struct {
	Link   string
	Passes int
}

// MyTests lists a creator's tests, newest first.
func MyTests(lines []TestLine) string {
	var b strings.Builder
	b.WriteString("📋 Your tests:\n")
	for i, l := range lines {
		fmt.Fprintf(&b, "\n%d. %s\n   passed %d %s", i+1, l.Link, l.Passes, plural(l.Passes, "time", "times"))
	}
	return b.String()
}

// StatsTest summarizes one test in a creator's statistics.
type StatsTest struct {
	Number  int
	Passes  int
	Average int
	Top     string
	TopPct  int
	Low     string
	LowPct  int
}

// StatsFriend is a taker in the best or worst friends lists.
type StatsFriend struct {
	Name  string
	Score int
}

// StatsView is the whole /stats message.
type StatsView struct {
	TestsCount   int
	TotalPasses  int
	AverageScore int
	Tests        []StatsTest
	BestFriends  []StatsFriend
	WorstFriends []StatsFriend
}

// Stats renders a creator's statistics.
func Stats(v StatsView) string {
	var b strings.Builder
	b.WriteString("📊 Your statistics\n\n")
	fmt.Fprintf(&b, "Tests created: %d\n", v.TestsCount)
	fmt.Fprintf(&b, "Total passes: %d\n", v.TotalPasses)
	if v.TotalPasses == 0 {
		b.WriteString("\nNobody has taken your tests yet. Share your link!")
		return b.String()
	}
	fmt.Fprintf(&b, "Average score: %d%%\n", v.AverageScore)

	for _, t := range v.Tests {
		fmt.Fprintf(&b, "\nTest #%d: %d %s", t.Number, t.Passes, plural(t.Passes, "pass", "passes"))
		if t.Passes > 0 {
			fmt.Fprintf(&b, ", average %d%%\n", t.Average)
			fmt.Fprintf(&b, "  🥇 %s (%d%%)\n", t.Top, t.TopPct)
			fmt.Fprintf(&b, "  🐢 %s (%d%%)", t.Low, t.LowPct)
		}
		b.WriteString("\n")
	}

	if len(v.BestFriends) > 0 {
		b.WriteString("\n💖 Know you best:\n")
		writeFriends(&b, v.BestFriends)
	}
	if len(v.WorstFriends) > 0 {
		b.WriteString("\n🙈 Know you least:\n")
		writeFriends(&b, v.WorstFriends)
	}
	return strings.TrimRight(b.String(), "\n")
}

// LeaderRow is one leaderboard line.
type LeaderRow struct {
	Name    string
	Average int
	Count   int
}

// Leaderboard renders the global ranking.
func Leaderboard(rows []LeaderRow) string {
	if len(rows) == 0 {
		return NoResults
	}
	var b strings.Builder
	b.WriteString("🏆 Top friends\n")
	for i, r := range rows {
		fmt.Fprintf(&b, "\n%d. %s: %d%% (%d %s)", i+1, r.Name, r.Average, r.Count, plural(r.Count, "test", "tests"))
	}
	return b.String()
}

func writeFriends(b *strings.Builder, friends []StatsFriend) {
	for i, f := range friends {
		fmt.Fprintf(b, "%d. %s: %d%%\n", i+1, f.Name, f.Score)
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
