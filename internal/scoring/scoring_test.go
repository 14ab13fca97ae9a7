package scoring

import (
	"errors"
	"fmt"
	"testing"
)

func mustEngine(t *testing.T, r Ranges) *Engine {
	t.Helper()
	e, err := NewEngine(r)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return e
}

func TestPercentageRounding(t *testing.T) {
	tests := []struct {
		matches, total int
		want           int
	}{
		{0, 10, 0},
		{10, 10, 100},
		{1, 8, 12},  // 12.5 rounds to even
		{3, 8, 38},  // 37.5 rounds to even
		{5, 8, 62},  // 62.5 rounds to even
		{7, 8, 88},  // 87.5 rounds to even
		{1, 40, 2},  // 2.5 rounds to even
		{1, 3, 33},  // 33.33
		{2, 3, 67},  // 66.67
		{1, 6, 17},  // 16.67
		{7, 10, 70}, // exact
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d/%d", tt.matches, tt.total), func(t *testing.T) {
			got, err := Percentage(tt.matches, tt.total)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Percentage(%d, %d) = %d, want %d", tt.matches, tt.total, got, tt.want)
			}
		})
	}
}

func TestPercentageDegenerate(t *testing.T) {
	if _, err := Percentage(0, 0); !errors.Is(err, ErrNoCreatorAnswers) {
		t.Errorf("err = %v, want ErrNoCreatorAnswers", err)
	}
	if _, err := Percentage(3, 2); err == nil {
		t.Error("expected error for matches > total")
	}
}

func TestScoreIdenticalAndDisjoint(t *testing.T) {
	e := mustEngine(t, DefaultRanges())
	creator := AnswerSet{"1": 0, "2": 3, "3": 1, "4": 2}

	out, err := e.Score(creator, creator.Clone())
	if err != nil {
		t.Fatalf("score identical: %v", err)
	}
	if out.Percentage != 100 {
		t.Errorf("identical percentage = %d, want 100", out.Percentage)
	}

	none := AnswerSet{"1": 1, "2": 0, "3": 2, "4": 3}
	out, err = e.Score(creator, none)
	if err != nil {
		t.Fatalf("score disjoint: %v", err)
	}
	if out.Percentage != 0 {
		t.Errorf("disjoint percentage = %d, want 0", out.Percentage)
	}
	if out.Status != DefaultRanges()[0].Label {
		t.Errorf("status = %q, want %q", out.Status, DefaultRanges()[0].Label)
	}
}

func TestScoreIgnoresQuestionsCreatorSkipped(t *testing.T) {
	e := mustEngine(t, DefaultRanges())
	creator := AnswerSet{"1": 0, "2": 1}
	taker := AnswerSet{"1": 0, "2": 2, "3": 1}

	out, err := e.Score(creator, taker)
	if err != nil {
		t.Fatal(err)
	}
	if out.Total != 2 || out.Matches != 1 || out.Percentage != 50 {
		t.Errorf("outcome = %+v, want 1/2 = 50%%", out)
	}
}

func TestScoreMissingTakerAnswerCountsAsMiss(t *testing.T) {
	e := mustEngine(t, DefaultRanges())
	out, err := e.Score(AnswerSet{"1": 0, "2": 0, "3": 0, "4": 0}, AnswerSet{"1": 0})
	if err != nil {
		t.Fatal(err)
	}
	if out.Percentage != 25 {
		t.Errorf("percentage = %d, want 25", out.Percentage)
	}
}

func TestScoreEmptyCreator(t *testing.T) {
	e := mustEngine(t, DefaultRanges())
	_, err := e.Score(AnswerSet{}, AnswerSet{"1": 0})
	if !errors.Is(err, ErrNoCreatorAnswers) {
		t.Fatalf("err = %v, want ErrNoCreatorAnswers", err)
	}
}

func TestScoreAlwaysInRange(t *testing.T) {
	e := mustEngine(t, DefaultRanges())
	for n := 1; n <= 12; n++ {
		creator := AnswerSet{}
		for i := 0; i < n; i++ {
			creator[fmt.Sprint(i)] = i % 4
		}
		for m := 0; m <= n; m++ {
			taker := AnswerSet{}
			for i := 0; i < n; i++ {
				if i < m {
					taker[fmt.Sprint(i)] = i % 4
				} else {
					taker[fmt.Sprint(i)] = (i + 1) % 4
				}
			}
			out, err := e.Score(creator, taker)
			if err != nil {
				t.Fatalf("n=%d m=%d: %v", n, m, err)
			}
			if out.Percentage < 0 || out.Percentage > 100 {
				t.Errorf("n=%d m=%d: percentage %d out of range", n, m, out.Percentage)
			}
			if out.Matches != m {
				t.Errorf("n=%d m=%d: matches %d", n, m, out.Matches)
			}
		}
	}
}
