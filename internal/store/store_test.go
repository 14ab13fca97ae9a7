package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/knowme/internal/scoring"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	s, err := Open(dsn)
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testRepo(t *testing.T) QuizRepo {
	t.Helper()
	engine, err := scoring.NewEngine(scoring.DefaultRanges())
	require.NoError(t, err)
	return openTestStore(t).QuizRepo(engine)
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	if s.Client() == nil {
		t.Fatal("expected non-nil ent client")
	}
}

func TestPragmasApplied(t *testing.T) {
	db := openTestStore(t).DB()

	for _, tt := range []struct {
		pragma string
		want   string
	}{
		// journal_mode stays "memory" for in-memory databases.
		{"foreign_keys", "1"},
		{"synchronous", "1"},
	} {
		var got string
		require.NoError(t, db.QueryRow("PRAGMA "+tt.pragma).Scan(&got))
		assert.Equal(t, tt.want, got, "PRAGMA %s", tt.pragma)
	}
}

func TestAddOrUpdateUser(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.AddOrUpdateUser(ctx, User{ID: 42, Username: "ann", FirstName: "Ann"}))
	require.NoError(t, repo.AddOrUpdateUser(ctx, User{ID: 42, Username: "ann_k", FirstName: "Anna", LastName: "K"}))

	id, err := repo.CreateTest(ctx, 42, scoring.AnswerSet{"1": 0})
	require.NoError(t, err)

	info, err := repo.GetTest(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, User{ID: 42, Username: "ann_k", FirstName: "Anna", LastName: "K"}, info.Creator)
}

func TestCreateTestTokens(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		id, err := repo.CreateTest(ctx, 1, scoring.AnswerSet{"1": i % 3})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(id, TestIDPrefix), "id %q lacks prefix", id)
		assert.False(t, seen[id], "duplicate id %q", id)
		seen[id] = true
	}
}

func TestCreateTestRejectsEmptyAnswers(t *testing.T) {
	_, err := testRepo(t).CreateTest(context.Background(), 1, scoring.AnswerSet{})
	assert.ErrorIs(t, err, scoring.ErrNoCreatorAnswers)
}

func TestGetTestIdempotent(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	// Creator never ran /start: the profile falls back to the bare id.
	id, err := repo.CreateTest(ctx, 7, scoring.AnswerSet{"1": 2, "2": 0})
	require.NoError(t, err)

	first, err := repo.GetTest(ctx, id)
	require.NoError(t, err)
	second, err := repo.GetTest(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(7), first.CreatorID)
	assert.Equal(t, User{ID: 7}, first.Creator)
	assert.Equal(t, scoring.AnswerSet{"1": 2, "2": 0}, first.Answers)

	missing, err := repo.GetTest(ctx, "s_nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSaveResult(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.AddOrUpdateUser(ctx, User{ID: 1, FirstName: "Creator"}))
	id, err := repo.CreateTest(ctx, 1, scoring.AnswerSet{"1": 0, "2": 1, "3": 2, "4": 3})
	require.NoError(t, err)

	out, err := repo.SaveResult(ctx, ResultInput{
		TestID:    id,
		TakerID:   2,
		TakerName: "bob",
		Answers:   scoring.AnswerSet{"1": 0, "2": 1, "3": 0, "4": 0},
	})
	require.NoError(t, err)
	assert.Equal(t, 50, out.Percentage)
	assert.NotEmpty(t, out.Status)
	assert.Equal(t, "Creator", out.Test.Creator.CreatorName())
	assert.Equal(t, 50, out.Result.Score)
	assert.Equal(t, "bob", out.Result.TakerName)

	results, err := repo.ResultsForTest(ctx, id)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, scoring.AnswerSet{"1": 0, "2": 1, "3": 0, "4": 0}, results[0].Answers)
}

func TestSaveResultMissingTest(t *testing.T) {
	_, err := testRepo(t).SaveResult(context.Background(), ResultInput{
		TestID:  "s_missing",
		TakerID: 2,
		Answers: scoring.AnswerSet{"1": 0},
	})
	assert.True(t, errors.Is(err, ErrTestNotFound), "err = %v", err)
}

func TestSaveResultAllowsRepeatAttempts(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	id, err := repo.CreateTest(ctx, 1, scoring.AnswerSet{"1": 0, "2": 0})
	require.NoError(t, err)

	for _, ans := range []scoring.AnswerSet{{"1": 0, "2": 1}, {"1": 0, "2": 0}} {
		_, err := repo.SaveResult(ctx, ResultInput{TestID: id, TakerID: 2, TakerName: "bob", Answers: ans})
		require.NoError(t, err)
	}

	results, err := repo.ResultsForTest(ctx, id)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 100, results[0].Score, "highest score first")
	assert.Equal(t, 50, results[1].Score)
}

func TestListTests(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	older, err := repo.CreateTest(ctx, 1, scoring.AnswerSet{"1": 0})
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	newer, err := repo.CreateTest(ctx, 1, scoring.AnswerSet{"1": 1})
	require.NoError(t, err)
	_, err = repo.CreateTest(ctx, 99, scoring.AnswerSet{"1": 1})
	require.NoError(t, err)

	_, err = repo.SaveResult(ctx, ResultInput{TestID: older, TakerID: 5, TakerName: "eve", Answers: scoring.AnswerSet{"1": 0}})
	require.NoError(t, err)

	tests, err := repo.ListTests(ctx, 1)
	require.NoError(t, err)
	require.Len(t, tests, 2)
	assert.Equal(t, newer, tests[0].ID)
	assert.Equal(t, 0, tests[0].Passes)
	assert.Equal(t, older, tests[1].ID)
	assert.Equal(t, 1, tests[1].Passes)

	none, err := repo.ListTests(ctx, 12345)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestResultGroups(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	id, err := repo.CreateTest(ctx, 1, scoring.AnswerSet{"1": 0, "2": 0})
	require.NoError(t, err)

	for _, in := range []ResultInput{
		{TestID: id, TakerID: 10, TakerName: "alice", Answers: scoring.AnswerSet{"1": 0, "2": 0}}, // 100
		{TestID: id, TakerID: 11, TakerName: "bob", Answers: scoring.AnswerSet{"1": 0, "2": 1}},   // 50
		{TestID: id, TakerID: 10, TakerName: "alice", Answers: scoring.AnswerSet{"1": 1, "2": 1}}, // 0
	} {
		_, err := repo.SaveResult(ctx, in)
		require.NoError(t, err)
	}

	groups, err := repo.ResultGroups(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "alice", groups[0].TakerName)
	assert.Equal(t, 2, groups[0].Count)
	assert.InDelta(t, 50.0, groups[0].Mean, 0.001)
	assert.Equal(t, "bob", groups[1].TakerName)
	assert.Equal(t, 1, groups[1].Count)
	assert.InDelta(t, 50.0, groups[1].Mean, 0.001)
}

func TestUserDisplayNames(t *testing.T) {
	tests := []struct {
		u       User
		creator string
		taker   string
	}{
		{User{ID: 1, Username: "ann", FirstName: "Ann"}, "Ann", "ann"},
		{User{ID: 2, Username: "bob"}, "bob", "bob"},
		{User{ID: 3, FirstName: "Cid"}, "Cid", "Cid"},
		{User{ID: 4}, "", "4"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.creator, tt.u.CreatorName())
		assert.Equal(t, tt.taker, tt.u.TakerName())
	}
}
