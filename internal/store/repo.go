package store

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/abhisek/knowme/internal/scoring"
)

// TestIDPrefix starts every test token so deep links can be told apart
// from other start parameters.
const TestIDPrefix = "s_"

// ErrTestNotFound is returned by SaveResult when the test does not exist.
var ErrTestNotFound = errors.New("test not found")

// User is a messenger account as last seen by the bot.
type User struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
}

// CreatorName is how a creator is addressed to takers. It is empty when
// the user has neither a first name nor a username.
func (u User) CreatorName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	return u.Username
}

// TakerName is the display name recorded with a result and used for
// leaderboard grouping.
func (u User) TakerName() string {
	if u.Username != "" {
		return u.Username
	}
	if u.FirstName != "" {
		return u.FirstName
	}
	return strconv.FormatInt(u.ID, 10)
}

// TestRecord is a stored answer key.
type TestRecord struct {
	ID        string
	CreatorID int64
	Answers   scoring.AnswerSet
	CreatedAt time.Time
}

// TestInfo is a test together with its creator's profile.
type TestInfo struct {
	TestRecord
	Creator User
}

// TestSummary is a test with the number of recorded results.
type TestSummary struct {
	TestRecord
	Passes int
}

// ResultRecord is a stored attempt.
type ResultRecord struct {
	ID        int
	TestID    string
	TakerID   int64
	TakerName string
	Score     int
	Answers   scoring.AnswerSet
	CreatedAt time.Time
}

// ResultInput carries a finished attempt to SaveResult.
type ResultInput struct {
	TestID    string
	TakerID   int64
	TakerName string
	Answers   scoring.AnswerSet
}

// SaveOutcome is what SaveResult reports back to the taking flow.
type SaveOutcome struct {
	Result     ResultRecord
	Percentage int
	Status     string
	Test       TestInfo
}

// ResultGroup aggregates every result recorded under one taker name.
type ResultGroup struct {
	TakerName string
	Count     int
	Mean      float64
}

// QuizRepo persists users, tests and results.
type QuizRepo interface {
	// AddOrUpdateUser stores the latest profile of a user.
	AddOrUpdateUser(ctx context.Context, u User) error

	// CreateTest stores a new answer key and returns its fresh token.
	CreateTest(ctx context.Context, creatorID int64, answers scoring.AnswerSet) (string, error)

	// GetTest returns the test and its creator, or nil if it does not exist.
	GetTest(ctx context.Context, testID string) (*TestInfo, error)

	// SaveResult scores and stores an attempt. It returns ErrTestNotFound
	// when the test is missing and scoring errors unchanged.
	SaveResult(ctx context.Context, in ResultInput) (*SaveOutcome, error)

	// ListTests returns the creator's tests, newest first.
	ListTests(ctx context.Context, creatorID int64) ([]TestSummary, error)

	// ResultsForTest returns a test's results by score, highest first.
	ResultsForTest(ctx context.Context, testID string) ([]ResultRecord, error)

	// ResultGroups aggregates all results by taker name, ordered by name.
	ResultGroups(ctx context.Context) ([]ResultGroup, error)
}
