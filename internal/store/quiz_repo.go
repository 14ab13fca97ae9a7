package store

import (
	"context"
	"fmt"
	"sort"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/ecodeclub/ekit/slice"
	"github.com/lithammer/shortuuid/v4"

	"github.com/abhisek/knowme/ent"
	"github.com/abhisek/knowme/ent/test"
	"github.com/abhisek/knowme/ent/testresult"
	"github.com/abhisek/knowme/internal/scoring"
)

// maxIDAttempts bounds retries when a generated token collides.
const maxIDAttempts = 3

// quizRepo implements QuizRepo using the ent client.
type quizRepo struct {
	client *ent.Client
	engine *scoring.Engine
}

// NewTestID returns a fresh shareable test token.
func NewTestID() string {
	return TestIDPrefix + shortuuid.New()
}

func (r *quizRepo) AddOrUpdateUser(ctx context.Context, u User) error {
	err := r.client.User.UpdateOneID(u.ID).
		SetUsername(u.Username).
		SetFirstName(u.FirstName).
		SetLastName(u.LastName).
		Exec(ctx)
	if err == nil {
		return nil
	}
	if !ent.IsNotFound(err) {
		return fmt.Errorf("update user: %w", err)
	}

	err = r.client.User.Create().
		SetID(u.ID).
		SetUsername(u.Username).
		SetFirstName(u.FirstName).
		SetLastName(u.LastName).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *quizRepo) CreateTest(ctx context.Context, creatorID int64, answers scoring.AnswerSet) (string, error) {
	if len(answers) == 0 {
		return "", scoring.ErrNoCreatorAnswers
	}
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id := NewTestID()
		err := r.client.Test.Create().
			SetID(id).
			SetCreatorID(creatorID).
			SetAnswers(answers.Clone()).
			Exec(ctx)
		if err == nil {
			return id, nil
		}
		if !ent.IsConstraintError(err) {
			return "", fmt.Errorf("save test: %w", err)
		}
	}
	return "", fmt.Errorf("save test: no unique id after %d attempts", maxIDAttempts)
}

func (r *quizRepo) GetTest(ctx context.Context, testID string) (*TestInfo, error) {
	t, err := r.client.Test.Get(ctx, testID)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("query test: %w", err)
	}

	creator, err := r.user(ctx, t.CreatorID)
	if err != nil {
		return nil, err
	}
	return &TestInfo{TestRecord: entTestToRecord(t), Creator: creator}, nil
}

func (r *quizRepo) SaveResult(ctx context.Context, in ResultInput) (*SaveOutcome, error) {
	info, err := r.GetTest(ctx, in.TestID)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, ErrTestNotFound
	}

	outcome, err := r.engine.Score(info.Answers, in.Answers)
	if err != nil {
		return nil, fmt.Errorf("score test %s: %w", in.TestID, err)
	}

	row, err := r.client.TestResult.Create().
		SetTestID(in.TestID).
		SetTakerID(in.TakerID).
		SetTakerName(in.TakerName).
		SetScore(outcome.Percentage).
		SetAnswers(in.Answers.Clone()).
		Save(ctx)
	if err != nil {
		return nil, fmt.Errorf("save result: %w", err)
	}

	return &SaveOutcome{
		Result:     entResultToRecord(row),
		Percentage: outcome.Percentage,
		Status:     outcome.Status,
		Test:       *info,
	}, nil
}

func (r *quizRepo) ListTests(ctx context.Context, creatorID int64) ([]TestSummary, error) {
	rows, err := r.client.Test.Query().
		Where(test.CreatorID(creatorID)).
		Order(ent.Desc(test.FieldCreatedAt), ent.Desc(test.FieldID)).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("query tests: %w", err)
	}

	out := make([]TestSummary, 0, len(rows))
	for _, t := range rows {
		n, err := r.client.TestResult.Query().
			Where(testresult.TestID(t.ID)).
			Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("count results for %s: %w", t.ID, err)
		}
		out = append(out, TestSummary{TestRecord: entTestToRecord(t), Passes: n})
	}
	return out, nil
}

func (r *quizRepo) ResultsForTest(ctx context.Context, testID string) ([]ResultRecord, error) {
	rows, err := r.client.TestResult.Query().
		Where(testresult.TestID(testID)).
		Order(ent.Desc(testresult.FieldScore), ent.Asc(testresult.FieldID)).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	return slice.Map(rows, func(_ int, src *ent.TestResult) ResultRecord {
		return entResultToRecord(src)
	}), nil
}

func (r *quizRepo) ResultGroups(ctx context.Context) ([]ResultGroup, error) {
	var rows []struct {
		TakerName string  `json:"taker_name"`
		Count     int     `json:"count"`
		Mean      float64 `json:"mean"`
	}
	err := r.client.TestResult.Query().
		GroupBy(testresult.FieldTakerName).
		Aggregate(ent.Count(), meanScore).
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("group results: %w", err)
	}

	groups := make([]ResultGroup, 0, len(rows))
	for _, row := range rows {
		groups = append(groups, ResultGroup{TakerName: row.TakerName, Count: row.Count, Mean: row.Mean})
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].TakerName < groups[j].TakerName
	})
	return groups, nil
}

// meanScore averages the score column under the "mean" alias. ent.Mean
// leaves the column unnamed, which Scan cannot map to a struct field.
func meanScore(s *entsql.Selector) string {
	return entsql.As(entsql.Avg(s.C(testresult.FieldScore)), "mean")
}

// user loads a profile, falling back to a bare id for users the bot has
// never seen on /start.
func (r *quizRepo) user(ctx context.Context, id int64) (User, error) {
	u, err := r.client.User.Get(ctx, id)
	if err != nil {
		if ent.IsNotFound(err) {
			return User{ID: id}, nil
		}
		return User{}, fmt.Errorf("query user: %w", err)
	}
	return User{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}, nil
}

// entTestToRecord converts an ent Test to a store TestRecord.
func entTestToRecord(t *ent.Test) TestRecord {
	return TestRecord{
		ID:        t.ID,
		CreatorID: t.CreatorID,
		Answers:   scoring.AnswerSet(t.Answers).Clone(),
		CreatedAt: t.CreatedAt,
	}
}

// entResultToRecord converts an ent TestResult to a store ResultRecord.
func entResultToRecord(r *ent.TestResult) ResultRecord {
	return ResultRecord{
		ID:        r.ID,
		TestID:    r.TestID,
		TakerID:   r.TakerID,
		TakerName: r.TakerName,
		Score:     r.Score,
		Answers:   scoring.AnswerSet(r.Answers).Clone(),
		CreatedAt: r.CreatedAt,
	}
}
