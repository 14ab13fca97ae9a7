package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// TestResult is one completed attempt at a Test. A taker may have many
// results for the same test.
type TestResult struct {
	ent.Schema
}

func (TestResult) Mixin() []ent.Mixin {
	return []ent.Mixin{CreatedAtMixin{}}
}

func (TestResult) Fields() []ent.Field {
	return []ent.Field{
		field.String("test_id").
			NotEmpty().
			Immutable(),
		field.Int64("taker_id").
			Immutable(),
		field.String("taker_name").
			Immutable().
			Comment("Display name at the time of the attempt"),
		field.Int("score").
			Min(0).
			Max(100).
			Immutable().
			Comment("Match percentage"),
		field.JSON("answers", map[string]int{}).
			Immutable(),
	}
}

func (TestResult) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("test_id", "score"),
		index.Fields("taker_name"),
	}
}
