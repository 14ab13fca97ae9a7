package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Test is a creator's answer key, addressed by its shareable token.
type Test struct {
	ent.Schema
}

func (Test) Mixin() []ent.Mixin {
	return []ent.Mixin{CreatedAtMixin{}}
}

func (Test) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			NotEmpty().
			Immutable().
			Comment("Shareable token, s_ prefixed"),
		field.Int64("creator_id").
			Immutable().
			Comment("User id of the creator"),
		field.JSON("answers", map[string]int{}).
			Immutable().
			Comment("Question id to chosen option index"),
	}
}

func (Test) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("creator_id"),
	}
}
