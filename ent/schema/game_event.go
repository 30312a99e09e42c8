package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// GameEvent is the end-of-game record written by the analytics store sink.
type GameEvent struct {
	ent.Schema
}

func (GameEvent) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "game_events"},
	}
}

func (GameEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (GameEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("session_id"),
		field.String("subject_id").
			Default("").
			Comment("Empty for practice races"),
		field.Int("lesson_id").
			Default(0),
		field.Bool("practice"),
		field.Int("score").
			Comment("Accuracy percentage 0-100"),
		field.Int("points"),
		field.Int("questions_answered"),
		field.Int("correct_answers"),
		field.Int("lives"),
		field.Float("accuracy"),
		field.Int64("duration_ms"),
		field.String("difficulty").
			Comment("Tier at the end of the race"),
		field.Bool("lesson_completed"),
	}
}

func (GameEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("subject_id", "lesson_id"),
	}
}
