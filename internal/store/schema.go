package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const (
	kvTable         = "kv_entries"
	llmEventsTable  = "llm_events"
	gameEventsTable = "game_events"
)

const textSize = 2147483647

var (
	kvColumns = []*schema.Column{
		{Name: "key", Type: field.TypeString},
		{Name: "value", Type: field.TypeBytes},
		{Name: "updated_at", Type: field.TypeTime},
	}
	kvEntriesTable = &schema.Table{
		Name:       kvTable,
		Columns:    kvColumns,
		PrimaryKey: []*schema.Column{kvColumns[0]},
	}

	llmEventColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt},
		{Name: "output_tokens", Type: field.TypeInt},
		{Name: "latency_ms", Type: field.TypeInt64},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Size: textSize, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: textSize, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: textSize, Default: ""},
	}
	llmEventsSchema = &schema.Table{
		Name:       llmEventsTable,
		Columns:    llmEventColumns,
		PrimaryKey: []*schema.Column{llmEventColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmevent_purpose", Columns: []*schema.Column{llmEventColumns[5]}},
		},
	}

	gameEventColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "session_id", Type: field.TypeString},
		{Name: "subject_id", Type: field.TypeString, Default: ""},
		{Name: "lesson_id", Type: field.TypeInt, Default: 0},
		{Name: "practice", Type: field.TypeBool},
		{Name: "score", Type: field.TypeInt},
		{Name: "points", Type: field.TypeInt},
		{Name: "questions_answered", Type: field.TypeInt},
		{Name: "correct_answers", Type: field.TypeInt},
		{Name: "lives", Type: field.TypeInt},
		{Name: "accuracy", Type: field.TypeFloat64},
		{Name: "duration_ms", Type: field.TypeInt64},
		{Name: "difficulty", Type: field.TypeString},
		{Name: "lesson_completed", Type: field.TypeBool},
	}
	gameEventsSchema = &schema.Table{
		Name:       gameEventsTable,
		Columns:    gameEventColumns,
		PrimaryKey: []*schema.Column{gameEventColumns[0]},
		Indexes: []*schema.Index{
			{Name: "gameevent_subject_lesson", Columns: []*schema.Column{gameEventColumns[4], gameEventColumns[5]}},
		},
	}
)

// Tables lists every table the store migrates.
var Tables = []*schema.Table{
	kvEntriesTable,
	llmEventsSchema,
	gameEventsSchema,
}
