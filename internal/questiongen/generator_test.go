package questiongen

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizrace/internal/llm"
	"github.com/abhisek/quizrace/internal/question"
)

const validBatch = `{"questions":[
 {"question":"What is 2 + 3?","options":["4","5","6","7"],"correctAnswer":"5"},
 {"question":"What is 10 - 4?","options":["5","6","7","8"],"correctAnswer":"6"}
]}`

func testRequest() Request {
	return Request{
		SubjectID:  "1",
		LessonID:   4,
		Category:   "math",
		Lesson:     "Lesson 4",
		Difficulty: question.Medium,
		Count:      5,
	}
}

type countingRecorder struct {
	sources map[string]int
}

func (r *countingRecorder) QuestionsGenerated(source string, n int) {
	if r.sources == nil {
		r.sources = map[string]int{}
	}
	r.sources[source] += n
}

func TestLLMGenerator_StrictParse(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: validBatch})
	g := New(mock, DefaultConfig(), nil, nil)

	batch, err := g.Generate(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, SourceLLMStrict, batch.Source)
	require.Len(t, batch.Questions, 2)

	q := batch.Questions[0]
	assert.Equal(t, "What is 2 + 3?", q.Prompt)
	assert.Equal(t, "5", q.CorrectAnswer)
	assert.Equal(t, "math", q.Category)
	assert.Equal(t, question.Medium, q.Difficulty)
	assert.Equal(t, 4, q.LessonID)
	assert.True(t, question.IsSynthetic(q.ID))
	assert.NotEqual(t, q.ID, batch.Questions[1].ID)

	require.Equal(t, 1, mock.CallCount())
	call := mock.Calls[0]
	assert.True(t, call.JSONMode)
	assert.Equal(t, systemPrompt, call.System)
	assert.Contains(t, call.Prompt, "Difficulty: medium")
}

func TestLLMGenerator_FencedJSON(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: "```json\n" + validBatch + "\n```"})
	batch, err := New(mock, DefaultConfig(), nil, nil).Generate(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, SourceLLMStrict, batch.Source)
	assert.Len(t, batch.Questions, 2)
}

func TestLLMGenerator_LenientJSONInProse(t *testing.T) {
	text := `Sure! Here are your questions:
{"questions": [
  {"question": "What is 3 x 3?", "options": ["6", "9", "12", "8"], "correctAnswer": "9"},
  {"question": "What is 8 / 2?", "options": ["2", "4", "6", "3"], "correctAnswer": "4"},
]}
Good luck!`
	mock := llm.NewMockProvider(llm.MockResponse{Text: text})

	batch, err := New(mock, DefaultConfig(), nil, nil).Generate(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, SourceLLMLenient, batch.Source)
	require.Len(t, batch.Questions, 2)
	assert.Equal(t, "What is 3 x 3?", batch.Questions[0].Prompt)
	assert.Equal(t, "4", batch.Questions[1].CorrectAnswer)
}

func TestLLMGenerator_LenientPlainText(t *testing.T) {
	text := `1. Question: Which planet is closest to the sun?
A) Venus
B) Mercury
C) Earth
D) Mars
Answer: B

2. Question: What is H2O?
Options: A) Salt B) Water C) Air D) Gold
Correct answer: B) Water`
	mock := llm.NewMockProvider(llm.MockResponse{Text: text})

	req := testRequest()
	req.Category = "science"
	batch, err := New(mock, DefaultConfig(), nil, nil).Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, SourceLLMLenient, batch.Source)
	require.Len(t, batch.Questions, 2)
	assert.Equal(t, "Mercury", batch.Questions[0].CorrectAnswer)
	assert.Equal(t, []string{"Salt", "Water", "Air", "Gold"}, batch.Questions[1].Options)
	assert.Equal(t, "Water", batch.Questions[1].CorrectAnswer)
}

func TestLLMGenerator_DropsInvalidAndExcluded(t *testing.T) {
	text := `{"questions":[
 {"question":"What is 2 + 3?","options":["4","5","6","7"],"correctAnswer":"5"},
 {"question":"Bad answer","options":["1","2","3","4"],"correctAnswer":"9"},
 {"question":"Dup options","options":["1","1","3","4"],"correctAnswer":"1"},
 {"question":"What is 1 + 1?","options":["1","2","3","4"],"correctAnswer":"2"}
]}`
	mock := llm.NewMockProvider(llm.MockResponse{Text: text})
	req := testRequest()
	req.ExcludePrompts = []string{"what is 2 + 3?"}

	batch, err := New(mock, DefaultConfig(), nil, nil).Generate(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, batch.Questions, 1)
	assert.Equal(t, "What is 1 + 1?", batch.Questions[0].Prompt)
}

func TestLLMGenerator_Errors(t *testing.T) {
	tests := []struct {
		name  string
		resp  llm.MockResponse
		stage string
	}{
		{"provider error", llm.MockResponse{Err: &llm.ErrRateLimit{}}, "request"},
		{"garbage", llm.MockResponse{Text: "I cannot help with that."}, "parse"},
		{"all invalid", llm.MockResponse{Text: `{"questions":[{"question":"x","options":["a","b","c","d"],"correctAnswer":"z"}]}`}, "validate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(llm.NewMockProvider(tt.resp), DefaultConfig(), nil, nil)
			_, err := g.Generate(context.Background(), testRequest())
			var gerr *GenerationError
			require.True(t, errors.As(err, &gerr), "got %v", err)
			assert.Equal(t, tt.stage, gerr.Stage)
		})
	}
}

func TestLLMGenerator_CountCapsBatch(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: validBatch})
	req := testRequest()
	req.Count = 1
	batch, err := New(mock, DefaultConfig(), nil, nil).Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, batch.Questions, 1)
}

func TestFallbackBank_PrefersUnseen(t *testing.T) {
	bank := NewFallbackBank(nil)
	req := testRequest()
	req.Count = 2
	req.ExcludePrompts = []string{"What is 36 / 6?"}

	batch, err := bank.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, SourceFallback, batch.Source)
	require.Len(t, batch.Questions, 2)
	for _, q := range batch.Questions {
		assert.NotEqual(t, "What is 36 / 6?", q.Prompt)
		assert.NoError(t, q.Validate())
		assert.Equal(t, question.Medium, q.Difficulty)
		assert.True(t, question.IsSynthetic(q.ID))
	}
}

func TestFallbackBank_UnknownCategoryAndExhausted(t *testing.T) {
	bank := NewFallbackBank(nil)
	req := testRequest()
	req.Category = "astrology"
	req.Count = 1
	for _, byDiff := range builtinBank["general"] {
		for _, it := range byDiff {
			req.ExcludePrompts = append(req.ExcludePrompts, it.prompt)
		}
	}

	batch, err := bank.Generate(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, batch.Questions, 1)
	assert.Equal(t, "astrology", batch.Questions[0].Category)
}

func TestBuiltinBank_AllValid(t *testing.T) {
	for cat, byDiff := range builtinBank {
		for _, d := range question.Levels {
			items := byDiff[d]
			assert.NotEmpty(t, items, "%s/%s", cat, d)
			for _, it := range items {
				q := question.Question{Prompt: it.prompt, Options: it.options, CorrectAnswer: it.answer, Difficulty: d}
				assert.NoError(t, q.Validate(), "%s/%s %q", cat, d, it.prompt)
			}
		}
	}
}

func TestChain_FallsBack(t *testing.T) {
	rec := &countingRecorder{}
	primary := New(llm.NewMockProvider(), DefaultConfig(), nil, nil)
	chain := NewChain(primary, nil, rec, nil)

	batch, err := chain.Generate(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, SourceFallback, batch.Source)
	assert.NotEmpty(t, batch.Questions)
	assert.Equal(t, len(batch.Questions), rec.sources["fallback"])
}

func TestChain_UsesPrimary(t *testing.T) {
	rec := &countingRecorder{}
	primary := New(llm.NewMockProvider(llm.MockResponse{Text: validBatch}), DefaultConfig(), nil, nil)
	batch, err := NewChain(primary, nil, rec, nil).Generate(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, SourceLLMStrict, batch.Source)
	assert.Equal(t, 2, rec.sources["llm_strict"])
}

func TestChain_NilPrimary(t *testing.T) {
	batch, err := NewChain(nil, nil, nil, nil).Generate(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, SourceFallback, batch.Source)
}

func TestBuildDedup(t *testing.T) {
	assert.Equal(t, "None", buildDedup(nil, 5))
	got := buildDedup([]string{"a", "b", "c"}, 2)
	assert.Equal(t, "1. b\n2. c", got)
}

func TestBuildPrompt(t *testing.T) {
	req := testRequest()
	req.Topic = "addition"
	req.ExcludePrompts = []string{"What is 1 + 1?"}
	p := buildPrompt(req, DefaultConfig())
	assert.True(t, strings.Contains(p, "Topic: addition"))
	assert.Contains(t, p, "1. What is 1 + 1?")
	assert.Contains(t, p, "Number of questions: 5")
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Validator: "structural", Message: "empty option"}
	assert.Equal(t, `validator "structural": empty option`, err.Error())
}
