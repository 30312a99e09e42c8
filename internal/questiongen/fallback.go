package questiongen

import (
	"context"
	"sync"

	"github.com/abhisek/quizrace/internal/question"
)

// bankItem is a curated question without identity; ids are assigned on use.
type bankItem struct {
	prompt  string
	options []string
	answer  string
}

// FallbackBank serves curated questions keyed by category and difficulty.
// It never fails: unknown categories use the general set and an exhausted
// difficulty borrows from its neighbors.
type FallbackBank struct {
	ids  *question.IDSource
	mu   sync.Mutex
	bank map[string]map[question.Difficulty][]bankItem
}

// NewFallbackBank creates a bank over the built-in question sets.
func NewFallbackBank(ids *question.IDSource) *FallbackBank {
	if ids == nil {
		ids = question.NewIDSource()
	}
	return &FallbackBank{ids: ids, bank: builtinBank}
}

// Generate returns up to req.Count questions, preferring prompts that are
// not in req.ExcludePrompts. It returns at least one question.
func (b *FallbackBank) Generate(_ context.Context, req Request) (Batch, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	count := max(req.Count, 1)
	items := b.candidates(req.Category, req.Difficulty)

	excluded := make(map[string]bool, len(req.ExcludePrompts))
	for _, p := range req.ExcludePrompts {
		excluded[normalize(p)] = true
	}

	var fresh, stale []bankItem
	for _, it := range items {
		if excluded[normalize(it.prompt)] {
			stale = append(stale, it)
		} else {
			fresh = append(fresh, it)
		}
	}
	picked := append(fresh, stale...)
	if len(picked) > count {
		picked = picked[:count]
	}

	diff := req.Difficulty
	if !diff.Valid() {
		diff = question.Medium
	}
	out := make([]question.Question, 0, len(picked))
	for _, it := range picked {
		out = append(out, question.Question{
			ID:            b.ids.Next(),
			Prompt:        it.prompt,
			Options:       append([]string(nil), it.options...),
			CorrectAnswer: it.answer,
			Category:      req.Category,
			Difficulty:    diff,
			LessonID:      req.LessonID,
			Lesson:        req.Lesson,
		})
	}
	return Batch{Questions: out, Source: SourceFallback}, nil
}

func (b *FallbackBank) candidates(category string, diff question.Difficulty) []bankItem {
	byDiff, ok := b.bank[category]
	if !ok {
		byDiff = b.bank["general"]
	}
	if !diff.Valid() {
		diff = question.Medium
	}

	out := append([]bankItem(nil), byDiff[diff]...)
	for _, d := range question.Levels {
		if d != diff {
			out = append(out, byDiff[d]...)
		}
	}
	return out
}

var builtinBank = map[string]map[question.Difficulty][]bankItem{
	"math": {
		question.Easy: {
			{"What is 7 + 8?", []string{"14", "15", "16", "13"}, "15"},
			{"What is 9 - 4?", []string{"4", "6", "5", "3"}, "5"},
			{"What is 3 x 4?", []string{"7", "12", "14", "10"}, "12"},
		},
		question.Medium: {
			{"What is 36 / 6?", []string{"5", "7", "6", "8"}, "6"},
			{"What is 15 x 4?", []string{"45", "60", "65", "50"}, "60"},
			{"Which fraction equals 0.5?", []string{"1/3", "2/4", "3/5", "1/5"}, "2/4"},
		},
		question.Hard: {
			{"What is 12 x 13?", []string{"146", "156", "144", "166"}, "156"},
			{"What is 25% of 240?", []string{"50", "60", "48", "80"}, "60"},
			{"Solve for x: 3x + 5 = 20", []string{"4", "6", "5", "15"}, "5"},
		},
	},
	"science": {
		question.Easy: {
			{"Which planet do we live on?", []string{"Mars", "Earth", "Venus", "Jupiter"}, "Earth"},
			{"What do plants need from the sun?", []string{"Light", "Sand", "Salt", "Wind"}, "Light"},
			{"Which animal is a mammal?", []string{"Shark", "Frog", "Dolphin", "Eagle"}, "Dolphin"},
		},
		question.Medium: {
			{"What gas do plants take in?", []string{"Oxygen", "Nitrogen", "Carbon dioxide", "Helium"}, "Carbon dioxide"},
			{"What is frozen water called?", []string{"Steam", "Ice", "Fog", "Dew"}, "Ice"},
			{"Which organ pumps blood?", []string{"Lungs", "Liver", "Heart", "Brain"}, "Heart"},
		},
		question.Hard: {
			{"What is the chemical symbol for sodium?", []string{"S", "So", "Na", "Sd"}, "Na"},
			{"Which planet has the most moons?", []string{"Earth", "Saturn", "Mars", "Mercury"}, "Saturn"},
			{"What part of the cell holds DNA?", []string{"Nucleus", "Membrane", "Wall", "Vacuole"}, "Nucleus"},
		},
	},
	"english": {
		question.Easy: {
			{"Which word is a noun?", []string{"run", "happy", "table", "quickly"}, "table"},
			{"What is the plural of cat?", []string{"cates", "cats", "caties", "cat"}, "cats"},
			{"Which word rhymes with hat?", []string{"hot", "cat", "hit", "hut"}, "cat"},
		},
		question.Medium: {
			{"Which word is an adjective?", []string{"blue", "swim", "under", "they"}, "blue"},
			{"What is the past tense of go?", []string{"goed", "went", "gone", "going"}, "went"},
			{"Which is a synonym for big?", []string{"tiny", "large", "thin", "short"}, "large"},
		},
		question.Hard: {
			{"Which word is an adverb?", []string{"slowly", "slow", "slowness", "slower"}, "slowly"},
			{"What is the antonym of ancient?", []string{"old", "modern", "historic", "aged"}, "modern"},
			{"Which sentence is correct?", []string{"Their going home.", "They're going home.", "There going home.", "Theyre going home."}, "They're going home."},
		},
	},
	"general": {
		question.Easy: {
			{"How many days are in a week?", []string{"5", "6", "7", "8"}, "7"},
			{"What color is the sky on a clear day?", []string{"Green", "Blue", "Red", "Yellow"}, "Blue"},
			{"How many legs does a spider have?", []string{"6", "8", "10", "4"}, "8"},
		},
		question.Medium: {
			{"How many continents are there?", []string{"5", "6", "7", "8"}, "7"},
			{"How many minutes are in an hour?", []string{"30", "60", "100", "90"}, "60"},
			{"Which is the largest ocean?", []string{"Atlantic", "Indian", "Arctic", "Pacific"}, "Pacific"},
		},
		question.Hard: {
			{"How many sides does a hexagon have?", []string{"5", "6", "7", "8"}, "6"},
			{"Which is the longest river in Africa?", []string{"Congo", "Niger", "Nile", "Zambezi"}, "Nile"},
			{"How many bones are in the adult human body?", []string{"196", "206", "216", "186"}, "206"},
		},
	},
}
