package catalog

import "github.com/abhisek/quizrace/internal/question"

type builtinQuestion struct {
	prompt     string
	options    [4]string
	answer     string
	difficulty question.Difficulty
}

// builtinSets is the small set served when no catalog is available.
// Ids are assigned from builtinIDBase in declaration order.
var builtinSets = map[string][]builtinQuestion{
	"math": {
		{"What is 7 + 8?", [4]string{"14", "15", "16", "13"}, "15", question.Easy},
		{"What is 9 x 6?", [4]string{"54", "56", "45", "63"}, "54", question.Easy},
		{"What is 144 / 12?", [4]string{"11", "12", "14", "13"}, "12", question.Medium},
		{"Which fraction is larger?", [4]string{"1/3", "1/4", "2/5", "3/10"}, "2/5", question.Medium},
		{"What is 25% of 80?", [4]string{"20", "25", "16", "40"}, "20", question.Medium},
		{"What is the area of a 7 by 9 rectangle?", [4]string{"63", "32", "56", "72"}, "63", question.Hard},
		{"What is 0.6 + 0.75?", [4]string{"1.35", "1.25", "0.81", "1.45"}, "1.35", question.Hard},
		{"What is 3/4 of 48?", [4]string{"36", "32", "12", "24"}, "36", question.Hard},
	},
	"science": {
		{"What do plants need to make food?", [4]string{"Sunlight", "Sand", "Salt", "Smoke"}, "Sunlight", question.Easy},
		{"Ice is water in which state?", [4]string{"Solid", "Liquid", "Gas", "Plasma"}, "Solid", question.Easy},
		{"Which planet is closest to the Sun?", [4]string{"Mercury", "Venus", "Mars", "Earth"}, "Mercury", question.Medium},
		{"What force pulls objects toward Earth?", [4]string{"Gravity", "Friction", "Magnetism", "Tension"}, "Gravity", question.Medium},
		{"What gas do humans breathe out?", [4]string{"Carbon dioxide", "Oxygen", "Helium", "Nitrogen"}, "Carbon dioxide", question.Medium},
		{"Sound travels fastest through which material?", [4]string{"Steel", "Air", "Water", "Vacuum"}, "Steel", question.Hard},
		{"What is the powerhouse of the cell?", [4]string{"Mitochondria", "Nucleus", "Ribosome", "Membrane"}, "Mitochondria", question.Hard},
	},
	"english": {
		{"Which word is a noun?", [4]string{"Table", "Run", "Quickly", "Blue"}, "Table", question.Easy},
		{"What is the plural of child?", [4]string{"Children", "Childs", "Childes", "Childrens"}, "Children", question.Easy},
		{"Which word is a synonym for happy?", [4]string{"Joyful", "Angry", "Tired", "Bored"}, "Joyful", question.Medium},
		{"Which sentence is punctuated correctly?", [4]string{"It's raining.", "Its raining.", "Its' raining.", "It,s raining."}, "It's raining.", question.Medium},
		{"What is the antonym of ancient?", [4]string{"Modern", "Old", "Historic", "Aged"}, "Modern", question.Hard},
		{"Which word is an adverb?", [4]string{"Softly", "Soft", "Soften", "Softness"}, "Softly", question.Hard},
	},
	"general": {
		{"How many days are in a week?", [4]string{"7", "5", "6", "8"}, "7", question.Easy},
		{"What color do you get mixing blue and yellow?", [4]string{"Green", "Purple", "Orange", "Brown"}, "Green", question.Easy},
		{"How many continents are there?", [4]string{"7", "5", "6", "8"}, "7", question.Medium},
		{"How many minutes are in 2 hours?", [4]string{"120", "100", "90", "140"}, "120", question.Medium},
		{"What is the largest ocean?", [4]string{"Pacific", "Atlantic", "Indian", "Arctic"}, "Pacific", question.Hard},
	},
}

const builtinIDBase = 9000

// Builtin returns the built-in question set for category, tagged with
// lessonID. Unknown categories get the general set.
func Builtin(category string, lessonID int) []question.Question {
	set, ok := builtinSets[category]
	if !ok {
		category = "general"
		set = builtinSets[category]
	}

	offset := 0
	for _, c := range []string{"math", "science", "english", "general"} {
		if c == category {
			break
		}
		offset += 100
	}

	out := make([]question.Question, len(set))
	for i, b := range set {
		out[i] = question.Question{
			ID:            builtinIDBase + offset + i + 1,
			Prompt:        b.prompt,
			Options:       b.options[:],
			CorrectAnswer: b.answer,
			Category:      category,
			Difficulty:    b.difficulty,
			LessonID:      lessonID,
		}
	}
	return out
}
