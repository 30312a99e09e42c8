package questiongen

import (
	"bufio"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/abhisek/quizrace/internal/llm"
)

// rawQuestion is one parsed item before validation.
type rawQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
}

type rawBatch struct {
	Questions []rawQuestion `json:"questions"`
}

var fenceRe = regexp.MustCompile("(?s)^\\s*```[a-zA-Z]*\\s*(.*?)\\s*```\\s*$")

func stripFences(text string) string {
	if m := fenceRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return strings.TrimSpace(text)
}

// parseStrict accepts only a well-formed batch object.
func parseStrict(text string) ([]rawQuestion, error) {
	body := stripFences(text)
	if _, err := llm.ValidateJSON(BatchSchema, []byte(body)); err != nil {
		return nil, err
	}
	var b rawBatch
	if err := json.Unmarshal([]byte(body), &b); err != nil {
		return nil, err
	}
	return b.Questions, nil
}

var (
	jsonQuestionRe = regexp.MustCompile(`"question"\s*:\s*"((?:[^"\\]|\\.)*)"`)
	jsonOptionsRe  = regexp.MustCompile(`"options"\s*:\s*\[([^\]]*)\]`)
	jsonAnswerRe   = regexp.MustCompile(`"correct_?[aA]nswer"\s*:\s*"((?:[^"\\]|\\.)*)"`)
	jsonStringRe   = regexp.MustCompile(`"((?:[^"\\]|\\.)*)"`)

	plainQuestionRe = regexp.MustCompile(`(?i)^\s*(?:\d+\s*[.)]\s*)?(?:\*\*)?(?:question|q)\s*\d*\s*[:.)-]\s*(?:\*\*)?\s*(.+)$`)
	plainOptionRe   = regexp.MustCompile(`^\s*\(?([A-Da-d])[).:]\s+(.+)$`)
	plainOptionsRe  = regexp.MustCompile(`(?i)^\s*options?\s*[:.-]\s*(.+)$`)
	inlineLabelRe   = regexp.MustCompile(`\s*\(?[A-D][).]\s*`)
	plainAnswerRe   = regexp.MustCompile(`(?i)^\s*(?:\*\*)?(?:correct\s+answer|answer)\s*[:.-]\s*(?:\*\*)?\s*(.+)$`)
	letterRe        = regexp.MustCompile(`^\(?([A-Da-d])[).:]?$`)
	labelledRe      = regexp.MustCompile(`^\(?([A-Da-d])[).:]\s+(.+)$`)
)

// parseLenient pulls question triples out of text that is not a valid
// batch: broken JSON, JSON wrapped in prose, or a plain numbered list.
func parseLenient(text string) []rawQuestion {
	if out := extractJSONLike(text); len(out) > 0 {
		return out
	}
	return extractPlain(text)
}

func extractJSONLike(text string) []rawQuestion {
	locs := jsonQuestionRe.FindAllStringSubmatchIndex(text, -1)
	var out []rawQuestion
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		seg := text[loc[0]:end]

		rq := rawQuestion{Question: unescape(text[loc[2]:loc[3]])}
		if m := jsonOptionsRe.FindStringSubmatch(seg); m != nil {
			for _, s := range jsonStringRe.FindAllStringSubmatch(m[1], -1) {
				rq.Options = append(rq.Options, unescape(s[1]))
			}
		}
		if m := jsonAnswerRe.FindStringSubmatch(seg); m != nil {
			rq.CorrectAnswer = unescape(m[1])
		}
		out = append(out, rq)
	}
	return out
}

func extractPlain(text string) []rawQuestion {
	var (
		out []rawQuestion
		cur *rawQuestion
	)
	flush := func() {
		if cur != nil {
			cur.CorrectAnswer = resolveAnswer(cur.CorrectAnswer, cur.Options)
			out = append(out, *cur)
			cur = nil
		}
	}

	sc := bufio.NewScanner(strings.NewReader(text))
	for sc.Scan() {
		line := strings.TrimSpace(strings.Trim(strings.TrimSpace(sc.Text()), "*"))
		switch {
		case line == "":
		case plainAnswerRe.MatchString(line):
			if cur != nil {
				cur.CorrectAnswer = strings.TrimSpace(plainAnswerRe.FindStringSubmatch(line)[1])
			}
		case plainOptionsRe.MatchString(line):
			if cur != nil {
				for _, o := range inlineLabelRe.Split(plainOptionsRe.FindStringSubmatch(line)[1], -1) {
					if o = strings.TrimSpace(o); o != "" {
						cur.Options = append(cur.Options, o)
					}
				}
			}
		case plainOptionRe.MatchString(line):
			if cur != nil {
				cur.Options = append(cur.Options, strings.TrimSpace(plainOptionRe.FindStringSubmatch(line)[2]))
			}
		case plainQuestionRe.MatchString(line):
			flush()
			cur = &rawQuestion{Question: strings.TrimSpace(plainQuestionRe.FindStringSubmatch(line)[1])}
		}
	}
	flush()
	return out
}

// resolveAnswer maps a letter answer ("B", "b)") or a labelled one
// ("B) 42") onto the option text.
func resolveAnswer(ans string, options []string) string {
	ans = strings.TrimSpace(strings.TrimRight(ans, "."))
	if m := letterRe.FindStringSubmatch(ans); m != nil {
		idx := int(strings.ToUpper(m[1])[0] - 'A')
		if idx < len(options) {
			return options[idx]
		}
	}
	if m := labelledRe.FindStringSubmatch(ans); m != nil {
		return strings.TrimSpace(m[2])
	}
	return ans
}

func unescape(s string) string {
	if u, err := strconv.Unquote(`"` + s + `"`); err == nil {
		return u
	}
	return s
}
