package domain

import "strings"

// RepairStrategy names how a question's answer was reconciled with its options.
type RepairStrategy string

const (
	RepairNone       RepairStrategy = "none"
	RepairIndex      RepairStrategy = "index"
	RepairNormalized RepairStrategy = "normalized"
	RepairUnrepaired RepairStrategy = "unrepaired"
)

// RepairReport records the outcome per question, in question order.
type RepairReport struct {
	Outcomes []RepairStrategy
}

// Count returns how many questions ended with the given strategy.
func (r RepairReport) Count(strategy RepairStrategy) int {
	n := 0
	for _, s := range r.Outcomes {
		if s == strategy {
			n++
		}
	}
	return n
}

// Unrepaired returns the zero-based positions of questions left mismatched.
func (r RepairReport) Unrepaired() []int {
	var idx []int
	for i, s := range r.Outcomes {
		if s == RepairUnrepaired {
			idx = append(idx, i)
		}
	}
	return idx
}

const trailingNoise = " .,;:!?'\"`"

// NormalizeText lowercases, trims and strips trailing punctuation for tolerant comparison.
func NormalizeText(s string) string {
	return strings.TrimRight(strings.TrimSpace(strings.ToLower(s)), trailingNoise)
}

var answerTokens = map[string]int{
	"a": 0, "1": 0, "option a": 0, "a)": 0, "(a)": 0, "a.": 0, "answera": 0,
	"b": 1, "2": 1, "option b": 1, "b)": 1, "(b)": 1, "b.": 1, "answerb": 1,
	"c": 2, "3": 2, "option c": 2, "c)": 2, "(c)": 2, "c.": 2, "answerc": 2,
	"d": 3, "4": 3, "option d": 3, "d)": 3, "(d)": 3, "d.": 3, "answerd": 3,
}

// AnswerIndexFromToken interprets a letter, digit or "option X" style answer as an
// option position. ok is false when the token is not recognised.
func AnswerIndexFromToken(answer string) (idx int, ok bool) {
	idx, ok = answerTokens[NormalizeText(answer)]
	return idx, ok
}

func (q *QuestionDraft) normalizedAnswer() string {
	if q.answerNotText {
		return ""
	}
	return NormalizeText(q.Answer)
}

func (q *QuestionDraft) normalizedOption(i int) string {
	if q.optionIsNotText(i) {
		return ""
	}
	return NormalizeText(q.Options[i])
}

// Repair reconciles the answer with the options in place and reports which
// strategy applied. It never fails; an unrepairable answer is left untouched.
func (q *QuestionDraft) Repair() RepairStrategy {
	if q.HasValidAnswer() {
		return RepairNone
	}

	norm := q.normalizedAnswer()
	if idx, ok := answerTokens[norm]; ok && idx < len(q.Options) {
		q.adoptOption(idx)
		return RepairIndex
	}

	for i := range q.Options {
		if q.normalizedOption(i) == norm {
			q.adoptOption(i)
			return RepairNormalized
		}
	}
	return RepairUnrepaired
}

// Repair runs the per-question repair over the payload. Nil questions are
// skipped and reported as unrepaired so validation can reject them.
func (p *QuizPayload) Repair() RepairReport {
	report := RepairReport{Outcomes: make([]RepairStrategy, len(p.Questions))}
	for i, q := range p.Questions {
		if q == nil {
			report.Outcomes[i] = RepairUnrepaired
			continue
		}
		report.Outcomes[i] = q.Repair()
	}
	return report
}
