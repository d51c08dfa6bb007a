// Package quiz implements the quiz attempt engine: scoring, the per-attempt
// session state machine and the countdown timer with automatic submission.
package quiz

// Question is the engine's view of a quiz question. Options are kept for
// presentation; scoring only compares the recorded answer against
// CorrectAnswer.
type Question struct {
	ID            uint
	Text          string
	Type          string
	Options       []string
	CorrectAnswer string
	Points        int
}

type QuestionResult struct {
	QuestionID uint   `json:"question_id"`
	Answer     string `json:"answer"`
	Correct    bool   `json:"correct"`
}

type Result struct {
	Score      int              `json:"score"`
	MaxScore   int              `json:"max_score"`
	Percentage float64          `json:"percentage"`
	Questions  []QuestionResult `json:"questions"`
}

// Score awards each question's full point value when the recorded answer
// equals the correct answer exactly (case-sensitive, no partial credit).
// Unanswered questions count as incorrect. A quiz worth zero total points
// scores 0%.
func Score(questions []Question, answers map[uint]string) Result {
	result := Result{Questions: make([]QuestionResult, 0, len(questions))}

	for _, q := range questions {
		result.MaxScore += q.Points
		answer, answered := answers[q.ID]
		correct := answered && answer == q.CorrectAnswer
		if correct {
			result.Score += q.Points
		}
		result.Questions = append(result.Questions, QuestionResult{
			QuestionID: q.ID,
			Answer:     answer,
			Correct:    correct,
		})
	}

	if result.MaxScore > 0 {
		result.Percentage = float64(result.Score) / float64(result.MaxScore) * 100
	}
	return result
}
