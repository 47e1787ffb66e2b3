package models

import "time"

// Interaction is one question-answering turn as consumed by the offline
// evaluator.
type Interaction struct {
	Mode        Mode      `json:"mode"`
	Question    string    `json:"question"`
	Prediction  string    `json:"prediction"`
	Keyword     string    `json:"keyword"`
	Score       float64   `json:"tfidf_score"`
	Threshold   float64   `json:"tfidf_threshold"`
	BestIndex   int       `json:"best_index"`
	ContextUsed *string   `json:"context_used"`
	CreatedAt   time.Time `json:"-"`
}
