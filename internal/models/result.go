package models

// AnswerAttempt is one generation round: the produced text plus the passages
// it was grounded in. Passages always come from the single domain selected
// for the question.
type AnswerAttempt struct {
	Text     string    `json:"text"`
	Passages []Passage `json:"passages"`
}

// AnswerResult is the attempt chosen to be returned to the caller: the first
// non-refusing attempt, or the last attempt when the retry bound is reached.
type AnswerResult struct {
	AnswerAttempt
	// Attempts is how many generation rounds were made, in [1, MaxAttempts].
	Attempts int `json:"attempts"`
}

// AskResponse is the response for an ask request.
type AskResponse struct {
	Domain string `json:"domain"`
	Answer string `json:"answer"`
	// Sources lists the originating files of the passages the final answer
	// was grounded in, in retrieval order.
	Sources   []string `json:"sources"`
	Attempts  int      `json:"attempts"`
	QueryTime int64    `json:"query_time_ms"`
}
