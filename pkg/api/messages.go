package api

type (
	// ToursListResponse contains the available tours
	ToursListResponse struct {
		Tours []*TourDigest `json:"tours"`
		Count int           `json:"count"`
	}

	// SessionCreatedResponse is returned when a tour session is created
	SessionCreatedResponse struct {
		Message string        `json:"message"`
		Session *SessionState `json:"session"`
	}

	// ComponentsListResponse contains the component lookup table
	ComponentsListResponse struct {
		Components []*Component `json:"components"`
		Count      int          `json:"count"`
	}

	// ExplainRequest carries a free-form prompt composed by the caller, or
	// a manifest field path to explain instead
	ExplainRequest struct {
		Prompt string `json:"prompt,omitempty"`
		Field  string `json:"field,omitempty"`
	}

	// ExplainResponse carries generated text
	ExplainResponse struct {
		Subject string `json:"subject,omitempty"`
		Text    string `json:"text"`
	}

	// AnnotateResponse lists manifest field annotations
	AnnotateResponse struct {
		Annotations []*Annotation      `json:"annotations"`
		Workloads   []*WorkloadSummary `json:"workloads,omitempty"`
		Count       int                `json:"count"`
	}

	// QuizResponse lists the questions of one difficulty
	QuizResponse struct {
		Difficulty Difficulty        `json:"difficulty"`
		Questions  []*PublicQuestion `json:"questions"`
		Count      int               `json:"count"`
	}

	// QuizSubmission carries answer indexes in question order; -1 skips
	QuizSubmission struct {
		Answers []int `json:"answers"`
	}

	// QuizResultResponse is returned after grading a submission
	QuizResultResponse struct {
		Attempt QuizAttempt   `json:"attempt"`
		History []QuizAttempt `json:"history"`
	}

	// QuizHistoryResponse lists stored attempts, newest first
	QuizHistoryResponse struct {
		History []QuizAttempt `json:"history"`
		Count   int           `json:"count"`
	}

	// HealthResponse provides service health information
	HealthResponse struct {
		Service  string `json:"service"`
		Version  string `json:"version"`
		Status   string `json:"status"`
		Sessions int    `json:"sessions"`
	}

	// MessageResponse contains a simple message string
	MessageResponse struct {
		Message string `json:"message"`
	}

	// ErrorResponse contains error details for failed requests
	ErrorResponse struct {
		Error  string    `json:"error"`
		Kind   ErrorKind `json:"kind,omitempty"`
		Status int       `json:"status,omitempty"`
	}
)
