package api

type (
	// ErrorKind classifies a failed text generation
	ErrorKind string

	// GenerateRequest is the wire body sent to the text generation endpoint
	GenerateRequest struct {
		Contents []GenerateContent `json:"contents"`
	}

	// GenerateContent is one content block of a generation request
	GenerateContent struct {
		Parts []GeneratePart `json:"parts"`
	}

	// GeneratePart carries prompt text
	GeneratePart struct {
		Text string `json:"text"`
	}
)

const (
	ErrorKindMissingCredential ErrorKind = "missing_credential"
	ErrorKindEmptyResponse     ErrorKind = "empty_response"
	ErrorKindRateLimited       ErrorKind = "rate_limited"
	ErrorKindRequestRejected   ErrorKind = "request_rejected"
	ErrorKindExhausted         ErrorKind = "exhausted"
	ErrorKindUnknown           ErrorKind = "unknown"
)

// NewGenerateRequest wraps a composed prompt in the endpoint's body shape
func NewGenerateRequest(prompt string) *GenerateRequest {
	return &GenerateRequest{
		Contents: []GenerateContent{
			{Parts: []GeneratePart{{Text: prompt}}},
		},
	}
}
