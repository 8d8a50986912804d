package genai

import (
	"errors"

	"github.com/kode4food/kubetour/pkg/api"
)

type transientError struct {
	err error
}

var (
	ErrMissingCredential = errors.New("no API credential configured")
	ErrEmptyResponse     = errors.New("response contained no text")
	ErrRateLimited       = errors.New("rate limited by text generation API")
	ErrRequestRejected   = errors.New("request rejected by text generation API")
	ErrExhausted         = errors.New("text generation retries exhausted")
	ErrServer            = errors.New("text generation API server error")
)

var errorKinds = []struct {
	err  error
	kind api.ErrorKind
}{
	{ErrMissingCredential, api.ErrorKindMissingCredential},
	{ErrEmptyResponse, api.ErrorKindEmptyResponse},
	{ErrRateLimited, api.ErrorKindRateLimited},
	{ErrRequestRejected, api.ErrorKindRequestRejected},
	{ErrExhausted, api.ErrorKindExhausted},
}

// KindOf classifies an error returned by Generate
func KindOf(err error) api.ErrorKind {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return api.ErrorKindUnknown
}

func (e *transientError) Error() string {
	return e.err.Error()
}

func (e *transientError) Unwrap() error {
	return e.err
}

func isTransient(err error) bool {
	var t *transientError
	return errors.As(err, &t)
}
