// Package genai calls the remote text generation endpoint
//
// A call is one logical request: a first attempt plus a bounded number of
// retries with backoff. Server errors and transport failures are transient;
// rate limiting, request rejection and empty answers are terminal and are
// returned at once
package genai
