// Package server implements the HTTP API of the tour backend
//
// This package provides REST endpoints for tours, sessions, components,
// explanations, manifest annotation and quizzes, plus a WebSocket that owns
// one live session per connection
package server
