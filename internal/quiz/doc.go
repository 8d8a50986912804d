// Package quiz grades quiz submissions and keeps the bounded attempt
// history. The history is a JSON array stored under a single key, newest
// attempt first, never longer than MaxHistory
package quiz
