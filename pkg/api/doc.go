// Package api defines the shared data types of the kubetour service
//
// This package contains tour and step definitions, sequencer state, component
// and manifest lookup records, quiz records, text generation messages, and the
// HTTP and WebSocket payloads exchanged with the browser
package api
