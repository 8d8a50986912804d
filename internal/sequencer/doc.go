// Package sequencer drives a cursor over an immutable ordered list of steps
//
// Every transition goes through the pure Reduce function. A Sequencer wraps
// the reducer with a single-shot auto-advance timer: each arm carries an
// epoch, and a fire whose epoch has been superseded by a later transition is
// discarded, so at most one timer ever advances the cursor
package sequencer
