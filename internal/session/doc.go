// Package session keeps the live sequencers of mounted views. Every state
// change is published on a topic so that remote observers can follow it;
// observers order updates by the sequencer version
package session
