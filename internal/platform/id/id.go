// Package id generates identifiers for events and sessions.
package id

import "crypto/rand"

// eventAlphabet is the character set for event id suffixes. Lowercase
// letters and digits only, so ids survive case-insensitive filesystems
// and URL paths without escaping.
const eventAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// EventIDLength is the length of the random suffix after the "e_" prefix.
const EventIDLength = 8

// NewEventID generates an event identifier of the form "e_" followed by
// eight lowercase alphanumeric characters.
//
// Uniqueness within a session is probabilistic; callers that require
// collision handling must dedupe on append.
func NewEventID() string {
	return "e_" + randomString(EventIDLength)
}

// NewSessionID generates a session identifier of the form "s_" followed
// by twelve lowercase alphanumeric characters.
func NewSessionID() string {
	return "s_" + randomString(12)
}

func randomString(length int) string {
	buf := make([]byte, length)
	rand.Read(buf)
	for i, b := range buf {
		buf[i] = eventAlphabet[int(b)%len(eventAlphabet)]
	}
	return string(buf)
}
