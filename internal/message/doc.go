// Package message defines the immutable value exchanged between headquarters
// and the explorers, together with the two reserved control payloads.
package message
