// Package channel implements the communication channel between headquarters
// and the explorers.
//
// A Channel owns two independent queues. The downstream queue carries tasks
// from headquarters to explorers and the upstream queue carries decoded
// results back. Writes to the downstream queue go through the pairing
// protocol: a sender submits two messages, the first naming the node a task
// starts from and the second naming the target node and its payload, and
// only the combined message is queued. Sentinel payloads skip pairing and
// are queued immediately.
//
// Pairing state is keyed by an explicit SenderID. Callers obtain one through
// NewSender, which gives every caller its own pairing slot, or use the
// BeginPair/CompletePair token API when the two halves are produced in
// different places. Each slot must strictly alternate store and combine
// calls; a third data message from the same sender starts a new pair.
package channel
