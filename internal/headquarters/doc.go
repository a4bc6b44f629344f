// Package headquarters is the producer side of the protocol. It walks a
// config.Galaxy breadth first by dispatching paired tasks downstream,
// collecting decoded frequencies from upstream, and finally broadcasting
// EXIT once nothing is outstanding.
//
// Each node is dispatched at most once. When the visited set is shared with
// other processes an explorer may still drop a task whose node was claimed
// elsewhere; Claimed settles such a task so the outstanding count drains.
package headquarters
