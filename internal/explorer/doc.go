// Package explorer implements the worker side of the protocol.
//
// An Explorer loops over the downstream queue of a channel.Channel:
//
//	Waiting --take--> Dispatch --EXIT--> Terminate
//	                     |----END------> Skip   --> Waiting
//	                     '----data-----> Decode --> Waiting
//
// A data message is decoded only if its node can be claimed in the shared
// visited.Set; the decoded payload goes upstream with the same parent and
// node ids. A Pool runs several explorers over one channel and turns the
// first observed EXIT into a cancellation that stops every explorer.
package explorer
