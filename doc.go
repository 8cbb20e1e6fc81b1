// Package sockets tracks raw stream sockets in one registry and moves bytes
// over them with idle-bounded, non-blocking transfers.
//
// The work happens in common/socket; transport/tcp builds an accept-and-serve
// loop on top of it and cli/sockecho exercises both.
package sockets
