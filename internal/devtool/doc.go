// Package devtool speaks the debugging protocol of a canvas host over a
// WebSocket debug socket.
//
// The host exposes one duplex connection. devtool turns it into a set of
// concurrently awaitable exchanges: every outbound command carries a
// connection-unique id, and the single read loop routes each tagged reply
// back to the caller that sent the matching request. Callers never see each
// other's replies, and replies may arrive in any order.
//
// Conn is safe for concurrent use. Evaluate is the high-level entry point:
// it ships a script to the host, awaits its promise, and surfaces a thrown
// exception as a RemoteFault rather than a transport error.
package devtool
