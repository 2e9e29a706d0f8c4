package network

// Message ids. Every payload is UTF-8 chat text.
const (
	MsgTypeHeartbeat = 1
	// client -> server
	MsgTypeCommand = 201
	// server -> client
	MsgTypeBroadcast = 301
	MsgTypePrivate   = 302
	MsgTypeWelcome   = 303
)
