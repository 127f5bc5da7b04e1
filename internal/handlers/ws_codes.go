// internal/handlers/ws_codes.go
package handlers

// Custom WebSocket close codes used by the lobby stream.
const (
	BadSubprotocolError   = 3000 // Client connected with an unsupported subprotocol.
	InvalidSessionError   = 3001 // Session cookie could not be issued or verified.
	LobbyUnavailableError = 3002 // The session's lobby state could not be restored.
)

// LobbySubprotocol is the websocket subprotocol clients must request on /lobby/ws.
const LobbySubprotocol = "lobby"
