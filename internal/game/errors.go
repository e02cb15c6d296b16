package game

import "errors"

// Error codes surfaced at the registry/binding boundary. State-machine phase
// or actor mismatches are silent no-ops, never errors.
const (
	CodeInvalidInput   = "INVALID_INPUT"
	CodeRoomNotFound   = "ROOM_NOT_FOUND"
	CodePlayerNotFound = "PLAYER_NOT_FOUND"
	CodeRoomFull       = "ROOM_FULL"
	CodeGameInProgress = "GAME_IN_PROGRESS"
	CodeNameTaken      = "NAME_TAKEN"
)

// Error carries a machine-readable code alongside the human message. It
// renders as "CODE: message" on the wire.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

func newError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// ErrorCode extracts the taxonomy code from err, or "" if err is not a
// registry error.
func ErrorCode(err error) string {
	var gameErr *Error
	if errors.As(err, &gameErr) {
		return gameErr.Code
	}
	return ""
}

// ErrorMessage extracts the human message from err, falling back to the full
// error text.
func ErrorMessage(err error) string {
	var gameErr *Error
	if errors.As(err, &gameErr) {
		return gameErr.Message
	}
	return err.Error()
}
