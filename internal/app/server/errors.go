package server

import "errors"

var (
	ErrStatusNotJoined      string = "NOT_JOINED"
	ErrStatusAlreadyJoined  string = "ALREADY_JOINED"
	ErrStatusInvalidPayload string = "INVALID_PAYLOAD"
	ErrStatusInvalidEvent   string = "INVALID_EVENT"
	ErrStatusSubmitFailed   string = "SUBMIT_FAILED"
	ErrStatusRoomClosed     string = "ROOM_CLOSED"
)

var ErrFailedToLoadRoom = errors.New("failed to load room")
