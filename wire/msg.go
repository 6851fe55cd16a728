// Package wire defines the raido message schema and its codec: JSON
// payloads carried as binary WebSocket frames, routed by a type field
// every payload begins with.
package wire

import (
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/segmentio/encoding/json"
	"golang.org/x/net/websocket"
)

// MsgType identifies a message on the wire.
type MsgType string

const (
	MsgTypePingRequest  MsgType = "ping_request"
	MsgTypePingResponse MsgType = "ping_response"
	MsgTypeSyncClock    MsgType = "sync_clock"

	MsgTypeErrorResponse MsgType = "error_response"

	MsgTypeSceneJoinRequest          MsgType = "scene_join_request"
	MsgTypeSceneJoinResponse         MsgType = "scene_join_response"
	MsgTypeSceneState                MsgType = "scene_state"
	MsgTypeParticipantJoinBroadcast  MsgType = "participant_join_broadcast"
	MsgTypeParticipantLeaveBroadcast MsgType = "participant_leave_broadcast"

	MsgTypeObjectAddRequest   MsgType = "object_add_request"
	MsgTypeObjectAddResponse  MsgType = "object_add_response"
	MsgTypeObjectAddBroadcast MsgType = "object_add_broadcast"
	MsgTypeObjectListRequest  MsgType = "object_list_request"
	MsgTypeObjectListResponse MsgType = "object_list_response"

	MsgTypeRaycastRequest  MsgType = "raycast_request"
	MsgTypeRaycastResponse MsgType = "raycast_response"
)

// ErrorCode qualifies an ErrorResponse.
type ErrorCode string

const (
	ErrorCodeBadRequest          ErrorCode = "bad_request"
	ErrorCodeNotFound            ErrorCode = "not_found"
	ErrorCodeSceneAlreadyJoined  ErrorCode = "scene_already_joined"
	ErrorCodeTooLarge            ErrorCode = "too_large"
	ErrorCodeInternalServerError ErrorCode = "internal_server_error"
)

// ErrTypeSceneNotJoined tags errors raised when a client sends a
// message that requires a joined scene before joining one.
const ErrTypeSceneNotJoined = "scene_not_joined"

// Msg is a message as it travels on the wire: its routing type and the
// raw frame it was decoded from. Time is the local receive time and is
// zero on outgoing messages.
type Msg struct {
	Type MsgType
	Data []byte
	Time time.Time
}

// DataTo decodes the message payload into the given value.
func (m Msg) DataTo(v any) error {
	if err := json.Unmarshal(m.Data, v); err != nil {
		return errors.New("decoding message payload failed").
			WithTag("msg_type", m.Type).
			Wrap(err)
	}
	return nil
}

func (m Msg) TypeString() string {
	return string(m.Type)
}

type envelope struct {
	Type MsgType `json:"type"`
}

// MsgFrom encodes a payload and peeks its type field, so the result can
// be routed without decoding the body again.
func MsgFrom(v any) (Msg, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Msg{}, errors.New("encoding message payload failed").Wrap(err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Msg{}, errors.New("decoding message envelope failed").Wrap(err)
	}
	if env.Type == "" {
		return Msg{}, errors.New("message payload has no type")
	}

	return Msg{Type: env.Type, Data: data}, nil
}

// Send writes the message to the connection as a single binary frame
// and returns the number of bytes sent.
func Send(conn *websocket.Conn, msg Msg) (int, error) {
	if err := websocket.Message.Send(conn, msg.Data); err != nil {
		return 0, errors.New("sending websocket message failed").
			WithTag("msg_type", msg.Type).
			Wrap(err)
	}
	return len(msg.Data), nil
}

// Receive blocks until a frame arrives and decodes its envelope. The
// returned byte count is the frame size, reported even when the
// envelope is unreadable.
func Receive(conn *websocket.Conn) (Msg, int, error) {
	var data []byte
	if err := websocket.Message.Receive(conn, &data); err != nil {
		return Msg{}, 0, errors.New("receiving websocket message failed").Wrap(err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Msg{}, len(data), errors.New("decoding message envelope failed").Wrap(err)
	}

	return Msg{
		Type: env.Type,
		Data: data,
		Time: time.Now(),
	}, len(data), nil
}

// Receiver is a function that blocks until a message is received.
type Receiver func() (Msg, int, error)

// Sender is a function that sends a message and reports its size.
type Sender func(Msg) (int, error)

// ResponseSender queues messages for delivery to one client. Both
// methods are fire and forget: encoding failures are logged by the
// implementation, not surfaced to the caller.
type ResponseSender interface {
	// Encodes and queues a payload.
	Send(v any)

	// Queues an already encoded message.
	SendMsg(Msg)
}
