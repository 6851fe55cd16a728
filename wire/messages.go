package wire

import (
	"time"

	"github.com/aukilabs/raido/geom"
)

// Shape kinds accepted in a ShapeSpec.
const (
	ShapeKindSphere = "sphere"
	ShapeKindBox    = "box"
)

// ShapeSpec is the wire form of an object's geometry. Kind selects
// which of the remaining fields are meaningful: sphere uses center and
// radius, box uses min and max.
type ShapeSpec struct {
	Kind   string     `json:"kind"`
	Center *geom.Vec3 `json:"center,omitempty"`
	Radius float64    `json:"radius,omitempty"`
	Min    *geom.Vec3 `json:"min,omitempty"`
	Max    *geom.Vec3 `json:"max,omitempty"`
}

// ObjectSnapshot is the wire form of a stored object.
type ObjectSnapshot struct {
	ID     uint32    `json:"id"`
	Shape  ShapeSpec `json:"shape"`
	Bounds geom.BBox `json:"bounds"`
}

type Request struct {
	Type      MsgType   `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	RequestID uint32    `json:"request_id"`
}

type Response struct {
	Type      MsgType   `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	RequestID uint32    `json:"request_id"`
}

type ErrorResponse struct {
	Type      MsgType   `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	RequestID uint32    `json:"request_id,omitempty"`
	Code      ErrorCode `json:"code"`
}

type SyncClock struct {
	Type      MsgType   `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// SceneJoinRequest joins the scene with the given global id, or a newly
// created scene when the id is empty.
type SceneJoinRequest struct {
	Type      MsgType   `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	RequestID uint32    `json:"request_id"`
	SceneID   string    `json:"scene_id,omitempty"`
}

type SceneJoinResponse struct {
	Type          MsgType   `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	RequestID     uint32    `json:"request_id"`
	SceneID       string    `json:"scene_id"`
	SceneUUID     string    `json:"scene_uuid"`
	ParticipantID uint32    `json:"participant_id"`
}

// SceneState describes the joined scene to a fresh participant.
type SceneState struct {
	Type           MsgType          `json:"type"`
	Timestamp      time.Time        `json:"timestamp"`
	ParticipantIDs []uint32         `json:"participant_ids"`
	Objects        []ObjectSnapshot `json:"objects"`
}

type ParticipantJoinBroadcast struct {
	Type            MsgType   `json:"type"`
	Timestamp       time.Time `json:"timestamp"`
	OriginTimestamp time.Time `json:"origin_timestamp"`
	ParticipantID   uint32    `json:"participant_id"`
}

type ParticipantLeaveBroadcast struct {
	Type            MsgType   `json:"type"`
	Timestamp       time.Time `json:"timestamp"`
	OriginTimestamp time.Time `json:"origin_timestamp"`
	ParticipantID   uint32    `json:"participant_id"`
}

type ObjectAddRequest struct {
	Type      MsgType   `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	RequestID uint32    `json:"request_id"`
	Shape     ShapeSpec `json:"shape"`
}

type ObjectAddResponse struct {
	Type      MsgType   `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	RequestID uint32    `json:"request_id"`
	ObjectID  uint32    `json:"object_id"`
}

type ObjectAddBroadcast struct {
	Type            MsgType        `json:"type"`
	Timestamp       time.Time      `json:"timestamp"`
	OriginTimestamp time.Time      `json:"origin_timestamp"`
	Object          ObjectSnapshot `json:"object"`
}

type ObjectListRequest struct {
	Type      MsgType   `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	RequestID uint32    `json:"request_id"`
}

type ObjectListResponse struct {
	Type      MsgType          `json:"type"`
	Timestamp time.Time        `json:"timestamp"`
	RequestID uint32           `json:"request_id"`
	Objects   []ObjectSnapshot `json:"objects"`
}

// RaycastRequest asks for the objects whose bounds the ray crosses.
// Limit caps the number of returned hits; zero means no cap.
type RaycastRequest struct {
	Type      MsgType   `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	RequestID uint32    `json:"request_id"`
	Origin    geom.Vec3 `json:"origin"`
	Direction geom.Vec3 `json:"direction"`
	Limit     int       `json:"limit,omitempty"`
}

// RaycastResponse carries candidate hits: objects whose bounding box
// the ray crosses, in traversal order. A candidate is not a guaranteed
// hit on the exact shape.
type RaycastResponse struct {
	Type      MsgType          `json:"type"`
	Timestamp time.Time        `json:"timestamp"`
	RequestID uint32           `json:"request_id"`
	Hits      []ObjectSnapshot `json:"hits"`
}
