package websocket

import (
	"context"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/raido/featureflag"
	"github.com/aukilabs/raido/geom"
	raidohttp "github.com/aukilabs/raido/http"
	"github.com/aukilabs/raido/models"
	"github.com/aukilabs/raido/wire"
	"golang.org/x/net/websocket"
)

// The number of candidates a single raycast is allowed to ask for.
const raycastLimitMax = 4096

// RealtimeHandler represents a service that manages multiple client
// connections and relays scene changes in realtime.
type RealtimeHandler struct {
	// The interval between each sync clock message sent to the connected
	// client.
	ClientSyncClockInterval time.Duration

	// The time a client is idle before being disconnected.
	ClientIdleTimeout time.Duration

	// The store that contains all the server scenes.
	Scenes *models.SceneStore

	FeatureFlags featureflag.FeatureFlag

	conn               *websocket.Conn
	currentScene       *models.Scene
	currentParticipant *models.Participant

	clientID string
}

func (h *RealtimeHandler) HandleConnect(conn *websocket.Conn) {
	req := conn.Request()
	h.clientID = req.Header.Get(raidohttp.HeaderClientID)

	h.conn = conn
}

func (h *RealtimeHandler) HandlePing(ctx context.Context, respond wire.ResponseSender, msg wire.Msg) error {
	var req wire.Request
	if err := msg.DataTo(&req); err != nil {
		return err
	}

	respond.Send(wire.Response{
		Type:      wire.MsgTypePingResponse,
		Timestamp: time.Now(),
		RequestID: req.RequestID,
	})
	return nil
}

func (h *RealtimeHandler) HandleSceneJoin(ctx context.Context, respond wire.ResponseSender, msg wire.Msg) error {
	var req wire.SceneJoinRequest
	if err := msg.DataTo(&req); err != nil {
		return err
	}

	if h.currentScene != nil && h.Scenes.GlobalSceneID(h.currentScene.ID) == req.SceneID {
		respond.Send(wire.ErrorResponse{
			Type:      wire.MsgTypeErrorResponse,
			Timestamp: time.Now(),
			RequestID: req.RequestID,
			Code:      wire.ErrorCodeSceneAlreadyJoined,
		})
		return nil
	}

	if h.currentParticipant != nil {
		h.leaveScene()
	}

	scene, ok := h.Scenes.GetByGlobalID(req.SceneID)
	if !ok && req.SceneID != "" {
		respond.Send(wire.ErrorResponse{
			Type:      wire.MsgTypeErrorResponse,
			Timestamp: time.Now(),
			RequestID: req.RequestID,
			Code:      wire.ErrorCodeNotFound,
		})
		return nil
	}

	if !ok {
		scene = models.NewScene(h.Scenes.NewID())
		if err := h.Scenes.Add(ctx, scene); err != nil {
			respond.Send(wire.ErrorResponse{
				Type:      wire.MsgTypeErrorResponse,
				Timestamp: time.Now(),
				RequestID: req.RequestID,
				Code:      wire.ErrorCodeInternalServerError,
			})
			return nil
		}
	}

	participant := &models.Participant{
		ID:        scene.NewParticipantID(),
		Responder: respond,
	}

	scene.AddParticipant(participant)

	respond.Send(wire.SceneJoinResponse{
		Type:          wire.MsgTypeSceneJoinResponse,
		Timestamp:     time.Now(),
		RequestID:     req.RequestID,
		SceneID:       h.Scenes.GlobalSceneID(scene.ID),
		SceneUUID:     scene.SceneUUID,
		ParticipantID: participant.ID,
	})

	h.currentScene = scene
	h.currentParticipant = participant

	h.FeatureFlags.IfNotSet(featureflag.FlagDisableSceneState, func() {
		respond.Send(wire.SceneState{
			Type:           wire.MsgTypeSceneState,
			Timestamp:      time.Now(),
			ParticipantIDs: models.ParticipantIDs(scene.GetParticipants()),
			Objects:        models.ObjectsToSnapshots(scene.Objects()),
		})
	})

	h.FeatureFlags.IfNotSet(featureflag.FlagDisableParticipantJoinBroadcast, func() {
		scene.Broadcast(participant, wire.ParticipantJoinBroadcast{
			Type:            wire.MsgTypeParticipantJoinBroadcast,
			Timestamp:       time.Now(),
			OriginTimestamp: req.Timestamp,
			ParticipantID:   participant.ID,
		})
	})

	return nil
}

func (h *RealtimeHandler) HandleDisconnect(_ error) {
	if h.currentParticipant != nil {
		h.leaveScene()
	}
}

func (h *RealtimeHandler) HandleObjectAdd(ctx context.Context, respond wire.ResponseSender, msg wire.Msg) error {
	var req wire.ObjectAddRequest
	if err := msg.DataTo(&req); err != nil {
		return err
	}

	participant := h.currentParticipant
	scene := h.currentScene
	if participant == nil || scene == nil {
		return errors.New("scene not joined").
			WithType(wire.ErrTypeSceneNotJoined).
			WithTag("msg_type", msg.Type)
	}

	shape, err := models.ShapeFromSpec(req.Shape)
	if err != nil {
		respond.Send(wire.ErrorResponse{
			Type:      wire.MsgTypeErrorResponse,
			Timestamp: time.Now(),
			RequestID: req.RequestID,
			Code:      wire.ErrorCodeBadRequest,
		})
		return nil
	}

	object := &models.Object{
		ID:    scene.NewObjectID(),
		Shape: shape,
	}

	scene.AddObject(object)

	now := time.Now()

	respond.Send(wire.ObjectAddResponse{
		Type:      wire.MsgTypeObjectAddResponse,
		Timestamp: now,
		RequestID: req.RequestID,
		ObjectID:  object.ID,
	})

	h.FeatureFlags.IfNotSet(featureflag.FlagDisableObjectAddBroadcast, func() {
		scene.Broadcast(participant, wire.ObjectAddBroadcast{
			Type:            wire.MsgTypeObjectAddBroadcast,
			Timestamp:       now,
			OriginTimestamp: req.Timestamp,
			Object:          object.Snapshot(),
		})
	})

	return nil
}

func (h *RealtimeHandler) HandleObjectList(ctx context.Context, respond wire.ResponseSender, msg wire.Msg) error {
	var req wire.ObjectListRequest
	if err := msg.DataTo(&req); err != nil {
		return err
	}

	scene := h.CurrentScene()
	if scene == nil {
		return errors.New("scene not joined").
			WithType(wire.ErrTypeSceneNotJoined).
			WithTag("msg_type", msg.Type)
	}

	respond.Send(wire.ObjectListResponse{
		Type:      wire.MsgTypeObjectListResponse,
		Timestamp: time.Now(),
		RequestID: req.RequestID,
		Objects:   models.ObjectsToSnapshots(scene.Objects()),
	})
	return nil
}

func (h *RealtimeHandler) HandleRaycast(ctx context.Context, respond wire.ResponseSender, msg wire.Msg) error {
	var req wire.RaycastRequest
	if err := msg.DataTo(&req); err != nil {
		return err
	}

	scene := h.CurrentScene()
	if scene == nil {
		return errors.New("scene not joined").
			WithType(wire.ErrTypeSceneNotJoined).
			WithTag("msg_type", msg.Type)
	}

	if req.Direction == (geom.Vec3{}) {
		respond.Send(wire.ErrorResponse{
			Type:      wire.MsgTypeErrorResponse,
			Timestamp: time.Now(),
			RequestID: req.RequestID,
			Code:      wire.ErrorCodeBadRequest,
		})
		return nil
	}

	if req.Limit > raycastLimitMax {
		respond.Send(wire.ErrorResponse{
			Type:      wire.MsgTypeErrorResponse,
			Timestamp: time.Now(),
			RequestID: req.RequestID,
			Code:      wire.ErrorCodeTooLarge,
		})
		return nil
	}

	hits := scene.Raycast(geom.NewRay(req.Origin, req.Direction), req.Limit)

	respond.Send(wire.RaycastResponse{
		Type:      wire.MsgTypeRaycastResponse,
		Timestamp: time.Now(),
		RequestID: req.RequestID,
		Hits:      models.ObjectsToSnapshots(hits),
	})
	return nil
}

func (h *RealtimeHandler) SendSyncClock(ctx context.Context, respond wire.ResponseSender) error {
	respond.Send(wire.SyncClock{
		Type:      wire.MsgTypeSyncClock,
		Timestamp: time.Now(),
	})
	return nil
}

func (h *RealtimeHandler) Receiver() wire.Receiver {
	return func() (wire.Msg, int, error) {
		return wire.Receive(h.conn)
	}
}

func (h *RealtimeHandler) Sender() wire.Sender {
	return func(msg wire.Msg) (int, error) {
		return wire.Send(h.conn, msg)
	}
}

func (h *RealtimeHandler) Close() {
}

func (h *RealtimeHandler) SyncClockInterval() time.Duration {
	return h.ClientSyncClockInterval
}

func (h *RealtimeHandler) IdleTimeout() time.Duration {
	return h.ClientIdleTimeout
}

func (h *RealtimeHandler) GetScenes() *models.SceneStore {
	return h.Scenes
}

func (h *RealtimeHandler) CurrentScene() *models.Scene {
	return h.currentScene
}

func (h *RealtimeHandler) CurrentParticipant() *models.Participant {
	return h.currentParticipant
}

func (h *RealtimeHandler) leaveScene() {
	scene := h.currentScene
	participant := h.currentParticipant

	if participant == nil || scene == nil {
		return
	}

	scene.RemoveParticipant(participant)

	now := time.Now()

	h.FeatureFlags.IfNotSet(featureflag.FlagDisableParticipantLeaveBroadcast, func() {
		scene.Broadcast(participant, wire.ParticipantLeaveBroadcast{
			Type:            wire.MsgTypeParticipantLeaveBroadcast,
			Timestamp:       now,
			OriginTimestamp: now,
			ParticipantID:   participant.ID,
		})
	})

	if scene.ParticipantCount() == 0 {
		// Here we use a context.Background to ensure the scene is removed
		// even when the connection context is already cancelled.
		h.Scenes.Remove(context.Background(), scene)
	}

	h.currentParticipant = nil
	h.currentScene = nil
}

func (h *RealtimeHandler) GetClientID() string {
	return h.clientID
}
