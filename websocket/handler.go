package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/aukilabs/raido/models"
	"github.com/aukilabs/raido/wire"
	"golang.org/x/net/websocket"
)

const (
	sendChanSize    = 512
	receiveChanSize = 512
)

// Handler represents a raido handler.
type Handler interface {
	// Handles a ping request.
	HandlePing(ctx context.Context, respond wire.ResponseSender, msg wire.Msg) error

	// Handles a client connection.
	HandleConnect(conn *websocket.Conn)

	// Handles a request to join a scene.
	HandleSceneJoin(ctx context.Context, respond wire.ResponseSender, msg wire.Msg) error

	// Handles a client's disconnection.
	HandleDisconnect(error)

	// Handles a request to add an object to the joined scene.
	HandleObjectAdd(ctx context.Context, respond wire.ResponseSender, msg wire.Msg) error

	// Handles a request to list the objects stored in the joined scene.
	HandleObjectList(ctx context.Context, respond wire.ResponseSender, msg wire.Msg) error

	// Handles a ray query against the joined scene's spatial index.
	HandleRaycast(ctx context.Context, respond wire.ResponseSender, msg wire.Msg) error

	// Sends a sync clock message to the client.
	SendSyncClock(ctx context.Context, send wire.ResponseSender) error

	// Creates a message receiver used to receive incoming messages.
	Receiver() wire.Receiver

	// Creates a message sender passed in service methods in order to send
	// messages.
	Sender() wire.Sender

	// Closes the service and releases its allocated resources.
	Close()

	// The interval between each sync clock message sent to the connected
	// client.
	SyncClockInterval() time.Duration

	// The time a client is idle before being disconnected.
	IdleTimeout() time.Duration

	// Returns the scene store.
	GetScenes() *models.SceneStore

	// The currently joined scene.
	CurrentScene() *models.Scene

	// The current participant.
	CurrentParticipant() *models.Participant

	// Get ClientID
	GetClientID() string
}

// Handle handles the given service.
func Handle(ctx context.Context, conn *websocket.Conn, h Handler) {
	handler := handler{
		Conn:    conn,
		Handler: h,
	}

	handler.Handle(ctx)
}

type handler struct {
	// The WebSocket connection.
	Conn *websocket.Conn

	// The raido handler.
	Handler Handler

	sendChan       chan wire.Msg
	sender         wire.Sender
	receiveChan    chan wire.Msg
	receiver       wire.Receiver
	disconnectChan chan error
}

func (h *handler) Handle(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	h.Handler.HandleConnect(h.Conn)

	h.disconnectChan = make(chan error, 8)
	defer func() {
		for len(h.disconnectChan) != 0 {
			<-h.disconnectChan
		}
	}()

	var wg sync.WaitGroup

	h.sendChan = make(chan wire.Msg, sendChanSize)
	h.sender = h.Handler.Sender()

	wg.Add(1)
	go func() {
		defer wg.Done()
		h.startSending(ctx)
	}()

	h.receiveChan = make(chan wire.Msg, receiveChanSize)
	h.receiver = h.Handler.Receiver()

	wg.Add(1)
	go func() {
		defer wg.Done()
		h.startReceiving(ctx)
	}()

	idleTimeout := h.Handler.IdleTimeout()
	idleTimer := time.NewTimer(idleTimeout)
	defer idleTimer.Stop()

	syncClockTicker := time.NewTicker(h.Handler.SyncClockInterval())
	defer syncClockTicker.Stop()

	var responder = responseSender{
		send:    h.send,
		sendMsg: h.sendMsg,
	}

	for ctx.Err() == nil {
		select {
		case <-ctx.Done():
			h.disconnect(ctx.Err())

		case <-idleTimer.C:
			h.disconnect(errors.New("idle connection").WithTag("duration", h.Handler.IdleTimeout()))

		case <-syncClockTicker.C:
			if err := h.Handler.SendSyncClock(ctx, responder); err != nil {
				h.disconnect(errors.New("sending sync clock failed").Wrap(err))
			}

		case msg := <-h.receiveChan:
			idleTimer.Stop()
			idleTimer.Reset(idleTimeout)

			if err := h.handleMessage(ctx, msg, responder); err != nil {
				h.disconnect(errors.New("handling message failed").Wrap(err))
			}

		case err := <-h.disconnectChan:
			h.handleDisconnect(err)
			if ctx.Err() == nil {
				// cancel context so go routines can cleanly exit
				cancel()
			}
		}
	}

	wg.Wait()
}

func (h *handler) send(v any) {
	msg, err := wire.MsgFrom(v)
	if err != nil {
		logs.WithTag("message", v).
			WithClientID(h.Handler.GetClientID()).
			Debug(err)
		return
	}
	h.sendChan <- msg
}

func (h *handler) sendMsg(msg wire.Msg) {
	h.sendChan <- msg
}

func (h *handler) startSending(ctx context.Context) {
	defer func() {
		for len(h.sendChan) != 0 {
			<-h.sendChan
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case msg := <-h.sendChan:
			if _, err := h.sender(msg); err != nil {
				h.disconnect(errors.New("sending message failed").Wrap(err))
				return
			}
		}
	}
}

func (h *handler) startReceiving(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		default:
			msg, _, err := h.receiver()
			if err != nil {
				h.disconnect(errors.New("receiving message failed").Wrap(err))
				return
			}

			select {
			case h.receiveChan <- msg:

			case <-ctx.Done():
				return
			}
		}
	}
}

func (h *handler) handleMessage(ctx context.Context, msg wire.Msg, responder wire.ResponseSender) error {
	switch msg.Type {
	case wire.MsgTypePingRequest:
		return h.Handler.HandlePing(ctx, responder, msg)

	case wire.MsgTypeSceneJoinRequest:
		return h.Handler.HandleSceneJoin(ctx, responder, msg)

	case wire.MsgTypeObjectAddRequest:
		return h.Handler.HandleObjectAdd(ctx, responder, msg)

	case wire.MsgTypeObjectListRequest:
		return h.Handler.HandleObjectList(ctx, responder, msg)

	case wire.MsgTypeRaycastRequest:
		return h.Handler.HandleRaycast(ctx, responder, msg)
	}

	return nil
}

func (h *handler) disconnect(err error) {
	h.disconnectChan <- err
}

func (h *handler) handleDisconnect(err error) {
	h.Conn.Close()
	h.Handler.HandleDisconnect(err)
}

type responseSender struct {
	send    func(any)
	sendMsg func(wire.Msg)
}

func (r responseSender) Send(v any) {
	r.send(v)
}

func (r responseSender) SendMsg(msg wire.Msg) {
	r.sendMsg(msg)
}
