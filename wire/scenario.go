package wire

import (
	"context"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"golang.org/x/net/websocket"
)

// ErrTypeMsgSkip tags errors that mean a received message is not the
// one a receive step waits for, so the step keeps receiving.
const ErrTypeMsgSkip = "wire_msg_skip"

// Scenario is a scripted exchange over a client connection, used to
// test servers: a sequence of send and receive steps that runs in
// order and stops at the first failure.
type Scenario struct {
	conn  *websocket.Conn
	steps []func(context.Context) error
}

func NewScenario(conn *websocket.Conn) *Scenario {
	return &Scenario{conn: conn}
}

// Send appends a step that encodes and sends the returned payload.
func (s *Scenario) Send(makePayload func() any) *Scenario {
	s.steps = append(s.steps, func(ctx context.Context) error {
		msg, err := MsgFrom(makePayload())
		if err != nil {
			return errors.New("encoding scenario message failed").Wrap(err)
		}
		if _, err := Send(s.conn, msg); err != nil {
			return errors.New("sending scenario message failed").Wrap(err)
		}
		return nil
	})
	return s
}

// Receive appends a step that consumes incoming messages until one
// passes every handler. A handler returning an ErrTypeMsgSkip error
// moves the step to the next incoming message; any other error aborts
// the scenario.
func (s *Scenario) Receive(handlers ...func(Msg) error) *Scenario {
	s.steps = append(s.steps, func(ctx context.Context) error {
		for {
			if err := ctx.Err(); err != nil {
				return err
			}

			if deadline, ok := ctx.Deadline(); ok {
				if err := s.conn.SetReadDeadline(deadline); err != nil {
					return errors.New("setting scenario read deadline failed").Wrap(err)
				}
			}

			msg, _, err := Receive(s.conn)
			if err != nil {
				return errors.New("receiving scenario message failed").Wrap(err)
			}

			if err := runHandlers(msg, handlers); err != nil {
				if errors.IsType(err, ErrTypeMsgSkip) {
					continue
				}
				return err
			}
			return nil
		}
	})
	return s
}

// Run executes the scenario steps in order.
func (s *Scenario) Run(ctx context.Context) error {
	for _, step := range s.steps {
		if err := step(ctx); err != nil {
			return err
		}
	}
	return nil
}

func runHandlers(msg Msg, handlers []func(Msg) error) error {
	for _, h := range handlers {
		if err := h(msg); err != nil {
			return err
		}
	}
	return nil
}

// FilterByType skips messages of any other type.
func FilterByType(t MsgType) func(Msg) error {
	return func(msg Msg) error {
		if msg.Type != t {
			return errors.New("skipping message").
				WithType(ErrTypeMsgSkip).
				WithTag("msg_type", msg.Type).
				WithTag("waiting_for", t)
		}
		return nil
	}
}

// FilterByRequestID skips messages that do not answer the given
// request.
func FilterByRequestID(id uint32) func(Msg) error {
	return func(msg Msg) error {
		var res Response
		if err := msg.DataTo(&res); err != nil {
			return err
		}
		if res.RequestID != id {
			return errors.New("skipping message").
				WithType(ErrTypeMsgSkip).
				WithTag("msg_type", msg.Type).
				WithTag("request_id", res.RequestID).
				WithTag("waiting_for", id)
		}
		return nil
	}
}
