package wire

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/raido/geom"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"
)

func TestMsgFrom(t *testing.T) {
	t.Run("the payload type is peeked", func(t *testing.T) {
		msg, err := MsgFrom(Request{
			Type:      MsgTypePingRequest,
			Timestamp: time.Now(),
			RequestID: 42,
		})
		require.NoError(t, err)
		require.Equal(t, MsgTypePingRequest, msg.Type)
		require.Equal(t, "ping_request", msg.TypeString())
		require.NotEmpty(t, msg.Data)
	})

	t.Run("a payload without a type is rejected", func(t *testing.T) {
		_, err := MsgFrom(struct {
			Name string `json:"name"`
		}{Name: "odal"})
		require.Error(t, err)
	})

	t.Run("the payload survives the round trip", func(t *testing.T) {
		center := geom.NewVec3(100, 0, 0)
		msg, err := MsgFrom(ObjectAddRequest{
			Type:      MsgTypeObjectAddRequest,
			Timestamp: time.Now(),
			RequestID: 7,
			Shape: ShapeSpec{
				Kind:   ShapeKindSphere,
				Center: &center,
				Radius: 5,
			},
		})
		require.NoError(t, err)

		var req ObjectAddRequest
		require.NoError(t, msg.DataTo(&req))
		require.Equal(t, uint32(7), req.RequestID)
		require.Equal(t, ShapeKindSphere, req.Shape.Kind)
		require.Equal(t, center, *req.Shape.Center)
		require.Equal(t, 5.0, req.Shape.Radius)
		require.Nil(t, req.Shape.Min)
	})
}

func TestFilters(t *testing.T) {
	msg, err := MsgFrom(Response{
		Type:      MsgTypePingResponse,
		Timestamp: time.Now(),
		RequestID: 3,
	})
	require.NoError(t, err)

	t.Run("matching type passes", func(t *testing.T) {
		require.NoError(t, FilterByType(MsgTypePingResponse)(msg))
	})

	t.Run("other types are skipped", func(t *testing.T) {
		err := FilterByType(MsgTypeSyncClock)(msg)
		require.Error(t, err)
		require.True(t, errors.IsType(err, ErrTypeMsgSkip))
	})

	t.Run("matching request id passes", func(t *testing.T) {
		require.NoError(t, FilterByRequestID(3)(msg))
	})

	t.Run("other request ids are skipped", func(t *testing.T) {
		err := FilterByRequestID(4)(msg)
		require.Error(t, err)
		require.True(t, errors.IsType(err, ErrTypeMsgSkip))
	})
}

func TestScenario(t *testing.T) {
	server := httptest.NewServer(websocket.Server{
		Handshake: func(c *websocket.Config, r *http.Request) error {
			return nil
		},
		Handler: func(conn *websocket.Conn) {
			defer conn.Close()

			for {
				msg, _, err := Receive(conn)
				if err != nil {
					return
				}

				var req Request
				if err := msg.DataTo(&req); err != nil {
					return
				}

				// A clock tick lands before the answer, so receive
				// steps have something to skip.
				tick, _ := MsgFrom(SyncClock{
					Type:      MsgTypeSyncClock,
					Timestamp: time.Now(),
				})
				if _, err := Send(conn, tick); err != nil {
					return
				}

				res, _ := MsgFrom(Response{
					Type:      MsgTypePingResponse,
					Timestamp: time.Now(),
					RequestID: req.RequestID,
				})
				if _, err := Send(conn, res); err != nil {
					return
				}
			}
		},
	})
	defer server.Close()

	config, err := websocket.NewConfig(
		strings.ReplaceAll(server.URL, "http://", "ws://"),
		"http://localhost",
	)
	require.NoError(t, err)

	conn, err := websocket.DialConfig(config)
	require.NoError(t, err)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	err = NewScenario(conn).
		Send(func() any {
			return Request{
				Type:      MsgTypePingRequest,
				Timestamp: time.Now(),
				RequestID: 21,
			}
		}).
		Receive(
			FilterByType(MsgTypePingResponse),
			FilterByRequestID(21),
			func(msg Msg) error {
				require.NotZero(t, msg.Time)
				return nil
			},
		).
		Run(ctx)
	require.NoError(t, err)
}
