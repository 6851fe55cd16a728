package websocket

import (
	"context"
	"testing"
	"time"

	"github.com/aukilabs/raido/geom"
	"github.com/aukilabs/raido/wire"
	"github.com/stretchr/testify/require"
)

func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	t.Cleanup(cancel)
	return ctx
}

func joinScene(sceneID string, requestID uint32) func() any {
	return func() any {
		return wire.SceneJoinRequest{
			Type:      wire.MsgTypeSceneJoinRequest,
			Timestamp: time.Now(),
			RequestID: requestID,
			SceneID:   sceneID,
		}
	}
}

func addSphere(center geom.Vec3, radius float64, requestID uint32) func() any {
	return func() any {
		return wire.ObjectAddRequest{
			Type:      wire.MsgTypeObjectAddRequest,
			Timestamp: time.Now(),
			RequestID: requestID,
			Shape: wire.ShapeSpec{
				Kind:   wire.ShapeKindSphere,
				Center: &center,
				Radius: radius,
			},
		}
	}
}

func TestHandlerPing(t *testing.T) {
	clientA, _, closeEnv := NewTestingEnv(t, newTestHandler())
	defer closeEnv()

	ctx := testContext(t)

	err := wire.NewScenario(clientA).
		Send(func() any {
			return wire.Request{
				Type:      wire.MsgTypePingRequest,
				Timestamp: time.Now(),
				RequestID: 1,
			}
		}).
		Receive(
			wire.FilterByType(wire.MsgTypePingResponse),
			wire.FilterByRequestID(1),
			func(msg wire.Msg) error {
				require.NotZero(t, msg.Time)
				return nil
			},
		).
		Run(ctx)
	require.NoError(t, err)
}

func TestHandlerSceneJoin(t *testing.T) {
	t.Run("a scene is created and joined", func(t *testing.T) {
		clientA, _, closeEnv := NewTestingEnv(t, newTestHandler())
		defer closeEnv()

		ctx := testContext(t)

		err := wire.NewScenario(clientA).
			Send(joinScene("", 1)).
			Receive(
				wire.FilterByType(wire.MsgTypeSceneJoinResponse),
				wire.FilterByRequestID(1),
				func(msg wire.Msg) error {
					var res wire.SceneJoinResponse
					if err := msg.DataTo(&res); err != nil {
						return err
					}
					require.NotEmpty(t, res.SceneID)
					require.NotEmpty(t, res.SceneUUID)
					require.Equal(t, uint32(1), res.ParticipantID)
					return nil
				},
			).
			Receive(
				wire.FilterByType(wire.MsgTypeSceneState),
				func(msg wire.Msg) error {
					var state wire.SceneState
					if err := msg.DataTo(&state); err != nil {
						return err
					}
					require.Equal(t, []uint32{1}, state.ParticipantIDs)
					require.Empty(t, state.Objects)
					return nil
				},
			).
			Run(ctx)
		require.NoError(t, err)
	})

	t.Run("an existing scene is joined", func(t *testing.T) {
		clientA, clientB, closeEnv := NewTestingEnv(t, newTestHandler())
		defer closeEnv()

		ctx := testContext(t)

		var sceneID string
		err := wire.NewScenario(clientA).
			Send(joinScene("", 1)).
			Receive(
				wire.FilterByType(wire.MsgTypeSceneJoinResponse),
				func(msg wire.Msg) error {
					var res wire.SceneJoinResponse
					if err := msg.DataTo(&res); err != nil {
						return err
					}
					sceneID = res.SceneID
					return nil
				},
			).
			Run(ctx)
		require.NoError(t, err)

		err = wire.NewScenario(clientB).
			Send(joinScene(sceneID, 1)).
			Receive(
				wire.FilterByType(wire.MsgTypeSceneJoinResponse),
				func(msg wire.Msg) error {
					var res wire.SceneJoinResponse
					if err := msg.DataTo(&res); err != nil {
						return err
					}
					require.Equal(t, sceneID, res.SceneID)
					require.Equal(t, uint32(2), res.ParticipantID)
					return nil
				},
			).
			Receive(
				wire.FilterByType(wire.MsgTypeSceneState),
				func(msg wire.Msg) error {
					var state wire.SceneState
					if err := msg.DataTo(&state); err != nil {
						return err
					}
					require.ElementsMatch(t, []uint32{1, 2}, state.ParticipantIDs)
					return nil
				},
			).
			Run(ctx)
		require.NoError(t, err)

		err = wire.NewScenario(clientA).
			Receive(
				wire.FilterByType(wire.MsgTypeParticipantJoinBroadcast),
				func(msg wire.Msg) error {
					var broadcast wire.ParticipantJoinBroadcast
					if err := msg.DataTo(&broadcast); err != nil {
						return err
					}
					require.Equal(t, uint32(2), broadcast.ParticipantID)
					return nil
				},
			).
			Run(ctx)
		require.NoError(t, err)
	})

	t.Run("joining the same scene twice fails", func(t *testing.T) {
		clientA, _, closeEnv := NewTestingEnv(t, newTestHandler())
		defer closeEnv()

		ctx := testContext(t)

		var sceneID string
		err := wire.NewScenario(clientA).
			Send(joinScene("", 1)).
			Receive(
				wire.FilterByType(wire.MsgTypeSceneJoinResponse),
				func(msg wire.Msg) error {
					var res wire.SceneJoinResponse
					if err := msg.DataTo(&res); err != nil {
						return err
					}
					sceneID = res.SceneID
					return nil
				},
			).
			Run(ctx)
		require.NoError(t, err)

		err = wire.NewScenario(clientA).
			Send(joinScene(sceneID, 2)).
			Receive(
				wire.FilterByType(wire.MsgTypeErrorResponse),
				wire.FilterByRequestID(2),
				func(msg wire.Msg) error {
					var res wire.ErrorResponse
					if err := msg.DataTo(&res); err != nil {
						return err
					}
					require.Equal(t, wire.ErrorCodeSceneAlreadyJoined, res.Code)
					return nil
				},
			).
			Run(ctx)
		require.NoError(t, err)
	})

	t.Run("joining an unknown scene fails", func(t *testing.T) {
		clientA, _, closeEnv := NewTestingEnv(t, newTestHandler())
		defer closeEnv()

		ctx := testContext(t)

		err := wire.NewScenario(clientA).
			Send(joinScene("t01xdead", 1)).
			Receive(
				wire.FilterByType(wire.MsgTypeErrorResponse),
				wire.FilterByRequestID(1),
				func(msg wire.Msg) error {
					var res wire.ErrorResponse
					if err := msg.DataTo(&res); err != nil {
						return err
					}
					require.Equal(t, wire.ErrorCodeNotFound, res.Code)
					return nil
				},
			).
			Run(ctx)
		require.NoError(t, err)
	})

	t.Run("joining another scene leaves the current one", func(t *testing.T) {
		clientA, clientB, closeEnv := NewTestingEnv(t, newTestHandler())
		defer closeEnv()

		ctx := testContext(t)

		var sceneID string
		err := wire.NewScenario(clientA).
			Send(joinScene("", 1)).
			Receive(
				wire.FilterByType(wire.MsgTypeSceneJoinResponse),
				func(msg wire.Msg) error {
					var res wire.SceneJoinResponse
					if err := msg.DataTo(&res); err != nil {
						return err
					}
					sceneID = res.SceneID
					return nil
				},
			).
			Run(ctx)
		require.NoError(t, err)

		err = wire.NewScenario(clientB).
			Send(joinScene(sceneID, 1)).
			Receive(wire.FilterByType(wire.MsgTypeSceneJoinResponse)).
			Send(joinScene("", 2)).
			Receive(wire.FilterByType(wire.MsgTypeSceneJoinResponse), wire.FilterByRequestID(2)).
			Run(ctx)
		require.NoError(t, err)

		err = wire.NewScenario(clientA).
			Receive(
				wire.FilterByType(wire.MsgTypeParticipantLeaveBroadcast),
				func(msg wire.Msg) error {
					var broadcast wire.ParticipantLeaveBroadcast
					if err := msg.DataTo(&broadcast); err != nil {
						return err
					}
					require.Equal(t, uint32(2), broadcast.ParticipantID)
					return nil
				},
			).
			Run(ctx)
		require.NoError(t, err)
	})
}

func TestHandlerObjectAdd(t *testing.T) {
	t.Run("an object is added to the joined scene", func(t *testing.T) {
		clientA, _, closeEnv := NewTestingEnv(t, newTestHandler())
		defer closeEnv()

		ctx := testContext(t)

		err := wire.NewScenario(clientA).
			Send(joinScene("", 1)).
			Receive(wire.FilterByType(wire.MsgTypeSceneJoinResponse)).
			Send(addSphere(geom.NewVec3(100, 0, 0), 5, 2)).
			Receive(
				wire.FilterByType(wire.MsgTypeObjectAddResponse),
				wire.FilterByRequestID(2),
				func(msg wire.Msg) error {
					var res wire.ObjectAddResponse
					if err := msg.DataTo(&res); err != nil {
						return err
					}
					require.Equal(t, uint32(1), res.ObjectID)
					return nil
				},
			).
			Send(func() any {
				boxMin := geom.NewVec3(0, 0, 0)
				boxMax := geom.NewVec3(1, 1, 1)
				return wire.ObjectAddRequest{
					Type:      wire.MsgTypeObjectAddRequest,
					Timestamp: time.Now(),
					RequestID: 3,
					Shape: wire.ShapeSpec{
						Kind: wire.ShapeKindBox,
						Min:  &boxMin,
						Max:  &boxMax,
					},
				}
			}).
			Receive(
				wire.FilterByType(wire.MsgTypeObjectAddResponse),
				wire.FilterByRequestID(3),
				func(msg wire.Msg) error {
					var res wire.ObjectAddResponse
					if err := msg.DataTo(&res); err != nil {
						return err
					}
					require.Equal(t, uint32(2), res.ObjectID)
					return nil
				},
			).
			Run(ctx)
		require.NoError(t, err)
	})

	t.Run("the added object is broadcasted", func(t *testing.T) {
		clientA, clientB, closeEnv := NewTestingEnv(t, newTestHandler())
		defer closeEnv()

		ctx := testContext(t)

		var sceneID string
		err := wire.NewScenario(clientA).
			Send(joinScene("", 1)).
			Receive(
				wire.FilterByType(wire.MsgTypeSceneJoinResponse),
				func(msg wire.Msg) error {
					var res wire.SceneJoinResponse
					if err := msg.DataTo(&res); err != nil {
						return err
					}
					sceneID = res.SceneID
					return nil
				},
			).
			Run(ctx)
		require.NoError(t, err)

		err = wire.NewScenario(clientB).
			Send(joinScene(sceneID, 1)).
			Receive(wire.FilterByType(wire.MsgTypeSceneJoinResponse)).
			Run(ctx)
		require.NoError(t, err)

		err = wire.NewScenario(clientA).
			Send(addSphere(geom.NewVec3(100, 0, 0), 5, 2)).
			Receive(wire.FilterByType(wire.MsgTypeObjectAddResponse), wire.FilterByRequestID(2)).
			Run(ctx)
		require.NoError(t, err)

		err = wire.NewScenario(clientB).
			Receive(
				wire.FilterByType(wire.MsgTypeObjectAddBroadcast),
				func(msg wire.Msg) error {
					var broadcast wire.ObjectAddBroadcast
					if err := msg.DataTo(&broadcast); err != nil {
						return err
					}
					require.Equal(t, uint32(1), broadcast.Object.ID)
					require.Equal(t, wire.ShapeKindSphere, broadcast.Object.Shape.Kind)
					require.Equal(t, geom.NewVec3(95, -5, -5), broadcast.Object.Bounds.Min)
					require.Equal(t, geom.NewVec3(105, 5, 5), broadcast.Object.Bounds.Max)
					return nil
				},
			).
			Run(ctx)
		require.NoError(t, err)
	})

	t.Run("a malformed shape is rejected", func(t *testing.T) {
		clientA, _, closeEnv := NewTestingEnv(t, newTestHandler())
		defer closeEnv()

		ctx := testContext(t)

		err := wire.NewScenario(clientA).
			Send(joinScene("", 1)).
			Receive(wire.FilterByType(wire.MsgTypeSceneJoinResponse)).
			Send(addSphere(geom.NewVec3(0, 0, 0), 0, 2)).
			Receive(
				wire.FilterByType(wire.MsgTypeErrorResponse),
				wire.FilterByRequestID(2),
				func(msg wire.Msg) error {
					var res wire.ErrorResponse
					if err := msg.DataTo(&res); err != nil {
						return err
					}
					require.Equal(t, wire.ErrorCodeBadRequest, res.Code)
					return nil
				},
			).
			Send(func() any {
				return wire.ObjectAddRequest{
					Type:      wire.MsgTypeObjectAddRequest,
					Timestamp: time.Now(),
					RequestID: 3,
					Shape:     wire.ShapeSpec{Kind: "torus"},
				}
			}).
			Receive(
				wire.FilterByType(wire.MsgTypeErrorResponse),
				wire.FilterByRequestID(3),
			).
			Run(ctx)
		require.NoError(t, err)
	})

	t.Run("adding an object without a scene disconnects the client", func(t *testing.T) {
		clientA, _, closeEnv := NewTestingEnv(t, newTestHandler())
		defer closeEnv()

		ctx := testContext(t)

		err := wire.NewScenario(clientA).
			Send(addSphere(geom.NewVec3(0, 0, 0), 1, 1)).
			Receive(wire.FilterByType(wire.MsgTypeObjectAddResponse)).
			Run(ctx)
		require.Error(t, err)
	})
}

func TestHandlerObjectList(t *testing.T) {
	t.Run("objects are listed", func(t *testing.T) {
		clientA, _, closeEnv := NewTestingEnv(t, newTestHandler())
		defer closeEnv()

		ctx := testContext(t)

		err := wire.NewScenario(clientA).
			Send(joinScene("", 1)).
			Receive(wire.FilterByType(wire.MsgTypeSceneJoinResponse)).
			Send(addSphere(geom.NewVec3(100, 0, 0), 5, 2)).
			Receive(wire.FilterByType(wire.MsgTypeObjectAddResponse), wire.FilterByRequestID(2)).
			Send(addSphere(geom.NewVec3(120, 0, 0), 15, 3)).
			Receive(wire.FilterByType(wire.MsgTypeObjectAddResponse), wire.FilterByRequestID(3)).
			Send(func() any {
				return wire.ObjectListRequest{
					Type:      wire.MsgTypeObjectListRequest,
					Timestamp: time.Now(),
					RequestID: 4,
				}
			}).
			Receive(
				wire.FilterByType(wire.MsgTypeObjectListResponse),
				wire.FilterByRequestID(4),
				func(msg wire.Msg) error {
					var res wire.ObjectListResponse
					if err := msg.DataTo(&res); err != nil {
						return err
					}
					require.Len(t, res.Objects, 2)

					ids := make([]uint32, 0, len(res.Objects))
					for _, o := range res.Objects {
						ids = append(ids, o.ID)
					}
					require.ElementsMatch(t, []uint32{1, 2}, ids)
					return nil
				},
			).
			Run(ctx)
		require.NoError(t, err)
	})

	t.Run("listing without a scene disconnects the client", func(t *testing.T) {
		clientA, _, closeEnv := NewTestingEnv(t, newTestHandler())
		defer closeEnv()

		ctx := testContext(t)

		err := wire.NewScenario(clientA).
			Send(func() any {
				return wire.ObjectListRequest{
					Type:      wire.MsgTypeObjectListRequest,
					Timestamp: time.Now(),
					RequestID: 1,
				}
			}).
			Receive(wire.FilterByType(wire.MsgTypeObjectListResponse)).
			Run(ctx)
		require.Error(t, err)
	})
}

func TestHandlerRaycast(t *testing.T) {
	clientA, clientB, closeEnv := NewTestingEnv(t, newTestHandler())
	defer closeEnv()

	ctx := testContext(t)

	scenario := wire.NewScenario(clientA).
		Send(joinScene("", 1)).
		Receive(wire.FilterByType(wire.MsgTypeSceneJoinResponse), wire.FilterByRequestID(1))

	for i := 0; i < 6; i++ {
		requestID := uint32(2 + i)
		scenario = scenario.
			Send(addSphere(
				geom.NewVec3(float64(100+20*i), 0, 0),
				float64(5+10*i),
				requestID,
			)).
			Receive(wire.FilterByType(wire.MsgTypeObjectAddResponse), wire.FilterByRequestID(requestID))
	}

	err := scenario.Run(ctx)
	require.NoError(t, err)

	raycast := func(origin, direction geom.Vec3, limit int, requestID uint32) func() any {
		return func() any {
			return wire.RaycastRequest{
				Type:      wire.MsgTypeRaycastRequest,
				Timestamp: time.Now(),
				RequestID: requestID,
				Origin:    origin,
				Direction: direction,
				Limit:     limit,
			}
		}
	}

	radiiOf := func(hits []wire.ObjectSnapshot) []float64 {
		radii := make([]float64, 0, len(hits))
		for _, hit := range hits {
			radii = append(radii, hit.Shape.Radius)
		}
		return radii
	}

	t.Run("a ray along the axis returns every sphere", func(t *testing.T) {
		err := wire.NewScenario(clientA).
			Send(raycast(geom.NewVec3(0, 0, 0), geom.NewVec3(1, 0, 0), 0, 8)).
			Receive(
				wire.FilterByType(wire.MsgTypeRaycastResponse),
				wire.FilterByRequestID(8),
				func(msg wire.Msg) error {
					var res wire.RaycastResponse
					if err := msg.DataTo(&res); err != nil {
						return err
					}
					require.ElementsMatch(t, []float64{5, 15, 25, 35, 45, 55}, radiiOf(res.Hits))
					return nil
				},
			).
			Run(ctx)
		require.NoError(t, err)
	})

	t.Run("an inclined ray passes over the smallest sphere", func(t *testing.T) {
		err := wire.NewScenario(clientA).
			Send(raycast(geom.NewVec3(0, 0, 0), geom.NewVec3(1, 0.055, 0), 0, 9)).
			Receive(
				wire.FilterByType(wire.MsgTypeRaycastResponse),
				wire.FilterByRequestID(9),
				func(msg wire.Msg) error {
					var res wire.RaycastResponse
					if err := msg.DataTo(&res); err != nil {
						return err
					}
					require.ElementsMatch(t, []float64{15, 25, 35, 45, 55}, radiiOf(res.Hits))
					return nil
				},
			).
			Run(ctx)
		require.NoError(t, err)
	})

	t.Run("the limit caps the candidates", func(t *testing.T) {
		err := wire.NewScenario(clientA).
			Send(raycast(geom.NewVec3(0, 0, 0), geom.NewVec3(1, 0, 0), 3, 10)).
			Receive(
				wire.FilterByType(wire.MsgTypeRaycastResponse),
				wire.FilterByRequestID(10),
				func(msg wire.Msg) error {
					var res wire.RaycastResponse
					if err := msg.DataTo(&res); err != nil {
						return err
					}
					require.Len(t, res.Hits, 3)
					return nil
				},
			).
			Run(ctx)
		require.NoError(t, err)
	})

	t.Run("a zero direction is rejected", func(t *testing.T) {
		err := wire.NewScenario(clientA).
			Send(raycast(geom.NewVec3(0, 0, 0), geom.NewVec3(0, 0, 0), 0, 11)).
			Receive(
				wire.FilterByType(wire.MsgTypeErrorResponse),
				wire.FilterByRequestID(11),
				func(msg wire.Msg) error {
					var res wire.ErrorResponse
					if err := msg.DataTo(&res); err != nil {
						return err
					}
					require.Equal(t, wire.ErrorCodeBadRequest, res.Code)
					return nil
				},
			).
			Run(ctx)
		require.NoError(t, err)
	})

	t.Run("an oversized limit is rejected", func(t *testing.T) {
		err := wire.NewScenario(clientA).
			Send(raycast(geom.NewVec3(0, 0, 0), geom.NewVec3(1, 0, 0), 5000, 12)).
			Receive(
				wire.FilterByType(wire.MsgTypeErrorResponse),
				wire.FilterByRequestID(12),
				func(msg wire.Msg) error {
					var res wire.ErrorResponse
					if err := msg.DataTo(&res); err != nil {
						return err
					}
					require.Equal(t, wire.ErrorCodeTooLarge, res.Code)
					return nil
				},
			).
			Run(ctx)
		require.NoError(t, err)
	})

	t.Run("a raycast without a scene disconnects the client", func(t *testing.T) {
		err := wire.NewScenario(clientB).
			Send(raycast(geom.NewVec3(0, 0, 0), geom.NewVec3(1, 0, 0), 0, 1)).
			Receive(wire.FilterByType(wire.MsgTypeRaycastResponse)).
			Run(ctx)
		require.Error(t, err)
	})
}

func TestHandlerSyncClock(t *testing.T) {
	clientA, _, closeEnv := NewTestingEnv(t, newTestHandler())
	defer closeEnv()

	ctx := testContext(t)

	err := wire.NewScenario(clientA).
		Receive(
			wire.FilterByType(wire.MsgTypeSyncClock),
			func(msg wire.Msg) error {
				var clock wire.SyncClock
				if err := msg.DataTo(&clock); err != nil {
					return err
				}
				require.False(t, clock.Timestamp.IsZero())
				return nil
			},
		).
		Run(ctx)
	require.NoError(t, err)
}

func TestHandlerDisconnect(t *testing.T) {
	t.Run("a closed connection broadcasts a leave", func(t *testing.T) {
		clientA, clientB, closeEnv := NewTestingEnv(t, newTestHandler())
		defer closeEnv()

		ctx := testContext(t)

		var sceneID string
		err := wire.NewScenario(clientA).
			Send(joinScene("", 1)).
			Receive(
				wire.FilterByType(wire.MsgTypeSceneJoinResponse),
				func(msg wire.Msg) error {
					var res wire.SceneJoinResponse
					if err := msg.DataTo(&res); err != nil {
						return err
					}
					sceneID = res.SceneID
					return nil
				},
			).
			Run(ctx)
		require.NoError(t, err)

		err = wire.NewScenario(clientB).
			Send(joinScene(sceneID, 1)).
			Receive(wire.FilterByType(wire.MsgTypeSceneJoinResponse)).
			Run(ctx)
		require.NoError(t, err)

		require.NoError(t, clientA.Close())

		err = wire.NewScenario(clientB).
			Receive(
				wire.FilterByType(wire.MsgTypeParticipantLeaveBroadcast),
				func(msg wire.Msg) error {
					var broadcast wire.ParticipantLeaveBroadcast
					if err := msg.DataTo(&broadcast); err != nil {
						return err
					}
					require.Equal(t, uint32(1), broadcast.ParticipantID)
					return nil
				},
			).
			Run(ctx)
		require.NoError(t, err)
	})
}
