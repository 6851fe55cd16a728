// Package smoketest exercises a server end to end over its public
// WebSocket endpoint: it joins a fresh scene, adds a line of probe
// spheres, and checks that a ray cast along their axis reports every
// one of them as a candidate.
package smoketest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/aukilabs/raido/geom"
	raidohttp "github.com/aukilabs/raido/http"
	"github.com/aukilabs/raido/wire"
	"github.com/google/uuid"
	"golang.org/x/net/websocket"
)

// DefaultTimeout bounds a smoke test run when the request does not
// carry its own timeout.
const DefaultTimeout = time.Second * 10

// The probe scene is six spheres lined up on the x axis with growing
// radii, all crossed by a ray cast from the origin along that axis.
const probeSphereCount = 6

func probeSphere(i int) (geom.Vec3, float64) {
	return geom.NewVec3(float64(100+20*i), 0, 0), float64(5 + 10*i)
}

var (
	probeRayOrigin    = geom.NewVec3(0, 0, 0)
	probeRayDirection = geom.NewVec3(1, 0, 0)
)

// Status reports how a smoke test run ended.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// SmokeTestRequest asks a server to smoke test the given endpoint. An
// empty endpoint makes the server test itself.
type SmokeTestRequest struct {
	Endpoint string        `json:"endpoint,omitempty"`
	Token    string        `json:"token,omitempty"`
	Timeout  time.Duration `json:"timeout,omitempty"`
}

// SmokeTestResults is the outcome of a run, pushed to the result sink.
type SmokeTestResults struct {
	FromEndpoint    string  `json:"from_endpoint"`
	ToEndpoint      string  `json:"to_endpoint"`
	Candidates      int     `json:"candidates"`
	LatencyMilliSec float64 `json:"latency_milli_sec"`
	Status          Status  `json:"status"`
	Error           string  `json:"error,omitempty"`
}

type RunSmokeTestOptions struct {
	FromEndpoint    string
	ToEndpoint      string
	ToEndpointToken string
	UserAgent       string
	Timeout         time.Duration
}

// RunSmokeTest dials the target endpoint and plays the probe scenario
// against it. The returned results are filled in both on success and
// on failure, so they can be reported either way.
func RunSmokeTest(ctx context.Context, opts RunSmokeTestOptions) (SmokeTestResults, error) {
	res := SmokeTestResults{
		FromEndpoint: opts.FromEndpoint,
		ToEndpoint:   opts.ToEndpoint,
		Status:       StatusFailed,
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, err := dial(opts)
	if err != nil {
		res.Error = err.Error()
		return res, err
	}
	defer conn.Close()

	start := time.Now()

	scenario := wire.NewScenario(conn).
		Send(func() any {
			return wire.SceneJoinRequest{
				Type:      wire.MsgTypeSceneJoinRequest,
				Timestamp: time.Now(),
				RequestID: 1,
			}
		}).
		Receive(
			wire.FilterByType(wire.MsgTypeSceneJoinResponse),
			wire.FilterByRequestID(1),
		)

	for i := 0; i < probeSphereCount; i++ {
		center, radius := probeSphere(i)
		requestID := uint32(2 + i)

		scenario = scenario.
			Send(func() any {
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
			}).
			Receive(
				wire.FilterByType(wire.MsgTypeObjectAddResponse),
				wire.FilterByRequestID(requestID),
			)
	}

	raycastRequestID := uint32(2 + probeSphereCount)

	var candidates int
	scenario = scenario.
		Send(func() any {
			return wire.RaycastRequest{
				Type:      wire.MsgTypeRaycastRequest,
				Timestamp: time.Now(),
				RequestID: raycastRequestID,
				Origin:    probeRayOrigin,
				Direction: probeRayDirection,
			}
		}).
		Receive(
			wire.FilterByType(wire.MsgTypeRaycastResponse),
			wire.FilterByRequestID(raycastRequestID),
			func(msg wire.Msg) error {
				var raycastRes wire.RaycastResponse
				if err := msg.DataTo(&raycastRes); err != nil {
					return err
				}
				candidates = len(raycastRes.Hits)
				return nil
			},
		)

	if err := scenario.Run(ctx); err != nil {
		res.Error = err.Error()
		return res, errors.New("running smoke test scenario failed").
			WithTag("from_endpoint", opts.FromEndpoint).
			WithTag("to_endpoint", opts.ToEndpoint).
			Wrap(err)
	}

	res.Candidates = candidates
	res.LatencyMilliSec = float64(time.Since(start)) / float64(time.Millisecond)

	if candidates != probeSphereCount {
		err := errors.New("unexpected raycast candidate count").
			WithTag("expected", probeSphereCount).
			WithTag("got", candidates)
		res.Error = err.Error()
		return res, err
	}

	res.Status = StatusSuccess
	return res, nil
}

func dial(opts RunSmokeTestOptions) (*websocket.Conn, error) {
	config, err := websocket.NewConfig(wsURL(opts.ToEndpoint), "http://localhost")
	if err != nil {
		return nil, errors.New("creating websocket config failed").
			WithTag("to_endpoint", opts.ToEndpoint).
			Wrap(err)
	}

	config.Header.Set(raidohttp.HeaderClientID, uuid.NewString())
	if opts.UserAgent != "" {
		config.Header.Set("User-Agent", opts.UserAgent)
	}
	if opts.ToEndpointToken != "" {
		config.Header.Set(raidohttp.HeaderAuthorization, "Bearer "+opts.ToEndpointToken)
	}

	conn, err := websocket.DialConfig(config)
	if err != nil {
		return nil, errors.New("dialing endpoint failed").
			WithTag("to_endpoint", opts.ToEndpoint).
			Wrap(err)
	}
	return conn, nil
}

func wsURL(endpoint string) string {
	s := strings.ReplaceAll(endpoint, "https://", "wss://")
	return strings.ReplaceAll(s, "http://", "ws://")
}

type Options struct {
	Endpoint   string
	UserAgent  string
	SendResult func(context.Context, SmokeTestResults) error
}

type testCtxKey string

var testCtxKeyValue testCtxKey = "test-context"

type testContext struct {
	context.Context
	Cancel func()
}

// HandleSmokeTest runs a smoke test in the background and replies
// immediately. The outcome goes to the SendResult callback, not to the
// HTTP response.
func HandleSmokeTest(ctx context.Context, opts Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := io.ReadAll(r.Body)
		if err != nil {
			raidohttp.InternalServerError(w, errors.New("reading body failed").Wrap(err))
			return
		}

		var req SmokeTestRequest
		if err := json.Unmarshal(b, &req); err != nil {
			raidohttp.BadRequest(w, raidohttp.ErrBadRequest)
			return
		}

		if req.Endpoint == "" {
			req.Endpoint = opts.Endpoint
		}

		go func() {
			defer func() {
				// if context is of testContext
				// cancel context on exit to signal function exited
				// this is used for testing
				if tctx := ctx.Value(testCtxKeyValue); tctx != nil {
					testCtx := tctx.(testContext)
					if testCtx.Cancel != nil {
						testCtx.Cancel()
					}
				}
			}()

			res, err := RunSmokeTest(ctx, RunSmokeTestOptions{
				FromEndpoint:    opts.Endpoint,
				ToEndpoint:      req.Endpoint,
				ToEndpointToken: req.Token,
				UserAgent:       opts.UserAgent,
				Timeout:         req.Timeout,
			})
			if err != nil {
				logs.Warn(err)
			}

			if err := opts.SendResult(ctx, res); err != nil {
				logs.WithTag("from_endpoint", opts.Endpoint).
					WithTag("to_endpoint", req.Endpoint).
					Warn(errors.New("sending smoke test result failed").Wrap(err))
			}
		}()

		w.WriteHeader(http.StatusOK)
	}
}
