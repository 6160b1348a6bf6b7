// Package remote adapts a gRPC status service to the session's StatusFetcher.
// Messages are well-known protobuf types: the request is google.protobuf.Empty
// and the response a google.protobuf.Struct in the wire status format.
package remote

import (
	"context"
	"fmt"

	"github.com/danielpatrickdp/launch-gate/internal/gate"
	"github.com/danielpatrickdp/launch-gate/internal/wire"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	serviceName       = "launchgate.v1.StatusService"
	fetchStatusMethod = "/" + serviceName + "/FetchStatus"
)

// #region client-struct
// StatusClient fetches the launch status over gRPC.
type StatusClient struct {
	conn *grpc.ClientConn // nil when built from an injected connection
	cc   grpc.ClientConnInterface
}

// #endregion client-struct

// #region constructor
// NewStatusClient connects to the status service at addr.
func NewStatusClient(addr string) (*StatusClient, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &StatusClient{conn: conn, cc: conn}, nil
}

// NewStatusClientWithConn creates a StatusClient over an existing connection.
// Close does not close cc.
func NewStatusClientWithConn(cc grpc.ClientConnInterface) *StatusClient {
	return &StatusClient{cc: cc}
}

// Close shuts down the gRPC connection opened by NewStatusClient.
func (c *StatusClient) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// #endregion constructor

// #region fetch
// Fetch implements session.StatusFetcher. Every failure is a *gate.FetchError.
func (c *StatusClient) Fetch(ctx context.Context) (gate.AppUpdateStatus, error) {
	resp := &structpb.Struct{}
	if err := c.cc.Invoke(ctx, fetchStatusMethod, &emptypb.Empty{}, resp); err != nil {
		return nil, gate.NewFetchError(displayMessage(err), fmt.Errorf("fetch status rpc: %w", err))
	}
	st, err := wire.StatusFromMap(resp.AsMap())
	if err != nil {
		return nil, gate.NewFetchError("status malformed", err)
	}
	return st, nil
}

// displayMessage turns an RPC error into text for the fetch error alert.
func displayMessage(err error) string {
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.DeadlineExceeded:
		return "timeout"
	case codes.Unavailable:
		return "server unavailable"
	case codes.Canceled:
		return "cancelled"
	}
	if st.Message() != "" {
		return st.Message()
	}
	return "status fetch failed"
}

// #endregion fetch
