package rpc

import (
	"context"
	"errors"
	"fmt"

	"github.com/danielpatrickdp/montyhall/internal/infer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// ErrInvalidQuery is returned when the server rejects a query as malformed
// or out of range.
var ErrInvalidQuery = errors.New("invalid query")

// #region client-struct
// Client is an infer.Engine backed by a remote inference service.
type Client struct {
	conn *grpc.ClientConn
	cc   grpc.ClientConnInterface
}

// #endregion client-struct

// #region constructor
// NewClient connects to the inference gRPC server.
func NewClient(addr string) (*Client, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Client{conn: conn, cc: conn}, nil
}

// NewClientWithConn creates a Client over an existing connection.
// The caller keeps ownership of cc.
func NewClientWithConn(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// #endregion constructor

// #region close
// Close shuts down the gRPC connection if the client owns one.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// #endregion close

// #region infer
// Infer sends the query to the remote engine.
func (c *Client) Infer(ctx context.Context, q infer.Query) (infer.Population, error) {
	req, err := EncodeQuery(q)
	if err != nil {
		return infer.Population{}, fmt.Errorf("encode query: %w", err)
	}
	resp := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, inferMethod, req, resp); err != nil {
		return infer.Population{}, errorFromStatus(err)
	}
	pop, err := DecodePopulation(resp)
	if err != nil {
		return infer.Population{}, fmt.Errorf("decode population: %w", err)
	}
	return pop, nil
}

// #endregion infer

// #region status
func errorFromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("infer rpc: %w", err)
	}
	switch st.Code() {
	case codes.InvalidArgument:
		return fmt.Errorf("infer rpc: %w: %s", ErrInvalidQuery, st.Message())
	case codes.FailedPrecondition:
		return fmt.Errorf("infer rpc: %w", infer.ErrZeroLikelihood)
	case codes.Canceled:
		return fmt.Errorf("infer rpc: %w", context.Canceled)
	case codes.DeadlineExceeded:
		return fmt.Errorf("infer rpc: %w", context.DeadlineExceeded)
	default:
		return fmt.Errorf("infer rpc: %w", err)
	}
}

// #endregion status
