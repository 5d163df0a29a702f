package rpc

import (
	"context"
	"errors"

	"github.com/danielpatrickdp/montyhall/internal/infer"
	"github.com/danielpatrickdp/montyhall/internal/model"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// #region service-desc
const (
	serviceName = "montyhall.InferenceService"
	inferMethod = "/montyhall.InferenceService/Infer"
)

// InferenceServer is the server API for the inference service.
type InferenceServer interface {
	Infer(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*InferenceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Infer", Handler: inferHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "montyhall/inference",
}

func inferHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InferenceServer).Infer(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: inferMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(InferenceServer).Infer(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// #endregion service-desc

// #region server
// Server exposes an infer.Engine over gRPC.
type Server struct {
	engine infer.Engine
}

// NewServer wraps engine for serving.
func NewServer(engine infer.Engine) *Server {
	return &Server{engine: engine}
}

// Register attaches the service to a gRPC server.
func (s *Server) Register(gs *grpc.Server) {
	gs.RegisterService(&serviceDesc, s)
}

// Infer decodes the query, runs the engine and encodes the population.
func (s *Server) Infer(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	q, err := DecodeQuery(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	pop, err := s.engine.Infer(ctx, q)
	if err != nil {
		return nil, statusFromError(err)
	}
	resp, err := EncodePopulation(pop)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode population: %v", err)
	}
	return resp, nil
}

// #endregion server

// #region status
func statusFromError(err error) error {
	switch {
	case errors.Is(err, model.ErrInvalidDoor),
		errors.Is(err, model.ErrUnknownAddress),
		errors.Is(err, infer.ErrNoParticles),
		errors.Is(err, infer.ErrTooManyParticles):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, infer.ErrZeroLikelihood):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// #endregion status
