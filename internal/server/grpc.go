package server

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/ultma/ultma-server-go/internal/game"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	matchServiceName = "ultma.v1.MatchService"
	getStateMethod   = "/" + matchServiceName + "/GetState"
)

// MatchStateServer is the read-only gRPC view of the match.
type MatchStateServer interface {
	GetState(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

var matchServiceDesc = grpc.ServiceDesc{
	ServiceName: matchServiceName,
	HandlerType: (*MatchStateServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetState", Handler: getStateHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "ultma/v1/match.proto",
}

func getStateHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MatchStateServer).GetState(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getStateMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MatchStateServer).GetState(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

type matchStateServer struct {
	svc *game.MatchService
}

func (s *matchStateServer) GetState(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	m, err := s.svc.State(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	if m == nil {
		return nil, status.Error(codes.NotFound, "no match in progress")
	}

	data, err := json.Marshal(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode match: %v", err)
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, status.Errorf(codes.Internal, "decode match: %v", err)
	}
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "convert match: %v", err)
	}
	return out, nil
}

// toStatus maps game errors onto gRPC codes.
func toStatus(err error) error {
	var gameErr *game.Error
	if !errors.As(err, &gameErr) {
		return status.Error(codes.Internal, "internal error")
	}
	switch gameErr.Kind {
	case game.KindNotFound:
		return status.Error(codes.NotFound, gameErr.Message)
	case game.KindInvalidToken, game.KindInvalidTarget:
		return status.Error(codes.InvalidArgument, gameErr.Message)
	default:
		return status.Error(codes.FailedPrecondition, gameErr.Message)
	}
}

// NewGRPCServer builds a server exposing the health service and the match
// state service.
func NewGRPCServer(svc *game.MatchService, logger *zap.Logger, maxStreams int) *grpc.Server {
	opts := []grpc.ServerOption{
		grpc.UnaryInterceptor(ChainUnaryInterceptors(
			RecoveryInterceptor(logger),
			LoggingInterceptor(logger),
		)),
		grpc.KeepaliveParams(keepalive.ServerParameters{
			Time:    30 * time.Second,
			Timeout: 10 * time.Second,
		}),
	}
	if maxStreams > 0 {
		opts = append(opts, grpc.MaxConcurrentStreams(uint32(maxStreams)))
	}
	srv := grpc.NewServer(opts...)

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(matchServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)

	srv.RegisterService(&matchServiceDesc, &matchStateServer{svc: svc})
	return srv
}
