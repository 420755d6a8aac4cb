package dadbsgrpc

import (
	"context"
	"net"

	dadbs "github.com/DADBSLabs/DADBS-TESTNET"
	"github.com/DADBSLabs/DADBS-TESTNET/node"
	"github.com/DADBSLabs/DADBS-TESTNET/types"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Compile-time interface check.
var _ ValidatorServiceServer = (*Server)(nil)

// Server exposes a validator as a gRPC service. No type conversion
// is needed: domain types are serialized directly via cramberry.
type Server struct {
	svc *node.Service
}

// NewServer wraps the given validator. A nil logger disables
// logging.
func NewServer(v dadbs.Validator, logger *zap.Logger) *Server {
	return &Server{
		svc: node.NewService(v, logger),
	}
}

// Register adds the validator service to a gRPC server.
func (s *Server) Register(gs *grpc.Server) {
	RegisterValidatorServiceServer(gs, s)
}

// Serve starts a gRPC server on the given listener.
func (s *Server) Serve(lis net.Listener, opts ...grpc.ServerOption) error {
	gs := grpc.NewServer(opts...)
	s.Register(gs)
	return gs.Serve(lis)
}

// Stop gracefully stops the gRPC server.
func (s *Server) Stop(gs *grpc.Server) {
	gs.GracefulStop()
}

// Service returns the underlying service wrapper for advanced use.
func (s *Server) Service() *node.Service {
	return s.svc
}

// serve runs fn, converting call-order panics into failed RPCs so a
// misordered client cannot take the server process down, and
// mapping undeclared capabilities to Unimplemented.
func serve[T any](fn func() (T, error)) (resp *T, err error) {
	defer func() {
		if r := recover(); r != nil {
			resp, err = nil, status.Errorf(codes.FailedPrecondition, "%v", r)
		}
	}()
	v, err := fn()
	if err != nil {
		if _, ok := dadbs.IsNotSupported(err); ok {
			return nil, status.Error(codes.Unimplemented, err.Error())
		}
		return nil, err
	}
	return &v, nil
}

// --- Validator RPCs ---

func (s *Server) Info(ctx context.Context, req *types.RequestInfo) (*types.ResponseInfo, error) {
	return serve(func() (types.ResponseInfo, error) {
		return s.svc.Info(ctx, *req)
	})
}

func (s *Server) ConfirmTransaction(ctx context.Context, req *types.RequestConfirm) (*types.ResponseConfirm, error) {
	return serve(func() (types.ResponseConfirm, error) {
		return s.svc.ConfirmTransaction(ctx, *req)
	})
}

// --- Capability RPCs ---

func (s *Server) Generate(ctx context.Context, req *types.RequestGenerate) (*types.ResponseGenerate, error) {
	return serve(func() (types.ResponseGenerate, error) {
		return s.svc.Generate(ctx, *req)
	})
}

func (s *Server) QueryStake(ctx context.Context, req *types.RequestStake) (*types.ResponseStake, error) {
	return serve(func() (types.ResponseStake, error) {
		return s.svc.QueryStake(ctx, *req)
	})
}
