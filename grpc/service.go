package dadbsgrpc

import (
	"context"
	"fmt"

	"github.com/DADBSLabs/DADBS-TESTNET/types"

	"google.golang.org/grpc"
)

const serviceName = "dadbs.v1.ValidatorService"

// ValidatorServiceServer is the server-side interface for the
// validator gRPC service.
type ValidatorServiceServer interface {
	Info(context.Context, *types.RequestInfo) (*types.ResponseInfo, error)
	ConfirmTransaction(context.Context, *types.RequestConfirm) (*types.ResponseConfirm, error)
	Generate(context.Context, *types.RequestGenerate) (*types.ResponseGenerate, error)
	QueryStake(context.Context, *types.RequestStake) (*types.ResponseStake, error)
}

// RegisterValidatorServiceServer registers the service on a gRPC
// server.
func RegisterValidatorServiceServer(s *grpc.Server, srv ValidatorServiceServer) {
	s.RegisterService(&serviceDesc, srv)
}

// --- Handler functions ---

func handlerInfo(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	req := new(types.RequestInfo)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(ValidatorServiceServer).Info(ctx, req)
}

func handlerConfirmTransaction(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	req := new(types.RequestConfirm)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(ValidatorServiceServer).ConfirmTransaction(ctx, req)
}

func handlerGenerate(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	req := new(types.RequestGenerate)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(ValidatorServiceServer).Generate(ctx, req)
}

func handlerQueryStake(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	req := new(types.RequestStake)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(ValidatorServiceServer).QueryStake(ctx, req)
}

// fullMethod builds the full gRPC method path.
func fullMethod(method string) string {
	return fmt.Sprintf("/%s/%s", serviceName, method)
}

// serviceDesc is the manual gRPC service descriptor.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*ValidatorServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Info", Handler: handlerInfo},
		{MethodName: "ConfirmTransaction", Handler: handlerConfirmTransaction},
		{MethodName: "Generate", Handler: handlerGenerate},
		{MethodName: "QueryStake", Handler: handlerQueryStake},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "dadbs/v1/service.cram",
}
