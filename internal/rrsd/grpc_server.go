package rrsd

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/KatjaLuckLab/DMI-predictor/pkg/logger"
)

const referenceSetServiceName = "rrs.v1.ReferenceSetService"

// ReferenceSetServiceServer is the server API of rrs.v1.ReferenceSetService.
// Requests and responses are google.protobuf.Struct messages carrying the
// same fields as the HTTP API.
type ReferenceSetServiceServer interface {
	BuildReplicate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetReplicate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	StopReplicate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListReplicates(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(ReferenceSetServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(name string, call unaryMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(ReferenceSetServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + referenceSetServiceName + "/" + name,
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(ReferenceSetServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ReferenceSetServiceDesc describes rrs.v1.ReferenceSetService for grpc.Server.RegisterService
var ReferenceSetServiceDesc = grpc.ServiceDesc{
	ServiceName: referenceSetServiceName,
	HandlerType: (*ReferenceSetServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler("BuildReplicate", ReferenceSetServiceServer.BuildReplicate),
		unaryHandler("GetReplicate", ReferenceSetServiceServer.GetReplicate),
		unaryHandler("StopReplicate", ReferenceSetServiceServer.StopReplicate),
		unaryHandler("ListReplicates", ReferenceSetServiceServer.ListReplicates),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "rrs/v1/reference_set.proto",
}

// RegisterReferenceSetServiceServer registers srv on s
func RegisterReferenceSetServiceServer(s grpc.ServiceRegistrar, srv ReferenceSetServiceServer) {
	s.RegisterService(&ReferenceSetServiceDesc, srv)
}

// ReferenceSetGRPCServer implements ReferenceSetServiceServer using a RunStore backend.
type ReferenceSetGRPCServer struct {
	store    *RunStore
	Executor *RunExecutor
}

func NewReferenceSetGRPCServer(store *RunStore, executor *RunExecutor) *ReferenceSetGRPCServer {
	return &ReferenceSetGRPCServer{
		store:    store,
		Executor: executor,
	}
}

func (s *ReferenceSetGRPCServer) BuildReplicate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "label is required")
	}
	fields := req.GetFields()
	br := BuildRequest{
		Label:            fields["label"].GetStringValue(),
		InstancesPerType: int(fields["instances_per_type"].GetNumberValue()),
		Seed:             int64(fields["seed"].GetNumberValue()),
	}

	rec, err := s.Executor.Submit(br)
	if err != nil {
		return nil, toStatus(err)
	}

	logger.Info("replicate build submitted", "run_id", rec.ID, "label", br.Label)
	return runToStruct(rec)
}

func (s *ReferenceSetGRPCServer) GetReplicate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	runID := runIDField(req)
	if runID == "" {
		return nil, status.Error(codes.InvalidArgument, ErrRunIDMissing.Error())
	}
	rec, ok := s.store.Get(runID)
	if !ok {
		return nil, status.Error(codes.NotFound, "run not found")
	}
	return runToStruct(rec)
}

func (s *ReferenceSetGRPCServer) StopReplicate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	runID := runIDField(req)
	updated, err := s.Executor.Stop(runID)
	if err != nil {
		return nil, toStatus(err)
	}
	logger.Info("replicate build cancelled", "run_id", runID)
	return runToStruct(updated)
}

func (s *ReferenceSetGRPCServer) ListReplicates(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	limit := 50
	if n := int(req.GetFields()["limit"].GetNumberValue()); n > 0 {
		limit = n
	}
	recs := s.store.List(limit, 0, "")
	runs := make([]any, 0, len(recs))
	for _, rec := range recs {
		runs = append(runs, runMap(rec))
	}
	out, err := structpb.NewStruct(map[string]any{"runs": runs})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func runIDField(req *structpb.Struct) string {
	return req.GetFields()["run_id"].GetStringValue()
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, ErrRunNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, ErrRunIDMissing), errors.Is(err, ErrInvalidRequest):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, ErrRunTerminal):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, ErrDatasetNotReady):
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// runMap converts a run to values structpb accepts
func runMap(rec RunRecord) map[string]any {
	run := convertRunToJSON(rec)
	if counts, ok := run["instances_by_type"].(map[string]int); ok {
		byType := make(map[string]any, len(counts))
		for id, n := range counts {
			byType[id] = n
		}
		run["instances_by_type"] = byType
	}
	return run
}

func runToStruct(rec RunRecord) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(map[string]any{"run": runMap(rec)})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// ReferenceSetServiceClient calls rrs.v1.ReferenceSetService
type ReferenceSetServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewReferenceSetServiceClient(cc grpc.ClientConnInterface) *ReferenceSetServiceClient {
	return &ReferenceSetServiceClient{cc: cc}
}

func (c *ReferenceSetServiceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+referenceSetServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ReferenceSetServiceClient) BuildReplicate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "BuildReplicate", in, opts...)
}

func (c *ReferenceSetServiceClient) GetReplicate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "GetReplicate", in, opts...)
}

func (c *ReferenceSetServiceClient) StopReplicate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "StopReplicate", in, opts...)
}

func (c *ReferenceSetServiceClient) ListReplicates(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "ListReplicates", in, opts...)
}
