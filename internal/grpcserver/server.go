// Package grpcserver implements the TrackerService gRPC server.
//
// It delegates all business logic to tracker.Service and handles only the
// gRPC transport concerns: error mapping and conversion between domain
// values and google.protobuf.Struct payloads. The payloads carry the same
// JSON shapes as the HTTP API.
package grpcserver

import (
	"context"
	"encoding/json"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"jobtracker/internal/tracker"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "jobtracker.v1.TrackerService"

// TrackerServiceServer is the server API of ServiceName.
type TrackerServiceServer interface {
	AddJob(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateField(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AddStep(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Dashboard(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListApplications(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// Server implements TrackerServiceServer.
type Server struct {
	svc *tracker.Service
}

var _ TrackerServiceServer = (*Server)(nil)

// NewServer constructs a gRPC Server backed by the given tracker.Service.
func NewServer(svc *tracker.Service) *Server {
	return &Server{svc: svc}
}

// Register attaches srv to s.
func Register(s grpc.ServiceRegistrar, srv TrackerServiceServer) {
	s.RegisterService(&serviceDesc, srv)
}

// ─── RPC implementations ──────────────────────────────────────────────────────

// AddJob creates an application. The request has the add_job JSON fields.
func (s *Server) AddJob(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in tracker.NewApplication
	if err := fromStruct(req, &in); err != nil {
		return nil, err
	}
	app, err := s.svc.AddJob(ctx, in)
	if err != nil {
		return nil, toGRPCError(err)
	}
	return toStruct(map[string]any{"job": app})
}

// UpdateField writes one field: {"id": 1, "field": "status", "value": "Applied"}.
func (s *Server) UpdateField(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in struct {
		ID    int64   `json:"id"`
		Field string  `json:"field"`
		Value *string `json:"value"`
	}
	if err := fromStruct(req, &in); err != nil {
		return nil, err
	}
	if in.Field == "" || in.Value == nil {
		return nil, status.Error(codes.InvalidArgument, "field and value are required")
	}
	app, err := s.svc.UpdateField(ctx, in.ID, in.Field, *in.Value)
	if err != nil {
		return nil, toGRPCError(err)
	}
	return toStruct(map[string]any{"job": app})
}

// AddStep appends a timeline step: {"id": 1, "title": "…", "description": "…"}.
func (s *Server) AddStep(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in struct {
		ID          int64  `json:"id"`
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := fromStruct(req, &in); err != nil {
		return nil, err
	}
	step, err := s.svc.AddStep(ctx, in.ID, in.Title, in.Description)
	if err != nil {
		return nil, toGRPCError(err)
	}
	return toStruct(map[string]any{"step": step})
}

// Dashboard returns the same payload as GET /api/jobs/.
func (s *Server) Dashboard(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	d, err := s.svc.Dashboard(ctx, s.svc.Now())
	if err != nil {
		return nil, toGRPCError(err)
	}
	return toStruct(d)
}

// ListApplications returns every application in display order.
func (s *Server) ListApplications(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	apps, err := s.svc.OrderedList(ctx)
	if err != nil {
		return nil, toGRPCError(err)
	}
	return toStruct(map[string]any{"applications": apps})
}

// ─── Service descriptor ──────────────────────────────────────────────────────

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TrackerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("AddJob", TrackerServiceServer.AddJob),
		unary("UpdateField", TrackerServiceServer.UpdateField),
		unary("AddStep", TrackerServiceServer.AddStep),
		unary("Dashboard", TrackerServiceServer.Dashboard),
		unary("ListApplications", TrackerServiceServer.ListApplications),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "jobtracker/v1/tracker.proto",
}

type unaryMethod func(TrackerServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(name string, call unaryMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(TrackerServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv.(TrackerServiceServer), ctx, req.(*structpb.Struct))
			})
		},
	}
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// toGRPCError maps tracker errors to gRPC status errors.
func toGRPCError(err error) error {
	switch tracker.KindOf(err) {
	case tracker.KindNotFound:
		return status.Error(codes.NotFound, err.Error())
	case tracker.KindInvalidValue, tracker.KindMalformedRequest:
		var ve *tracker.ValidationError
		if errors.As(err, &ve) {
			return status.Error(codes.InvalidArgument, ve.Msg)
		}
		return status.Error(codes.InvalidArgument, err.Error())
	}
	return status.Error(codes.Internal, "internal server error")
}

// fromStruct decodes a request payload into dst through its JSON form.
func fromStruct(req *structpb.Struct, dst any) error {
	raw, err := protojson.Marshal(req)
	if err != nil {
		return status.Error(codes.InvalidArgument, "unreadable request payload")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return status.Error(codes.InvalidArgument, "request payload has the wrong shape")
	}
	return nil
}

// toStruct encodes v, which must marshal to a JSON object.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal server error")
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, status.Error(codes.Internal, "internal server error")
	}
	return out, nil
}
