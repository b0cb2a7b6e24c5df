package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ReservationServiceName = "hotel.reservation.v1.ReservationService"

// ReservationServiceServer is the server API for ReservationService.
// Requests and responses are google.protobuf.Struct documents keyed by the
// same camelCase field names the REST API uses.
type ReservationServiceServer interface {
	Hold(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Confirm(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Cancel(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Get(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListByUser(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(ReservationServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(name string, call unaryMethod) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	fullMethod := "/" + ReservationServiceName + "/" + name
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ReservationServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ReservationServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var ReservationServiceDesc = grpc.ServiceDesc{
	ServiceName: ReservationServiceName,
	HandlerType: (*ReservationServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Hold", Handler: unaryHandler("Hold", ReservationServiceServer.Hold)},
		{MethodName: "Confirm", Handler: unaryHandler("Confirm", ReservationServiceServer.Confirm)},
		{MethodName: "Cancel", Handler: unaryHandler("Cancel", ReservationServiceServer.Cancel)},
		{MethodName: "Get", Handler: unaryHandler("Get", ReservationServiceServer.Get)},
		{MethodName: "ListByUser", Handler: unaryHandler("ListByUser", ReservationServiceServer.ListByUser)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "hotel/reservation/v1/reservation.proto",
}

func RegisterReservationServiceServer(s grpc.ServiceRegistrar, srv ReservationServiceServer) {
	s.RegisterService(&ReservationServiceDesc, srv)
}
