package grpc

import (
	"context"

	"google.golang.org/grpc"

	"slotbook/internal/transport/wire"
)

const ServiceName = "slotbook.v1.BookingService"

type BookingServiceServer interface {
	CreateOwner(ctx context.Context, req *wire.CreateOwnerRequest) (*wire.CreateOwnerResponse, error)
	SetAvailability(ctx context.Context, req *wire.SetAvailabilityRequest) (*wire.SetAvailabilityResponse, error)
	SearchSlots(ctx context.Context, req *wire.SearchSlotsRequest) (*wire.SearchSlotsResponse, error)
	BookAppointment(ctx context.Context, req *wire.BookAppointmentRequest) (*wire.BookAppointmentResponse, error)
	ListUpcomingAppointments(ctx context.Context, req *wire.ListUpcomingAppointmentsRequest) (*wire.ListUpcomingAppointmentsResponse, error)
}

var BookingServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BookingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("CreateOwner", BookingServiceServer.CreateOwner),
		unaryMethod("SetAvailability", BookingServiceServer.SetAvailability),
		unaryMethod("SearchSlots", BookingServiceServer.SearchSlots),
		unaryMethod("BookAppointment", BookingServiceServer.BookAppointment),
		unaryMethod("ListUpcomingAppointments", BookingServiceServer.ListUpcomingAppointments),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "slotbook/v1/booking.proto",
}

func RegisterBookingServiceServer(s grpc.ServiceRegistrar, srv BookingServiceServer) {
	s.RegisterService(&BookingServiceDesc, srv)
}

func unaryMethod[Req, Resp any](name string, call func(BookingServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(BookingServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(BookingServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// BookingServiceClient calls BookingService with the JSON codec.
type BookingServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewBookingServiceClient(cc grpc.ClientConnInterface) *BookingServiceClient {
	return &BookingServiceClient{cc: cc}
}

func (c *BookingServiceClient) CreateOwner(ctx context.Context, in *wire.CreateOwnerRequest, opts ...grpc.CallOption) (*wire.CreateOwnerResponse, error) {
	out := new(wire.CreateOwnerResponse)
	if err := c.invoke(ctx, "CreateOwner", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BookingServiceClient) SetAvailability(ctx context.Context, in *wire.SetAvailabilityRequest, opts ...grpc.CallOption) (*wire.SetAvailabilityResponse, error) {
	out := new(wire.SetAvailabilityResponse)
	if err := c.invoke(ctx, "SetAvailability", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BookingServiceClient) SearchSlots(ctx context.Context, in *wire.SearchSlotsRequest, opts ...grpc.CallOption) (*wire.SearchSlotsResponse, error) {
	out := new(wire.SearchSlotsResponse)
	if err := c.invoke(ctx, "SearchSlots", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BookingServiceClient) BookAppointment(ctx context.Context, in *wire.BookAppointmentRequest, opts ...grpc.CallOption) (*wire.BookAppointmentResponse, error) {
	out := new(wire.BookAppointmentResponse)
	if err := c.invoke(ctx, "BookAppointment", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BookingServiceClient) ListUpcomingAppointments(ctx context.Context, in *wire.ListUpcomingAppointmentsRequest, opts ...grpc.CallOption) (*wire.ListUpcomingAppointmentsResponse, error) {
	out := new(wire.ListUpcomingAppointmentsResponse)
	if err := c.invoke(ctx, "ListUpcomingAppointments", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BookingServiceClient) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codecName)}, opts...)
	return c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...)
}
