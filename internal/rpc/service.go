package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

const ServiceName = "gophjournal.JournalService"

// Full method names, as seen by interceptors.
const (
	MethodPing          = "/" + ServiceName + "/Ping"
	MethodSignUp        = "/" + ServiceName + "/SignUp"
	MethodSignIn        = "/" + ServiceName + "/SignIn"
	MethodSignOut       = "/" + ServiceName + "/SignOut"
	MethodGetSession    = "/" + ServiceName + "/GetSession"
	MethodConfirmEmail  = "/" + ServiceName + "/ConfirmEmail"
	MethodListEntries   = "/" + ServiceName + "/ListEntries"
	MethodUpsertEntry   = "/" + ServiceName + "/UpsertEntry"
	MethodDeleteEntry   = "/" + ServiceName + "/DeleteEntry"
	MethodExportEntries = "/" + ServiceName + "/ExportEntries"
)

// JournalServiceServer is implemented by the gRPC server.
type JournalServiceServer interface {
	Ping(context.Context, *emptypb.Empty) (*PingResponse, error)
	SignUp(context.Context, *SignUpRequest) (*SignUpResponse, error)
	SignIn(context.Context, *SignInRequest) (*AuthResponse, error)
	SignOut(context.Context, *SignOutRequest) (*emptypb.Empty, error)
	GetSession(context.Context, *GetSessionRequest) (*AuthResponse, error)
	ConfirmEmail(context.Context, *ConfirmEmailRequest) (*emptypb.Empty, error)
	ListEntries(context.Context, *ListEntriesRequest) (*ListEntriesResponse, error)
	UpsertEntry(context.Context, *UpsertEntryRequest) (*emptypb.Empty, error)
	DeleteEntry(context.Context, *DeleteEntryRequest) (*DeleteEntryResponse, error)
	ExportEntries(context.Context, *ExportEntriesRequest) (*ExportEntriesResponse, error)
}

// UnimplementedJournalServiceServer can be embedded to get Unimplemented
// answers for methods a server does not provide.
type UnimplementedJournalServiceServer struct{}

func (UnimplementedJournalServiceServer) Ping(context.Context, *emptypb.Empty) (*PingResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Ping not implemented")
}
func (UnimplementedJournalServiceServer) SignUp(context.Context, *SignUpRequest) (*SignUpResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SignUp not implemented")
}
func (UnimplementedJournalServiceServer) SignIn(context.Context, *SignInRequest) (*AuthResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SignIn not implemented")
}
func (UnimplementedJournalServiceServer) SignOut(context.Context, *SignOutRequest) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method SignOut not implemented")
}
func (UnimplementedJournalServiceServer) GetSession(context.Context, *GetSessionRequest) (*AuthResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetSession not implemented")
}
func (UnimplementedJournalServiceServer) ConfirmEmail(context.Context, *ConfirmEmailRequest) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method ConfirmEmail not implemented")
}
func (UnimplementedJournalServiceServer) ListEntries(context.Context, *ListEntriesRequest) (*ListEntriesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListEntries not implemented")
}
func (UnimplementedJournalServiceServer) UpsertEntry(context.Context, *UpsertEntryRequest) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method UpsertEntry not implemented")
}
func (UnimplementedJournalServiceServer) DeleteEntry(context.Context, *DeleteEntryRequest) (*DeleteEntryResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method DeleteEntry not implemented")
}
func (UnimplementedJournalServiceServer) ExportEntries(context.Context, *ExportEntriesRequest) (*ExportEntriesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ExportEntries not implemented")
}

// unary builds a MethodDesc that decodes Req, runs the server interceptor
// chain and dispatches to call.
func unary[Req any, Resp any](name string, call func(JournalServiceServer, context.Context, *Req) (Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(JournalServiceServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc describes JournalService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*JournalServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Ping", JournalServiceServer.Ping),
		unary("SignUp", JournalServiceServer.SignUp),
		unary("SignIn", JournalServiceServer.SignIn),
		unary("SignOut", JournalServiceServer.SignOut),
		unary("GetSession", JournalServiceServer.GetSession),
		unary("ConfirmEmail", JournalServiceServer.ConfirmEmail),
		unary("ListEntries", JournalServiceServer.ListEntries),
		unary("UpsertEntry", JournalServiceServer.UpsertEntry),
		unary("DeleteEntry", JournalServiceServer.DeleteEntry),
		unary("ExportEntries", JournalServiceServer.ExportEntries),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gophjournal/journal",
}

// RegisterJournalServiceServer attaches srv to a gRPC server.
func RegisterJournalServiceServer(s grpc.ServiceRegistrar, srv JournalServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}
