// Package grpc exposes the identity provider and the owner-scoped entry
// store over gRPC.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/gophjournal/internal/logging"
	"github.com/dmitrijs2005/gophjournal/internal/rpc"
	"github.com/dmitrijs2005/gophjournal/internal/server/models"
	"github.com/dmitrijs2005/gophjournal/internal/server/services"
	"google.golang.org/grpc"
)

// IdentityProvider is the account and token backend.
type IdentityProvider interface {
	SignUp(ctx context.Context, email, password, name string) (*services.SignUpResult, error)
	SignIn(ctx context.Context, email, password string) (*services.Session, error)
	ConfirmEmail(ctx context.Context, email, code string) error
	RefreshSession(ctx context.Context, refreshToken string) (*services.Session, error)
	SignOut(ctx context.Context, refreshToken string) error
}

// EntryStore is the owner-scoped journal entry backend.
type EntryStore interface {
	List(ctx context.Context, userID string) ([]*models.Entry, error)
	Upsert(ctx context.Context, entry *models.Entry) error
	Delete(ctx context.Context, id, userID string) (int64, error)
}

// Exporter snapshots a journal to object storage.
type Exporter interface {
	Export(ctx context.Context, userID string) (key string, url string, err error)
}

type GRPCServer struct {
	rpc.UnimplementedJournalServiceServer
	address   string
	identity  IdentityProvider
	entries   EntryStore
	exporter  Exporter
	logger    logging.Logger
	jwtSecret []byte
}

func NewGRPCServer(a string, l logging.Logger, id IdentityProvider, es EntryStore, ex Exporter, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		identity:  id,
		entries:   es,
		exporter:  ex,
		jwtSecret: []byte(secretKey),
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	rpc.RegisterJournalServiceServer(srv, s)
	return srv
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is cancelled, then stops
// gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	return srv.Serve(lis)
}
