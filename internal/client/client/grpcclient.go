package client

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/client/models"
	"github.com/dmitrijs2005/gophjournal/internal/common"
	"github.com/dmitrijs2005/gophjournal/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

// journalAPI is the subset of rpc.JournalServiceClient used here.
type journalAPI interface {
	Ping(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*rpc.PingResponse, error)
	SignUp(ctx context.Context, in *rpc.SignUpRequest, opts ...grpc.CallOption) (*rpc.SignUpResponse, error)
	SignIn(ctx context.Context, in *rpc.SignInRequest, opts ...grpc.CallOption) (*rpc.AuthResponse, error)
	SignOut(ctx context.Context, in *rpc.SignOutRequest, opts ...grpc.CallOption) (*emptypb.Empty, error)
	GetSession(ctx context.Context, in *rpc.GetSessionRequest, opts ...grpc.CallOption) (*rpc.AuthResponse, error)
	ConfirmEmail(ctx context.Context, in *rpc.ConfirmEmailRequest, opts ...grpc.CallOption) (*emptypb.Empty, error)
	ListEntries(ctx context.Context, in *rpc.ListEntriesRequest, opts ...grpc.CallOption) (*rpc.ListEntriesResponse, error)
	UpsertEntry(ctx context.Context, in *rpc.UpsertEntryRequest, opts ...grpc.CallOption) (*emptypb.Empty, error)
	DeleteEntry(ctx context.Context, in *rpc.DeleteEntryRequest, opts ...grpc.CallOption) (*rpc.DeleteEntryResponse, error)
	ExportEntries(ctx context.Context, in *rpc.ExportEntriesRequest, opts ...grpc.CallOption) (*rpc.ExportEntriesResponse, error)
}

// TokenListener is notified whenever the token pair is rotated by the
// interceptor so the caller can persist it.
type TokenListener func(ctx context.Context, accessToken, refreshToken string)

type GRPCClient struct {
	endpointURL string
	timeout     time.Duration
	dialOpts    []grpc.DialOption
	conn        *grpc.ClientConn
	client      journalAPI

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	onTokens     TokenListener
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	if token != "" {
		md.Set(common.AccessTokenHeaderName, token)
	}

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) tokens() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken, s.refreshToken
}

// SetTokens installs a token pair, e.g. one restored from local storage.
func (s *GRPCClient) SetTokens(accessToken, refreshToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = accessToken
	s.refreshToken = refreshToken
}

// SetTokenListener registers fn to be called after every token rotation.
func (s *GRPCClient) SetTokenListener(fn TokenListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onTokens = fn
}

func (s *GRPCClient) rotate(ctx context.Context, accessToken, refreshToken string) {
	s.mu.Lock()
	s.accessToken = accessToken
	s.refreshToken = refreshToken
	fn := s.onTokens
	s.mu.Unlock()

	if fn != nil {
		fn(ctx, accessToken, refreshToken)
	}
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {

	accessToken, refreshToken := s.tokens()
	ctx = withAccessToken(ctx, accessToken)

	err := invoker(ctx, method, req, reply, cc, opts...)

	if err != nil {

		st, ok := status.FromError(err)
		if !ok {
			return err
		}

		if st.Code() != codes.Unauthenticated {
			return err
		}
		if st.Message() != common.ErrTokenExpired.Error() {
			return err
		}

		if refreshToken == "" {
			return err
		}

		resp, err := s.client.GetSession(ctx, &rpc.GetSessionRequest{RefreshToken: refreshToken})
		if err != nil {
			return err
		}

		s.rotate(ctx, resp.AccessToken, resp.RefreshToken)

		// tokens refreshed, retry once with the new access token
		ctx = withAccessToken(ctx, resp.AccessToken)
		return invoker(ctx, method, req, reply, cc, opts...)

	}

	return err
}

// NewGRPCClient dials endpointURL lazily. Extra dial options are appended
// after the defaults (tests use them to install a bufconn dialer).
func NewGRPCClient(endpointURL string, timeout time.Duration, extra ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, timeout: timeout, dialOpts: extra}
	if err := c.InitGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient() error {
	opts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
	}, s.dialOpts...)

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = rpc.NewJournalServiceClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.Ping(ctx, &emptypb.Empty{})
	if err != nil {
		return s.mapError(err)
	}

	if resp.Status != "OK" {
		return ErrUnavailable
	}

	return nil
}

func toSession(resp *rpc.AuthResponse) *models.Session {
	sess := &models.Session{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}
	if resp.User != nil {
		sess.User = models.User{ID: resp.User.ID, Email: resp.User.Email, Name: resp.User.Name}
	}
	return sess
}

func (s *GRPCClient) SignUp(ctx context.Context, email, password, name string) (models.SignupResult, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.SignUp(ctx, &rpc.SignUpRequest{Email: email, Password: password, Name: name})
	if err != nil {
		return models.SignupResult{}, s.mapError(err)
	}

	if resp.ConfirmationRequired {
		return models.ConfirmationPending(email), nil
	}

	sess := toSession(&rpc.AuthResponse{User: resp.User, AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken})
	s.SetTokens(sess.AccessToken, sess.RefreshToken)
	return models.Authenticated(sess), nil
}

func (s *GRPCClient) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.SignIn(ctx, &rpc.SignInRequest{Email: email, Password: password})
	if err != nil {
		return nil, s.mapError(err)
	}

	sess := toSession(resp)
	s.SetTokens(sess.AccessToken, sess.RefreshToken)
	return sess, nil
}

func (s *GRPCClient) ConfirmEmail(ctx context.Context, email, code string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.client.ConfirmEmail(ctx, &rpc.ConfirmEmailRequest{Email: email, Code: code}); err != nil {
		return s.mapError(err)
	}
	return nil
}

// RestoreSession exchanges a stored refresh token for a fresh session.
func (s *GRPCClient) RestoreSession(ctx context.Context, refreshToken string) (*models.Session, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.GetSession(ctx, &rpc.GetSessionRequest{RefreshToken: refreshToken})
	if err != nil {
		return nil, s.mapError(err)
	}

	sess := toSession(resp)
	s.SetTokens(sess.AccessToken, sess.RefreshToken)
	return sess, nil
}

// SignOut revokes the refresh token server side and forgets both tokens
// locally. Local state is cleared even when the server call fails.
func (s *GRPCClient) SignOut(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, refreshToken := s.tokens()
	s.SetTokens("", "")
	if refreshToken == "" {
		return nil
	}

	if _, err := s.client.SignOut(ctx, &rpc.SignOutRequest{RefreshToken: refreshToken}); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) ListEntries(ctx context.Context, userID string) ([]*rpc.EntryRow, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.ListEntries(ctx, &rpc.ListEntriesRequest{UserID: userID})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Rows, nil
}

func (s *GRPCClient) UpsertEntry(ctx context.Context, row *rpc.EntryRow) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.client.UpsertEntry(ctx, &rpc.UpsertEntryRequest{Row: row}); err != nil {
		return s.mapError(err)
	}
	return nil
}

// DeleteEntry returns the number of rows the store actually removed.
func (s *GRPCClient) DeleteEntry(ctx context.Context, id, userID string) (int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.DeleteEntry(ctx, &rpc.DeleteEntryRequest{ID: id, UserID: userID})
	if err != nil {
		return 0, s.mapError(err)
	}
	return resp.Count, nil
}

// ExportEntries returns a presigned download URL for the owner's archive.
func (s *GRPCClient) ExportEntries(ctx context.Context, userID string) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.ExportEntries(ctx, &rpc.ExportEntriesRequest{UserID: userID})
	if err != nil {
		return "", s.mapError(err)
	}
	return resp.URL, nil
}

// mapError turns gRPC statuses back into sentinel errors. Identity errors keep
// the server's wording because it is shown to the user verbatim.
func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	msg := st.Message()
	switch st.Code() {
	case codes.Unauthenticated:
		if msg == common.ErrInvalidCredentials.Error() {
			return common.ErrInvalidCredentials
		}
		return ErrUnauthorized
	case codes.PermissionDenied:
		if msg == common.ErrOwnershipConflict.Error() {
			return common.ErrOwnershipConflict
		}
		return common.ErrorForbidden
	case codes.AlreadyExists:
		return common.ErrUserAlreadyExists
	case codes.FailedPrecondition:
		return common.ErrEmailNotConfirmed
	case codes.InvalidArgument:
		if msg == common.ErrInvalidConfirmation.Error() {
			return common.ErrInvalidConfirmation
		}
		detail := strings.TrimPrefix(msg, common.ErrorValidation.Error()+": ")
		return fmt.Errorf("%w: %s", common.ErrorValidation, detail)
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
