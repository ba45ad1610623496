package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/common"
	"github.com/dmitrijs2005/gophjournal/internal/rpc"
	"github.com/dmitrijs2005/gophjournal/internal/server/models"
	"github.com/dmitrijs2005/gophjournal/internal/server/services"
	"github.com/dmitrijs2005/gophjournal/internal/timex"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

// mapError converts service errors to gRPC statuses. Unknown errors are
// logged and reported as Internal without detail.
func (s *GRPCServer) mapError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrorValidation), errors.Is(err, common.ErrInvalidConfirmation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrInvalidCredentials),
		errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrRefreshTokenExpired):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, common.ErrUserAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, common.ErrEmailNotConfirmed):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, common.ErrOwnershipConflict), errors.Is(err, common.ErrorForbidden):
		return status.Error(codes.PermissionDenied, err.Error())
	default:
		s.logger.Error(ctx, "internal error", "error", err)
		return status.Error(codes.Internal, common.ErrorInternal.Error())
	}
}

func userToRPC(u *models.User) *rpc.User {
	if u == nil {
		return nil
	}
	return &rpc.User{ID: u.ID, Email: u.Email, Name: u.Name}
}

func sessionToRPC(sess *services.Session) *rpc.AuthResponse {
	return &rpc.AuthResponse{User: userToRPC(sess.User), AccessToken: sess.AccessToken, RefreshToken: sess.RefreshToken}
}

func (s *GRPCServer) Ping(ctx context.Context, _ *emptypb.Empty) (*rpc.PingResponse, error) {
	return &rpc.PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) SignUp(ctx context.Context, req *rpc.SignUpRequest) (*rpc.SignUpResponse, error) {
	res, err := s.identity.SignUp(ctx, req.Email, req.Password, req.Name)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}
	if res.ConfirmationRequired {
		s.logger.Info(ctx, "Registered, confirmation pending", "email", req.Email)
		return &rpc.SignUpResponse{ConfirmationRequired: true}, nil
	}
	s.logger.Info(ctx, "Registered", "user_id", res.Session.User.ID)
	return &rpc.SignUpResponse{
		User:         userToRPC(res.Session.User),
		AccessToken:  res.Session.AccessToken,
		RefreshToken: res.Session.RefreshToken,
	}, nil
}

func (s *GRPCServer) SignIn(ctx context.Context, req *rpc.SignInRequest) (*rpc.AuthResponse, error) {
	sess, err := s.identity.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}
	return sessionToRPC(sess), nil
}

func (s *GRPCServer) SignOut(ctx context.Context, req *rpc.SignOutRequest) (*emptypb.Empty, error) {
	if err := s.identity.SignOut(ctx, req.RefreshToken); err != nil {
		return nil, s.mapError(ctx, err)
	}
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) GetSession(ctx context.Context, req *rpc.GetSessionRequest) (*rpc.AuthResponse, error) {
	if req.RefreshToken == "" {
		return nil, status.Error(codes.Unauthenticated, "missing refresh token")
	}
	sess, err := s.identity.RefreshSession(ctx, req.RefreshToken)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}
	return sessionToRPC(sess), nil
}

func (s *GRPCServer) ConfirmEmail(ctx context.Context, req *rpc.ConfirmEmailRequest) (*emptypb.Empty, error) {
	if err := s.identity.ConfirmEmail(ctx, req.Email, req.Code); err != nil {
		return nil, s.mapError(ctx, err)
	}
	return &emptypb.Empty{}, nil
}

// authorize checks that the caller acts on its own rows only.
func authorize(ctx context.Context, userID string) error {
	caller, ok := userIDFromContext(ctx)
	if !ok {
		return status.Error(codes.Unauthenticated, "unauthenticated")
	}
	if userID != caller {
		return status.Error(codes.PermissionDenied, "user mismatch")
	}
	return nil
}

func (s *GRPCServer) ListEntries(ctx context.Context, req *rpc.ListEntriesRequest) (*rpc.ListEntriesResponse, error) {
	if err := authorize(ctx, req.UserID); err != nil {
		return nil, err
	}
	items, err := s.entries.List(ctx, req.UserID)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}
	rows := make([]*rpc.EntryRow, 0, len(items))
	for _, e := range items {
		rows = append(rows, entryToRow(e))
	}
	return &rpc.ListEntriesResponse{Rows: rows}, nil
}

func (s *GRPCServer) UpsertEntry(ctx context.Context, req *rpc.UpsertEntryRequest) (*emptypb.Empty, error) {
	if req.Row == nil {
		return nil, status.Error(codes.InvalidArgument, "row is required")
	}
	if err := authorize(ctx, req.Row.UserID); err != nil {
		return nil, err
	}
	entry, err := rowToEntry(req.Row)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if err := s.entries.Upsert(ctx, entry); err != nil {
		return nil, s.mapError(ctx, err)
	}
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) DeleteEntry(ctx context.Context, req *rpc.DeleteEntryRequest) (*rpc.DeleteEntryResponse, error) {
	if err := authorize(ctx, req.UserID); err != nil {
		return nil, err
	}
	n, err := s.entries.Delete(ctx, req.ID, req.UserID)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}
	return &rpc.DeleteEntryResponse{Count: n}, nil
}

func (s *GRPCServer) ExportEntries(ctx context.Context, req *rpc.ExportEntriesRequest) (*rpc.ExportEntriesResponse, error) {
	if err := authorize(ctx, req.UserID); err != nil {
		return nil, err
	}
	key, url, err := s.exporter.Export(ctx, req.UserID)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}
	return &rpc.ExportEntriesResponse{Key: key, URL: url}, nil
}

func entryToRow(e *models.Entry) *rpc.EntryRow {
	row := &rpc.EntryRow{
		ID:        e.ID,
		UserID:    e.UserID,
		Title:     e.Title,
		Content:   e.Content,
		CreatedAt: e.CreatedAt.UTC().Format(timex.WireLayout),
		UpdatedAt: e.UpdatedAt.UTC().Format(timex.WireLayout),
		Tags:      e.Tags,
	}
	if e.AIInsight != nil {
		row.AIInsight = &rpc.Insight{Summary: e.AIInsight.Summary, Mood: e.AIInsight.Mood, Advice: e.AIInsight.Advice}
	}
	return row
}

func rowToEntry(r *rpc.EntryRow) (*models.Entry, error) {
	created, err := time.Parse(timex.WireLayout, r.CreatedAt)
	if err != nil {
		return nil, errors.New("invalid created_at")
	}
	updated, err := time.Parse(timex.WireLayout, r.UpdatedAt)
	if err != nil {
		return nil, errors.New("invalid updated_at")
	}
	e := &models.Entry{
		ID:        r.ID,
		UserID:    r.UserID,
		Title:     r.Title,
		Content:   r.Content,
		CreatedAt: created,
		UpdatedAt: updated,
		Tags:      r.Tags,
	}
	if r.AIInsight != nil {
		e.AIInsight = &models.Insight{Summary: r.AIInsight.Summary, Mood: r.AIInsight.Mood, Advice: r.AIInsight.Advice}
	}
	return e, nil
}
