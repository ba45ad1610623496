package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/common"
	"github.com/dmitrijs2005/gophjournal/internal/logging"
	"github.com/dmitrijs2005/gophjournal/internal/rpc"
	"github.com/dmitrijs2005/gophjournal/internal/server/auth"
	"github.com/dmitrijs2005/gophjournal/internal/server/models"
	"github.com/dmitrijs2005/gophjournal/internal/server/services"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/test/bufconn"
)

const testSecret = "test-secret"

type fakeIdentity struct {
	signUpRes  *services.SignUpResult
	signUpErr  error
	signInRes  *services.Session
	signInErr  error
	confirmErr error
	refreshRes *services.Session
	refreshErr error
	signedOut  []string
}

func (f *fakeIdentity) SignUp(context.Context, string, string, string) (*services.SignUpResult, error) {
	return f.signUpRes, f.signUpErr
}
func (f *fakeIdentity) SignIn(context.Context, string, string) (*services.Session, error) {
	return f.signInRes, f.signInErr
}
func (f *fakeIdentity) ConfirmEmail(context.Context, string, string) error { return f.confirmErr }
func (f *fakeIdentity) RefreshSession(context.Context, string) (*services.Session, error) {
	return f.refreshRes, f.refreshErr
}
func (f *fakeIdentity) SignOut(_ context.Context, tok string) error {
	f.signedOut = append(f.signedOut, tok)
	return nil
}

type fakeEntries struct {
	rows      map[string]*models.Entry
	upsertErr error
}

func (f *fakeEntries) List(_ context.Context, userID string) ([]*models.Entry, error) {
	out := []*models.Entry{}
	for _, e := range f.rows {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEntries) Upsert(_ context.Context, e *models.Entry) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	if cur, ok := f.rows[e.ID]; ok && cur.UserID != e.UserID {
		return common.ErrOwnershipConflict
	}
	f.rows[e.ID] = e
	return nil
}

func (f *fakeEntries) Delete(_ context.Context, id, userID string) (int64, error) {
	if cur, ok := f.rows[id]; ok && cur.UserID == userID {
		delete(f.rows, id)
		return 1, nil
	}
	return 0, nil
}

type fakeExporter struct{ err error }

func (f fakeExporter) Export(_ context.Context, userID string) (string, string, error) {
	if f.err != nil {
		return "", "", f.err
	}
	return "exports/" + userID + "/x.json", "https://download/" + userID, nil
}

type harness struct {
	client   *rpc.JournalServiceClient
	identity *fakeIdentity
	entries  *fakeEntries
}

func startHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{identity: &fakeIdentity{}, entries: &fakeEntries{rows: map[string]*models.Entry{}}}
	s := NewGRPCServer("", logging.Nop(), h.identity, h.entries, fakeExporter{}, testSecret)

	lis := bufconn.Listen(1024 * 1024)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = s.Serve(ctx, lis)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	h.client = rpc.NewJournalServiceClient(conn)
	return h
}

func authed(t *testing.T, userID string, ttl time.Duration) context.Context {
	t.Helper()
	tok, err := auth.GenerateToken(userID, []byte(testSecret), ttl)
	require.NoError(t, err)
	return metadata.AppendToOutgoingContext(context.Background(), common.AccessTokenHeaderName, tok)
}
