// Package rpc defines the JournalService wire contract: request and response
// messages, the gRPC service descriptor, and a typed client.
package rpc

// User is the identity returned by the identity provider.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type PingResponse struct {
	Status string `json:"status"`
}

type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// SignUpResponse either carries a session (User and tokens) or reports that
// the account must be confirmed before the first sign-in.
type SignUpResponse struct {
	User                 *User  `json:"user,omitempty"`
	AccessToken          string `json:"access_token,omitempty"`
	RefreshToken         string `json:"refresh_token,omitempty"`
	ConfirmationRequired bool   `json:"confirmation_required"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type SignOutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type GetSessionRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type ConfirmEmailRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// Insight is the AI annotation attached to an entry.
type Insight struct {
	Summary string `json:"summary"`
	Mood    string `json:"mood"`
	Advice  string `json:"advice"`
}

// EntryRow is the store's representation of a journal entry. Timestamps are
// RFC 3339 strings; Tags and AIInsight may be null.
type EntryRow struct {
	ID        string   `json:"id"`
	UserID    string   `json:"user_id"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
	Tags      []string `json:"tags"`
	AIInsight *Insight `json:"ai_insight"`
}

type ListEntriesRequest struct {
	UserID string `json:"user_id"`
}

type ListEntriesResponse struct {
	Rows []*EntryRow `json:"rows"`
}

type UpsertEntryRequest struct {
	Row *EntryRow `json:"row"`
}

type DeleteEntryRequest struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
}

// DeleteEntryResponse reports how many rows the owner-scoped delete removed.
type DeleteEntryResponse struct {
	Count int64 `json:"count"`
}

type ExportEntriesRequest struct {
	UserID string `json:"user_id"`
}

type ExportEntriesResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}
