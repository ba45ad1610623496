package models

// User is the identity returned by the server. It is never edited locally.
type User struct {
	ID    string
	Email string
	Name  string
}

// Session is the explicit identity handle passed around the client instead
// of any ambient global state.
type Session struct {
	User         User
	AccessToken  string
	RefreshToken string
}

// SignupStatus tags the variant held by a SignupResult.
type SignupStatus int

const (
	SignupAuthenticated SignupStatus = iota
	SignupConfirmationPending
)

// SignupResult is either Authenticated (Session set) or ConfirmationPending
// (Email set).
type SignupResult struct {
	Status  SignupStatus
	Session *Session
	Email   string
}

func Authenticated(s *Session) SignupResult {
	return SignupResult{Status: SignupAuthenticated, Session: s}
}

func ConfirmationPending(email string) SignupResult {
	return SignupResult{Status: SignupConfirmationPending, Email: email}
}
