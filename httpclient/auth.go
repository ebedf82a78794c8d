package httpclient

// AuthType identifies the authentication method.
type AuthType int

const (
	// AuthNone disables authentication.
	AuthNone AuthType = iota
	// AuthBearer uses Bearer token authentication.
	AuthBearer
	// AuthBasic uses HTTP Basic authentication.
	AuthBasic
)

// String returns the auth type name.
func (t AuthType) String() string {
	switch t {
	case AuthBearer:
		return "bearer"
	case AuthBasic:
		return "basic"
	default:
		return "none"
	}
}

// Auth is one of NoAuth, BasicAuth or BearerAuth. The set is closed.
type Auth interface {
	Type() AuthType
	isAuth()
}

// NoAuth explicitly disables authentication while still counting as configured.
type NoAuth struct{}

// BasicAuth sends credentials through the transport's basic-auth mechanism.
type BasicAuth struct {
	Username string
	Password string
}

// BearerAuth seeds an "Authorization: Bearer <token>" header.
type BearerAuth struct {
	Token string
}

func (NoAuth) Type() AuthType     { return AuthNone }
func (BasicAuth) Type() AuthType  { return AuthBasic }
func (BearerAuth) Type() AuthType { return AuthBearer }

func (NoAuth) isAuth()     {}
func (BasicAuth) isAuth()  {}
func (BearerAuth) isAuth() {}

// Basic returns a BasicAuth for username and password.
func Basic(username, password string) BasicAuth {
	return BasicAuth{Username: username, Password: password}
}

// Bearer returns a BearerAuth for token.
func Bearer(token string) BearerAuth {
	return BearerAuth{Token: token}
}
