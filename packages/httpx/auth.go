package httpx

// AuthKind enumerates the supported authentication schemes. The set is
// closed; unknown textual kinds parse to AuthUnrecognized so misspelled
// auth references are visible instead of silently dropped.
type AuthKind int

const (
	AuthNone AuthKind = iota
	AuthBearer
	AuthBasic
	AuthAPIKeyHeader
	AuthAPIKeyQuery
	AuthUnrecognized
)

func ParseAuthKind(s string) AuthKind {
	switch s {
	case "", "none":
		return AuthNone
	case "bearer":
		return AuthBearer
	case "basic":
		return AuthBasic
	case "apikey_header":
		return AuthAPIKeyHeader
	case "apikey_query":
		return AuthAPIKeyQuery
	default:
		return AuthUnrecognized
	}
}

func (k AuthKind) String() string {
	switch k {
	case AuthNone:
		return "none"
	case AuthBearer:
		return "bearer"
	case AuthBasic:
		return "basic"
	case AuthAPIKeyHeader:
		return "apikey_header"
	case AuthAPIKeyQuery:
		return "apikey_query"
	default:
		return "unrecognized"
	}
}

// Auth holds the concrete credential material for one request. Which
// fields are meaningful depends on Kind: Token for bearer,
// Username/Password for basic, Key/Value for the API-key kinds.
type Auth struct {
	Kind     AuthKind
	Token    string
	Username string
	Password string
	Key      string
	Value    string
}
