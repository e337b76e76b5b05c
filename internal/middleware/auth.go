package middleware // middleware provides shared request processing for handlers

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/classic-spotlight/internal/utils"
)

// InternalKeyHeader carries the shared internal API key.
const InternalKeyHeader = "x-internal-api-key"

// Context keys set by Authenticator.Identify and Authenticator.Middleware.
const (
	CtxCallerKey   = "caller"
	CtxRoleKey     = "role"
	ctxIdentityKey = "identity"
)

// Authentication failures.  Each maps to a 401 with the message in
// authMessages.
var (
	ErrKeyNotConfigured = errors.New("internal api key is not configured")
	ErrKeyMissing       = errors.New("missing internal api key")
	ErrKeyInvalid       = errors.New("invalid internal api key")
	ErrRoleForbidden    = errors.New("role not allowed")

	// errKeyUnverified means the key needs a bcrypt comparison that the
	// cheap pass does not run.
	errKeyUnverified = errors.New("internal api key not verified yet")
)

var authMessages = map[error]string{
	ErrKeyNotConfigured:   "Internal API key is not configured",
	ErrKeyMissing:         "Missing internal API key",
	ErrKeyInvalid:         "Invalid internal API key",
	utils.ErrTokenInvalid: "invalid token",
	ErrRoleForbidden:      "forbidden",
}

// AuthConfig configures internal caller authentication.  Any of APIKey
// (plaintext), APIKeyBcrypt (bcrypt hash) or JWTSecret may be set.  Roles
// lists the JWT roles that are allowed; it defaults to SCHEDULER and ADMIN.
type AuthConfig struct {
	APIKey       string
	APIKeyBcrypt string
	JWTSecret    string
	Roles        []string
}

// Identity is an authenticated internal caller.
type Identity struct {
	Subject string
	Role    string
}

// Authenticator validates internal callers by API key or service JWT.
type Authenticator struct {
	cfg    AuthConfig
	roles  map[string]bool
	verify func(hash, key string) bool

	// verified holds the sha256 of the last key that matched the bcrypt
	// hash, so a known caller is recognised without hashing again.
	verified atomic.Pointer[[sha256.Size]byte]
}

// NewAuthenticator builds an Authenticator from cfg.
func NewAuthenticator(cfg AuthConfig) *Authenticator {
	roles := cfg.Roles
	if len(roles) == 0 {
		roles = []string{utils.RoleScheduler, utils.RoleAdmin}
	}
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return &Authenticator{cfg: cfg, roles: allowed, verify: utils.VerifyKey}
}

// Authenticate checks the request.  A bearer token is used when a JWT
// secret is configured; otherwise the x-internal-api-key header is
// compared against the configured key.
func (a *Authenticator) Authenticate(r *http.Request) (Identity, error) {
	return a.authenticate(r, true)
}

// authenticate runs the checks.  With full unset it never runs bcrypt and
// returns errKeyUnverified for a key only a bcrypt comparison could accept.
func (a *Authenticator) authenticate(r *http.Request, full bool) (Identity, error) {
	if raw, ok := bearer(r); ok && a.cfg.JWTSecret != "" {
		claims, err := utils.ParseServiceToken(a.cfg.JWTSecret, raw)
		if err != nil {
			return Identity{}, utils.ErrTokenInvalid
		}
		if !a.roles[claims.Role] {
			return Identity{}, ErrRoleForbidden
		}
		return Identity{Subject: claims.Subject, Role: claims.Role}, nil
	}

	if a.cfg.APIKey == "" && a.cfg.APIKeyBcrypt == "" {
		return Identity{}, ErrKeyNotConfigured
	}
	provided := r.Header.Get(InternalKeyHeader)
	if provided == "" {
		return Identity{}, ErrKeyMissing
	}
	if err := a.matchKey(provided, full); err != nil {
		return Identity{}, err
	}
	return Identity{Subject: "internal-key", Role: utils.RoleScheduler}, nil
}

func (a *Authenticator) matchKey(provided string, full bool) error {
	if a.cfg.APIKey != "" && subtle.ConstantTimeCompare([]byte(provided), []byte(a.cfg.APIKey)) == 1 {
		return nil
	}
	if a.cfg.APIKeyBcrypt == "" {
		return ErrKeyInvalid
	}
	sum := sha256.Sum256([]byte(provided))
	if known := a.verified.Load(); known != nil && subtle.ConstantTimeCompare(sum[:], known[:]) == 1 {
		return nil
	}
	if !full {
		return errKeyUnverified
	}
	if !a.verify(a.cfg.APIKeyBcrypt, provided) {
		return ErrKeyInvalid
	}
	a.verified.Store(&sum)
	return nil
}

// Identify stores the caller's identity in the context when it can be
// established without bcrypt.  It never rejects; Middleware does that.
// Mount it before the rate limiter so limits key on the caller and
// internal callers can bypass them.
func (a *Authenticator) Identify() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if id, err := a.authenticate(c.Request(), false); err == nil {
				setIdentity(c, id)
			}
			return next(c)
		}
	}
}

// Valid reports whether Identify recognised the caller.
func (a *Authenticator) Valid(c echo.Context) bool {
	_, ok := IdentityFrom(c)
	return ok
}

// IdentityFrom returns the identity stored for this request, if any.
func IdentityFrom(c echo.Context) (Identity, bool) {
	id, ok := c.Get(ctxIdentityKey).(Identity)
	return id, ok
}

func setIdentity(c echo.Context, id Identity) {
	c.Set(ctxIdentityKey, id)
	c.Set(CtxCallerKey, id.Subject)
	c.Set(CtxRoleKey, id.Role)
}

// Middleware returns an Echo middleware that rejects unauthenticated
// requests.  A caller already recognised by Identify passes straight
// through; anyone else gets the full check.
func (a *Authenticator) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := IdentityFrom(c); ok {
				return next(c)
			}
			id, err := a.Authenticate(c.Request())
			if err != nil {
				status := http.StatusUnauthorized
				if errors.Is(err, ErrRoleForbidden) {
					status = http.StatusForbidden
				}
				return c.JSON(status, echo.Map{"error": authMessages[err]})
			}
			setIdentity(c, id)
			return next(c)
		}
	}
}

func bearer(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	return raw, raw != ""
}
