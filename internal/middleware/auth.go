package middleware

import (
	"errors"
	"net/http"
	"strings"

	"careerquest/internal/config"
	"careerquest/internal/contextutils"
	"careerquest/internal/response"
	"careerquest/internal/services"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

var errNoToken = errors.New("no bearer token")

// AuthResult is the outcome of verifying a request token
type AuthResult struct {
	Subject string
	Role    string
}

// AuthMiddleware verifies HS256 tokens issued by the external identity
// provider. With no secret configured every request passes as anonymous.
type AuthMiddleware struct {
	config *config.AuthConfig
	secret []byte
	logger *zap.Logger
}

// NewAuthMiddleware creates the token verification middleware
func NewAuthMiddleware(cfg *config.AuthConfig, logger *zap.Logger) *AuthMiddleware {
	settings := config.AuthConfig{}
	if cfg != nil {
		settings = *cfg
	}
	if settings.RoleClaim == "" {
		settings.RoleClaim = "role"
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AuthMiddleware{
		config: &settings,
		secret: []byte(settings.JWTSecret),
		logger: logger,
	}
}

// Authenticate stores the subject and role of a valid bearer token in the
// context. Requests without a token continue anonymously; an invalid token
// is rejected with 401.
func (am *AuthMiddleware) Authenticate() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !am.config.Enabled() {
				next.ServeHTTP(w, r)
				return
			}

			result, err := am.authenticateJWT(r)
			switch {
			case errors.Is(err, errNoToken):
				next.ServeHTTP(w, r)
				return
			case err != nil:
				GetRequestLogger(r.Context()).Info("Token rejected", zap.Error(err))
				response.QuickError(w, r, services.NewUnauthorizedError("invalid or expired token"))
				return
			}

			ctx := contextutils.WithUserID(r.Context(), result.Subject)
			ctx = contextutils.WithUserRole(ctx, result.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects anonymous requests
func (am *AuthMiddleware) RequireAuth() func(http.Handler) http.Handler {
	return am.RequireRole()
}

// RequireRole rejects anonymous requests and, when roles are given, callers
// whose role claim is not one of them
func (am *AuthMiddleware) RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !am.config.Enabled() {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			if contextutils.GetUserID(ctx) == "" {
				response.QuickError(w, r, services.NewUnauthorizedError("authentication required"))
				return
			}

			if len(roles) > 0 && !hasRole(contextutils.GetUserRole(ctx), roles) {
				GetRequestLogger(ctx).Info("Role check failed",
					zap.String("user_id", contextutils.GetUserID(ctx)),
					zap.String("role", contextutils.GetUserRole(ctx)),
					zap.Strings("required_roles", roles),
				)
				response.QuickError(w, r, services.NewForbiddenError("insufficient role"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func hasRole(role string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(role, a) {
			return true
		}
	}
	return false
}

func (am *AuthMiddleware) authenticateJWT(r *http.Request) (*AuthResult, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, errNoToken
	}

	scheme, tokenString, ok := strings.Cut(authHeader, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || tokenString == "" {
		return nil, errors.New("invalid authorization header format")
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if am.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(am.config.Issuer))
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return am.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("token not valid")
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return nil, errors.New("token has no subject")
	}

	return &AuthResult{
		Subject: subject,
		Role:    roleFromClaims(claims, am.config.RoleClaim),
	}, nil
}

// roleFromClaims accepts a string claim or a list, in which case the first
// string entry wins
func roleFromClaims(claims jwt.MapClaims, name string) string {
	switch v := claims[name].(type) {
	case string:
		return v
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				return s
			}
		}
	}
	return ""
}
