package middleware

import (
	"net/http"
	"strings"

	"telar/internal/config"
	"telar/internal/contextutils"
	"telar/internal/response"
	"telar/internal/services"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Auth verifies bearer tokens and places the authenticated user id in the
// request context. Tokens are issued by the identity provider; this service
// only validates signature, expiry and issuer.
type Auth struct {
	config  *config.AuthConfig
	builder *response.Builder
	logger  *zap.Logger
}

// NewAuth creates the authentication middleware
func NewAuth(cfg *config.AuthConfig, builder *response.Builder, logger *zap.Logger) *Auth {
	return &Auth{
		config:  cfg,
		builder: builder,
		logger:  logger,
	}
}

// Require rejects requests without a valid bearer token.
func (a *Auth) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := a.authenticate(r)
		if err != nil {
			a.builder.WriteError(w, r, err)
			return
		}

		ctx := contextutils.WithUserID(r.Context(), userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Optional attaches the user id when a valid token is present but lets
// anonymous requests through.
func (a *Auth) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userID, err := a.authenticate(r); err == nil {
			r = r.WithContext(contextutils.WithUserID(r.Context(), userID))
		}
		next.ServeHTTP(w, r)
	})
}

func (a *Auth) authenticate(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", services.NewUnauthorizedError("Missing authorization header")
	}

	tokenString, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return "", services.NewUnauthorizedError("Invalid authorization header")
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(a.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		a.logger.Debug("Token validation failed",
			zap.String("request_id", contextutils.GetRequestID(r.Context())),
			zap.Error(err))
		return "", services.NewUnauthorizedError("Invalid or expired token")
	}

	if a.config.JWTIssuer != "" && claims.Issuer != a.config.JWTIssuer {
		return "", services.NewUnauthorizedError("Invalid token issuer")
	}

	if claims.Subject == "" {
		return "", services.NewUnauthorizedError("Token has no subject")
	}

	return claims.Subject, nil
}
