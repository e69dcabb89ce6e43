package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// TokenInspector performs a best-effort look at the session token before the
// upstream hop. The upstream service owns the signing key, so signatures are
// never verified here; the only claim consulted is the expiration.
type TokenInspector struct {
	logger *zap.Logger
	parser *jwt.Parser
}

func NewTokenInspector(log *zap.Logger) *TokenInspector {
	return &TokenInspector{
		logger: log,
		parser: jwt.NewParser(),
	}
}

// Expired reports whether the token is a JWT whose exp claim has passed.
// Opaque tokens, tokens that do not parse as JWTs, and JWTs without an exp
// claim are never reported expired; the upstream remains the authority on
// those.
func (ti *TokenInspector) Expired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := ti.parser.ParseUnverified(token, claims); err != nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}

	if exp.Before(time.Now()) {
		ti.logger.Debug("session token expired",
			zap.Time("expired_at", exp.Time),
		)
		return true
	}

	return false
}
