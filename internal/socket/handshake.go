package socket

import (
	"errors"

	"pingly-server/internal/services"

	"github.com/gofrs/uuid"
)

var (
	errMissingToken = errors.New("missing token")
	errInvalidToken = errors.New("invalid token")
)

// authenticateHandshake extracts the access token from the socket.io auth
// payload ({ auth: { token } } on the client) and validates it.
func authenticateHandshake(tokens *services.TokenService, auth any) (*services.TokenClaims, error) {
	payload, ok := auth.(map[string]any)
	if !ok {
		return nil, errMissingToken
	}
	token, ok := payload["token"].(string)
	if !ok || token == "" {
		return nil, errMissingToken
	}
	claims, err := tokens.ValidateAccessToken(token)
	if err != nil {
		return nil, errInvalidToken
	}
	return claims, nil
}

// eventPayload pulls the first argument of a socket event as an object.
func eventPayload(data []any) (map[string]any, bool) {
	if len(data) == 0 {
		return nil, false
	}
	payload, ok := data[0].(map[string]any)
	return payload, ok
}

func payloadUUID(payload map[string]any, key string) (uuid.UUID, error) {
	raw, _ := payload[key].(string)
	return uuid.FromString(raw)
}
