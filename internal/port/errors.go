package port

import "errors"

// Sentinel errors used across ports. Handlers map these onto HTTP statuses;
// everything else surfaces as a generic 400 with the wrapped message.
var (
	ErrConfiguration         = errors.New("calendar provider credentials not configured")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrIntegrationNotFound   = errors.New("calendar integration not found")
	ErrRefreshFailed         = errors.New("token refresh rejected by provider")
	ErrEventNotFound         = errors.New("calendar event not found")
	ErrInviteInvalid         = errors.New("invite token invalid")
	ErrInviteExpired         = errors.New("invite token expired")
	ErrInviteAlreadyAccepted = errors.New("invite already accepted")
	ErrPermissionDenied      = errors.New("permission denied")
	ErrStateInvalid          = errors.New("state token invalid")
	ErrNotFound              = errors.New("record not found")
	ErrDatabase              = errors.New("database operation failed")
)
