// Package acl is the anti-corruption layer between the remote quote source
// and the domain.
//
// The remote endpoint is a placeholder posts API. Its records look like
// {"userId":1,"id":1,"title":"...","body":"..."}; only id and title are
// meaningful here. The ACL keeps that shape out of the domain:
//
//   - External DTOs are unexported and never leave this package
//   - HTTP status codes and client failures map to domain errors
//   - Remote records are validated before they become [domain.Quote] values
//
// Error mapping:
//   - 404 Not Found → [domain.ErrNotFound]
//   - 409 Conflict → [domain.ErrConflict]
//   - 400/422 → [domain.ErrValidation]
//   - 401/403, 429, 5xx and transport failures → [domain.ErrUnavailable]
//
// Client-level errors ([clients.ErrCircuitOpen], [clients.ErrMaxRetriesExceeded])
// also become [domain.ErrUnavailable], which the reconciler reports as a failed sync.
package acl
