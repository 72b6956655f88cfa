package httpx

import (
	"net/http"
	"strconv"

	domainauth "github.com/target/coursedesk/internal/domain/auth"
	apperrors "github.com/target/coursedesk/internal/errors"
)

// pathID parses the {id} path value as a positive integer.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.ValidationField("id", "Invalid id")
	}
	return id, nil
}

// requestIdentity returns the identity RequireAuth placed in the context.
// A handler mounted without the guard gets AuthenticationRequired.
func requestIdentity(r *http.Request) (*domainauth.Identity, error) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		return nil, apperrors.AuthenticationRequired("Authentication required")
	}
	return id, nil
}
