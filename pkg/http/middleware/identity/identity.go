package identity

import (
	"net/http"
	"strconv"

	"github.com/craftora/marketplace/internal/service/models/identity"
)

// NewIdentityMiddleware reads the identity headers asserted by the auth
// gateway and attaches them to the request context. Requests without a
// user id pass through unauthenticated; handlers decide whether that is
// acceptable.
func NewIdentityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := strconv.ParseInt(r.Header.Get("X-User-Id"), 10, 64)
		if err != nil {
			next.ServeHTTP(w, r)

			return
		}

		who := identity.Identity{
			UserID: userID,
			Role:   identity.RoleUser,
		}

		if r.Header.Get("X-Role") == string(identity.RoleSeller) {
			who.Role = identity.RoleSeller
		}

		if shopID, err := strconv.ParseInt(r.Header.Get("X-Shop-Id"), 10, 64); err == nil {
			who.ShopID = shopID
		}

		next.ServeHTTP(w, r.WithContext(identity.WithContext(r.Context(), who)))
	})
}
