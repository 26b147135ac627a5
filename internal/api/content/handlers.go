// internal/api/content/handlers.go
package content

import (
	"net/http"

	"github.com/matchdayhq/clubsite/internal/api/apiutil"
	"github.com/matchdayhq/clubsite/internal/api/authz"
	"github.com/matchdayhq/clubsite/internal/clubs"
	"github.com/matchdayhq/clubsite/internal/store"
)

const (
	clubPathKey    = "club"
	articlePathKey = "id"
)

var (
	resolver *clubs.Resolver
	contents store.ContentRepository
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(r *clubs.Resolver, c store.ContentRepository) {
	resolver = r
	contents = c
}

type likeResponse struct {
	LikeCount int64 `json:"likeCount"`
	Liked     bool  `json:"liked"`
}

// POST /api/clubs/{club}/news/{id}/like
//
// Toggles the caller's like on the article. Signed-in visitors only; the
// toggle is atomic so concurrent taps settle on a consistent count.
func HandleToggleLike(w http.ResponseWriter, r *http.Request) {
	uid, err := authz.RequireUID(r.Context())
	if err != nil {
		apiutil.WriteDomainError(w, r, err, "like toggle failed")
		return
	}

	res, err := resolver.Resolve(r.Context(), r.PathValue(clubPathKey), clubs.FlowPublic)
	if err != nil {
		apiutil.WriteDomainError(w, r, err, "like toggle failed")
		return
	}

	articleID := r.PathValue(articlePathKey)
	if articleID == "" {
		apiutil.WriteError(w, http.StatusBadRequest, "article id is required")
		return
	}

	count, liked, err := contents.ToggleNewsLike(r.Context(), res.OwnerUID, articleID, uid)
	if err != nil {
		apiutil.WriteDomainError(w, r, err, "like toggle failed")
		return
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, likeResponse{LikeCount: count, Liked: liked})
}
