package service

import "foodgram/internal/microservices/http-api/models"

// Viewer is the caller on whose behalf a read runs. The zero value is the
// anonymous viewer: every "is this mine" flag is false for it.
type Viewer struct {
	UserID  string
	IsAdmin bool
}

// Anonymous is the viewer for unauthenticated requests.
var Anonymous = Viewer{}

func ViewerOf(user *models.User) Viewer {
	if user == nil {
		return Anonymous
	}
	return Viewer{UserID: user.ID, IsAdmin: user.IsAdmin()}
}

func (v Viewer) IsAnonymous() bool {
	return v.UserID == ""
}

// CanMutateRecipe reports whether v may edit or delete recipe: its author
// or an admin.
func CanMutateRecipe(v Viewer, recipe *models.Recipe) bool {
	if v.IsAnonymous() || recipe == nil {
		return false
	}
	return v.IsAdmin || recipe.AuthorID == v.UserID
}
