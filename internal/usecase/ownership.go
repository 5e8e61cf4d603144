package usecase

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// AuthorizeMutation resolves the owning app and checks that actorID is its
// developer. It runs once per operation, before any store mutation.
func (u Usecase) AuthorizeMutation(ctx context.Context, appID uuid.UUID, actorID string) (App, error) {
	app, err := u.repo.GetAppByID(ctx, appID)
	if err != nil {
		return App{}, err
	}

	actor := normalizeID(actorID)
	if actor == "" || actor != normalizeID(app.DeveloperID) {
		return App{}, ErrUnauthorized{
			Message: "you do not have permission to modify assets of app " + appID.String(),
		}
	}

	return app, nil
}

// normalizeID lets ids stored as UUID text and ids carried as other string
// forms (braces, upper case, surrounding space) compare equal.
func normalizeID(id string) string {
	id = strings.TrimSpace(id)
	if v, err := uuid.Parse(id); err == nil {
		return v.String()
	}
	return id
}
