package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeID(t *testing.T) {
	id := uuid.New()

	assert.Equal(t, id.String(), normalizeID(strings.ToUpper(id.String())))
	assert.Equal(t, id.String(), normalizeID("{"+id.String()+"}"))
	assert.Equal(t, id.String(), normalizeID(" "+id.String()+"\n"))
	assert.Equal(t, "firebase-uid", normalizeID("firebase-uid"))
}

func TestAuthorizeMutation(t *testing.T) {
	h := newHarness()
	developer := uuid.New()
	app := h.repo.addApp(developer.String())

	got, err := h.uc.AuthorizeMutation(context.Background(), app.ID, strings.ToUpper(developer.String()))
	require.NoError(t, err)
	assert.Equal(t, app.ID, got.ID)

	_, err = h.uc.AuthorizeMutation(context.Background(), app.ID, "")
	var uerr ErrUnauthorized
	assert.ErrorAs(t, err, &uerr)

	_, err = h.uc.AuthorizeMutation(context.Background(), app.ID, uuid.NewString())
	assert.ErrorAs(t, err, &uerr)

	_, err = h.uc.AuthorizeMutation(context.Background(), uuid.New(), developer.String())
	var nf ErrNotFound
	assert.ErrorAs(t, err, &nf)
}
