package database

import (
	"testing"

	"github.com/appshelf/appshelf/internal/usecase"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppAssetConversionKeepsScreenshotOrder(t *testing.T) {
	in := usecase.AppAsset{
		ID:         uuid.New(),
		AppID:      uuid.New(),
		Icon:       usecase.StoredObject{Location: "https://s/icon", Key: "apps/x/icon/1.png"},
		IconColors: []byte(`{"0":[1,2,3,255]}`),
		Binary:     usecase.StoredObject{Location: "https://s/bin", Key: "apps/x/appFile/2.apk"},
		BinarySize: 42,
		Screenshots: []usecase.StoredObject{
			{Location: "https://s/c", Key: "c"},
			{Location: "https://s/a", Key: "a"},
			{Location: "https://s/b", Key: "b"},
		},
	}

	row, err := convertAppAssetFrom(in)
	require.NoError(t, err)
	assert.Equal(t, "apps/x/icon/1.png", row.IconKey)
	assert.Equal(t, "https://s/bin", row.BinaryURL)

	out, err := row.ConvertToUsecase()
	require.NoError(t, err)
	assert.Equal(t, in.Screenshots, out.Screenshots)
	assert.Equal(t, in.Icon, out.Icon)
	assert.Equal(t, in.Binary, out.Binary)
	assert.Equal(t, in.Keys(), out.Keys())
}

func TestAppAssetConversionEmptyScreenshots(t *testing.T) {
	out, err := AppAsset{AppID: uuid.New()}.ConvertToUsecase()
	require.NoError(t, err)
	assert.Empty(t, out.Screenshots)

	_, err = AppAsset{Screenshots: []byte("{not json")}.ConvertToUsecase()
	assert.Error(t, err)
}
