package usecase

import (
	"time"

	"github.com/appshelf/appshelf/internal/config"
	"github.com/google/uuid"
)

// File is a raw payload destined for one slot.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Data        []byte
}

// StoredObject addresses one physical object. Key is store-internal and is
// never reused after a delete.
type StoredObject struct {
	Location string
	Key      string
}

func (o StoredObject) IsZero() bool {
	return o.Key == ""
}

// App is the owner record of an AppAsset.
type App struct {
	ID          uuid.UUID
	Name        string
	DeveloperID string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type AppAsset struct {
	ID                uuid.UUID
	AppID             uuid.UUID
	Icon              StoredObject
	IconContentType   string
	IconColors        []byte
	Binary            StoredObject
	BinarySize        int64
	BinaryContentType string
	Screenshots       []StoredObject
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Keys returns every stored key referenced by the record, icon first, then
// binary, then screenshots in display order.
func (a AppAsset) Keys() []string {
	keys := make([]string, 0, 2+len(a.Screenshots))
	if !a.Icon.IsZero() {
		keys = append(keys, a.Icon.Key)
	}
	if !a.Binary.IsZero() {
		keys = append(keys, a.Binary.Key)
	}
	for _, s := range a.Screenshots {
		if !s.IsZero() {
			keys = append(keys, s.Key)
		}
	}
	return keys
}

func (a AppAsset) clone() AppAsset {
	c := a
	c.Screenshots = append([]StoredObject(nil), a.Screenshots...)
	c.IconColors = append([]byte(nil), a.IconColors...)
	return c
}

// AssetSlots holds the payloads supplied for each application slot. A nil
// slice means the slot was not supplied.
type AssetSlots struct {
	Icon        []File
	Binary      []File
	Screenshots []File
}

func (s AssetSlots) Empty() bool {
	return len(s.Icon) == 0 && len(s.Binary) == 0 && len(s.Screenshots) == 0
}

func (s AssetSlots) Count() int {
	return len(s.Icon) + len(s.Binary) + len(s.Screenshots)
}

// Validate checks per-slot cardinality and payload limits.
func (s AssetSlots) Validate() error {
	if s.Empty() {
		return ErrValidation{Message: "at least one file is required"}
	}
	if len(s.Icon) > 1 {
		return ErrValidation{Field: config.SLOT_ICON, Message: "only one file is allowed"}
	}
	if len(s.Binary) > 1 {
		return ErrValidation{Field: config.SLOT_BINARY, Message: "only one file is allowed"}
	}
	if len(s.Screenshots) > config.MAX_SCREENSHOTS {
		return ErrValidation{
			Field:   config.SLOT_SCREENSHOTS,
			Message: "too many files",
		}
	}
	for _, slot := range []struct {
		name  string
		files []File
	}{
		{config.SLOT_ICON, s.Icon},
		{config.SLOT_BINARY, s.Binary},
		{config.SLOT_SCREENSHOTS, s.Screenshots},
	} {
		for _, f := range slot.files {
			if err := validateFile(slot.name, f); err != nil {
				return err
			}
		}
	}
	return nil
}

// requireAll enforces the creation-path minimums: one icon, one binary and
// at least one screenshot.
func (s AssetSlots) requireAll() error {
	switch {
	case len(s.Icon) == 0:
		return ErrMissingRequiredSlot{Slot: config.SLOT_ICON}
	case len(s.Binary) == 0:
		return ErrMissingRequiredSlot{Slot: config.SLOT_BINARY}
	case len(s.Screenshots) == 0:
		return ErrMissingRequiredSlot{Slot: config.SLOT_SCREENSHOTS}
	}
	return nil
}

func validateFile(field string, f File) error {
	if len(f.Data) == 0 {
		return ErrValidation{Field: field, Message: "file is empty"}
	}
	if len(f.Data) > config.MAX_FILE_SIZE {
		return ErrValidation{Field: field, Message: "file exceeds the size limit"}
	}
	return nil
}

type ProfileImage struct {
	ID          uuid.UUID
	UserID      string
	Key         string
	Location    string
	ContentType string
	Size        int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProfileImageURL is what callers see: the stored key is replaced by a
// presigned URL. URL is nil when presigning failed. Created is set by an
// upload that made the user's first record.
type ProfileImageURL struct {
	ID          uuid.UUID
	URL         *string
	ContentType string
	Size        int64
	UploadedAt  time.Time
	Created     bool
}

type AppAssetURLs struct {
	AppID          uuid.UUID
	IconURL        *string
	IconColors     []byte
	BinaryURL      *string
	BinarySize     int64
	ScreenshotURLs []string
	UploadedAt     time.Time
}
