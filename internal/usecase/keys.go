package usecase

import (
	"mime"
	"path"
	"strings"

	"github.com/google/uuid"
)

// Object keys embed a fresh UUID so a key is never reused, even when the
// same slot is replaced repeatedly.

func appAssetKey(appID uuid.UUID, slot string, f File) string {
	return path.Join("apps", appID.String(), slot, uuid.NewString()+extension(f))
}

func profileImageKey(userID string, f File) string {
	return path.Join("profile-images", safeSegment(userID), uuid.NewString()+extension(f))
}

// safeSegment keeps an identity usable as one key segment; anything outside
// [A-Za-z0-9_-] becomes '_' so "/" and ".." cannot change the prefix.
func safeSegment(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, s)
}

func extension(f File) string {
	ext := strings.ToLower(path.Ext(f.Name))
	if ext != "" && len(ext) <= 8 && isAlnum(ext[1:]) {
		return ext
	}
	if f.ContentType == "" {
		return ""
	}
	exts, err := mime.ExtensionsByType(f.ContentType)
	if err != nil || len(exts) == 0 {
		return ""
	}
	return exts[0]
}

func isAlnum(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
