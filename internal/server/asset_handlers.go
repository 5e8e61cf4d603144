package server

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/appshelf/appshelf/internal/config"
	"github.com/appshelf/appshelf/internal/usecase"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type StoredObject struct {
	Location string `json:"location"`
}

type AppAsset struct {
	ID          string           `json:"id"`
	AppID       string           `json:"app_id"`
	Icon        *StoredObject    `json:"icon,omitempty"`
	IconColors  map[int][4]uint8 `json:"icon_colors,omitempty"`
	Binary      *StoredObject    `json:"binary,omitempty"`
	BinarySize  int64            `json:"binary_size"`
	Screenshots []StoredObject   `json:"screenshots"`
	CreatedAt   string           `json:"created_at,omitzero"`
	UpdatedAt   string           `json:"updated_at,omitzero"`
}

type AppAssetURLs struct {
	AppID          string           `json:"app_id"`
	IconURL        *string          `json:"icon_url"`
	IconColors     map[int][4]uint8 `json:"icon_colors,omitempty"`
	BinaryURL      *string          `json:"binary_url"`
	BinarySize     int64            `json:"binary_size"`
	ScreenshotURLs []string         `json:"screenshot_urls"`
	UploadedAt     string           `json:"uploaded_at,omitzero"`
}

type DeleteAppAssetsResult struct {
	DeletedCount int `json:"deleted_count"`
	FailedCount  int `json:"failed_count"`
	Attempted    int `json:"attempted"`
}

type ObjectAudit struct {
	Slot     string `json:"slot"`
	Position int    `json:"position"`
	Status   string `json:"status"`
}

type AppAssetAudit struct {
	AppID   string        `json:"app_id"`
	Missing int           `json:"missing"`
	Objects []ObjectAudit `json:"objects"`
}

type AppIDRequest struct {
	ID string `param:"id" validate:"required,uuid"`
}

type AppQRRequest struct {
	ID   string `param:"id" validate:"required,uuid"`
	Size int    `query:"size" validate:"omitempty,gte=64,lte=1024"`
}

func (s *Server) bindAppID(ctx echo.Context) (uuid.UUID, error) {
	var req AppIDRequest
	if err := (&echo.DefaultBinder{}).BindPathParams(ctx, &req); err != nil {
		return uuid.Nil, usecase.ErrValidation{Field: "id", Message: err.Error()}
	}
	if err := s.validator.Struct(req); err != nil {
		return uuid.Nil, usecase.ErrValidation{Field: "id", Message: "must be a valid uuid"}
	}
	return uuid.Parse(req.ID)
}

func (s *Server) UpsertAppAssets(ctx echo.Context) error {
	uid, ok := userID(ctx)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, Res{Error: "user id not found in context"})
	}
	appID, err := s.bindAppID(ctx)
	if err != nil {
		return s.errorResponse(ctx, err)
	}

	form, err := ctx.MultipartForm()
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Res{Error: err.Error()})
	}
	slots, err := readAssetSlots(form)
	if err != nil {
		return s.errorResponse(ctx, err)
	}

	asset, err := s.server.UpsertAppAssets(ctx.Request().Context(), appID, uid, slots)
	if err != nil {
		return s.errorResponse(ctx, err)
	}

	return ctx.JSON(http.StatusOK, Res{Data: convertAppAsset(asset)})
}

func (s *Server) GetAppAssets(ctx echo.Context) error {
	appID, err := s.bindAppID(ctx)
	if err != nil {
		return s.errorResponse(ctx, err)
	}

	urls, err := s.server.GetAppAssets(ctx.Request().Context(), appID)
	if err != nil {
		return s.errorResponse(ctx, err)
	}

	screenshots := urls.ScreenshotURLs
	if screenshots == nil {
		screenshots = []string{}
	}

	return ctx.JSON(http.StatusOK, Res{Data: AppAssetURLs{
		AppID:          urls.AppID.String(),
		IconURL:        urls.IconURL,
		IconColors:     decodeColors(urls.IconColors),
		BinaryURL:      urls.BinaryURL,
		BinarySize:     urls.BinarySize,
		ScreenshotURLs: screenshots,
		UploadedAt:     formatTime(urls.UploadedAt),
	}})
}

func (s *Server) DeleteAppAssets(ctx echo.Context) error {
	uid, ok := userID(ctx)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, Res{Error: "user id not found in context"})
	}
	appID, err := s.bindAppID(ctx)
	if err != nil {
		return s.errorResponse(ctx, err)
	}

	res, err := s.server.DeleteAppAssets(ctx.Request().Context(), appID, uid)
	if err != nil {
		return s.errorResponse(ctx, err)
	}

	return ctx.JSON(http.StatusOK, Res{
		Data: DeleteAppAssetsResult{
			DeletedCount: res.Deleted,
			FailedCount:  len(res.Failed),
			Attempted:    res.Attempted,
		},
		Message: fmt.Sprintf("deleted %d of %d object(s)", res.Deleted, res.Attempted),
	})
}

func (s *Server) GetAppInstallQR(ctx echo.Context) error {
	var req AppQRRequest
	if err := (&echo.DefaultBinder{}).BindPathParams(ctx, &req); err != nil {
		return ctx.JSON(http.StatusBadRequest, Res{Error: err.Error()})
	}
	if err := (&echo.DefaultBinder{}).BindQueryParams(ctx, &req); err != nil {
		return ctx.JSON(http.StatusBadRequest, Res{Error: err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(http.StatusUnprocessableEntity, Res{Error: err.Error()})
	}
	appID, _ := uuid.Parse(req.ID)

	png, err := s.server.GetAppInstallQR(ctx.Request().Context(), appID, req.Size)
	if err != nil {
		return s.errorResponse(ctx, err)
	}

	ctx.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return ctx.Blob(http.StatusOK, "image/png", png)
}

func (s *Server) AuditAppAssets(ctx echo.Context) error {
	uid, ok := userID(ctx)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, Res{Error: "user id not found in context"})
	}
	appID, err := s.bindAppID(ctx)
	if err != nil {
		return s.errorResponse(ctx, err)
	}

	audit, err := s.server.AuditAppAssets(ctx.Request().Context(), appID, uid)
	if err != nil {
		return s.errorResponse(ctx, err)
	}

	objects := make([]ObjectAudit, 0, len(audit.Objects))
	for _, o := range audit.Objects {
		objects = append(objects, ObjectAudit{
			Slot:     o.Slot,
			Position: o.Position,
			Status:   string(o.Status),
		})
	}

	return ctx.JSON(http.StatusOK, Res{Data: AppAssetAudit{
		AppID:   audit.AppID.String(),
		Missing: audit.Missing(),
		Objects: objects,
	}})
}

var assetFields = map[string]bool{
	config.SLOT_ICON:        true,
	config.SLOT_BINARY:      true,
	config.SLOT_SCREENSHOTS: true,
}

// readAssetSlots decodes the multipart files into slots. Fields that were
// not sent stay nil so the engine leaves those slots untouched.
func readAssetSlots(form *multipart.Form) (usecase.AssetSlots, error) {
	for field := range form.File {
		if !assetFields[field] {
			return usecase.AssetSlots{}, usecase.ErrValidation{Field: field, Message: "unexpected file field"}
		}
	}

	var (
		slots usecase.AssetSlots
		err   error
	)
	if slots.Icon, err = readFiles(form, config.SLOT_ICON); err != nil {
		return usecase.AssetSlots{}, err
	}
	if slots.Binary, err = readFiles(form, config.SLOT_BINARY); err != nil {
		return usecase.AssetSlots{}, err
	}
	if slots.Screenshots, err = readFiles(form, config.SLOT_SCREENSHOTS); err != nil {
		return usecase.AssetSlots{}, err
	}
	return slots, nil
}

func readFiles(form *multipart.Form, field string) ([]usecase.File, error) {
	headers := form.File[field]
	if len(headers) == 0 {
		return nil, nil
	}

	files := make([]usecase.File, 0, len(headers))
	for _, fh := range headers {
		f, err := readFile(field, fh)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

func readFile(field string, fh *multipart.FileHeader) (usecase.File, error) {
	if fh.Size > config.MAX_FILE_SIZE {
		return usecase.File{}, usecase.ErrValidation{
			Field:   field,
			Message: fmt.Sprintf("%s exceeds %d bytes", fh.Filename, config.MAX_FILE_SIZE),
		}
	}

	src, err := fh.Open()
	if err != nil {
		return usecase.File{}, err
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, config.MAX_FILE_SIZE+1))
	if err != nil {
		return usecase.File{}, err
	}

	return usecase.File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        int64(len(data)),
		Data:        data,
	}, nil
}

func convertAppAsset(a usecase.AppAsset) AppAsset {
	out := AppAsset{
		ID:          a.ID.String(),
		AppID:       a.AppID.String(),
		IconColors:  decodeColors(a.IconColors),
		BinarySize:  a.BinarySize,
		Screenshots: make([]StoredObject, 0, len(a.Screenshots)),
		CreatedAt:   formatTime(a.CreatedAt),
		UpdatedAt:   formatTime(a.UpdatedAt),
	}
	if !a.Icon.IsZero() {
		out.Icon = &StoredObject{Location: a.Icon.Location}
	}
	if !a.Binary.IsZero() {
		out.Binary = &StoredObject{Location: a.Binary.Location}
	}
	for _, sc := range a.Screenshots {
		out.Screenshots = append(out.Screenshots, StoredObject{Location: sc.Location})
	}
	return out
}

func decodeColors(b []byte) map[int][4]uint8 {
	if len(b) == 0 {
		return nil
	}
	var colors map[int][4]uint8
	if err := json.Unmarshal(b, &colors); err != nil {
		return nil
	}
	return colors
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
