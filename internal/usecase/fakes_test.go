package usecase

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync"
	"time"

	"github.com/google/uuid"
)

type fakeRepo struct {
	mu     sync.Mutex
	apps   map[uuid.UUID]App
	assets map[uuid.UUID]AppAsset
	images map[string]ProfileImage

	saveErr   error
	deleteErr error

	creates int
	updates int
	deletes int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		apps:   make(map[uuid.UUID]App),
		assets: make(map[uuid.UUID]AppAsset),
		images: make(map[string]ProfileImage),
	}
}

func (r *fakeRepo) addApp(developerID string) App {
	r.mu.Lock()
	defer r.mu.Unlock()
	app := App{ID: uuid.New(), Name: "app", DeveloperID: developerID}
	r.apps[app.ID] = app
	return app
}

func (r *fakeRepo) asset(appID uuid.UUID) (AppAsset, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.assets[appID]
	return a.clone(), ok
}

func (r *fakeRepo) Health() map[string]string { return map[string]string{"status": "up"} }
func (r *fakeRepo) Close() error { return nil }

func (r *fakeRepo) GetAppByID(_ context.Context, id uuid.UUID) (App, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.apps[id]
	if !ok {
		return App{}, ErrNotFound{ID: id, Code: "app_not_found", Message: "app not found"}
	}
	return app, nil
}

func (r *fakeRepo) GetAppAssetByAppID(_ context.Context, appID uuid.UUID) (AppAsset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.assets[appID]
	if !ok {
		return AppAsset{}, ErrNotFound{ID: appID, Code: "app_asset_not_found", Message: "app asset not found"}
	}
	return a.clone(), nil
}

func (r *fakeRepo) CreateAppAsset(_ context.Context, a AppAsset) (AppAsset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	if r.saveErr != nil {
		return AppAsset{}, r.saveErr
	}
	if _, ok := r.assets[a.AppID]; ok {
		return AppAsset{}, errors.New("duplicate app asset")
	}
	a.ID = uuid.New()
	r.assets[a.AppID] = a.clone()
	return a, nil
}

func (r *fakeRepo) UpdateAppAsset(_ context.Context, a AppAsset) (AppAsset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates++
	if r.saveErr != nil {
		return AppAsset{}, r.saveErr
	}
	r.assets[a.AppID] = a.clone()
	return a, nil
}

func (r *fakeRepo) DeleteAppAsset(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deletes++
	if r.deleteErr != nil {
		return r.deleteErr
	}
	for appID, a := range r.assets {
		if a.ID == id {
			delete(r.assets, appID)
		}
	}
	return nil
}

func (r *fakeRepo) ListProfileImages(_ context.Context, userID string) ([]ProfileImage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []ProfileImage
	if img, ok := r.images[userID]; ok {
		list = append(list, img)
	}
	return list, nil
}

func (r *fakeRepo) GetProfileImageByUserID(_ context.Context, userID string) (ProfileImage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	img, ok := r.images[userID]
	if !ok {
		return ProfileImage{}, ErrNotFound{Code: "profile_image_not_found", Message: "profile image not found"}
	}
	return img, nil
}

func (r *fakeRepo) CreateProfileImage(_ context.Context, img ProfileImage) (ProfileImage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	if r.saveErr != nil {
		return ProfileImage{}, r.saveErr
	}
	img.ID = uuid.New()
	img.CreatedAt = time.Now()
	img.UpdatedAt = img.CreatedAt
	r.images[img.UserID] = img
	return img, nil
}

func (r *fakeRepo) UpdateProfileImage(_ context.Context, img ProfileImage) (ProfileImage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates++
	if r.saveErr != nil {
		return ProfileImage{}, r.saveErr
	}
	img.UpdatedAt = time.Now()
	r.images[img.UserID] = img
	return img, nil
}

type fakeStorage struct {
	mu       sync.Mutex
	objects  map[string][]byte
	puts     []string
	deletes  []string
	presigns []string
	heads    []string

	putErr     func(key string) error
	deleteErr  func(key string) error
	presignErr func(key string) error
	headErr    func(key string) error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (s *fakeStorage) PutObject(_ context.Context, key string, f File) (StoredObject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts = append(s.puts, key)
	if s.putErr != nil {
		if err := s.putErr(key); err != nil {
			return StoredObject{}, err
		}
	}
	s.objects[key] = f.Data
	return StoredObject{Location: "mem://bucket/" + key, Key: key}, nil
}

func (s *fakeStorage) DeleteObject(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes = append(s.deletes, key)
	if s.deleteErr != nil {
		if err := s.deleteErr(key); err != nil {
			return err
		}
	}
	delete(s.objects, key)
	return nil
}

func (s *fakeStorage) GetPresignedURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.presigns = append(s.presigns, key)
	if s.presignErr != nil {
		if err := s.presignErr(key); err != nil {
			return "", err
		}
	}
	return "https://signed.example/" + key + "?ttl=" + ttl.String(), nil
}

func (s *fakeStorage) HeadObject(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.heads = append(s.heads, key)
	if s.headErr != nil {
		if err := s.headErr(key); err != nil {
			return false, err
		}
	}
	_, ok := s.objects[key]
	return ok, nil
}

func (s *fakeStorage) data(key string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.objects[key]
}

func (s *fakeStorage) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok
}

func (s *fakeStorage) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts, s.deletes, s.presigns, s.heads = nil, nil, nil, nil
}

type fakeQueue struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (q *fakeQueue) EnqueueOrphans(_ context.Context, keys []string, _ string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.keys = append(q.keys, keys...)
	return q.err
}

type fakeMetrics struct {
	mu        sync.Mutex
	uploaded  map[string]int
	deleted   map[string]int
	orphaned  map[string]int
	persisted map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{
		uploaded:  make(map[string]int),
		deleted:   make(map[string]int),
		orphaned:  make(map[string]int),
		persisted: make(map[string]int),
	}
}

func (m *fakeMetrics) ObjectUploaded(slot string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploaded[slot]++
}

func (m *fakeMetrics) ObjectsDeleted(reason string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted[reason] += n
}

func (m *fakeMetrics) ObjectsOrphaned(reason string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orphaned[reason] += n
}

func (m *fakeMetrics) PersistenceFailed(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.persisted[kind]++
}

type harness struct {
	repo    *fakeRepo
	store   *fakeStorage
	queue   *fakeQueue
	metrics *fakeMetrics
	uc      Usecase
}

func newHarness() *harness {
	h := &harness{
		repo:    newFakeRepo(),
		store:   newFakeStorage(),
		queue:   &fakeQueue{},
		metrics: newFakeMetrics(),
	}
	h.uc = New(h.repo, h.store, h.queue, h.metrics, nil)
	return h
}

func file(name string) File {
	return File{Name: name, ContentType: "application/octet-stream", Data: []byte("data:" + name)}
}

func files(names ...string) []File {
	list := make([]File, 0, len(names))
	for _, n := range names {
		list = append(list, file(n))
	}
	return list
}

func pngFile(name string, c color.Color) File {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return File{Name: name, ContentType: "image/png", Data: buf.Bytes()}
}

func fullSlots(screenshots ...string) AssetSlots {
	return AssetSlots{
		Icon:        files("icon.png"),
		Binary:      files("app.apk"),
		Screenshots: files(screenshots...),
	}
}
