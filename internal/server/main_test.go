package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"cecilia/internal/cache"
	"cecilia/internal/config"
	"cecilia/internal/content"
	"cecilia/internal/database"
	"cecilia/internal/models"
	"cecilia/internal/repository"
	"cecilia/internal/sitemap"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testBucketURL = "https://storage.googleapis.com/media/"

// memStore keeps uploads in memory and can be told to fail deletes.
type memStore struct {
	mu         sync.Mutex
	objects    map[string][]byte
	deleted    []string
	failDelete bool
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}}
}

func (m *memStore) Upload(_ context.Context, key string, data []byte, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return testBucketURL + key, nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDelete {
		return errors.New("bucket unavailable")
	}
	delete(m.objects, key)
	m.deleted = append(m.deleted, key)
	return nil
}

func (m *memStore) KeyFromURL(raw string) (string, bool) {
	if !strings.HasPrefix(raw, testBucketURL) {
		return "", false
	}
	return strings.TrimPrefix(raw, testBucketURL), true
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

type testEnv struct {
	srv   *Server
	app   *fiber.App
	db    *gorm.DB
	mr    *miniredis.Miniredis
	store *memStore
	posts repository.PostRepository
	users repository.UserRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.Open(sqlite.Open(":memory:"))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache.SetClient(rdb)
	t.Cleanup(func() { cache.SetClient(nil) })

	cfg := &config.Config{
		Port:              "0",
		JWTSecret:         "test-secret-key-0123456789abcdef",
		SessionTTLHours:   1,
		SiteBaseURL:       "https://cecilia.digital",
		DefaultCoverImage: "/images/about-cover.jpg",
		AllowedOrigins:    "http://localhost:3000",
	}
	store := newMemStore()

	srv, err := NewServer(cfg, Deps{
		DB:    db,
		Redis: rdb,
		Store: store,
		FixedPages: []sitemap.FixedPage{
			{Path: "/", ChangeFreq: "monthly", Priority: 1},
			{Path: "/blog", ChangeFreq: "daily", Priority: 0.7},
		},
	})
	require.NoError(t, err)

	return &testEnv{
		srv:   srv,
		app:   srv.App(),
		db:    db,
		mr:    mr,
		store: store,
		posts: repository.NewPostRepository(db),
		users: repository.NewUserRepository(db),
	}
}

func (e *testEnv) do(req *http.Request) *http.Response {
	resp, err := e.app.Test(req, -1)
	if err != nil {
		panic(err)
	}
	return resp
}

// login creates an account and returns a bearer header value for it.
func (e *testEnv) login(t *testing.T, email string) (string, *models.User) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{Email: email, Name: "Admin", Password: string(hash)}
	require.NoError(t, e.users.Create(context.Background(), user))

	session, err := e.srv.authService.Issue(user)
	require.NoError(t, err)
	return "Bearer " + session.Token, user
}

type postOpt func(*models.Post)

func draft(p *models.Post) { p.Published = false }

func createdAt(ts time.Time) postOpt {
	return func(p *models.Post) { p.CreatedAt = ts }
}

func withImage(url string) postOpt {
	return func(p *models.Post) { p.ImageURL = url }
}

func (e *testEnv) seedPost(t *testing.T, title, urlName string, opts ...postOpt) *models.Post {
	t.Helper()
	post := &models.Post{
		Title:     title,
		URLName:   urlName,
		Content:   content.Blocks{content.TextBlock("Body of " + title)},
		ImageURL:  "/images/about-cover.jpg",
		AuthorID:  1,
		Published: true,
	}
	for _, opt := range opts {
		opt(post)
	}
	require.NoError(t, e.posts.Create(context.Background(), post))
	return post
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

type upload struct {
	field       string
	filename    string
	contentType string
	data        []byte
}

// multipartBody encodes fields and an optional file part.
func multipartBody(t *testing.T, fields map[string]string, file *upload) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+file.field+`"; filename="`+file.filename+`"`)
		h.Set("Content-Type", file.contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(file.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 3))))
	return buf.Bytes()
}
