package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"cecilia/internal/models"
	"cecilia/internal/repository"

	"github.com/stretchr/testify/mock"
)

// postRepoStub is an in-memory repository.PostRepository. Set the *Err
// fields to force failures.
type postRepoStub struct {
	mu        sync.Mutex
	posts     map[uint]*models.Post
	nextID    uint
	createErr error
	updateErr error
	deleteErr error
}

func newPostRepoStub() *postRepoStub {
	return &postRepoStub{posts: map[uint]*models.Post{}, nextID: 1}
}

func (s *postRepoStub) put(p models.Post) *models.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.nextID
		s.nextID++
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	s.posts[p.ID] = &p
	return &p
}

func (s *postRepoStub) Create(_ context.Context, post *models.Post) error {
	if s.createErr != nil {
		return s.createErr
	}
	for _, p := range s.posts {
		if p.URLName == post.URLName {
			return repository.ErrSlugTaken
		}
	}
	*post = *s.put(*post)
	return nil
}

func (s *postRepoStub) GetByID(_ context.Context, id uint) (*models.Post, error) {
	p, ok := s.posts[id]
	if !ok {
		return nil, models.NewNotFoundError("Post", id)
	}
	cp := *p
	return &cp, nil
}

func (s *postRepoStub) GetPublishedByID(ctx context.Context, id uint) (*models.Post, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil || !p.Published {
		return nil, models.NewNotFoundError("Post", id)
	}
	return p, nil
}

func (s *postRepoStub) GetBySlugPair(ctx context.Context, id uint, urlName string) (*models.Post, bool, error) {
	p, err := s.GetPublishedByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return p, p.URLName == urlName, nil
}

func (s *postRepoStub) Update(_ context.Context, post *models.Post) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	if _, ok := s.posts[post.ID]; !ok {
		return models.NewNotFoundError("Post", post.ID)
	}
	cp := *post
	s.posts[post.ID] = &cp
	return nil
}

func (s *postRepoStub) Delete(_ context.Context, id uint) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	if _, ok := s.posts[id]; !ok {
		return models.NewNotFoundError("Post", id)
	}
	delete(s.posts, id)
	return nil
}

func (s *postRepoStub) SlugTaken(_ context.Context, urlName string, excludeID uint) (bool, error) {
	for _, p := range s.posts {
		if p.URLName == urlName && p.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (s *postRepoStub) sorted(keep func(*models.Post) bool) []models.Post {
	out := []models.Post{}
	for _, p := range s.posts {
		if keep(p) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (s *postRepoStub) ListPublished(_ context.Context, limit, offset int) ([]models.Post, int64, error) {
	all := s.sorted(func(p *models.Post) bool { return p.Published })
	total := int64(len(all))
	if offset >= len(all) {
		return []models.Post{}, total, nil
	}
	end := min(offset+limit, len(all))
	return all[offset:end], total, nil
}

func (s *postRepoStub) ListAll(context.Context) ([]models.Post, error) {
	return s.sorted(func(*models.Post) bool { return true }), nil
}

func (s *postRepoStub) Search(_ context.Context, query string, includeUnpublished bool) ([]models.Post, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []models.Post{}, nil
	}
	return s.sorted(func(p *models.Post) bool {
		if !p.Published && !includeUnpublished {
			return false
		}
		return strings.Contains(strings.ToLower(p.Title), q) || strings.Contains(strings.ToLower(p.Subtitle), q)
	}), nil
}

func (s *postRepoStub) CountPublished(context.Context) (int64, error) {
	return int64(len(s.sorted(func(p *models.Post) bool { return p.Published }))), nil
}

func (s *postRepoStub) SitemapEntries(context.Context, int, int) ([]models.SitemapEntry, error) {
	return nil, nil
}

// userRepoStub is an in-memory repository.UserRepository.
type userRepoStub struct {
	users  map[uint]*models.User
	nextID uint
}

func newUserRepoStub() *userRepoStub {
	return &userRepoStub{users: map[uint]*models.User{}, nextID: 1}
}

func (s *userRepoStub) GetByID(_ context.Context, id uint) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, models.NewNotFoundError("User", id)
	}
	cp := *u
	return &cp, nil
}

func (s *userRepoStub) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, models.NewNotFoundError("User", email)
}

func (s *userRepoStub) emailTaken(email string, excludeID uint) bool {
	for _, u := range s.users {
		if u.Email == email && u.ID != excludeID {
			return true
		}
	}
	return false
}

func (s *userRepoStub) Create(_ context.Context, user *models.User) error {
	if s.emailTaken(user.Email, 0) {
		return repository.ErrEmailTaken
	}
	user.ID = s.nextID
	s.nextID++
	user.CreatedAt = time.Now()
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *userRepoStub) Update(_ context.Context, user *models.User) error {
	if _, ok := s.users[user.ID]; !ok {
		return models.NewNotFoundError("User", user.ID)
	}
	if s.emailTaken(user.Email, user.ID) {
		return repository.ErrEmailTaken
	}
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *userRepoStub) Delete(_ context.Context, id uint) error {
	if _, ok := s.users[id]; !ok {
		return models.NewNotFoundError("User", id)
	}
	delete(s.users, id)
	return nil
}

func (s *userRepoStub) List(context.Context) ([]models.User, error) {
	out := []models.User{}
	for _, u := range s.users {
		out = append(out, *u)
	}
	return out, nil
}

func (s *userRepoStub) Count(context.Context) (int64, error) {
	return int64(len(s.users)), nil
}

// MockStore is a testify mock of storage.Store.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, key, data, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockStore) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

// KeyFromURL mirrors the GCS rule for a bucket named "media".
func (m *MockStore) KeyFromURL(rawURL string) (string, bool) {
	key, ok := strings.CutPrefix(rawURL, "https://storage.googleapis.com/media/")
	return key, ok && key != ""
}
