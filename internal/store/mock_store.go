package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"example.com/socialfeed/internal/models"
)

// MockStore keeps everything in memory for handler tests.
type MockStore struct {
	mu            sync.Mutex
	Users         map[uint]models.User
	Follows       []models.Follow
	Notifications []models.Notification
	Posts         []models.Post
	ShouldFail    bool // flag to simulate failures
	Closed        bool

	nextUserID  uint
	nextNotifID uint
	nextPostID  uint
}

// NewMock initializes a new mock store
func NewMock() *MockStore {
	return &MockStore{
		Users: make(map[uint]models.User),
	}
}

var (
	_ StoreInterface = (*MockStore)(nil)
	_ StoreInterface = (*MockStoreFail)(nil)
)

var errMockFail = errors.New("mock: operation failed")

func (m *MockStore) Ping(ctx context.Context) error {
	if m.ShouldFail {
		return errMockFail
	}
	return nil
}

func (m *MockStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}

// --- Users ---

func (m *MockStore) CreateUser(ctx context.Context, username, passwordHash string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ShouldFail {
		return models.User{}, errMockFail
	}
	for _, u := range m.Users {
		if u.Username == username {
			return models.User{}, ErrUsernameTaken
		}
	}
	m.nextUserID++
	u := models.User{ID: m.nextUserID, Username: username, PasswordHash: passwordHash}
	m.Users[u.ID] = u
	return u, nil
}

func (m *MockStore) GetUserByID(ctx context.Context, id uint) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ShouldFail {
		return models.User{}, errMockFail
	}
	u, ok := m.Users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return u, nil
}

func (m *MockStore) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ShouldFail {
		return models.User{}, errMockFail
	}
	for _, u := range m.Users {
		if u.Username == username {
			return u, nil
		}
	}
	return models.User{}, ErrNotFound
}

// --- Follows ---

func (m *MockStore) indexOfFollow(followerID, followedID uint) int {
	for i, f := range m.Follows {
		if f.FollowerID == followerID && f.FollowedID == followedID {
			return i
		}
	}
	return -1
}

func (m *MockStore) Follow(ctx context.Context, followerID, followedID uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ShouldFail {
		return false, errMockFail
	}
	if followerID == followedID || m.indexOfFollow(followerID, followedID) >= 0 {
		return false, nil
	}
	now := time.Now().UTC()
	m.Follows = append(m.Follows, models.Follow{FollowerID: followerID, FollowedID: followedID, CreatedAt: now})
	m.nextNotifID++
	m.Notifications = append(m.Notifications, models.Notification{
		ID:        m.nextNotifID,
		UserID:    followedID,
		SenderID:  followerID,
		Message:   models.FollowMessage,
		CreatedAt: now,
	})
	return true, nil
}

func (m *MockStore) Unfollow(ctx context.Context, followerID, followedID uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ShouldFail {
		return false, errMockFail
	}
	i := m.indexOfFollow(followerID, followedID)
	if i < 0 {
		return false, nil
	}
	m.Follows = append(m.Follows[:i], m.Follows[i+1:]...)
	return true, nil
}

func (m *MockStore) IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ShouldFail {
		return false, errMockFail
	}
	return m.indexOfFollow(followerID, followedID) >= 0, nil
}

func (m *MockStore) ListFollowing(ctx context.Context, userID uint) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ShouldFail {
		return nil, errMockFail
	}
	var users []models.User
	for _, f := range m.Follows {
		if f.FollowerID == userID {
			users = append(users, m.Users[f.FollowedID])
		}
	}
	return users, nil
}

// --- Notifications ---

func (m *MockStore) ListNotifications(ctx context.Context, userID uint) ([]models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ShouldFail {
		return nil, errMockFail
	}
	var ns []models.Notification
	for _, n := range m.Notifications {
		if n.UserID == userID {
			n.Sender = m.Users[n.SenderID]
			ns = append(ns, n)
		}
	}
	sort.SliceStable(ns, func(i, j int) bool {
		if ns[i].CreatedAt.Equal(ns[j].CreatedAt) {
			return ns[i].ID > ns[j].ID
		}
		return ns[i].CreatedAt.After(ns[j].CreatedAt)
	})
	return ns, nil
}

func (m *MockStore) MarkNotificationsRead(ctx context.Context, userID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ShouldFail {
		return 0, errMockFail
	}
	var changed int64
	for i := range m.Notifications {
		if m.Notifications[i].UserID == userID && !m.Notifications[i].IsRead {
			m.Notifications[i].IsRead = true
			changed++
		}
	}
	return changed, nil
}

func (m *MockStore) CountUnreadNotifications(ctx context.Context, userID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ShouldFail {
		return 0, errMockFail
	}
	var n int64
	for _, nt := range m.Notifications {
		if nt.UserID == userID && !nt.IsRead {
			n++
		}
	}
	return n, nil
}

// --- Posts ---

func (m *MockStore) CreatePost(ctx context.Context, post *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ShouldFail {
		return errMockFail
	}
	m.nextPostID++
	post.ID = m.nextPostID
	m.Posts = append(m.Posts, *post)
	return nil
}

func (m *MockStore) ListPosts(ctx context.Context) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ShouldFail {
		return nil, errMockFail
	}
	posts := make([]models.Post, 0, len(m.Posts))
	for i := len(m.Posts) - 1; i >= 0; i-- {
		posts = append(posts, m.Posts[i])
	}
	return posts, nil
}

// ---------------------------------------------
// MockStoreFail always returns errors for negative tests
type MockStoreFail struct{}

func (m *MockStoreFail) Ping(ctx context.Context) error { return errors.New("mock store ping failed") }
func (m *MockStoreFail) Close() error                   { return nil }

func (m *MockStoreFail) CreateUser(ctx context.Context, username, passwordHash string) (models.User, error) {
	return models.User{}, errors.New("mock store create user failed")
}

func (m *MockStoreFail) GetUserByID(ctx context.Context, id uint) (models.User, error) {
	return models.User{}, errors.New("mock store get user failed")
}

func (m *MockStoreFail) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	return models.User{}, errors.New("mock store get user by username failed")
}

func (m *MockStoreFail) Follow(ctx context.Context, followerID, followedID uint) (bool, error) {
	return false, errors.New("mock store follow failed")
}

func (m *MockStoreFail) Unfollow(ctx context.Context, followerID, followedID uint) (bool, error) {
	return false, errors.New("mock store unfollow failed")
}

func (m *MockStoreFail) IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error) {
	return false, errors.New("mock store is following failed")
}

func (m *MockStoreFail) ListFollowing(ctx context.Context, userID uint) ([]models.User, error) {
	return nil, errors.New("mock store list following failed")
}

func (m *MockStoreFail) ListNotifications(ctx context.Context, userID uint) ([]models.Notification, error) {
	return nil, errors.New("mock store list notifications failed")
}

func (m *MockStoreFail) MarkNotificationsRead(ctx context.Context, userID uint) (int64, error) {
	return 0, errors.New("mock store mark notifications failed")
}

func (m *MockStoreFail) CountUnreadNotifications(ctx context.Context, userID uint) (int64, error) {
	return 0, errors.New("mock store count notifications failed")
}

func (m *MockStoreFail) CreatePost(ctx context.Context, post *models.Post) error {
	return errors.New("mock store create post failed")
}

func (m *MockStoreFail) ListPosts(ctx context.Context) ([]models.Post, error) {
	return nil, errors.New("mock store list posts failed")
}
