package store

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	config "example.com/socialfeed/internal/init"
	"example.com/socialfeed/internal/models"
)

//
// --- Helpers ---
//

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db") + "?_foreign_keys=on&_busy_timeout=5000"
	st, err := New(&config.Config{DBDriver: "sqlite", DBDSN: dsn, DBMaxOpenConns: 4})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func mustCreateUser(t *testing.T, st StoreInterface, name string) models.User {
	t.Helper()
	u, err := st.CreateUser(context.Background(), name, "hash-"+name)
	if err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}

//
// --- Tests ---
//

func TestNew_UnsupportedDriver(t *testing.T) {
	if _, err := New(&config.Config{DBDriver: "oracle", DBDSN: "x"}); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}

// reopening an existing database must not re-apply migrations
func TestNew_ReopenIsIdempotent(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "reopen.db") + "?_foreign_keys=on"
	cfg := &config.Config{DBDriver: "sqlite", DBDSN: dsn}

	st, err := New(cfg)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	mustCreateUser(t, st, "alice")
	st.Close()

	st, err = New(cfg)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer st.Close()

	if _, err := st.GetUserByUsername(context.Background(), "alice"); err != nil {
		t.Fatalf("expected alice to survive reopen: %v", err)
	}
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, st, "alice")
	if _, err := st.CreateUser(ctx, "alice", "other"); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}

	var n int64
	st.db.Model(&models.User{}).Where("username = ?", "alice").Count(&n)
	if n != 1 {
		t.Fatalf("expected exactly one alice row, got %d", n)
	}
}

func TestGetUser_NotFound(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	if _, err := st.GetUserByUsername(ctx, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := st.GetUserByID(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// usernames match exactly, not case-insensitively
func TestGetUserByUsername_Exact(t *testing.T) {
	st := openTestStore(t)
	mustCreateUser(t, st, "Alice")

	if _, err := st.GetUserByUsername(context.Background(), "alice"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected no match for different case, got %v", err)
	}
}

func TestFollow_CreatesEdgeAndNotification(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	a := mustCreateUser(t, st, "a")
	b := mustCreateUser(t, st, "b")

	created, err := st.Follow(ctx, a.ID, b.ID)
	if err != nil || !created {
		t.Fatalf("follow: created=%v err=%v", created, err)
	}

	ok, err := st.IsFollowing(ctx, a.ID, b.ID)
	if err != nil || !ok {
		t.Fatalf("expected a to follow b (err=%v)", err)
	}

	ns, err := st.ListNotifications(ctx, b.ID)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	if len(ns) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(ns))
	}
	n := ns[0]
	if n.IsRead || n.SenderID != a.ID || n.Message != models.FollowMessage || n.Sender.Username != "a" {
		t.Fatalf("unexpected notification %+v", n)
	}

	// repeat follow is a no-op
	created, err = st.Follow(ctx, a.ID, b.ID)
	if err != nil || created {
		t.Fatalf("second follow: created=%v err=%v", created, err)
	}
	if ns, _ := st.ListNotifications(ctx, b.ID); len(ns) != 1 {
		t.Fatalf("expected still 1 notification, got %d", len(ns))
	}
	var edges int64
	st.db.Model(&models.Follow{}).Count(&edges)
	if edges != 1 {
		t.Fatalf("expected 1 edge, got %d", edges)
	}
}

func TestFollow_SelfIsNoop(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	a := mustCreateUser(t, st, "a")

	created, err := st.Follow(ctx, a.ID, a.ID)
	if err != nil || created {
		t.Fatalf("self follow: created=%v err=%v", created, err)
	}
	if ok, _ := st.IsFollowing(ctx, a.ID, a.ID); ok {
		t.Fatalf("self follow must not create an edge")
	}
	if n, _ := st.CountUnreadNotifications(ctx, a.ID); n != 0 {
		t.Fatalf("self follow must not notify, got %d", n)
	}
}

func TestFollow_ConcurrentDuplicates(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	a := mustCreateUser(t, st, "a")
	b := mustCreateUser(t, st, "b")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = st.Follow(ctx, a.ID, b.ID)
		}()
	}
	wg.Wait()

	var edges int64
	st.db.Model(&models.Follow{}).Count(&edges)
	if edges != 1 {
		t.Fatalf("expected 1 edge, got %d", edges)
	}
	if n, _ := st.CountUnreadNotifications(ctx, b.ID); n != 1 {
		t.Fatalf("expected 1 notification, got %d", n)
	}
}

func TestUnfollow(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	a := mustCreateUser(t, st, "a")
	b := mustCreateUser(t, st, "b")

	if removed, err := st.Unfollow(ctx, a.ID, b.ID); err != nil || removed {
		t.Fatalf("unfollow without edge: removed=%v err=%v", removed, err)
	}

	st.Follow(ctx, a.ID, b.ID)
	if removed, err := st.Unfollow(ctx, a.ID, b.ID); err != nil || !removed {
		t.Fatalf("unfollow: removed=%v err=%v", removed, err)
	}
	if ok, _ := st.IsFollowing(ctx, a.ID, b.ID); ok {
		t.Fatalf("expected edge to be gone")
	}

	// the notification from the earlier follow is kept
	if ns, _ := st.ListNotifications(ctx, b.ID); len(ns) != 1 {
		t.Fatalf("expected notification to remain, got %d", len(ns))
	}
}

func TestListFollowing_InsertionOrder(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	a := mustCreateUser(t, st, "a")
	c := mustCreateUser(t, st, "c")
	b := mustCreateUser(t, st, "b")

	st.Follow(ctx, a.ID, c.ID)
	st.Follow(ctx, a.ID, b.ID)

	users, err := st.ListFollowing(ctx, a.ID)
	if err != nil {
		t.Fatalf("list following: %v", err)
	}
	if len(users) != 2 || users[0].Username != "c" || users[1].Username != "b" {
		t.Fatalf("unexpected following list %+v", users)
	}
}

func TestNotifications_MarkRead(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	a := mustCreateUser(t, st, "a")
	b := mustCreateUser(t, st, "b")
	c := mustCreateUser(t, st, "c")

	st.Follow(ctx, a.ID, c.ID)
	st.Follow(ctx, b.ID, c.ID)

	ns, _ := st.ListNotifications(ctx, c.ID)
	if len(ns) != 2 || ns[0].SenderID != b.ID {
		t.Fatalf("expected newest first, got %+v", ns)
	}

	changed, err := st.MarkNotificationsRead(ctx, c.ID)
	if err != nil || changed != 2 {
		t.Fatalf("first mark: changed=%d err=%v", changed, err)
	}
	changed, err = st.MarkNotificationsRead(ctx, c.ID)
	if err != nil || changed != 0 {
		t.Fatalf("second mark: changed=%d err=%v", changed, err)
	}
	if n, _ := st.CountUnreadNotifications(ctx, c.ID); n != 0 {
		t.Fatalf("expected 0 unread, got %d", n)
	}
}

func TestPosts_NewestFirst(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	first := &models.Post{Title: "one", Content: "1", Author: "alice", Timestamp: "01/01/2024 07:00"}
	second := &models.Post{Title: "two", Content: "2", Author: "bob", MediaList: "uploads/x.mp4", Timestamp: "01/01/2024 07:01"}
	for _, p := range []*models.Post{first, second} {
		if err := st.CreatePost(ctx, p); err != nil {
			t.Fatalf("create post: %v", err)
		}
	}
	if first.ID == 0 || second.ID <= first.ID {
		t.Fatalf("expected increasing ids, got %d and %d", first.ID, second.ID)
	}

	posts, err := st.ListPosts(ctx)
	if err != nil {
		t.Fatalf("list posts: %v", err)
	}
	if len(posts) != 2 || posts[0].Title != "two" || posts[1].Title != "one" {
		t.Fatalf("unexpected order %+v", posts)
	}
	if posts[0].MediaList != "uploads/x.mp4" {
		t.Fatalf("media list not stored: %q", posts[0].MediaList)
	}
}

func TestPing(t *testing.T) {
	st := openTestStore(t)
	if err := st.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
