package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	appkafka "example.com/socialfeed/internal/broker"
	"example.com/socialfeed/internal/auth"
	"example.com/socialfeed/internal/media"
	"example.com/socialfeed/internal/middleware"
	"example.com/socialfeed/internal/models"
	"example.com/socialfeed/internal/store"
	"github.com/gin-gonic/gin"
)

const (
	msgUsernameTaken = "Username already taken"
	msgLoginFailed   = "Login Failed"
)

// --- HTTP Handlers ---

// homeHandler renders every post, newest first.
func (s *Server) homeHandler(c *gin.Context) {
	ctx := c.Request.Context()

	posts, err := s.store.ListPosts(ctx)
	if err != nil {
		internalError(c, "http/home", "Failed to list posts", err)
		return
	}

	// Authors the viewer follows, for the follow/unfollow toggle.
	followed := map[string]bool{}
	viewer, loggedIn := middleware.CurrentUser(c)
	if loggedIn {
		users, err := s.store.ListFollowing(ctx, viewer.ID)
		if err != nil {
			internalError(c, "http/home", "Failed to list followed users", err)
			return
		}
		for _, u := range users {
			followed[u.Username] = true
		}
	}

	feed := make([]feedPost, 0, len(posts))
	for _, p := range posts {
		feed = append(feed, feedPost{
			ID:             p.ID,
			Title:          p.Title,
			Content:        p.Content,
			Author:         p.Author,
			Timestamp:      p.Timestamp,
			Media:          p.Media(),
			IsOwn:          loggedIn && p.Author == viewer.Username,
			AuthorFollowed: followed[p.Author],
		})
	}

	s.render(c, http.StatusOK, "index.html", feedPage{page: s.basePage(c), Posts: feed})
}

// --- Authentication ---

func (s *Server) registerPageHandler(c *gin.Context) {
	s.render(c, http.StatusOK, "register.html", formPage{page: s.basePage(c)})
}

// registerHandler creates an account from the username and password form fields.
func (s *Server) registerHandler(c *gin.Context) {
	username, okUser := c.GetPostForm("username")
	password, okPass := c.GetPostForm("password")
	if !okUser || !okPass {
		c.String(http.StatusBadRequest, "username and password are required")
		return
	}
	ctx := c.Request.Context()

	_, err := s.store.GetUserByUsername(ctx, username)
	switch {
	case err == nil:
		middleware.AddFlash(c, msgUsernameTaken)
		c.Redirect(http.StatusFound, "/register")
		return
	case !errors.Is(err, store.ErrNotFound):
		internalError(c, "http/register", "Failed to query existing username", err)
		return
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		internalError(c, "http/register", "Failed to hash password", err)
		return
	}

	user, err := s.store.CreateUser(ctx, username, hash)
	if errors.Is(err, store.ErrUsernameTaken) {
		middleware.AddFlash(c, msgUsernameTaken)
		c.Redirect(http.StatusFound, "/register")
		return
	}
	if err != nil {
		internalError(c, "http/register", "Failed to create user", err)
		return
	}

	logg.Info("http/register", fmt.Sprintf("User registered user_id=%d", user.ID))
	c.Redirect(http.StatusFound, "/login")
}

func (s *Server) loginPageHandler(c *gin.Context) {
	s.render(c, http.StatusOK, "login.html", formPage{page: s.basePage(c), Next: safeNext(c.Query("next"))})
}

// loginHandler starts a session on matching credentials. Unknown users and
// wrong passwords get the same response.
func (s *Server) loginHandler(c *gin.Context) {
	username, okUser := c.GetPostForm("username")
	password, okPass := c.GetPostForm("password")
	if !okUser || !okPass {
		c.String(http.StatusBadRequest, "username and password are required")
		return
	}
	next := safeNext(c.Query("next"))
	if next == "" {
		next = safeNext(c.PostForm("next"))
	}

	user, err := s.store.GetUserByUsername(c.Request.Context(), username)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		internalError(c, "http/login", "Failed to query user", err)
		return
	}
	if err != nil || !auth.CheckPassword(user.PasswordHash, password) {
		logg.Info("http/login", "Login failed")
		middleware.AddFlash(c, msgLoginFailed)
		s.render(c, http.StatusOK, "login.html", formPage{page: s.basePage(c), Username: username, Next: next})
		return
	}

	if err := s.sessions.Issue(c, user.ID); err != nil {
		internalError(c, "http/login", "Failed to issue session", err)
		return
	}

	logg.Info("http/login", fmt.Sprintf("User logged in user_id=%d", user.ID))
	if next == "" {
		next = "/"
	}
	c.Redirect(http.StatusFound, next)
}

func (s *Server) logoutHandler(c *gin.Context) {
	s.sessions.Clear(c)
	c.Redirect(http.StatusFound, "/")
}

// safeNext keeps only local absolute paths, so login cannot redirect off-site.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return ""
	}
	return next
}

// --- Posts ---

func (s *Server) createPostPageHandler(c *gin.Context) {
	s.render(c, http.StatusOK, "create.html", formPage{page: s.basePage(c)})
}

// createPostHandler stores a post with any accepted files from the "file" field.
// Request bodies above the configured upload limit are refused with 413.
func (s *Server) createPostHandler(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	ctx := c.Request.Context()

	if s.maxUpload > 0 {
		if c.Request.ContentLength > s.maxUpload {
			c.String(http.StatusRequestEntityTooLarge, "upload too large")
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload)
	}

	form, err := c.MultipartForm()
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.String(http.StatusRequestEntityTooLarge, "upload too large")
			return
		}
		c.String(http.StatusBadRequest, "invalid multipart form")
		return
	}

	title, okTitle := c.GetPostForm("title")
	content, okContent := c.GetPostForm("content")
	if !okTitle || !okContent {
		c.String(http.StatusBadRequest, "title and content are required")
		return
	}

	var paths []string
	if form != nil {
		paths, err = media.SaveUploads(ctx, s.media, form.File["file"])
		if err != nil {
			internalError(c, "http/posts", "Failed to save uploads", err)
			return
		}
	}

	post := &models.Post{
		Title:     title,
		Content:   content,
		Author:    user.Username,
		MediaList: models.JoinMedia(paths),
		Timestamp: models.DisplayTime(s.now()),
	}
	if err := s.store.CreatePost(ctx, post); err != nil {
		internalError(c, "http/posts", "Failed to create post", err)
		return
	}

	logg.Info("http/posts", fmt.Sprintf("Post %d created with %d media files", post.ID, len(paths)))
	s.publish(appkafka.Event{Type: appkafka.EventPostCreated, ActorID: user.ID, PostID: post.ID})
	c.Redirect(http.StatusFound, "/")
}

// --- Social graph ---

// followHandler follows the named user. Unknown names and the caller's own
// name redirect back without a message.
func (s *Server) followHandler(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	target, ok := s.lookupTarget(c)
	if !ok {
		return
	}
	if target == nil || target.ID == user.ID {
		redirectBack(c)
		return
	}

	created, err := s.store.Follow(c.Request.Context(), user.ID, target.ID)
	if err != nil {
		internalError(c, "http/follow", "Failed to follow user", err)
		return
	}
	if created {
		logg.Info("http/follow", fmt.Sprintf("User %d followed %d", user.ID, target.ID))
		s.publish(appkafka.Event{Type: appkafka.EventUserFollowed, ActorID: user.ID, TargetID: target.ID})
	}

	middleware.AddFlash(c, fmt.Sprintf("Now following %s!", target.Username))
	redirectBack(c)
}

func (s *Server) unfollowHandler(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	target, ok := s.lookupTarget(c)
	if !ok {
		return
	}
	if target == nil {
		redirectBack(c)
		return
	}

	removed, err := s.store.Unfollow(c.Request.Context(), user.ID, target.ID)
	if err != nil {
		internalError(c, "http/unfollow", "Failed to unfollow user", err)
		return
	}
	if removed {
		logg.Info("http/unfollow", fmt.Sprintf("User %d unfollowed %d", user.ID, target.ID))
		s.publish(appkafka.Event{Type: appkafka.EventUserUnfollowed, ActorID: user.ID, TargetID: target.ID})
	}

	middleware.AddFlash(c, fmt.Sprintf("Unfollowed %s", target.Username))
	redirectBack(c)
}

// lookupTarget resolves the :username parameter. A nil user means no such
// account; false means a response was already written.
func (s *Server) lookupTarget(c *gin.Context) (*models.User, bool) {
	target, err := s.store.GetUserByUsername(c.Request.Context(), c.Param("username"))
	if errors.Is(err, store.ErrNotFound) {
		return nil, true
	}
	if err != nil {
		internalError(c, "http/follow", "Failed to look up user", err)
		return nil, false
	}
	return &target, true
}

func (s *Server) followingHandler(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	users, err := s.store.ListFollowing(c.Request.Context(), user.ID)
	if err != nil {
		internalError(c, "http/following", "Failed to list followed users", err)
		return
	}
	if users == nil {
		users = []models.User{}
	}

	s.render(c, http.StatusOK, "following.html", followingPage{page: s.basePage(c), Following: users})
}

// --- Notifications ---

// notificationsHandler lists the caller's notifications, then marks them read.
// The page shows each item's read state from before the update.
func (s *Server) notificationsHandler(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	ctx := c.Request.Context()

	ns, err := s.store.ListNotifications(ctx, user.ID)
	if err != nil {
		internalError(c, "http/notifications", "Failed to list notifications", err)
		return
	}

	changed, err := s.store.MarkNotificationsRead(ctx, user.ID)
	if err != nil {
		internalError(c, "http/notifications", "Failed to mark notifications read", err)
		return
	}
	if changed > 0 {
		logg.Debug("http/notifications", fmt.Sprintf("Marked %d notifications read", changed))
	}

	views := make([]notificationView, 0, len(ns))
	for _, n := range ns {
		views = append(views, notificationView{
			ID:         n.ID,
			SenderID:   n.SenderID,
			SenderName: n.Sender.Username,
			Message:    n.Message,
			Timestamp:  n.CreatedAt,
			WasUnread:  !n.IsRead,
		})
	}

	// Rendered after the update, so the header badge reads zero.
	s.render(c, http.StatusOK, "notifications.html", notificationsPage{page: s.basePage(c), Notifications: views})
}

// --- Misc ---

func (s *Server) statusHandler(c *gin.Context) {
	c.Redirect(http.StatusFound, s.statusURL)
}

func (s *Server) healthHandler(c *gin.Context) {
	if err := s.store.Ping(c.Request.Context()); err != nil {
		logg.Error("http/health", "Database ping failed", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// publish sends an activity event. Failures are logged and never reach the client.
func (s *Server) publish(ev appkafka.Event) {
	ev.OccurredAt = s.now().UTC()
	if err := s.events.Publish(ev); err != nil {
		logg.Error("http/events", "Failed to publish "+ev.Type+" event", err)
	}
}

// redirectBack returns to the referring page, or home without one.
func redirectBack(c *gin.Context) {
	target := c.Request.Referer()
	if target == "" {
		target = "/"
	}
	c.Redirect(http.StatusFound, target)
}
