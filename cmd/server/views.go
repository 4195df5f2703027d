package server

import (
	"embed"
	"html/template"
	"net/http"
	"time"

	"example.com/socialfeed/internal/middleware"
	"example.com/socialfeed/internal/models"
	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

func (s *Server) templates() *template.Template {
	return template.Must(template.New("").Funcs(template.FuncMap{
		"isVideo": func(m models.MediaItem) bool { return m.Type == models.MediaVideo },
	}).ParseFS(templateFS, "templates/*.html"))
}

// --- Page data ---

// page is the data every template receives.
type page struct {
	CurrentUser *models.User `json:"current_user,omitempty"`
	Flashes     []string     `json:"flashes,omitempty"`
	UnreadCount int64        `json:"unread_count"`
	MediaURL    string       `json:"-"`
}

type feedPost struct {
	ID             uint               `json:"id"`
	Title          string             `json:"title"`
	Content        string             `json:"content"`
	Author         string             `json:"author"`
	Timestamp      string             `json:"timestamp"`
	Media          []models.MediaItem `json:"media"`
	IsOwn          bool               `json:"is_own"`
	AuthorFollowed bool               `json:"author_followed"`
}

type feedPage struct {
	page
	Posts []feedPost `json:"posts"`
}

type formPage struct {
	page
	Username string `json:"username,omitempty"`
	Next     string `json:"next,omitempty"`
}

type followingPage struct {
	page
	Following []models.User `json:"following"`
}

type notificationView struct {
	ID         uint      `json:"id"`
	SenderID   uint      `json:"sender_id"`
	SenderName string    `json:"sender"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
	WasUnread  bool      `json:"was_unread"`
}

type notificationsPage struct {
	page
	Notifications []notificationView `json:"notifications"`
}

// basePage collects the caller, pending flashes and the unread badge.
func (s *Server) basePage(c *gin.Context) page {
	p := page{
		Flashes:  middleware.Flashes(c),
		MediaURL: s.mediaURL,
	}
	if user, ok := middleware.CurrentUser(c); ok {
		p.CurrentUser = user
		n, err := s.store.CountUnreadNotifications(c.Request.Context(), user.ID)
		if err != nil {
			logg.Warn("http/page", "Failed to count unread notifications", err)
		}
		p.UnreadCount = n
	}
	return p
}

// render answers with HTML by default and JSON when the client asks for it.
func (s *Server) render(c *gin.Context, status int, name string, data any) {
	c.Negotiate(status, gin.Negotiate{
		Offered:  []string{gin.MIMEHTML, gin.MIMEJSON},
		HTMLName: name,
		Data:     data,
	})
}

func internalError(c *gin.Context, module, msg string, err error) {
	logg.Error(module, msg, err)
	c.String(http.StatusInternalServerError, "internal error")
}
