package models

import "time"

// FollowMessage is the text of the notification written when someone follows a user.
const FollowMessage = "started following you"

type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"size:100;uniqueIndex;not null" json:"username"`
	PasswordHash string `gorm:"column:password_hash;size:255;not null" json:"-"`
}

// Post stores the author by username, not by id. Renaming users is not supported.
type Post struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Title     string `gorm:"size:200;not null" json:"title"`
	Content   string `gorm:"type:text;not null" json:"content"`
	Author    string `gorm:"size:100;not null" json:"author"`
	MediaList string `gorm:"column:media_list;type:text" json:"media_list"`
	Timestamp string `gorm:"column:display_time;size:50;not null" json:"timestamp"`
}

type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	SenderID  uint      `gorm:"not null" json:"sender_id"`
	Sender    User      `gorm:"foreignKey:SenderID" json:"sender"`
	Message   string    `gorm:"size:255;not null" json:"message"`
	CreatedAt time.Time `json:"timestamp"`
	IsRead    bool      `gorm:"not null;default:false" json:"is_read"`
}

// Follow is one edge of the follow graph: FollowerID follows FollowedID.
type Follow struct {
	FollowerID uint      `gorm:"primaryKey;autoIncrement:false" json:"follower_id"`
	FollowedID uint      `gorm:"primaryKey;autoIncrement:false" json:"followed_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Follow) TableName() string { return "followers" }
