package user

import (
	"errors"
	"time"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrAlreadyFollowing = errors.New("already following this author")
	ErrNotFollowing     = errors.New("not following this author")
	ErrSelfFollow       = errors.New("cannot follow yourself")
)

// User is a registered account. Password is stored as a bcrypt hash and
// never leaves the service layer.
type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"size:254;not null;uniqueIndex"`
	Username     string    `json:"username" gorm:"size:150;not null;uniqueIndex"`
	FirstName    string    `json:"first_name" gorm:"size:150"`
	LastName     string    `json:"last_name" gorm:"size:150"`
	PasswordHash string    `json:"-" gorm:"size:128;not null"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (User) TableName() string { return "users" }

// Follow links a user to an author they subscribed to. The composite unique
// index makes a concurrent double-subscribe a constraint violation instead
// of a second row.
type Follow struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	UserID    int64     `json:"user_id" gorm:"not null;index;uniqueIndex:idx_follow_user_author"`
	AuthorID  int64     `json:"author_id" gorm:"not null;index;uniqueIndex:idx_follow_user_author"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	User   *User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Author *User `json:"-" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
}

func (Follow) TableName() string { return "follows" }
