package dto

import "time"

// UserResponse is the public view of a user.
type UserResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// AddWatchlistResponse reports whether the ticker was newly added.
type AddWatchlistResponse struct {
	Ticker string `json:"ticker"`
	Added  bool   `json:"added"`
}
