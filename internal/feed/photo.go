// Package feed maintains the authoritative in-memory photo list:
// paginated fetch with dedup, confirm-then-apply like toggling, and
// change broadcasting.
package feed

import "time"

// Photo is one feed item. The list it lives in is append-only; the
// only in-place mutation is the Liked flag after a confirmed toggle.
type Photo struct {
	ID          string
	Width       int
	Height      int
	Description string
	ThumbURL    string
	FullURL     string
	Liked       bool
	CreatedAt   time.Time
}

type photoURLs struct {
	Raw     string `json:"raw"`
	Full    string `json:"full"`
	Regular string `json:"regular"`
	Small   string `json:"small"`
	Thumb   string `json:"thumb"`
}

type photoResponse struct {
	ID          string    `json:"id"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	Description string    `json:"description"`
	URLs        photoURLs `json:"urls"`
	LikedByUser bool      `json:"liked_by_user"`
	CreatedAt   time.Time `json:"created_at"`
}

func (r photoResponse) toDomain() Photo {
	return Photo{
		ID:          r.ID,
		Width:       r.Width,
		Height:      r.Height,
		Description: r.Description,
		ThumbURL:    r.URLs.Thumb,
		FullURL:     r.URLs.Full,
		Liked:       r.LikedByUser,
		CreatedAt:   r.CreatedAt,
	}
}
