package profile

import (
	"strings"
	"time"

	"codeberg.org/algrv/authgate/accounts/users"
)

// UpdateProfileRequest edits profile fields; omitted fields stay unchanged
type UpdateProfileRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=2,max=100"`
	Title    *string `json:"title" binding:"omitempty,max=100"`
	Phone    *string `json:"phone" binding:"omitempty,max=32"`
	Location *string `json:"location" binding:"omitempty,max=100"`
	Bio      *string `json:"bio" binding:"omitempty,max=1000"`
	PhotoURL *string `json:"photo_url" binding:"omitempty,http_url,max=500"`
}

func (r *UpdateProfileRequest) normalize() {
	for _, field := range []*string{r.Name, r.Title, r.Phone, r.Location, r.Bio, r.PhotoURL} {
		if field != nil {
			*field = strings.TrimSpace(*field)
		}
	}
}

func (r UpdateProfileRequest) update() users.ProfileUpdate {
	return users.ProfileUpdate{
		Name:     r.Name,
		Title:    r.Title,
		Phone:    r.Phone,
		Location: r.Location,
		Bio:      r.Bio,
		PhotoURL: r.PhotoURL,
	}
}

// AvatarUploadRequest asks for a presigned photo upload
type AvatarUploadRequest struct {
	ContentType string `json:"content_type" binding:"required"`
}

// AvatarUploadResponse tells the browser where to PUT the image and the URL
// to save as photo_url afterwards
type AvatarUploadResponse struct {
	UploadURL string    `json:"upload_url"`
	PhotoURL  string    `json:"photo_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserResponse wraps user data
type UserResponse struct {
	User *users.User `json:"user"`
}
