package rest

import (
	"time"

	"github.com/dmitrijs2005/docvault/internal/server/models"
)

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
	Name     string `json:"name" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type sendOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type resetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	OTP         string `json:"otp" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=6,max=72"`
}

// pdfUrl is checked by the document service so that its message matches
// what the frontend expects.
type createProjectRequest struct {
	Name             string `json:"name" binding:"required"`
	PDFURL           string `json:"pdfUrl"`
	OriginalFileName string `json:"originalFileName" binding:"required"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type sessionResponse struct {
	Message string       `json:"message,omitempty"`
	Token   string       `json:"token"`
	User    userResponse `json:"user"`
}

type profileResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type documentResponse struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	PDFURL           string    `json:"pdfUrl"`
	OriginalFileName string    `json:"originalFileName"`
	UserID           string    `json:"user"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

type uploadURLResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, Name: u.Name}
}

func toDocumentResponse(d *models.Document) documentResponse {
	return documentResponse{
		ID:               d.ID,
		Name:             d.Name,
		PDFURL:           d.PDFURL,
		OriginalFileName: d.OriginalFileName,
		UserID:           d.UserID,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}
