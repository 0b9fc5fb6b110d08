package rest

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/gin-gonic/gin"
)

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, bindError(err))
		return
	}

	sess, err := s.users.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.logger.Info(c.Request.Context(), "Registered", "user_id", sess.User.ID)
	s.setSessionCookie(c.Writer, sess.Token)
	c.JSON(http.StatusCreated, sessionResponse{
		Message: "User created successfully",
		Token:   sess.Token,
		User:    toUserResponse(sess.User),
	})
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, bindError(err))
		return
	}

	sess, err := s.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.setSessionCookie(c.Writer, sess.Token)
	c.JSON(http.StatusOK, sessionResponse{Token: sess.Token, User: toUserResponse(sess.User)})
}

func (s *Server) profile(c *gin.Context) {
	userID, _ := UserIDFromContext(c.Request.Context())

	user, err := s.users.Profile(c.Request.Context(), userID)
	if err != nil {
		s.writeError(c, wrapNotFound("user", err))
		return
	}

	c.JSON(http.StatusOK, profileResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		CreatedAt: user.CreatedAt,
	})
}

// logout only clears the cookie; the token itself stays valid until it
// expires.
func (s *Server) logout(c *gin.Context) {
	s.clearSessionCookie(c.Writer)
	c.JSON(http.StatusOK, messageResponse{Message: "logout successful"})
}

func (s *Server) sendOTP(c *gin.Context) {
	var req sendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, bindError(err))
		return
	}

	if err := s.users.RequestReset(c.Request.Context(), req.Email); err != nil {
		s.writeError(c, wrapNotFound("user", err))
		return
	}

	c.JSON(http.StatusOK, messageResponse{Message: "OTP sent successfully"})
}

func (s *Server) resetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, bindError(err))
		return
	}

	if err := s.users.ConsumeReset(c.Request.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		s.writeError(c, wrapNotFound("user", err))
		return
	}

	c.JSON(http.StatusOK, messageResponse{Message: "password reset successful"})
}

func (s *Server) createProject(c *gin.Context) {
	userID, _ := UserIDFromContext(c.Request.Context())

	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, bindError(err))
		return
	}

	doc, err := s.docs.Create(c.Request.Context(), userID, req.Name, req.PDFURL, req.OriginalFileName)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toDocumentResponse(doc))
}

func (s *Server) listProjects(c *gin.Context) {
	userID, _ := UserIDFromContext(c.Request.Context())

	docs, err := s.docs.List(c.Request.Context(), userID)
	if err != nil {
		s.writeError(c, err)
		return
	}

	resp := make([]documentResponse, 0, len(docs))
	for _, d := range docs {
		resp = append(resp, toDocumentResponse(d))
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) uploadURL(c *gin.Context) {
	userID, _ := UserIDFromContext(c.Request.Context())

	key, url, err := s.docs.UploadURL(c.Request.Context(), userID)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, uploadURLResponse{Key: key, URL: url})
}

func (s *Server) downloadURL(c *gin.Context) {
	userID, _ := UserIDFromContext(c.Request.Context())

	url, err := s.docs.DownloadURL(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		s.writeError(c, wrapNotFound("document", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

// wrapNotFound names the missing entity in not-found errors.
func wrapNotFound(entity string, err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return fmt.Errorf("%s %w", entity, err)
	}
	return err
}
