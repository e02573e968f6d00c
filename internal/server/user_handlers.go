package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) me(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}

func (s *Server) updateMe(c *gin.Context) {
	var req userUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badInput(c, err)
		return
	}
	user, err := s.svc.Users.Update(c.Request.Context(), currentUser(c), req.patch())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) deleteMe(c *gin.Context) {
	if err := s.svc.Users.Delete(c.Request.Context(), currentUser(c)); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) uploadProfilePicture(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		badInput(c, err)
		return
	}
	file, err := header.Open()
	if err != nil {
		badInput(c, err)
		return
	}
	defer file.Close()

	user, err := s.svc.Users.SetProfilePicture(c.Request.Context(), currentUser(c), header.Filename, file)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) profilePicture(c *gin.Context) {
	s.servePicture(c, "")
}

func (s *Server) profilePictureFile(c *gin.Context) {
	s.servePicture(c, c.Param("filename"))
}

func (s *Server) servePicture(c *gin.Context, filename string) {
	path, err := s.svc.Users.ProfilePicturePath(currentUser(c), filename)
	if err != nil {
		fail(c, err)
		return
	}
	c.File(path)
}

func (s *Server) deleteProfilePicture(c *gin.Context) {
	user, err := s.svc.Users.RemoveProfilePicture(c.Request.Context(), currentUser(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
