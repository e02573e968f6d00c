package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"task-manager/internal/service"
)

func (s *Server) listCategories(c *gin.Context) {
	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badInput(c, err)
		return
	}
	categories, err := s.svc.Categories.List(c.Request.Context(), currentUser(c), q.Skip, q.Limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (s *Server) createCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badInput(c, err)
		return
	}
	input := service.CategoryInput{Name: req.Name}
	if req.Color != nil {
		input.Color = *req.Color
	}

	category, err := s.svc.Categories.Create(c.Request.Context(), currentUser(c), input)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (s *Server) getCategory(c *gin.Context) {
	var p idParam
	if err := c.ShouldBindUri(&p); err != nil {
		badInput(c, err)
		return
	}
	category, err := s.svc.Categories.Get(c.Request.Context(), currentUser(c), p.ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (s *Server) updateCategory(c *gin.Context) {
	var p idParam
	if err := c.ShouldBindUri(&p); err != nil {
		badInput(c, err)
		return
	}
	var req categoryUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badInput(c, err)
		return
	}

	category, err := s.svc.Categories.Update(c.Request.Context(), currentUser(c), p.ID, service.CategoryPatch{
		Name:  req.Name,
		Color: req.Color,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (s *Server) deleteCategory(c *gin.Context) {
	var p idParam
	if err := c.ShouldBindUri(&p); err != nil {
		badInput(c, err)
		return
	}
	if err := s.svc.Categories.Delete(c.Request.Context(), currentUser(c), p.ID); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
