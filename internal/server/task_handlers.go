package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"task-manager/internal/model"
	"task-manager/internal/spreadsheet"
)

const templateFilename = "task_import_template.xlsx"

func (s *Server) listTasks(c *gin.Context) {
	var q taskListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badInput(c, err)
		return
	}
	tasks, err := s.svc.Tasks.List(c.Request.Context(), currentUser(c), q.filter(), q.Skip, q.Limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (s *Server) createTask(c *gin.Context) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badInput(c, err)
		return
	}
	task, err := s.svc.Tasks.Create(c.Request.Context(), currentUser(c), req.input())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (s *Server) getTask(c *gin.Context) {
	var p idParam
	if err := c.ShouldBindUri(&p); err != nil {
		badInput(c, err)
		return
	}
	task, err := s.svc.Tasks.Get(c.Request.Context(), currentUser(c), p.ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) updateTask(c *gin.Context) {
	var p idParam
	if err := c.ShouldBindUri(&p); err != nil {
		badInput(c, err)
		return
	}
	var req taskUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badInput(c, err)
		return
	}
	task, err := s.svc.Tasks.Update(c.Request.Context(), currentUser(c), p.ID, req.patch())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) deleteTask(c *gin.Context) {
	var p idParam
	if err := c.ShouldBindUri(&p); err != nil {
		badInput(c, err)
		return
	}
	if err := s.svc.Tasks.Delete(c.Request.Context(), currentUser(c), p.ID); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) completeTask(c *gin.Context) {
	s.setCompleted(c, true)
}

func (s *Server) incompleteTask(c *gin.Context) {
	s.setCompleted(c, false)
}

func (s *Server) setCompleted(c *gin.Context, done bool) {
	var p idParam
	if err := c.ShouldBindUri(&p); err != nil {
		badInput(c, err)
		return
	}

	var (
		task *model.Task
		err  error
	)
	if done {
		task, err = s.svc.Tasks.Complete(c.Request.Context(), currentUser(c), p.ID)
	} else {
		task, err = s.svc.Tasks.Incomplete(c.Request.Context(), currentUser(c), p.ID)
	}
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) taskStats(c *gin.Context) {
	stats, err := s.svc.Tasks.Stats(c.Request.Context(), currentUser(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) importTasks(c *gin.Context) {
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

	report, err := s.svc.Imports.Import(c.Request.Context(), currentUser(c), header.Filename, file)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) downloadTemplate(c *gin.Context) {
	data, err := s.svc.Imports.Template()
	if err != nil {
		fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+templateFilename+`"`)
	c.Data(http.StatusOK, spreadsheet.ContentTypeXLSX, data)
}
