package server

import (
	"task-manager/internal/model"
	"task-manager/internal/repository"
	"task-manager/internal/service"
)

type idParam struct {
	ID uint `uri:"id" binding:"required"`
}

type pageQuery struct {
	Skip  int `form:"skip,default=0" binding:"min=0"`
	Limit int `form:"limit,default=100" binding:"min=0"`
}

type registerRequest struct {
	Username string  `json:"username" binding:"required,min=3,max=50"`
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required,min=6,max=72"`
	FullName *string `json:"full_name" binding:"omitempty,max=100"`
}

type loginRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

type categoryRequest struct {
	Name  string  `json:"name" binding:"required,min=1,max=50"`
	Color *string `json:"color"`
}

type categoryUpdateRequest struct {
	Name  *string `json:"name" binding:"omitempty,min=1,max=50"`
	Color *string `json:"color"`
}

type taskListQuery struct {
	pageQuery
	IsCompleted *bool   `form:"is_completed"`
	CategoryID  *uint   `form:"category_id"`
	Priority    *string `form:"priority" binding:"omitempty,oneof=low medium high"`
}

func (q taskListQuery) filter() repository.TaskFilter {
	f := repository.TaskFilter{IsCompleted: q.IsCompleted, CategoryID: q.CategoryID}
	if q.Priority != nil {
		p := model.Priority(*q.Priority)
		f.Priority = &p
	}
	return f
}

type taskRequest struct {
	Title       string      `json:"title" binding:"required,min=1,max=200"`
	Description *string     `json:"description"`
	Priority    string      `json:"priority" binding:"omitempty,oneof=low medium high"`
	DueDate     *model.Date `json:"due_date"`
	CategoryID  *uint       `json:"category_id"`
}

func (r taskRequest) input() service.TaskInput {
	return service.TaskInput{
		Title:       r.Title,
		Description: r.Description,
		Priority:    model.Priority(r.Priority),
		DueDate:     r.DueDate,
		CategoryID:  r.CategoryID,
	}
}

// taskUpdateRequest distinguishes absent keys from explicit nulls.
type taskUpdateRequest struct {
	Title       model.Optional[string]         `json:"title"`
	Description model.Optional[string]         `json:"description"`
	Priority    model.Optional[model.Priority] `json:"priority"`
	DueDate     model.Optional[model.Date]     `json:"due_date"`
	CategoryID  model.Optional[uint]           `json:"category_id"`
	IsCompleted model.Optional[bool]           `json:"is_completed"`
}

func (r taskUpdateRequest) patch() service.TaskPatch {
	return service.TaskPatch{
		Title:       r.Title,
		Description: r.Description,
		Priority:    r.Priority,
		DueDate:     r.DueDate,
		CategoryID:  r.CategoryID,
		IsCompleted: r.IsCompleted,
	}
}

type userUpdateRequest struct {
	Username model.Optional[string] `json:"username"`
	Email    model.Optional[string] `json:"email"`
	FullName model.Optional[string] `json:"full_name"`
	Phone    model.Optional[string] `json:"phone"`
	Bio      model.Optional[string] `json:"bio"`
	Password model.Optional[string] `json:"password"`
	IsActive model.Optional[bool]   `json:"is_active"`
}

func (r userUpdateRequest) patch() service.UserPatch {
	return service.UserPatch{
		Username: r.Username,
		Email:    r.Email,
		FullName: r.FullName,
		Phone:    r.Phone,
		Bio:      r.Bio,
		Password: r.Password,
		IsActive: r.IsActive,
	}
}
