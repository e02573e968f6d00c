package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"task-manager/internal/model"
	"task-manager/internal/repository"
)

func workbook(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestImportCountsRowsAndErrors(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.register(t, "alice")

	data := workbook(t, [][]interface{}{
		{"Title", "Description", "Priority", "Due_Date", "Category"},
		{"one", "first", "high", "2025-01-31", ""},
		{"two", "", "low", "", ""},
		{"", "orphan description", "", "", ""},
		{"three", "", "", "", ""},
	})

	report, err := env.imports.Import(ctx, user, "tasks.xlsx", bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, 4, report.TotalRows)
	assert.Equal(t, 3, report.TasksCreated)
	assert.Equal(t, 1, report.ErrorsCount)
	assert.Equal(t, []string{"one", "two", "three"}, report.CreatedTasks)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, "Row 4: title is required", report.Errors[0])

	tasks, err := env.tasks.List(ctx, user, repository.TaskFilter{}, 0, 0)
	require.NoError(t, err)
	assert.Len(t, tasks, 3)
}

func TestImportWarningsKeepRows(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.register(t, "alice")
	work, err := env.categories.Create(ctx, user, CategoryInput{Name: "Work"})
	require.NoError(t, err)

	csv := "title,priority,due_date,category\n" +
		"report,URGENT,2025-02-30,work\n" +
		"slides,High,15/03/2025,Nope\n"

	report, err := env.imports.Import(ctx, user, "tasks.csv", strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, report.TasksCreated)
	assert.Equal(t, 3, report.ErrorsCount)
	assert.Contains(t, report.Errors[0], "Row 2: invalid priority")
	assert.Contains(t, report.Errors[1], "Row 2: invalid due date")
	assert.Contains(t, report.Errors[2], "Row 3: category \"Nope\" not found")

	tasks, err := env.tasks.List(ctx, user, repository.TaskFilter{}, 0, 0)
	require.NoError(t, err)
	byTitle := map[string]model.Task{}
	for _, task := range tasks {
		byTitle[task.Title] = task
	}

	report1 := byTitle["report"]
	assert.Equal(t, model.PriorityMedium, report1.Priority)
	assert.Nil(t, report1.DueDate)
	require.NotNil(t, report1.CategoryID)
	assert.Equal(t, work.ID, *report1.CategoryID)

	slides := byTitle["slides"]
	assert.Equal(t, model.PriorityHigh, slides.Priority)
	require.NotNil(t, slides.DueDate)
	assert.Equal(t, "2025-03-15", slides.DueDate.String())
	assert.Nil(t, slides.CategoryID)
}

func TestImportTwiceDuplicates(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.register(t, "alice")
	data := workbook(t, [][]interface{}{{"title"}, {"a"}, {"b"}})

	for i := 0; i < 2; i++ {
		report, err := env.imports.Import(ctx, user, "tasks.xlsx", bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, 2, report.TasksCreated)
	}

	tasks, err := env.tasks.List(ctx, user, repository.TaskFilter{}, 0, 0)
	require.NoError(t, err)
	assert.Len(t, tasks, 4)
}

func TestImportFatalErrors(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.register(t, "alice")

	_, err := env.imports.Import(ctx, user, "tasks.pdf", strings.NewReader("%PDF"))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.imports.Import(ctx, user, "empty.csv", strings.NewReader("title,priority\n"))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.imports.Import(ctx, user, "notitle.csv", strings.NewReader("name,priority\nx,low\n"))
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, Reason(err), "title")

	_, err = env.imports.Import(ctx, user, "broken.xlsx", strings.NewReader("not a zip"))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestImportReportIsCapped(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.register(t, "alice")

	var b strings.Builder
	b.WriteString("title,priority\n")
	for i := 0; i < 15; i++ {
		fmt.Fprintf(&b, "task %d,bogus\n", i)
	}

	report, err := env.imports.Import(ctx, user, "many.csv", strings.NewReader(b.String()))
	require.NoError(t, err)
	assert.Equal(t, 15, report.TasksCreated)
	assert.Equal(t, 15, report.ErrorsCount)
	assert.Len(t, report.CreatedTasks, 10)
	assert.Len(t, report.Errors, 10)
}

func TestImportTemplate(t *testing.T) {
	env := newTestEnv(t)
	data, err := env.imports.Template()
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetList()[0])
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"title", "description", "priority", "due_date", "category"}, rows[0])
}

func TestImportCommitFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.register(t, "alice")
	require.NoError(t, env.db.Exec(`CREATE TRIGGER reject_boom BEFORE INSERT ON tasks
		WHEN NEW.title = 'boom' BEGIN SELECT RAISE(ABORT, 'rejected'); END`).Error)

	csv := "title\nfirst\nboom\nthird\n"
	report, err := env.imports.Import(ctx, user, "tasks.csv", strings.NewReader(csv))
	assert.Nil(t, report)
	assert.ErrorIs(t, err, ErrInternal)
	assert.Equal(t, "import failed, no tasks were created", Reason(err))

	var count int64
	require.NoError(t, env.db.Model(&model.Task{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Zero(t, count)
}
