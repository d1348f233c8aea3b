package pdf

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskmanager/internal/models"
)

func sampleReport(n int) TaskReport {
	due := time.Date(2030, 1, 2, 0, 0, 0, 0, time.UTC)
	tasks := make([]models.Task, n)
	for i := range tasks {
		tasks[i] = models.Task{Title: "Task", Status: models.StatusPending, Priority: models.PriorityLow}
		if i%2 == 0 {
			tasks[i].DueDate = &due
		}
	}
	return TaskReport{Username: "alice", Tasks: tasks, Total: int64(n), GeneratedAt: time.Now()}
}

func TestRender_CoreFont(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewReportGenerator("").Render(&buf, sampleReport(3)))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestRender_ManyRowsPaginates(t *testing.T) {
	var small, large bytes.Buffer
	require.NoError(t, NewReportGenerator("").Render(&small, sampleReport(1)))
	require.NoError(t, NewReportGenerator("").Render(&large, sampleReport(200)))
	assert.Greater(t, large.Len(), small.Len())
}

func TestRender_MissingFont(t *testing.T) {
	var buf bytes.Buffer
	err := NewReportGenerator("/does/not/exist.ttf").Render(&buf, sampleReport(1))
	assert.Error(t, err)
}

func TestFit(t *testing.T) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 10)
	tr := func(s string) string { return s }

	assert.Equal(t, "short", fit(pdf, "short", 78, tr))

	long := strings.Repeat("word ", 60)
	got := fit(pdf, long, 78, tr)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.LessOrEqual(t, pdf.GetStringWidth(got), 78.0)
}
