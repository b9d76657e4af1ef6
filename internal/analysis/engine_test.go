package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"flux-backend/internal/task/domain"
	"flux-backend/pkg/gemini"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeModel struct {
	response string
	err      error

	prompts      []string
	imageMIME    string
	staged       []string
	released     []string
	polls        int
	pollsToReady int
	finalState   gemini.FileState
	generateErr  error
}

func (m *fakeModel) GenerateText(_ context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	return m.response, m.err
}

func (m *fakeModel) GenerateWithImage(_ context.Context, prompt, mimeType string, _ []byte) (string, error) {
	m.prompts = append(m.prompts, prompt)
	m.imageMIME = mimeType
	return m.response, m.err
}

func (m *fakeModel) StageFile(_ context.Context, _ []byte, mimeType, displayName string) (*gemini.StagedFile, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.staged = append(m.staged, displayName)
	state := gemini.FileStateProcessing
	if m.pollsToReady == 0 {
		state = m.readyState()
	}
	return &gemini.StagedFile{Name: "files/" + displayName, URI: "uri", MIMEType: mimeType, State: state}, nil
}

func (m *fakeModel) GetFile(_ context.Context, name string) (*gemini.StagedFile, error) {
	m.polls++
	state := gemini.FileStateProcessing
	if m.polls >= m.pollsToReady {
		state = m.readyState()
	}
	return &gemini.StagedFile{Name: name, URI: "uri", State: state}, nil
}

func (m *fakeModel) readyState() gemini.FileState {
	if m.finalState == gemini.FileStateFailed {
		return gemini.FileStateFailed
	}
	return gemini.FileStateActive
}

func (m *fakeModel) GenerateWithFile(_ context.Context, prompt string, _ *gemini.StagedFile) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.generateErr != nil {
		return "", m.generateErr
	}
	return m.response, nil
}

func (m *fakeModel) ReleaseFile(_ context.Context, name string) error {
	m.released = append(m.released, name)
	return nil
}

type fakeText struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeText) GenerateText(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

func newTestEngine(model *fakeModel, text *fakeText) *Engine {
	return NewEngine(model, text, time.Millisecond)
}

func TestAnalyzeMalformedOutputFallsBack(t *testing.T) {
	model := &fakeModel{response: "not json at all"}
	engine := newTestEngine(model, &fakeText{})

	res, err := engine.Analyze(context.Background(), Input{
		Data: []byte{0x89}, Filename: "shot.png", Category: domain.CategoryImage,
	})
	require.NoError(t, err)

	assert.True(t, res.Unparsed)
	assert.Equal(t, "not json at all", res.Fields["summary"])
	assert.Equal(t, "not json at all", res.Summary())
	assert.Equal(t, true, res.Fields["raw_response"])
}

func TestAnalyzeImageSendsInlineBytes(t *testing.T) {
	model := &fakeModel{response: "```json\n{\"task_name\":\"Broken button\",\"summary\":\"misaligned\"}\n```"}
	engine := newTestEngine(model, &fakeText{})

	res, err := engine.Analyze(context.Background(), Input{
		Data: []byte{1}, Filename: "shot.JPG", Category: domain.CategoryImage, Notes: "checkout page",
	})
	require.NoError(t, err)

	assert.False(t, res.Unparsed)
	assert.Equal(t, "Broken button", res.TaskName())
	assert.Equal(t, "image/jpeg", model.imageMIME)
	require.Len(t, model.prompts, 1)
	assert.Contains(t, model.prompts[0], "User Context Notes:\ncheckout page\n\nNow analyze the file.")
	assert.Empty(t, model.staged)
}

func TestAnalyzeVideoPollsUntilActiveAndReleases(t *testing.T) {
	model := &fakeModel{response: `{"task_name":"Crash on save"}`, pollsToReady: 3}
	engine := newTestEngine(model, &fakeText{})

	res, err := engine.Analyze(context.Background(), Input{
		Data: []byte("mp4"), Filename: "clip.mp4", Category: domain.CategoryVideo,
	})
	require.NoError(t, err)

	assert.Equal(t, "Crash on save", res.TaskName())
	assert.Equal(t, 3, model.polls)
	assert.Equal(t, []string{"files/clip.mp4"}, model.released)
}

func TestAnalyzeDocumentReleasesOnGenerateFailure(t *testing.T) {
	model := &fakeModel{generateErr: errors.New("quota exceeded")}
	engine := newTestEngine(model, &fakeText{})

	_, err := engine.Analyze(context.Background(), Input{
		Data: []byte("%PDF"), Filename: "requirements.pdf", Category: domain.CategoryDocument,
	})
	require.Error(t, err)

	assert.ErrorIs(t, err, model.generateErr)
	assert.Equal(t, []string{"files/requirements.pdf"}, model.released)
}

func TestAnalyzeReleasesWhenProcessingFails(t *testing.T) {
	model := &fakeModel{pollsToReady: 1, finalState: gemini.FileStateFailed}
	engine := newTestEngine(model, &fakeText{})

	_, err := engine.Analyze(context.Background(), Input{
		Data: []byte("mov"), Filename: "clip.mov", Category: domain.CategoryVideo,
	})
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrFileProcessingFailed)
	assert.Equal(t, []string{"files/clip.mov"}, model.released)
	assert.Empty(t, model.prompts, "generation must not run on a failed file")
}

func TestAnalyzeReleasesWhenContextCancelledWhilePolling(t *testing.T) {
	model := &fakeModel{pollsToReady: 1000}
	engine := NewEngine(model, &fakeText{}, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Analyze(ctx, Input{Data: []byte("x"), Filename: "clip.mp4", Category: domain.CategoryVideo})
	require.Error(t, err)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"files/clip.mp4"}, model.released)
}

func TestAnalyzeStagingFailureSkipsRelease(t *testing.T) {
	model := &fakeModel{err: errors.New("upload refused")}
	engine := newTestEngine(model, &fakeText{})

	_, err := engine.Analyze(context.Background(), Input{Data: []byte("x"), Filename: "clip.mp4", Category: domain.CategoryVideo})
	require.Error(t, err)
	assert.Empty(t, model.released)
}

func TestAnalyzeSpreadsheetSendsPreview(t *testing.T) {
	model := &fakeModel{response: `{"task_name":"Test plan"}`}
	engine := newTestEngine(model, &fakeText{})

	csvData := "ID,Title,Priority\n1,Login,High\n2,Logout,Low\n"
	_, err := engine.Analyze(context.Background(), Input{
		Data: []byte(csvData), Filename: "plan.csv", Category: domain.CategorySpreadsheet,
	})
	require.NoError(t, err)

	require.Len(t, model.prompts, 1)
	assert.Contains(t, model.prompts[0], "Columns: ID, Title, Priority")
	assert.Contains(t, model.prompts[0], "Total Rows: 2")
}

func TestAnalyzeUnknownCategoryNeverCallsModel(t *testing.T) {
	model := &fakeModel{response: "{}"}
	engine := newTestEngine(model, &fakeText{})

	for _, c := range []domain.Category{domain.CategoryUnknown, "audio"} {
		_, err := engine.Analyze(context.Background(), Input{Filename: "x", Category: c})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrUnknownCategory)
		assert.True(t, domain.IsValidation(err))
	}
	assert.Empty(t, model.prompts)
}

func TestAnalyzeModelFailurePropagates(t *testing.T) {
	model := &fakeModel{err: errors.New("503 unavailable")}
	engine := newTestEngine(model, &fakeText{})

	_, err := engine.Analyze(context.Background(), Input{Data: []byte{1}, Filename: "a.png", Category: domain.CategoryImage})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.err)
}

func TestEveryPromptEndsWithConstraints(t *testing.T) {
	for _, c := range []domain.Category{
		domain.CategoryVideo, domain.CategoryDocument, domain.CategorySpreadsheet, domain.CategoryImage, domain.CategoryNote,
	} {
		p, err := PromptFor(c, "")
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(p, ConstraintsReminder()+"\n"), "category %s", c)
	}
	for _, p := range []string{testCasePrompt, requirementDocPrompt, scrumEmailPrompt} {
		assert.Contains(t, p, ConstraintsReminder())
	}
}

func TestConstraintsReminderText(t *testing.T) {
	want := "IMPORTANT CONSTRAINTS:\n\n" +
		"- Do NOT use the word 'verify' in test cases\n\n" +
		"- Use 'check', 'validate', or 'confirm' instead of 'verify'\n\n" +
		"- Be specific and actionable in all descriptions"
	assert.Equal(t, want, ConstraintsReminder())
}
