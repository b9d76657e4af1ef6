package gemini

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"flux-backend/pkg/metrics"

	"github.com/google/generative-ai-go/genai"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const DefaultModel = "gemini-flash-latest"

// FileState is the remote ingestion state of a staged file.
type FileState int

const (
	FileStateProcessing FileState = iota
	FileStateActive
	FileStateFailed
)

func (s FileState) String() string {
	switch s {
	case FileStateActive:
		return "ACTIVE"
	case FileStateFailed:
		return "FAILED"
	default:
		return "PROCESSING"
	}
}

// StagedFile is a file uploaded to the model's file store.
type StagedFile struct {
	Name     string
	URI      string
	MIMEType string
	State    FileState
}

// ModelInfo describes a model available to the API key.
type ModelInfo struct {
	Name                       string   `json:"name"`
	DisplayName                string   `json:"display_name"`
	Description                string   `json:"description"`
	SupportedGenerationMethods []string `json:"supported_generation_methods"`
}

var ErrEmptyResponse = errors.New("model returned no text")

// Client wraps a genai client bound to a single model name.
type Client struct {
	client    *genai.Client
	modelName string
}

func NewClient(ctx context.Context, apiKey, modelName string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if modelName == "" {
		modelName = DefaultModel
	}
	c, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	log.Infof("[Gemini] Client initialized with %s model", modelName)
	return &Client{client: c, modelName: modelName}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) ModelName() string {
	return c.modelName
}

// GenerateText sends a text-only prompt.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, "generate_text", genai.Text(prompt))
}

// GenerateWithImage sends the prompt followed by inline image bytes.
func (c *Client) GenerateWithImage(ctx context.Context, prompt, mimeType string, data []byte) (string, error) {
	format := strings.TrimPrefix(mimeType, "image/")
	if format == "jpg" {
		format = "jpeg"
	}
	return c.generate(ctx, "generate_image", genai.Text(prompt), genai.ImageData(format, data))
}

// GenerateWithFile sends a staged file followed by the prompt.
func (c *Client) GenerateWithFile(ctx context.Context, prompt string, file *StagedFile) (string, error) {
	return c.generate(ctx, "generate_file",
		genai.FileData{MIMEType: file.MIMEType, URI: file.URI},
		genai.Text(prompt),
	)
}

// StageFile uploads data to the model's file store for later reference.
func (c *Client) StageFile(ctx context.Context, data []byte, mimeType, displayName string) (*StagedFile, error) {
	start := time.Now()
	f, err := c.client.UploadFile(ctx, "", bytes.NewReader(data), &genai.UploadFileOptions{
		MIMEType:    mimeType,
		DisplayName: displayName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to stage %s: %w", displayName, err)
	}
	d := metrics.ObserveCall("gemini", "upload_file", start)
	log.WithFields(log.Fields{"file": f.Name, "duration_ms": d.Milliseconds()}).
		Infof("[Gemini] Staged %s", displayName)
	return toStagedFile(f), nil
}

// GetFile fetches the current state of a staged file.
func (c *Client) GetFile(ctx context.Context, name string) (*StagedFile, error) {
	f, err := c.client.GetFile(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get file %s: %w", name, err)
	}
	return toStagedFile(f), nil
}

func (c *Client) ReleaseFile(ctx context.Context, name string) error {
	if err := c.client.DeleteFile(ctx, name); err != nil {
		return fmt.Errorf("failed to delete file %s: %w", name, err)
	}
	log.WithField("file", name).Debug("[Gemini] Released staged file")
	return nil
}

// ListModels returns models that support generateContent.
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	var models []ModelInfo
	it := c.client.ListModels(ctx)
	for {
		m, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list models: %w", err)
		}
		if !supports(m.SupportedGenerationMethods, "generateContent") {
			continue
		}
		models = append(models, ModelInfo{
			Name:                       m.Name,
			DisplayName:                m.DisplayName,
			Description:                m.Description,
			SupportedGenerationMethods: m.SupportedGenerationMethods,
		})
	}
	return models, nil
}

func (c *Client) generate(ctx context.Context, op string, parts ...genai.Part) (string, error) {
	start := time.Now()
	resp, err := c.client.GenerativeModel(c.modelName).GenerateContent(ctx, parts...)
	d := metrics.ObserveCall("gemini", op, start)
	if err != nil {
		return "", fmt.Errorf("gemini %s failed: %w", op, err)
	}

	text := responseText(resp)
	if text == "" {
		return "", ErrEmptyResponse
	}
	log.WithField("duration_ms", d.Milliseconds()).Infof("[Gemini] %s completed", op)
	return text, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}

func toStagedFile(f *genai.File) *StagedFile {
	state := FileStateProcessing
	switch f.State {
	case genai.FileStateActive:
		state = FileStateActive
	case genai.FileStateFailed:
		state = FileStateFailed
	}
	return &StagedFile{Name: f.Name, URI: f.URI, MIMEType: f.MIMEType, State: state}
}

func supports(methods []string, method string) bool {
	for _, m := range methods {
		if m == method {
			return true
		}
	}
	return false
}
