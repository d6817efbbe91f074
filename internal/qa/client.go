package qa

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	backendEnvVar  = "CORPUS_BACKEND"
	defaultBaseURL = "http://localhost:8000"
)

// NoAnswerText fills the answer field when the backend omits one.
const NoAnswerText = "No answer returned"

// ErrEmptyQuestion rejects whitespace-only submissions before any network activity.
var ErrEmptyQuestion = errors.New("question cannot be empty")

// Config describes how to reach the QA backend.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
}

// Client talks to the retrieval-augmented QA backend over JSON/HTTP.
type Client struct {
	baseURL string
	client  *http.Client
}

// New builds a Client. The base URL falls back to CORPUS_BACKEND and then to
// the local development default; requests run to completion unless the caller
// supplies an http.Client with its own timeout.
func New(cfg Config) *Client {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		if env := os.Getenv(backendEnvVar); env != "" {
			base = strings.TrimRight(strings.TrimSpace(env), "/")
		} else {
			base = defaultBaseURL
		}
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{baseURL: base, client: httpClient}
}

// BaseURL reports the resolved backend address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Citation is a labeled reference accompanying an answer. Page is whatever
// the backend sent and is displayed verbatim, never parsed.
type Citation struct {
	Page   any    `json:"page"`
	Source string `json:"source"`
}

// Result is the normalized outcome of one question. The three fields are
// mutually independent; any subset may be present.
type Result struct {
	Answer    string
	Context   string
	Citations map[string]Citation
}

// CitationLabels returns citation keys in sorted order so rendering stays
// stable across runs regardless of map iteration.
func (r *Result) CitationLabels() []string {
	if len(r.Citations) == 0 {
		return nil
	}
	labels := make([]string, 0, len(r.Citations))
	for label := range r.Citations {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// Ask submits one question and normalizes the response field by field: a
// missing or empty answer becomes NoAnswerText, a missing context stays
// empty, missing citations stay nil. No field invalidates the others. An
// answer of whitespace is displayed as sent; only absence triggers the
// placeholder.
func (c *Client) Ask(ctx context.Context, question string) (*Result, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	buf, err := json.Marshal(map[string]string{"question": question})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/qa", bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("qa backend error: %s (%s)", resp.Status, snippet(body))
	}

	var parsed struct {
		Answer    string              `json:"answer"`
		Context   string              `json:"context"`
		Citations map[string]Citation `json:"citations"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode qa response: %w", err)
	}

	result := &Result{
		Answer:    parsed.Answer,
		Context:   parsed.Context,
		Citations: parsed.Citations,
	}
	if result.Answer == "" {
		result.Answer = NoAnswerText
	}
	return result, nil
}

// IndexReport mirrors the backend's acknowledgement of an indexed upload.
type IndexReport struct {
	Filename      string `json:"filename"`
	ChunksIndexed int    `json:"chunks_indexed"`
	Message       string `json:"message"`
}

// IndexPDF uploads a local PDF for indexing into the backend's vector store.
// The backend insists on an application/pdf part, so the content type is set
// explicitly instead of relying on multipart sniffing.
func (c *Client) IndexPDF(ctx context.Context, path string) (*IndexReport, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(path)))
	header.Set("Content-Type", "application/pdf")
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/index-pdf", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("index-pdf error: %s (%s)", resp.Status, snippet(body))
	}

	var report IndexReport
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, fmt.Errorf("failed to decode index-pdf response: %w", err)
	}
	return &report, nil
}

func snippet(body []byte) string {
	const limit = 512
	if len(body) > limit {
		body = body[:limit]
	}
	return strings.TrimSpace(string(body))
}
