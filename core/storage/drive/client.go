// Package drive implements artifact storage against the Google Drive API:
// per-call folders, file uploads and public sharing links.
package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"time"

	"github.com/koscakluka/callflow-core/core/storage"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultAPIBase    = "https://www.googleapis.com/drive/v3"
	defaultUploadBase = "https://www.googleapis.com/upload/drive/v3"

	tokenEnvVar = "GOOGLE_DRIVE_ACCESS_TOKEN"

	folderMimeType = "application/vnd.google-apps.folder"
)

// Client talks to the Google Drive files API. Every created folder and
// uploaded file is shared publicly so the links can travel in an SMS.
type Client struct {
	token        string
	parentFolder string

	apiBase    string
	uploadBase string

	httpClient *http.Client
}

type ClientOption func(*Client)

// WithToken overrides the access token read from GOOGLE_DRIVE_ACCESS_TOKEN.
func WithToken(token string) ClientOption {
	return func(c *Client) { c.token = token }
}

// WithParentFolder places all call folders under the passed Drive folder id.
func WithParentFolder(folderID string) ClientOption {
	return func(c *Client) { c.parentFolder = folderID }
}

// WithAPIBase overrides both the API and upload base URLs. Used by tests.
func WithAPIBase(apiBase string) ClientOption {
	return func(c *Client) {
		c.apiBase = apiBase
		c.uploadBase = apiBase
	}
}

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = httpClient }
}

func NewClient(opts ...ClientOption) (*Client, error) {
	client := &Client{
		apiBase:    defaultAPIBase,
		uploadBase: defaultUploadBase,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   60 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.token == "" {
		token, ok := os.LookupEnv(tokenEnvVar)
		if !ok || token == "" {
			return nil, fmt.Errorf("google drive access token not found")
		}
		client.token = token
	}

	return client, nil
}

type fileMetadata struct {
	Name     string   `json:"name"`
	MimeType string   `json:"mimeType,omitempty"`
	Parents  []string `json:"parents,omitempty"`
}

type fileResponse struct {
	ID          string `json:"id"`
	WebViewLink string `json:"webViewLink"`
}

// CreateFolder creates a publicly shared folder with the passed label.
func (c *Client) CreateFolder(ctx context.Context, label string) (*storage.Folder, error) {
	metadata := fileMetadata{Name: label, MimeType: folderMimeType}
	if c.parentFolder != "" {
		metadata.Parents = []string{c.parentFolder}
	}

	requestBodyBytes, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("error marshalling JSON: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.apiBase+"/files?fields=id,webViewLink", bytes.NewBuffer(requestBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("error creating HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("non-OK HTTP status: %s", resp.Status)
	}

	var folder fileResponse
	if err := json.NewDecoder(resp.Body).Decode(&folder); err != nil {
		return nil, fmt.Errorf("error unmarshalling response body: %w", err)
	}
	if folder.ID == "" {
		return nil, fmt.Errorf("folder created without id")
	}

	c.sharePublicly(ctx, folder.ID)

	logger.InfoContext(ctx, "Folder created", "folder_id", folder.ID, "label", label)
	return &storage.Folder{ID: folder.ID, URL: folder.WebViewLink}, nil
}

// Upload stores content under the passed folder and returns the public
// link of the uploaded file.
func (c *Client) Upload(ctx context.Context, folderID, name, contentType string, content []byte) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	metadataBytes, err := json.Marshal(fileMetadata{Name: name, Parents: []string{folderID}})
	if err != nil {
		return "", fmt.Errorf("error marshalling JSON: %w", err)
	}

	metadataHeader := textproto.MIMEHeader{}
	metadataHeader.Set("Content-Type", "application/json; charset=UTF-8")
	metadataPart, err := writer.CreatePart(metadataHeader)
	if err != nil {
		return "", fmt.Errorf("error creating metadata part: %w", err)
	}
	if _, err := metadataPart.Write(metadataBytes); err != nil {
		return "", fmt.Errorf("error writing metadata part: %w", err)
	}

	mediaHeader := textproto.MIMEHeader{}
	mediaHeader.Set("Content-Type", contentType)
	mediaPart, err := writer.CreatePart(mediaHeader)
	if err != nil {
		return "", fmt.Errorf("error creating media part: %w", err)
	}
	if _, err := mediaPart.Write(content); err != nil {
		return "", fmt.Errorf("error writing media part: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("error finalizing multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.uploadBase+"/files?uploadType=multipart&fields=id,webViewLink", &body)
	if err != nil {
		return "", fmt.Errorf("error creating HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "multipart/related; boundary="+writer.Boundary())
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errorBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("non-OK HTTP status: %s: %s", resp.Status, errorBody)
	}

	var file fileResponse
	if err := json.NewDecoder(resp.Body).Decode(&file); err != nil {
		return "", fmt.Errorf("error unmarshalling response body: %w", err)
	}

	c.sharePublicly(ctx, file.ID)

	logger.InfoContext(ctx, "File uploaded", "file_id", file.ID, "name", name, "folder_id", folderID)
	return file.WebViewLink, nil
}

// sharePublicly grants anyone-with-the-link read access. Failures are
// logged, not surfaced: the upload itself succeeded and the owner can still
// reach the file.
func (c *Client) sharePublicly(ctx context.Context, fileID string) {
	requestBodyBytes, err := json.Marshal(map[string]string{"type": "anyone", "role": "reader"})
	if err != nil {
		logger.WarnContext(ctx, "Failed to marshal permission", "file_id", fileID, "error", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.apiBase+"/files/"+fileID+"/permissions", bytes.NewBuffer(requestBodyBytes))
	if err != nil {
		logger.WarnContext(ctx, "Failed to create permission request", "file_id", fileID, "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.WarnContext(ctx, "Failed to share file publicly", "file_id", fileID, "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.WarnContext(ctx, "Failed to share file publicly", "file_id", fileID, "status", resp.Status)
	}
}

func (c *Client) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.token)
}
