package gcs

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
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/antiquestore/antique-store-backend/pkg/config"
	"github.com/antiquestore/antique-store-backend/pkg/logger"
)

const (
	defaultEndpoint = "https://storage.googleapis.com"
	pingTimeout     = 5 * time.Second
	errorBodyLimit  = 2048
)

// ErrObjectNotFound is returned when the bucket has no object by that name.
var ErrObjectNotFound = errors.New("gcs object not found")

// APIError carries a non-2xx response from the JSON API.
type APIError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("gcs api returned %s", e.Status)
	}
	return fmt.Sprintf("gcs api returned %s: %s", e.Status, e.Body)
}

// Client talks to the Cloud Storage JSON API for a single bucket.
type Client struct {
	httpClient    *http.Client
	endpoint      string
	publicBaseURL string
	bucket        string
	tokenSource   *tokenSource
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// ObjectUpload describes a single-request multipart upload.
type ObjectUpload struct {
	Name         string
	ContentType  string
	CacheControl string
	Metadata     map[string]string
	Body         []byte
}

// ObjectAttrs is the subset of object resource fields the service uses.
type ObjectAttrs struct {
	Name         string            `json:"name"`
	Bucket       string            `json:"bucket"`
	ContentType  string            `json:"contentType"`
	CacheControl string            `json:"cacheControl,omitempty"`
	Size         int64             `json:"-"`
	RawSize      string            `json:"size"`
	MD5Hash      string            `json:"md5Hash,omitempty"`
	Generation   string            `json:"generation,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	Created      time.Time         `json:"timeCreated"`
	Updated      time.Time         `json:"updated"`
}

func NewClient(ctx context.Context, cfg config.GCSConfig, gcp config.GCPConfig, logg *logger.Logger) (*Client, error) {
	if cfg.BucketName == "" {
		return nil, errors.New("gcs bucket name is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	httpClient := &http.Client{Timeout: timeout}

	var ts *tokenSource
	var err error
	switch {
	case cfg.Anonymous:
		ts = anonymousTokenSource()
	case gcp.CredentialsJSON != "":
		ts, err = newServiceAccountTokenSource(httpClient, gcp.CredentialsJSON)
	case gcp.ApplicationCredentials != "":
		raw, readErr := os.ReadFile(gcp.ApplicationCredentials)
		if readErr != nil {
			return nil, fmt.Errorf("reading credentials file: %w", readErr)
		}
		ts, err = newServiceAccountTokenSource(httpClient, string(raw))
	default:
		ts = newMetadataTokenSource(httpClient)
	}
	if err != nil {
		return nil, err
	}

	client := newClient(httpClient, cfg.Endpoint, cfg.PublicBaseURL, cfg.BucketName, ts)
	if err := client.Ping(ctx); err != nil {
		return nil, fmt.Errorf("gcs health check failed: %w", err)
	}

	if logg != nil {
		logg.Info(logg.WithField(ctx, "bucket", cfg.BucketName), "gcs client initialized")
	}
	return client, nil
}

func newClient(httpClient *http.Client, endpoint, publicBaseURL, bucket string, ts *tokenSource) *Client {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	if publicBaseURL == "" {
		publicBaseURL = endpoint
	}
	return &Client{
		httpClient:    httpClient,
		endpoint:      strings.TrimRight(endpoint, "/"),
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		bucket:        bucket,
		tokenSource:   ts,
	}
}

func (c *Client) Bucket() string {
	if c == nil {
		return ""
	}
	return c.bucket
}

// PublicURL returns the browser-facing URL for an object name.
func (c *Client) PublicURL(name string) string {
	return fmt.Sprintf("%s/%s/%s", c.publicBaseURL, c.bucket, escapeObjectPath(name))
}

// Ping lists at most one object to prove credentials and bucket access.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.tokenSource == nil {
		return errors.New("gcs client not initialized")
	}
	if c.bucket == "" {
		return errors.New("gcs bucket not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	u := fmt.Sprintf("%s/storage/v1/b/%s/o?maxResults=1", c.endpoint, url.PathEscape(c.bucket))
	resp, err := c.do(ctx, http.MethodGet, u, nil, "")
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	return checkResponse(resp)
}

// UploadObject stores the body and metadata in one multipart/related request.
func (c *Client) UploadObject(ctx context.Context, upload ObjectUpload) (*ObjectAttrs, error) {
	if upload.Name == "" {
		return nil, errors.New("object name is required")
	}
	contentType := upload.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	resource := map[string]any{
		"name":        upload.Name,
		"contentType": contentType,
	}
	if upload.CacheControl != "" {
		resource["cacheControl"] = upload.CacheControl
	}
	if len(upload.Metadata) > 0 {
		resource["metadata"] = upload.Metadata
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	metaPart, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {"application/json; charset=UTF-8"}})
	if err != nil {
		return nil, err
	}
	if err := json.NewEncoder(metaPart).Encode(resource); err != nil {
		return nil, fmt.Errorf("encode object resource: %w", err)
	}
	mediaPart, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {contentType}})
	if err != nil {
		return nil, err
	}
	if _, err := mediaPart.Write(upload.Body); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/upload/storage/v1/b/%s/o?uploadType=multipart", c.endpoint, url.PathEscape(c.bucket))
	resp, err := c.do(ctx, http.MethodPost, u, &body, "multipart/related; boundary="+mw.Boundary())
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if err := checkResponse(resp); err != nil {
		return nil, err
	}
	return decodeAttrs(resp.Body)
}

// ObjectAttrs fetches the object resource without its body.
func (c *Client) ObjectAttrs(ctx context.Context, name string) (*ObjectAttrs, error) {
	resp, err := c.do(ctx, http.MethodGet, c.objectURL(name), nil, "")
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if err := checkResponse(resp); err != nil {
		return nil, err
	}
	return decodeAttrs(resp.Body)
}

// DeleteObject removes the named object. Missing objects yield ErrObjectNotFound.
func (c *Client) DeleteObject(ctx context.Context, name string) error {
	resp, err := c.do(ctx, http.MethodDelete, c.objectURL(name), nil, "")
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	return checkResponse(resp)
}

func (c *Client) objectURL(name string) string {
	return fmt.Sprintf("%s/storage/v1/b/%s/o/%s", c.endpoint, url.PathEscape(c.bucket), url.PathEscape(name))
}

func (c *Client) do(ctx context.Context, method, rawURL string, body io.Reader, contentType string) (*http.Response, error) {
	token, err := c.tokenSource.Token(ctx)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return c.httpClient.Do(req)
}

func checkResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       strings.TrimSpace(string(b)),
	}
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrObjectNotFound, apiErr.Error())
	}
	return apiErr
}

func decodeAttrs(r io.Reader) (*ObjectAttrs, error) {
	var attrs ObjectAttrs
	if err := json.NewDecoder(r).Decode(&attrs); err != nil {
		return nil, fmt.Errorf("decode object resource: %w", err)
	}
	if attrs.RawSize != "" {
		size, err := strconv.ParseInt(attrs.RawSize, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse object size %q: %w", attrs.RawSize, err)
		}
		attrs.Size = size
	}
	return &attrs, nil
}

func escapeObjectPath(name string) string {
	segments := strings.Split(name, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}
