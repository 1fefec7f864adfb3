package tgfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"qr-logo-bot/internal/constants"
	apperrors "qr-logo-bot/internal/errors"
)

// Client downloads files users sent to the bot through the Telegram Bot API
type Client struct {
	httpClient *resty.Client
	apiURL     string
	token      string
	maxBytes   int64
	logger     *logrus.Logger
}

// APIResponse represents a Telegram Bot API response envelope
type APIResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

// FileInfo is the result of getFile
type FileInfo struct {
	FileID   string `json:"file_id"`
	FileSize int64  `json:"file_size"`
	FilePath string `json:"file_path"`
}

// NewClient creates a new file client. Bodies larger than maxBytes are refused.
func NewClient(apiURL, token string, maxBytes int64, timeout time.Duration, logger *logrus.Logger) *Client {
	httpClient := resty.New().
		SetTimeout(timeout).
		SetRetryCount(constants.DefaultRetryCount).
		SetRetryWaitTime(constants.DefaultRetryWaitTime * time.Second).
		SetRetryMaxWaitTime(constants.DefaultRetryMaxWaitTime * time.Second)

	return &Client{
		httpClient: httpClient,
		apiURL:     strings.TrimRight(apiURL, "/"),
		token:      token,
		maxBytes:   maxBytes,
		logger:     logger,
	}
}

// GetFile resolves a file ID to its download path
func (c *Client) GetFile(ctx context.Context, fileID string) (*FileInfo, error) {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("file_id", fileID).
		Get(fmt.Sprintf("%s/bot%s/getFile", c.apiURL, c.token))

	if err != nil {
		return nil, fmt.Errorf("getFile request failed: %w", err)
	}

	var apiResp APIResponse
	if err := json.Unmarshal(resp.Body(), &apiResp); err != nil {
		return nil, fmt.Errorf("failed to parse getFile response (status %d): %w", resp.StatusCode(), err)
	}

	if resp.StatusCode() != http.StatusOK || !apiResp.OK {
		c.logger.Errorf("getFile failed - Status: %d, Description: %s", resp.StatusCode(), apiResp.Description)
		return nil, fmt.Errorf("getFile failed with status code %d: %s", resp.StatusCode(), apiResp.Description)
	}

	var info FileInfo
	if err := json.Unmarshal(apiResp.Result, &info); err != nil {
		return nil, fmt.Errorf("failed to unmarshal file info: %w", err)
	}
	if info.FilePath == "" {
		return nil, errors.New("telegram returned no file path")
	}

	return &info, nil
}

// Download fetches a file by ID, refusing it with a SizeError when it is over the limit
func (c *Client) Download(ctx context.Context, fileID string) ([]byte, error) {
	info, err := c.GetFile(ctx, fileID)
	if err != nil {
		return nil, err
	}

	if info.FileSize > c.maxBytes {
		return nil, &apperrors.SizeError{What: apperrors.SizeFileBytes, Size: info.FileSize, Limit: c.maxBytes}
	}

	c.logger.Debugf("Downloading file %s (%d bytes)", info.FilePath, info.FileSize)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(fmt.Sprintf("%s/file/bot%s/%s", c.apiURL, c.token, info.FilePath))

	if err != nil {
		if resp != nil && resp.RawBody() != nil {
			resp.RawBody().Close()
		}
		return nil, fmt.Errorf("download request failed: %w", err)
	}

	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("download failed with status code: %d", resp.StatusCode())
	}

	// Read one byte past the limit to tell "exactly at the limit" from "over it"
	data, err := io.ReadAll(io.LimitReader(body, c.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file body: %w", err)
	}
	if int64(len(data)) > c.maxBytes {
		return nil, &apperrors.SizeError{What: apperrors.SizeFileBytes, Size: int64(len(data)), Limit: c.maxBytes}
	}

	return data, nil
}
