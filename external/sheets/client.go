package sheets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/BigB742/bigb-analyzer/internal/platform/logging"
)

const (
	defaultBaseURL   = "https://sheets.googleapis.com"
	maxResponseBytes = 8 << 20
)

var ErrSpreadsheetNotConfigured = crerr.New("spreadsheet id is not configured")

type ClientConfig struct {
	HTTPClient           *http.Client
	BaseURL              string
	APIKey               string
	DefaultSpreadsheetID string
	Timeout              time.Duration
	Logger               *logging.Logger
}

// Client reads cell ranges with the Sheets v4 values.get endpoint. Retries
// and caching live in the range fetcher above it.
type Client struct {
	httpClient           *http.Client
	baseURL              string
	apiKey               string
	defaultSpreadsheetID string
	logger               *logging.Logger
}

type valuesResponse struct {
	Range          string  `json:"range"`
	MajorDimension string  `json:"majorDimension"`
	Values         [][]any `json:"values"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 10 * time.Second
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		httpClient:           httpClient,
		baseURL:              baseURL,
		apiKey:               strings.TrimSpace(cfg.APIKey),
		defaultSpreadsheetID: strings.TrimSpace(cfg.DefaultSpreadsheetID),
		logger:               logger,
	}
}

// FetchRange returns the range's rows with every cell rendered as a string.
// An empty spreadsheetID uses the configured default.
func (c *Client) FetchRange(ctx context.Context, spreadsheetID, rangeRef string) ([][]string, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		spreadsheetID = c.defaultSpreadsheetID
	}
	if spreadsheetID == "" {
		return nil, ErrSpreadsheetNotConfigured
	}
	rangeRef = strings.TrimSpace(rangeRef)
	if rangeRef == "" {
		return nil, crerr.New("range is required")
	}

	endpoint := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s?majorDimension=ROWS",
		c.baseURL,
		url.PathEscape(spreadsheetID),
		url.PathEscape(rangeRef),
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Goog-Api-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, crerr.Wrapf(err, "sheets values.get range=%q", rangeRef)
	}
	defer resp.Body.Close()

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if _, err := buf.ReadFrom(io.LimitReader(resp.Body, maxResponseBytes)); err != nil {
		return nil, crerr.Wrapf(err, "read sheets response range=%q", rangeRef)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := describeError(buf.B)
		c.logger.WarnContext(ctx, "sheets values.get failed",
			"spreadsheet_id", spreadsheetID,
			"range", rangeRef,
			"status", resp.StatusCode,
			"message", message,
		)
		return nil, crerr.Newf("sheets status=%d: %s", resp.StatusCode, message)
	}

	var payload valuesResponse
	if err := sonic.Unmarshal(buf.B, &payload); err != nil {
		return nil, crerr.Wrap(err, "decode sheets values")
	}
	return toRows(payload.Values), nil
}

func toRows(values [][]any) [][]string {
	rows := make([][]string, 0, len(values))
	for _, raw := range values {
		row := make([]string, len(raw))
		for i, cell := range raw {
			row[i] = cellString(cell)
		}
		rows = append(rows, row)
	}
	return rows
}

func cellString(cell any) string {
	switch v := cell.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

func describeError(body []byte) string {
	var payload errorResponse
	if err := sonic.Unmarshal(body, &payload); err == nil && payload.Error.Message != "" {
		if payload.Error.Status != "" {
			return payload.Error.Status + ": " + payload.Error.Message
		}
		return payload.Error.Message
	}
	text := strings.TrimSpace(string(body))
	if len(text) > 240 {
		text = text[:240] + "..."
	}
	return text
}
