package celenium

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
)

// Operation names used in errors and metrics.
const (
	OpLatestBlocks = "latest_blocks"
	OpBlockStats   = "block_stats"
	OpBlockBlobs   = "block_blobs"
	OpRollups      = "rollups"
)

var (
	ErrInvalidBaseURL = errors.New("invalid base url: must not be empty")
	ErrInvalidTimeout = errors.New("invalid timeout: must be greater than 0")
	ErrInvalidLimit   = errors.New("invalid page limit: must be greater than 0")
)

// Client is a typed wrapper over the Celenium REST API.
type Client struct {
	baseURL      string
	http         *fasthttp.Client
	timeout      time.Duration
	blobsLimit   int
	rollupsLimit int
}

// New creates a client for cfg.BaseURL. Use Config.WithNetwork to resolve the
// base URL from a network name.
func New(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, ErrInvalidBaseURL
	}
	if cfg.Timeout <= 0 {
		return nil, ErrInvalidTimeout
	}
	if cfg.BlobsLimit <= 0 || cfg.RollupsLimit <= 0 {
		return nil, ErrInvalidLimit
	}

	return &Client{
		baseURL: baseURL,
		http: &fasthttp.Client{
			Name:                cfg.UserAgent,
			MaxConnsPerHost:     4,
			ReadTimeout:         cfg.Timeout,
			WriteTimeout:        cfg.Timeout,
			MaxIdleConnDuration: time.Minute,
		},
		timeout:      cfg.Timeout,
		blobsLimit:   cfg.BlobsLimit,
		rollupsLimit: cfg.RollupsLimit,
	}, nil
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// LatestBlocks returns the most recent blocks, highest first.
func (c *Client) LatestBlocks(ctx context.Context, limit int) ([]Block, error) {
	var blocks []Block
	err := c.get(ctx, OpLatestBlocks, "/block", map[string]string{
		"limit":   strconv.Itoa(limit),
		"sort":    "desc",
		"sort_by": "height",
	}, &blocks)
	if err != nil {
		return nil, err
	}
	for i, b := range blocks {
		if b.Height == 0 {
			return nil, &DecodeError{Op: OpLatestBlocks, Err: fmt.Errorf("block at index %d has no height", i)}
		}
	}
	return blocks, nil
}

// BlockStats returns the stats of the block at height. It fails with an error
// matching ErrNotFound when the height is unknown upstream.
func (c *Client) BlockStats(ctx context.Context, height uint64) (BlockStats, error) {
	var stats *BlockStats
	path := "/block/" + strconv.FormatUint(height, 10) + "/stats"
	if err := c.get(ctx, OpBlockStats, path, nil, &stats); err != nil {
		return BlockStats{}, err
	}
	if stats == nil {
		return BlockStats{}, &DecodeError{Op: OpBlockStats, Err: fmt.Errorf("empty stats for block %d", height)}
	}
	return *stats, nil
}

// BlockBlobs returns the blobs of the block at height, newest first.
func (c *Client) BlockBlobs(ctx context.Context, height uint64) ([]Blob, error) {
	var blobs []Blob
	path := "/block/" + strconv.FormatUint(height, 10) + "/blobs"
	err := c.get(ctx, OpBlockBlobs, path, map[string]string{
		"limit":   strconv.Itoa(c.blobsLimit),
		"sort":    "desc",
		"sort_by": "time",
	}, &blobs)
	if err != nil {
		return nil, err
	}
	return blobs, nil
}

// Rollups returns the registered rollups ordered by blob count.
func (c *Client) Rollups(ctx context.Context) ([]Rollup, error) {
	var rollups []Rollup
	err := c.get(ctx, OpRollups, "/rollup", map[string]string{
		"limit":   strconv.Itoa(c.rollupsLimit),
		"sort":    "desc",
		"sort_by": "blobs_count",
	}, &rollups)
	if err != nil {
		return nil, err
	}
	return rollups, nil
}

// get issues a GET request and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, op, path string, query map[string]string, out any) error {
	if err := ctx.Err(); err != nil {
		return &TransportError{Op: op, Err: err}
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")
	args := req.URI().QueryArgs()
	for k, v := range query {
		args.Set(k, v)
	}

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if d := time.Until(deadline); d < timeout {
			timeout = d
		}
	}

	if err := c.http.DoTimeout(req, resp, timeout); err != nil {
		return &TransportError{Op: op, Err: err}
	}

	status := resp.StatusCode()
	body := resp.Body()
	if status < fasthttp.StatusOK || status >= fasthttp.StatusMultipleChoices {
		return &StatusError{Op: op, StatusCode: status, Body: snippet(body)}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &DecodeError{Op: op, Err: err, Body: snippet(body)}
	}
	return nil
}
