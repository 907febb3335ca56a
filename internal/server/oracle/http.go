package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/certhub/internal/common"
	"github.com/dmitrijs2005/certhub/internal/server/auth"
	"github.com/go-resty/resty/v2"
)

// Options configures HTTPClient.
type Options struct {
	URL           string
	Timeout       time.Duration
	ExistsCode    int
	AbsentCode    int
	SecretKey     string
	TokenValidity time.Duration
}

type checkRequest struct {
	Identifier string `json:"identifier"`
}

// checkResponse is the only response shape the client understands. A body
// without statusCode is treated as unrecognized.
type checkResponse struct {
	StatusCode *int `json:"statusCode"`
}

// HTTPClient calls the oracle over HTTP with a bounded timeout and no retries.
type HTTPClient struct {
	http       *resty.Client
	url        string
	existsCode int
	absentCode int
	secretKey  []byte
	validity   time.Duration
}

func NewHTTPClient(opts Options) *HTTPClient {
	client := resty.New().
		SetTimeout(opts.Timeout).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &HTTPClient{
		http:       client,
		url:        opts.URL,
		existsCode: opts.ExistsCode,
		absentCode: opts.AbsentCode,
		secretKey:  []byte(opts.SecretKey),
		validity:   opts.TokenValidity,
	}
}

func (c *HTTPClient) Check(ctx context.Context, identifier string) (Signal, error) {
	req := c.http.R().
		SetContext(ctx).
		SetBody(checkRequest{Identifier: identifier})

	if len(c.secretKey) > 0 {
		token, err := auth.GenerateServiceToken(common.ServiceName, c.secretKey, c.validity)
		if err != nil {
			return Unknown, fmt.Errorf("%w: sign service token: %v", common.ErrorOracleUnavailable, err)
		}
		req.SetAuthToken(token)
	}

	resp, err := req.Post(c.url)
	if err != nil {
		return Unknown, fmt.Errorf("%w: %v", common.ErrorOracleUnavailable, err)
	}
	if resp.IsError() {
		return Unknown, fmt.Errorf("%w: http status %d", common.ErrorOracleUnavailable, resp.StatusCode())
	}

	var body checkResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return Unknown, fmt.Errorf("%w: %v", ErrUnrecognizedResponse, err)
	}
	if body.StatusCode == nil {
		return Unknown, fmt.Errorf("%w: missing statusCode", ErrUnrecognizedResponse)
	}

	switch *body.StatusCode {
	case c.existsCode:
		return Exists, nil
	case c.absentCode:
		return NotExists, nil
	default:
		return Unknown, nil
	}
}
