// Package nutrients looks foods up in USDA FoodData Central and normalizes
// their nutrient data.
package nutrients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/nutritracker/internal/common"
	"github.com/dmitrijs2005/nutritracker/internal/logging"
	"github.com/dmitrijs2005/nutritracker/internal/server/models"
	"golang.org/x/time/rate"
)

// FoodData Central data types, in fallback order.
const (
	CategoryFoundation = "Foundation"
	CategorySurvey     = "Survey (FNDDS)"
	CategoryBranded    = "Branded"
	CategorySRLegacy   = "SR Legacy"
)

var categories = []string{CategoryFoundation, CategorySurvey, CategoryBranded, CategorySRLegacy}

// Result is the first matching food, normalized.
type Result struct {
	Description string
	Category    string
	Nutrients   models.Nutrients
}

type searchResponse struct {
	Foods []usdaFood `json:"foods"`
}

type usdaFood struct {
	FdcID         int64          `json:"fdcId"`
	Description   string         `json:"description"`
	DataType      string         `json:"dataType"`
	FoodNutrients []FoodNutrient `json:"foodNutrients"`
}

// Client performs food searches against FoodData Central. It is safe for
// concurrent use.
type Client struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     logging.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// NewClient builds a client for baseURL. Every category attempt runs under
// its own timeout; ratePerSecond <= 0 disables client-side throttling.
func NewClient(baseURL, apiKey string, timeout time.Duration, ratePerSecond float64, logger logging.Logger, opts ...Option) *Client {
	limit := rate.Inf
	if ratePerSecond > 0 {
		limit = rate.Limit(ratePerSecond)
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		timeout:    timeout,
		httpClient: &http.Client{},
		limiter:    rate.NewLimiter(limit, 1),
		logger:     logger.With("module", "nutrients"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// categoryOrder puts preferred first and the remaining categories after it
// in their fixed order. Matching is case-insensitive; empty means Foundation.
func categoryOrder(preferred string) ([]string, error) {
	if strings.TrimSpace(preferred) == "" {
		return categories, nil
	}

	first := ""
	for _, c := range categories {
		if strings.EqualFold(c, strings.TrimSpace(preferred)) {
			first = c
			break
		}
	}
	if first == "" {
		return nil, fmt.Errorf("%w: unknown data type %q", common.ErrorValidation, preferred)
	}

	order := []string{first}
	for _, c := range categories {
		if c != first {
			order = append(order, c)
		}
	}
	return order, nil
}

// errRejected marks responses that make further attempts pointless
// (bad key, forbidden, quota exhausted).
var errRejected = errors.New("request rejected")

// errNoTimeLeft means the caller's deadline falls before the next request
// the rate limiter would allow.
var errNoTimeLeft = errors.New("deadline before next allowed request")

// SearchAndNormalize searches each category in turn and returns the first
// food found.
//
// Exhausting all categories yields common.ErrorNotFound when every attempt
// came back empty, common.ErrorUpstreamTimeout when every failed attempt
// timed out and common.ErrorUpstream otherwise. A 401, 403 or 429 stops the
// search immediately with common.ErrorUpstream.
func (c *Client) SearchAndNormalize(ctx context.Context, query string, exactMatch bool, preferredCategory string) (*Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty query", common.ErrorValidation)
	}

	order, err := categoryOrder(preferredCategory)
	if err != nil {
		return nil, err
	}

	var failures, timeouts int
	for _, category := range order {
		food, err := c.search(ctx, query, exactMatch, category)
		switch {
		case err == nil && food != nil:
			return &Result{
				Description: food.Description,
				Category:    category,
				Nutrients:   Normalize(food.FoodNutrients),
			}, nil
		case err == nil:
			c.logger.Debug(ctx, "no foods in category", "query", query, "category", category)
			continue
		case errors.Is(err, errNoTimeLeft):
			return nil, fmt.Errorf("%w: %v", common.ErrorUpstreamTimeout, err)
		case errors.Is(err, errRejected):
			c.logger.Error(ctx, "nutrient database rejected request", "category", category, "error", err)
			return nil, fmt.Errorf("%w: %v", common.ErrorUpstream, err)
		case ctx.Err() != nil:
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w: %v", common.ErrorUpstreamTimeout, ctx.Err())
			}
			return nil, ctx.Err()
		}

		failures++
		if isTimeout(err) {
			timeouts++
		}
		c.logger.Warn(ctx, "nutrient lookup attempt failed", "query", query, "category", category, "error", err)
	}

	switch {
	case failures == 0:
		return nil, common.ErrorNotFound
	case failures == timeouts:
		return nil, common.ErrorUpstreamTimeout
	default:
		return nil, common.ErrorUpstream
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// search performs one attempt. It returns (nil, nil) when the category has
// no matching food.
func (c *Client) search(ctx context.Context, query string, exactMatch bool, category string) (*usdaFood, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		if ctx.Err() == nil {
			return nil, fmt.Errorf("%w: %v", errNoTimeLeft, err)
		}
		return nil, err
	}

	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := url.Values{}
	params.Set("query", query)
	params.Set("dataType", category)
	params.Set("requireAllWords", strconv.FormatBool(exactMatch))
	params.Set("pageSize", "1")
	params.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, c.baseURL+"/foods/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call nutrient database: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: status %d", errRejected, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("nutrient database status %d", resp.StatusCode)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decode nutrient database response: %w", err)
	}

	if len(sr.Foods) == 0 {
		return nil, nil
	}
	return &sr.Foods[0], nil
}
