package holiday

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultAPIURL is the public holiday API base.
const DefaultAPIURL = "https://timor.tech/api/holiday"

// Client fetches public holidays from the timor.tech API.
type Client struct {
	httpClient *resty.Client
}

// NewClient builds a client for the API at baseURL.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "atc").
		SetTimeout(15 * time.Second)

	return &Client{httpClient: restyClient}
}

// yearResponse is the API payload. holiday is either an object keyed by
// "MM-DD" or a list of days.
type yearResponse struct {
	Code    int             `json:"code"`
	Holiday json.RawMessage `json:"holiday"`
}

type apiDay struct {
	Holiday bool   `json:"holiday"`
	Name    string `json:"name"`
	Date    string `json:"date"`
}

// FetchYear returns the public holidays of year. Make-up working days are dropped.
func (c *Client) FetchYear(ctx context.Context, year int) ([]Holiday, error) {
	result := new(yearResponse)
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(result).
		ForceContentType("application/json").
		Get(fmt.Sprintf("/year/%d", year))
	if err != nil {
		return nil, fmt.Errorf("fetch holidays %d: %w", year, err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, fmt.Errorf("holiday api error: status=%d", resp.StatusCode())
	}
	if result.Code != 0 {
		return nil, fmt.Errorf("holiday api error: code=%d", result.Code)
	}
	return decodeDays(year, result.Holiday)
}

func decodeDays(year int, raw json.RawMessage) ([]Holiday, error) {
	raw = bytes.TrimSpace(raw)
	var days []apiDay
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
		return nil, nil
	case raw[0] == '{':
		var m map[string]apiDay
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("decoding holidays: %w", err)
		}
		for key, d := range m {
			if d.Date == "" {
				d.Date = key
			}
			days = append(days, d)
		}
	default:
		if err := json.Unmarshal(raw, &days); err != nil {
			return nil, fmt.Errorf("decoding holidays: %w", err)
		}
	}

	var out []Holiday
	for _, d := range days {
		if !d.Holiday {
			continue
		}
		name := d.Name
		if name == "" {
			name = "Holiday"
		}
		out = append(out, Holiday{Date: normalizeDate(year, d.Date), Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}
