package msgraph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const (
	graphBaseURL = "https://graph.microsoft.com/v1.0"
	pageSize     = 100
	// eventFields limits the calendarView payload to what day-off mapping reads.
	eventFields = "id,subject,isAllDay,isCancelled,sensitivity,showAs,start,end"
)

// Client is an authenticated Microsoft Graph API client.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a Graph API client that persists refreshed tokens to tokenPath.
func NewClient(ctx context.Context, tok *oauth2.Token, cfg *oauth2.Config, tokenPath string) *Client {
	src := &persistingTokenSource{src: cfg.TokenSource(ctx, tok), path: tokenPath}
	return NewClientFromHTTP(oauth2.NewClient(ctx, src), graphBaseURL)
}

// NewClientFromHTTP wraps an already authenticated HTTP client.
func NewClientFromHTTP(httpClient *http.Client, baseURL string) *Client {
	return &Client{httpClient: httpClient, baseURL: strings.TrimSuffix(baseURL, "/")}
}

// persistingTokenSource writes every newly issued access token back to disk.
type persistingTokenSource struct {
	src     oauth2.TokenSource
	path    string
	current string
}

func (p *persistingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := p.src.Token()
	if err != nil {
		return nil, err
	}
	if tok.AccessToken == p.current {
		return tok, nil
	}
	// A failed save only costs a device login on the next run.
	_ = saveToken(p.path, tok)
	p.current = tok.AccessToken
	return tok, nil
}

// graphDateTime is the start or end of an event, rendered in the zone
// requested through the Prefer header.
type graphDateTime struct {
	DateTime string `json:"dateTime"`
}

// CalendarEvent holds the event fields used to decide whether it marks a day off.
type CalendarEvent struct {
	ID          string        `json:"id"`
	Subject     string        `json:"subject"`
	IsAllDay    bool          `json:"isAllDay"`
	IsCancelled bool          `json:"isCancelled"`
	Sensitivity string        `json:"sensitivity"`
	ShowAs      string        `json:"showAs"` // "oof" marks an absence
	Start       graphDateTime `json:"start"`
	End         graphDateTime `json:"end"`
}

type eventPage struct {
	Events   []CalendarEvent `json:"value"`
	NextLink string          `json:"@odata.nextLink"`
}

// GetCalendarView returns every event overlapping [from, to), following
// Graph's paging links. An empty timezone keeps Graph's UTC rendering.
func (c *Client) GetCalendarView(ctx context.Context, from, to time.Time, timezone string) ([]CalendarEvent, error) {
	query := url.Values{}
	query.Set("startDateTime", from.UTC().Format(time.RFC3339))
	query.Set("endDateTime", to.UTC().Format(time.RFC3339))
	query.Set("$select", eventFields)
	query.Set("$top", fmt.Sprint(pageSize))
	next := c.baseURL + "/me/calendarView?" + query.Encode()

	var events []CalendarEvent
	for next != "" {
		page, err := c.fetchPage(ctx, next, timezone)
		if err != nil {
			return nil, err
		}
		events = append(events, page.Events...)
		next = page.NextLink
	}
	return events, nil
}

func (c *Client) fetchPage(ctx context.Context, pageURL, timezone string) (*eventPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building calendar request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if timezone != "" {
		req.Header.Set("Prefer", `outlook.timezone="`+timezone+`"`)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calendar request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("calendar request returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var page eventPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decoding calendar page: %w", err)
	}
	return &page, nil
}
