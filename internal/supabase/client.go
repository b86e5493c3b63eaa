// Package supabase reads the mirrored Trello board through the Supabase REST (PostgREST) API.
package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"notary-dash/internal/board"
	"notary-dash/internal/cache"
	"notary-dash/internal/eventlog"
)

// ErrMissingCredentials is returned when the project URL or key is not configured.
var ErrMissingCredentials = errors.New("supabase url and service key are required")

// Table and RPC names of the mirrored board.
const (
	EventsTable = "trello_events"
	ListsTable  = "trello_lists"
	CardsTable  = "cards"
	CurrentRPC  = "dashboard_current"
)

const listsCacheKey = "lists"

// Config holds the connection settings for a Supabase project.
type Config struct {
	URL        string
	ServiceKey string
	Timeout    time.Duration
	ListsTTL   time.Duration
}

// Client implements the board and event sources on top of PostgREST.
type Client struct {
	cfg        Config
	httpClient *http.Client
	lists      *cache.Memory
}

// NewClient validates the configuration and builds a client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.URL == "" || cfg.ServiceKey == "" {
		return nil, ErrMissingCredentials
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.ListsTTL == 0 {
		cfg.ListsTTL = 5 * time.Minute
	}
	cfg.URL = strings.TrimRight(cfg.URL, "/")
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		lists: cache.NewMemory(),
	}, nil
}

func (c *Client) authenticateRequest(req *http.Request) {
	req.Header.Set("apikey", c.cfg.ServiceKey)
	req.Header.Set("Authorization", "Bearer "+c.cfg.ServiceKey)
	req.Header.Set("Accept", "application/json")
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, out any) error {
	target := fmt.Sprintf("%s/rest/v1/%s", c.cfg.URL, path)
	if len(params) > 0 {
		target += "?" + params.Encode()
	}
	log.Debug().Str("method", method).Str("path", path).Msg("Supabase request")

	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return err
	}
	c.authenticateRequest(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("supabase authentication failed (%d), check the service key", resp.StatusCode)
		case http.StatusBadRequest:
			var pgErr struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			}
			_ = json.NewDecoder(resp.Body).Decode(&pgErr)
			return fmt.Errorf("supabase rejected query on %s: %s %s", path, pgErr.Code, pgErr.Message)
		case http.StatusTooManyRequests:
			return fmt.Errorf("supabase rate limit exceeded (429)")
		default:
			return fmt.Errorf("supabase returned status %d for %s", resp.StatusCode, path)
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode supabase response: %w", err)
	}
	return nil
}

// FetchEventPage implements eventlog.Source.
func (c *Client) FetchEventPage(ctx context.Context, to time.Time, offset, limit int) ([]eventlog.CardEvent, error) {
	params := url.Values{}
	params.Set("select", "id,card_id,action_type,occurred_at,from_list_id,from_list_name,to_list_id,to_list_name")
	params.Set("occurred_at", "lte."+to.UTC().Format(time.RFC3339Nano))
	params.Set("card_id", "not.is.null")
	params.Set("order", "occurred_at.asc,id.asc")
	params.Set("offset", strconv.Itoa(offset))
	params.Set("limit", strconv.Itoa(limit))

	var rows []EventDTO
	if err := c.do(ctx, http.MethodGet, EventsTable, params, &rows); err != nil {
		return nil, err
	}

	events := make([]eventlog.CardEvent, 0, len(rows))
	for _, r := range rows {
		events = append(events, r.ToEvent())
	}
	return events, nil
}

// FetchLists implements board.ListSource. Results are cached for ListsTTL.
func (c *Client) FetchLists(ctx context.Context) ([]board.ListMeta, error) {
	if cached, ok := c.lists.GetValue(listsCacheKey); ok {
		return cached.([]board.ListMeta), nil
	}

	params := url.Values{}
	params.Set("select", "id,name,pos,closed,trello_id")
	params.Set("order", "pos.asc")

	var rows []ListDTO
	if err := c.do(ctx, http.MethodGet, ListsTable, params, &rows); err != nil {
		return nil, err
	}

	lists := make([]board.ListMeta, 0, len(rows))
	for _, r := range rows {
		lists = append(lists, r.ToList())
	}
	c.lists.SetValue(listsCacheKey, lists, c.cfg.ListsTTL)
	return lists, nil
}

// FetchDetails implements board.DetailSource.
func (c *Client) FetchDetails(ctx context.Context, ids []string, cols board.ColumnSet) ([]board.CardDetail, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = strconv.Quote(id)
	}

	params := url.Values{}
	params.Set("select", strings.Join(cols.Columns(), ","))
	params.Set("id", "in.("+strings.Join(quoted, ",")+")")

	var rows []CardDTO
	if err := c.do(ctx, http.MethodGet, CardsTable, params, &rows); err != nil {
		return nil, err
	}

	details := make([]board.CardDetail, 0, len(rows))
	for _, r := range rows {
		details = append(details, r.ToDetail())
	}
	return details, nil
}

// FetchCurrent implements board.CurrentSource by calling the current-state RPC.
func (c *Client) FetchCurrent(ctx context.Context) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "rpc/"+CurrentRPC, nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
