// Package client is a Go client for the movie review API. It keeps the token
// returned by Login and sends it as a bearer token on every later call.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/qs-lzh/movie-review/internal/model"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api: status %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Logout forgets the stored token.
func (c *Client) Logout() {
	c.SetToken("")
}

/*
* users
 */

type SignupRequest struct {
	Username       string `json:"username"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

type AuthResponse struct {
	Message string           `json:"message"`
	Token   string           `json:"token,omitempty"`
	User    model.PublicUser `json:"user"`
}

type ProfileResponse struct {
	User    model.User     `json:"user"`
	Reviews []model.Review `json:"reviews"`
}

type UpdateProfileRequest struct {
	Username       string `json:"username,omitempty"`
	Email          string `json:"email,omitempty"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

type WatchlistResponse struct {
	Count     int                    `json:"count"`
	Watchlist []model.WatchlistEntry `json:"watchlist"`
}

type AddToWatchlistResponse struct {
	Message       string               `json:"message"`
	WatchlistItem model.WatchlistEntry `json:"watchlistItem"`
}

func (c *Client) Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/users/signup", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login authenticates and stores the returned token on the client.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/users/login", nil, body, &out); err != nil {
		return nil, err
	}
	c.SetToken(out.Token)
	return &out, nil
}

func (c *Client) GetProfile(ctx context.Context, userID uint) (*ProfileResponse, error) {
	var out ProfileResponse
	if err := c.do(ctx, http.MethodGet, userPath(userID), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProfile(ctx context.Context, userID uint, req UpdateProfileRequest) (*model.User, error) {
	var out struct {
		User model.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPut, userPath(userID), nil, req, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) GetWatchlist(ctx context.Context, userID uint) (*WatchlistResponse, error) {
	var out WatchlistResponse
	if err := c.do(ctx, http.MethodGet, userPath(userID)+"/watchlist", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AddToWatchlist(ctx context.Context, userID, movieID uint) (*AddToWatchlistResponse, error) {
	body := map[string]uint{"movieId": movieID}
	var out AddToWatchlistResponse
	if err := c.do(ctx, http.MethodPost, userPath(userID)+"/watchlist", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoveFromWatchlist returns the server's confirmation message.
func (c *Client) RemoveFromWatchlist(ctx context.Context, userID, movieID uint) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	path := userPath(userID) + "/watchlist/" + strconv.FormatUint(uint64(movieID), 10)
	if err := c.do(ctx, http.MethodDelete, path, nil, nil, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

/*
* movies
 */

// ListMoviesParams leaves zero fields out of the query.
type ListMoviesParams struct {
	Page  int
	Limit int
	Genre string
	Year  int
	Title string
}

func (p ListMoviesParams) values() url.Values {
	v := url.Values{}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Genre != "" {
		v.Set("genre", p.Genre)
	}
	if p.Year != 0 {
		v.Set("year", strconv.Itoa(p.Year))
	}
	if p.Title != "" {
		v.Set("title", p.Title)
	}
	return v
}

type MovieList struct {
	Count      int           `json:"count"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	TotalPages int           `json:"totalPages"`
	Movies     []model.Movie `json:"movies"`
}

type MovieDetail struct {
	Movie   model.Movie    `json:"movie"`
	Reviews []model.Review `json:"reviews"`
}

type CreateMovieRequest struct {
	Title       string   `json:"title"`
	Genre       []string `json:"genre"`
	ReleaseYear int      `json:"releaseYear"`
	Director    string   `json:"director,omitempty"`
	Cast        []string `json:"cast,omitempty"`
	Synopsis    string   `json:"synopsis,omitempty"`
	PosterURL   string   `json:"posterUrl,omitempty"`
}

type MovieReviews struct {
	Movie   string         `json:"movie"`
	Count   int            `json:"count"`
	Reviews []model.Review `json:"reviews"`
}

type AddReviewResponse struct {
	Message              string       `json:"message"`
	Review               model.Review `json:"review"`
	UpdatedAverageRating float64      `json:"updatedAverageRating"`
}

func (c *Client) ListMovies(ctx context.Context, params ListMoviesParams) (*MovieList, error) {
	var out MovieList
	if err := c.do(ctx, http.MethodGet, "/movies", params.values(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetMovie(ctx context.Context, movieID uint) (*MovieDetail, error) {
	var out MovieDetail
	if err := c.do(ctx, http.MethodGet, moviePath(movieID), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateMovie(ctx context.Context, req CreateMovieRequest) (*model.Movie, error) {
	var out struct {
		Movie model.Movie `json:"movie"`
	}
	if err := c.do(ctx, http.MethodPost, "/movies", nil, req, &out); err != nil {
		return nil, err
	}
	return &out.Movie, nil
}

func (c *Client) ListMovieReviews(ctx context.Context, movieID uint) (*MovieReviews, error) {
	var out MovieReviews
	if err := c.do(ctx, http.MethodGet, moviePath(movieID)+"/reviews", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AddReview(ctx context.Context, movieID uint, rating int, text string) (*AddReviewResponse, error) {
	body := map[string]any{"rating": rating, "reviewText": text}
	var out AddReviewResponse
	if err := c.do(ctx, http.MethodPost, moviePath(movieID)+"/reviews", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func userPath(id uint) string {
	return "/users/" + strconv.FormatUint(uint64(id), 10)
}

func moviePath(id uint) string {
	return "/movies/" + strconv.FormatUint(uint64(id), 10)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var envelope struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &envelope) == nil {
			apiErr.Message = envelope.Message
		}
		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
