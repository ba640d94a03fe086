// Package client implementa un cliente del API de autenticación que espeja
// el estado del frontend: access token en memoria y refresh cookie en el jar.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"
)

// User es el resumen de usuario que devuelve el backend.
type User struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"emailVerified"`
	CreatedAt     string `json:"createdAt,omitempty"`
	UpdatedAt     string `json:"updatedAt,omitempty"`
}

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("email already registered")
	ErrNotFound     = errors.New("not found")
)

// Client mantiene el estado de sesión contra el backend de autenticación.
// El access token vive solo en memoria; la refresh cookie viaja en el jar.
type Client struct {
	baseURL string
	http    *http.Client

	mu            sync.Mutex
	accessToken   string
	email         string
	authenticated bool
}

// New crea un Client con cookie jar propio.
func New(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Jar:     jar,
			Timeout: 10 * time.Second,
		},
	}, nil
}

// Signup registra una cuenta nueva y deja la sesión iniciada.
func (c *Client) Signup(ctx context.Context, email, password string) (User, error) {
	return c.credentialCall(ctx, "/api/auth/signup", email, password)
}

// Login inicia sesión con email y contraseña.
func (c *Client) Login(ctx context.Context, email, password string) (User, error) {
	return c.credentialCall(ctx, "/api/auth/login", email, password)
}

// Logout llama al endpoint de logout y limpia el estado local.
// El estado local se limpia aunque el request falle.
func (c *Client) Logout(ctx context.Context) error {
	defer c.clearSession()
	var out struct {
		Message string `json:"message"`
	}
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, &out)
}

// Me devuelve el usuario autenticado actual.
func (c *Client) Me(ctx context.Context) (User, error) {
	var out struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &out); err != nil {
		return User{}, err
	}
	return out.User, nil
}

// Refresh canjea la refresh cookie por un access token nuevo.
func (c *Client) Refresh(ctx context.Context) error {
	var out struct {
		AccessToken string `json:"accessToken"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/refresh", nil, &out); err != nil {
		return err
	}
	c.mu.Lock()
	c.accessToken = out.AccessToken
	c.mu.Unlock()
	return nil
}

// Restore intenta restaurar la sesión de forma silenciosa mediante /me.
// Cualquier fallo se traga y deja el estado como no autenticado.
func (c *Client) Restore(ctx context.Context) {
	user, err := c.Me(ctx)
	if err != nil {
		c.clearSession()
		return
	}
	c.mu.Lock()
	c.email = user.Email
	c.authenticated = true
	c.mu.Unlock()
}

// Authenticated indica si hay una sesión activa.
func (c *Client) Authenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authenticated
}

// Email devuelve el email de la sesión activa, o vacío.
func (c *Client) Email() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.email
}

// AccessToken devuelve el access token en memoria, o vacío.
func (c *Client) AccessToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken
}

func (c *Client) credentialCall(ctx context.Context, path, email, password string) (User, error) {
	body := map[string]string{"email": email, "password": password}
	var out struct {
		User        User   `json:"user"`
		AccessToken string `json:"accessToken"`
	}
	if err := c.do(ctx, http.MethodPost, path, body, &out); err != nil {
		return User{}, err
	}
	c.mu.Lock()
	c.accessToken = out.AccessToken
	c.email = out.User.Email
	c.authenticated = true
	c.mu.Unlock()
	return out.User, nil
}

func (c *Client) clearSession() {
	c.mu.Lock()
	c.accessToken = ""
	c.email = ""
	c.authenticated = false
	c.mu.Unlock()
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.AccessToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return apiError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func apiError(resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&payload)

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		if payload.Error != "" {
			return fmt.Errorf("%w: %s", ErrUnauthorized, payload.Error)
		}
		return ErrUnauthorized
	case http.StatusConflict:
		return ErrConflict
	case http.StatusNotFound:
		return ErrNotFound
	default:
		if payload.Error != "" {
			return fmt.Errorf("api error (%d): %s", resp.StatusCode, payload.Error)
		}
		return fmt.Errorf("api error (%d)", resp.StatusCode)
	}
}
