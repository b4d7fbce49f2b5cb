// Package crm pushes hotel records into a Salesforce-style CRM through its
// REST API. A Client lives for exactly one sync run.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
)

var ErrAuth = errors.New("crm authentication failed")

type Config struct {
	LoginURL      string
	Username      string
	Password      string
	SecurityToken string
	ClientID      string
	ClientSecret  string
	APIVersion    string
	Timeout       time.Duration
	HTTPClient    *http.Client
}

type Client struct {
	http        *http.Client
	loginURL    string
	apiVersion  string
	accessToken string
	instanceURL string
}

// APIError is a non-2xx response from the CRM.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("crm %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("crm %d: %s", e.Status, e.Message)
}

// Dial authenticates with the OAuth2 password grant and returns a client
// bound to the issued instance URL.
func Dial(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Username == "" || cfg.Password == "" || cfg.ClientID == "" {
		return nil, fmt.Errorf("%w: username, password and client id are required", ErrAuth)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	base := cfg.HTTPClient
	if base == nil {
		base = &http.Client{Timeout: timeout}
	}
	version := cfg.APIVersion
	if version == "" {
		version = "v59.0"
	}
	if !strings.HasPrefix(version, "v") {
		version = "v" + version
	}
	loginURL := strings.TrimRight(cfg.LoginURL, "/")

	conf := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  loginURL + "/services/oauth2/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)

	tok, err := conf.PasswordCredentialsToken(ctx, cfg.Username, cfg.Password+cfg.SecurityToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrAuth, loginError(err))
	}
	instanceURL, _ := tok.Extra("instance_url").(string)
	instanceURL = strings.TrimRight(instanceURL, "/")
	if instanceURL == "" {
		return nil, fmt.Errorf("%w: token response missing instance_url", ErrAuth)
	}

	// The token carries no expiry, so the source never refreshes.
	httpClient := conf.Client(ctx, tok)
	httpClient.Timeout = base.Timeout

	return &Client{
		http:        httpClient,
		loginURL:    loginURL,
		apiVersion:  version,
		accessToken: tok.AccessToken,
		instanceURL: instanceURL,
	}, nil
}

func loginError(err error) string {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		if re.ErrorDescription != "" {
			return fmt.Sprintf("%d %s", re.Response.StatusCode, re.ErrorDescription)
		}
		return fmt.Sprintf("%d %s", re.Response.StatusCode, strings.TrimSpace(string(re.Body)))
	}
	return err.Error()
}

// Upsert creates or updates the object identified by keyField = keyValue and
// returns the CRM record id.
func (c *Client) Upsert(ctx context.Context, object, keyField, keyValue string, fields map[string]any) (string, error) {
	if keyValue == "" {
		return "", fmt.Errorf("upsert %s: empty %s", object, keyField)
	}
	payload, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("marshal %s fields: %w", object, err)
	}

	path := fmt.Sprintf("/sobjects/%s/%s/%s", object, keyField, url.PathEscape(keyValue))
	body, status, err := c.do(ctx, http.MethodPatch, path, payload)
	if err != nil {
		return "", fmt.Errorf("upsert %s %s: %w", object, keyValue, err)
	}

	switch status {
	case http.StatusOK, http.StatusCreated:
		if id := gjson.GetBytes(body, "id").String(); id != "" {
			return id, nil
		}
	case http.StatusNoContent:
	default:
		return "", fmt.Errorf("upsert %s %s: %w", object, keyValue, apiError(status, body))
	}

	// Older API versions answer updates with 204 and no body.
	id, err := c.FindID(ctx, object, keyField, keyValue)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", fmt.Errorf("upsert %s %s: record not found after update", object, keyValue)
	}
	return id, nil
}

// FindID returns the id of the first object whose field equals value, or ""
// when none matches.
func (c *Client) FindID(ctx context.Context, object, field, value string) (string, error) {
	soql := fmt.Sprintf("SELECT Id FROM %s WHERE %s = '%s' LIMIT 1", object, field, escapeSOQL(value))
	body, status, err := c.do(ctx, http.MethodGet, "/query?q="+url.QueryEscape(soql), nil)
	if err != nil {
		return "", fmt.Errorf("query %s: %w", object, err)
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("query %s: %w", object, apiError(status, body))
	}
	return gjson.GetBytes(body, "records.0.Id").String(), nil
}

// Close revokes the access token. The client is unusable afterwards.
func (c *Client) Close(ctx context.Context) error {
	if c == nil || c.accessToken == "" {
		return nil
	}
	form := url.Values{"token": {c.accessToken}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.loginURL+"/services/oauth2/revoke", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build revoke request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.accessToken = ""

	body, status, err := c.send(req)
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("revoke token: %w", apiError(status, body))
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, int, error) {
	if c.accessToken == "" {
		return nil, 0, errors.New("client closed")
	}
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	endpoint := fmt.Sprintf("%s/services/data/%s%s", c.instanceURL, c.apiVersion, path)
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req)
}

func (c *Client) send(req *http.Request) ([]byte, int, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	return body, resp.StatusCode, nil
}

// apiError decodes the CRM's error array ([{"message","errorCode"}]).
func apiError(status int, body []byte) error {
	res := gjson.ParseBytes(body)
	first := res
	if res.IsArray() {
		first = res.Get("0")
	}
	msg := first.Get("message").String()
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}
	return &APIError{Status: status, Code: first.Get("errorCode").String(), Message: msg}
}

func escapeSOQL(s string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s)
}
