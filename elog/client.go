package elog

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"
)

const userAgent = "eLog Slack bot"

// TransportError is returned when the logbook answers with a non-2xx status.
type TransportError struct {
	StatusCode int
	Status     string
	URL        string
	Body       string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("elog: %s from %s: %s", e.Status, e.URL, e.Body)
}

// Client talks to the ECL XML interface of an electronic logbook.
//
// Every request is signed with the account password, see sign.
type Client struct {
	url      string
	user     string
	password string
	http     *http.Client
}

// New creates a Client for the logbook rooted at baseURL.
func New(baseURL, user, password string, c *http.Client) *Client {
	if c == nil {
		c = http.DefaultClient
	}
	return &Client{
		url:      strings.TrimSuffix(baseURL, "/"),
		user:     user,
		password: password,
		http:     c,
	}
}

// Get fetches the entry with the given id.
func (c *Client) Get(ctx context.Context, id int) (string, error) {
	q := url.Values{}
	q.Set("e", strconv.Itoa(id))
	return c.do(ctx, http.MethodGet, "/E/xml_get", q, nil)
}

// Categories lists the categories known to the logbook.
func (c *Client) Categories(ctx context.Context) (string, error) {
	return c.do(ctx, http.MethodGet, "/E/xml_category_list", nil, nil)
}

// Tags lists the tags known to the logbook as <tag name="..."/> elements.
func (c *Client) Tags(ctx context.Context) (string, error) {
	return c.do(ctx, http.MethodGet, "/E/xml_tag_list", nil, nil)
}

// Post submits a new entry.
func (c *Client) Post(ctx context.Context, e *Entry) (string, error) {
	body, err := e.XML()
	if err != nil {
		return "", fmt.Errorf("encoding entry: %w", err)
	}
	return c.do(ctx, http.MethodPost, "/E/xml_post", nil, body)
}

// sign returns the hex md5 of "<query>:<password>:<body>".
func (c *Client) sign(query string, body []byte) string {
	h := md5.New()
	io.WriteString(h, query)
	io.WriteString(h, ":")
	io.WriteString(h, c.password)
	io.WriteString(h, ":")
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, body []byte) (string, error) {
	query := q.Encode()
	u := c.url + path
	if query != "" {
		u += "?" + query
	}

	req, err := http.NewRequest(method, u, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build %s request to %q: %w", method, u, err)
	}
	req = req.WithContext(ctx)

	req.Header.Add("User-Agent", userAgent)
	req.Header.Set("X-User", c.user)
	req.Header.Set("X-Signature-Method", "md5")
	req.Header.Set("X-Signature", c.sign(query, body))
	if body != nil {
		req.Header.Set("Content-Type", "text/xml; charset=UTF-8")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("making http request: %w", err)
	}
	defer resp.Body.Close()

	r, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		r = resp.Body
	}
	text, err := ioutil.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &TransportError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			URL:        c.url + path,
			Body:       strings.TrimSpace(string(text)),
		}
	}

	return string(text), nil
}
