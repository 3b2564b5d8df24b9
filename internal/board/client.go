package board

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrChannelUnreachable is returned when the target channel cannot be resolved.
	ErrChannelUnreachable = errors.New("channel unreachable")
	// ErrPublishFailed is returned when posting a message to a resolved channel errors.
	ErrPublishFailed = errors.New("publish failed")
	// ErrArtifactNotFound is returned when a message id does not resolve on the channel.
	ErrArtifactNotFound = errors.New("artifact not found")
	// ErrNotConfigured is returned when no board channel id is configured.
	ErrNotConfigured = errors.New("board channel not configured")
)

// Channel is a resolved channel handle.
type Channel struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Control is an action button attached to a posted message.
type Control struct {
	Label   string `json:"label"`
	Payload string `json:"payload"`
}

// OutgoingMessage is the body posted to a channel.
type OutgoingMessage struct {
	Content  string    `json:"content"`
	Controls []Control `json:"controls,omitempty"`
}

// Message is a message fetched back from a channel.
type Message struct {
	ID       string    `json:"id"`
	Content  string    `json:"content"`
	Controls []Control `json:"controls,omitempty"`
}

// Client speaks the chat platform's REST API over JSON.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a Client for the platform at baseURL authenticating
// with the given bot token.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bot "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decoding response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

// ResolveChannel looks the channel up by id. Any transport failure or
// non-200 status wraps ErrChannelUnreachable; the result is intentionally
// not cached so channel reconfiguration takes effect on the next call.
func (c *Client) ResolveChannel(ctx context.Context, channelID string) (Channel, error) {
	var ch Channel
	status, err := c.do(ctx, http.MethodGet, "/api/channels/"+channelID, nil, &ch)
	if err != nil {
		return Channel{}, fmt.Errorf("resolving channel %s: %v: %w", channelID, err, ErrChannelUnreachable)
	}
	if status != http.StatusOK {
		return Channel{}, fmt.Errorf("resolving channel %s: status %d: %w", channelID, status, ErrChannelUnreachable)
	}
	return ch, nil
}

// SendMessage posts a message to the channel and returns the new message id.
func (c *Client) SendMessage(ctx context.Context, channelID string, msg OutgoingMessage) (string, error) {
	var created Message
	status, err := c.do(ctx, http.MethodPost, "/api/channels/"+channelID+"/messages", msg, &created)
	if err != nil {
		return "", fmt.Errorf("sending message: %v: %w", err, ErrPublishFailed)
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return "", fmt.Errorf("sending message: status %d: %w", status, ErrPublishFailed)
	}
	if created.ID == "" {
		return "", fmt.Errorf("sending message: empty message id in response: %w", ErrPublishFailed)
	}
	return created.ID, nil
}

// FetchMessage retrieves a posted message by id.
func (c *Client) FetchMessage(ctx context.Context, channelID, messageID string) (Message, error) {
	var msg Message
	status, err := c.do(ctx, http.MethodGet, "/api/channels/"+channelID+"/messages/"+messageID, nil, &msg)
	if err != nil {
		return Message{}, fmt.Errorf("fetching message %s: %w", messageID, err)
	}
	if status == http.StatusNotFound {
		return Message{}, fmt.Errorf("fetching message %s: %w", messageID, ErrArtifactNotFound)
	}
	if status != http.StatusOK {
		return Message{}, fmt.Errorf("fetching message %s: status %d", messageID, status)
	}
	return msg, nil
}

// DeleteMessage removes a posted message by id.
func (c *Client) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	status, err := c.do(ctx, http.MethodDelete, "/api/channels/"+channelID+"/messages/"+messageID, nil, nil)
	if err != nil {
		return fmt.Errorf("deleting message %s: %w", messageID, err)
	}
	if status == http.StatusNotFound {
		return fmt.Errorf("deleting message %s: %w", messageID, ErrArtifactNotFound)
	}
	if status != http.StatusOK && status != http.StatusNoContent {
		return fmt.Errorf("deleting message %s: status %d", messageID, status)
	}
	return nil
}
