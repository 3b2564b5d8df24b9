package board

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testPlatform(t *testing.T) (*httptest.Server, *Client) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/channels/ch1", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bot tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(Channel{ID: "ch1", Name: "introductions"})
	})
	mux.HandleFunc("POST /api/channels/ch1/messages", func(w http.ResponseWriter, r *http.Request) {
		var msg OutgoingMessage
		if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(Message{ID: "m42", Content: msg.Content, Controls: msg.Controls})
	})
	mux.HandleFunc("GET /api/channels/ch1/messages/m42", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Message{ID: "m42", Content: "hello"})
	})
	mux.HandleFunc("DELETE /api/channels/ch1/messages/m42", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, NewClient(srv.URL, "tok")
}

func TestResolveChannel(t *testing.T) {
	_, c := testPlatform(t)

	ch, err := c.ResolveChannel(context.Background(), "ch1")
	if err != nil {
		t.Fatalf("ResolveChannel error: %v", err)
	}
	if ch.ID != "ch1" || ch.Name != "introductions" {
		t.Errorf("ResolveChannel() = %+v", ch)
	}

	if _, err := c.ResolveChannel(context.Background(), "missing"); !errors.Is(err, ErrChannelUnreachable) {
		t.Errorf("expected ErrChannelUnreachable for unknown channel, got %v", err)
	}
}

func TestResolveChannel_Unreachable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "tok")
	_, err := c.ResolveChannel(context.Background(), "ch1")
	if !errors.Is(err, ErrChannelUnreachable) {
		t.Errorf("expected ErrChannelUnreachable, got %v", err)
	}
}

func TestSendMessage(t *testing.T) {
	_, c := testPlatform(t)

	id, err := c.SendMessage(context.Background(), "ch1", OutgoingMessage{Content: "hello"})
	if err != nil {
		t.Fatalf("SendMessage error: %v", err)
	}
	if id != "m42" {
		t.Errorf("SendMessage() = %q, want m42", id)
	}

	if _, err := c.SendMessage(context.Background(), "missing", OutgoingMessage{}); !errors.Is(err, ErrPublishFailed) {
		t.Errorf("expected ErrPublishFailed, got %v", err)
	}
}

func TestFetchAndDeleteMessage(t *testing.T) {
	_, c := testPlatform(t)
	ctx := context.Background()

	msg, err := c.FetchMessage(ctx, "ch1", "m42")
	if err != nil {
		t.Fatalf("FetchMessage error: %v", err)
	}
	if msg.Content != "hello" {
		t.Errorf("FetchMessage() content = %q", msg.Content)
	}

	if _, err := c.FetchMessage(ctx, "ch1", "gone"); !errors.Is(err, ErrArtifactNotFound) {
		t.Errorf("expected ErrArtifactNotFound, got %v", err)
	}

	if err := c.DeleteMessage(ctx, "ch1", "m42"); err != nil {
		t.Fatalf("DeleteMessage error: %v", err)
	}
	if err := c.DeleteMessage(ctx, "ch1", "gone"); !errors.Is(err, ErrArtifactNotFound) {
		t.Errorf("expected ErrArtifactNotFound, got %v", err)
	}
}
