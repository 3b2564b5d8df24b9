package board

import (
	"context"
	"fmt"
)

// ChannelAPI is the slice of the chat platform client the publisher needs.
// Implemented by Client.
type ChannelAPI interface {
	ResolveChannel(ctx context.Context, channelID string) (Channel, error)
	SendMessage(ctx context.Context, channelID string, msg OutgoingMessage) (string, error)
	FetchMessage(ctx context.Context, channelID, messageID string) (Message, error)
	DeleteMessage(ctx context.Context, channelID, messageID string) error
}

// Publisher creates, replaces, and removes the single posted representation
// of a profile on the configured board channel. The channel is re-resolved
// on every call rather than cached, tolerating reconfiguration.
type Publisher struct {
	api       ChannelAPI
	channelID string
}

// NewPublisher creates a Publisher posting to the given channel id. An
// empty channel id is allowed at construction; operations then fail with
// ErrNotConfigured.
func NewPublisher(api ChannelAPI, channelID string) *Publisher {
	return &Publisher{api: api, channelID: channelID}
}

// Ready reports whether a channel id is configured.
func (p *Publisher) Ready() error {
	if p.channelID == "" {
		return ErrNotConfigured
	}
	return nil
}

// Publish posts a new artifact for the card and returns its id.
func (p *Publisher) Publish(ctx context.Context, card Card) (string, error) {
	if err := p.Ready(); err != nil {
		return "", err
	}

	ch, err := p.api.ResolveChannel(ctx, p.channelID)
	if err != nil {
		return "", err
	}

	id, err := p.api.SendMessage(ctx, ch.ID, OutgoingMessage{
		Content:  Render(card),
		Controls: CardControls(card.UserID),
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// Verify checks that a previously published artifact still exists on the
// board. Returns ErrArtifactNotFound (wrapped) if the card was removed
// out-of-band.
func (p *Publisher) Verify(ctx context.Context, artifactID string) error {
	if err := p.Ready(); err != nil {
		return err
	}

	ch, err := p.api.ResolveChannel(ctx, p.channelID)
	if err != nil {
		return err
	}

	if _, err := p.api.FetchMessage(ctx, ch.ID, artifactID); err != nil {
		return fmt.Errorf("verifying artifact: %w", err)
	}
	return nil
}

// Retract removes a previously published artifact. Callers treat failure
// as non-fatal: an orphaned old card is cosmetic, not data-corrupting.
func (p *Publisher) Retract(ctx context.Context, artifactID string) error {
	if err := p.Ready(); err != nil {
		return err
	}

	ch, err := p.api.ResolveChannel(ctx, p.channelID)
	if err != nil {
		return err
	}

	if _, err := p.api.FetchMessage(ctx, ch.ID, artifactID); err != nil {
		return fmt.Errorf("retracting artifact: %w", err)
	}
	if err := p.api.DeleteMessage(ctx, ch.ID, artifactID); err != nil {
		return fmt.Errorf("retracting artifact: %w", err)
	}
	return nil
}
