package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/idemlab/aegis/core"
	"github.com/idemlab/aegis/ports"
)

// TopicCredentialIssued carries one message per issued credential.
const TopicCredentialIssued = "aegis.credential.issued"

// WatermillPublisher implements the AuditPublisher interface using Watermill.
// The payload is the audit record only: identities, credential id, and type
// tags. Claim content never reaches the audit stream.
type WatermillPublisher struct {
	publisher message.Publisher
	topic     string
}

// NewWatermillPublisher creates a new Watermill audit publisher.
func NewWatermillPublisher(publisher message.Publisher) ports.AuditPublisher {
	return &WatermillPublisher{
		publisher: publisher,
		topic:     TopicCredentialIssued,
	}
}

// PublishIssuance publishes an issuance audit record.
func (p *WatermillPublisher) PublishIssuance(ctx context.Context, record core.AuditRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal audit record: %w", err)
	}

	msg := message.NewMessage(record.CredentialID, payload)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("failed to publish audit record: %w", err)
	}
	return nil
}
