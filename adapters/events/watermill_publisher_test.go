package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idemlab/aegis/core"
)

func TestPublishIssuance(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	messages, err := pubSub.Subscribe(ctx, TopicCredentialIssued)
	require.NoError(t, err)

	publisher := NewWatermillPublisher(pubSub)

	record := core.AuditRecord{
		Timestamp:    time.Now().UTC(),
		IssuerID:     "did:ethr:0x0000000000000000000000000000000000000001",
		SubjectID:    "did:ethr:0x0000000000000000000000000000000000000002",
		CredentialID: "urn:uuid:audit-1",
		Types:        []string{core.TypeVerifiableCredential},
	}
	require.NoError(t, publisher.PublishIssuance(ctx, record))

	select {
	case msg := <-messages:
		msg.Ack()
		assert.Equal(t, record.CredentialID, msg.UUID)

		var got core.AuditRecord
		require.NoError(t, json.Unmarshal(msg.Payload, &got))
		assert.Equal(t, record.IssuerID, got.IssuerID)
		assert.Equal(t, record.SubjectID, got.SubjectID)
		assert.Equal(t, record.CredentialID, got.CredentialID)
		assert.Equal(t, record.Types, got.Types)

	case <-ctx.Done():
		t.Fatal("no audit message received")
	}
}
