package ports

import (
	"context"

	"github.com/idemlab/aegis/core"
)

// AuditPublisher fans out issuance audit records to interested consumers.
type AuditPublisher interface {
	PublishIssuance(ctx context.Context, record core.AuditRecord) error
}
