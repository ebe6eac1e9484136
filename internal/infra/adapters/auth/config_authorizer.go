package auth

import (
	"github.com/misterioso013/meu-orcamento-bot/internal/domain/ports/adapter"
)

var _ adapter.Authorizer = (*ConfigAuthorizer)(nil)

// ConfigAuthorizer gates admin operations on the single id from config.
type ConfigAuthorizer struct {
	adminID int64
}

func NewConfigAuthorizer(adminID int64) *ConfigAuthorizer {
	return &ConfigAuthorizer{adminID: adminID}
}

func (a *ConfigAuthorizer) IsAdmin(senderID int64) bool { return senderID == a.adminID }

func (a *ConfigAuthorizer) AdminID() int64 { return a.adminID }
