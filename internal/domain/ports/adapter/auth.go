package adapter

// Authorizer decides whether a sender may perform admin-gated operations.
// Injected instead of comparing against a global so tests can swap identities.
type Authorizer interface {
	IsAdmin(senderID int64) bool
	// AdminID is the chat that receives admin-facing notifications.
	AdminID() int64
}
