// Package session is the local session store: a handful of fixed keys that
// outlive any single screen or command. It holds the admin bearer token, the
// last contact and query password typed into a purchase form, and the list of
// orders placed from this machine.
package session

// Fixed storage keys. Each key is one file inside the storage directory.
const (
	KeyAdminToken   = "admin_token"
	KeyLastContact  = "last_contact"
	KeyLastQueryPwd = "last_query_pwd"
	KeyOrderHistory = "order_history"
)

const (
	historyLimit    = 50
	tempFilePattern = ".tmp-*"
	tempFilePrefix  = ".tmp-"
	storageFileMode = 0o600
	storageDirMode  = 0o700
)

// Keys returns every key the store manages.
func Keys() []string {
	return []string{KeyAdminToken, KeyLastContact, KeyLastQueryPwd, KeyOrderHistory}
}

// TokenSource supplies and revokes the admin bearer token. The API client
// depends on this rather than on *Store.
type TokenSource interface {
	Token() string
	ClearToken()
}

// TokenKeeper extends TokenSource with storing a freshly issued token.
type TokenKeeper interface {
	TokenSource
	SetToken(token string)
}

// ContactMemory remembers what the buyer last typed into a purchase form.
type ContactMemory interface {
	LastContact() string
	SetLastContact(contact string)
	LastQueryPassword() string
	SetLastQueryPassword(password string)
}
