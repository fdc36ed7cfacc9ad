package httpkit

import (
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const identityKey = "httpkit.identity"

// Identity is the caller behind an access token.
type Identity struct {
	userID uuid.UUID
	email  string
	roles  []string
}

func (i *Identity) UserID() uuid.UUID { return i.userID }

func (i *Identity) Roles() []string { return i.roles }

func (i *Identity) HasRole(role string) bool { return slices.Contains(i.roles, role) }

// Actor names the caller in audit records: the email claim when present,
// the user ID otherwise.
func (i *Identity) Actor() string {
	if i.email != "" {
		return i.email
	}
	return i.userID.String()
}

// GetIdentity returns the identity set by AuthRequired, or nil.
func GetIdentity(c *gin.Context) *Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	id, _ := v.(*Identity)
	return id
}

// MustGetIdentity is GetIdentity for handlers behind AuthRequired. A nil
// result means the request was already aborted with 401.
func MustGetIdentity(c *gin.Context) *Identity {
	id := GetIdentity(c)
	if id == nil {
		abortUnauthorized(c, "unauthorized")
	}
	return id
}
