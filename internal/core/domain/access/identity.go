package access

import (
	"github.com/google/uuid"
)

// Identity is the (ip, principal?) pair a request is evaluated under.
// It is never persisted; stores key their rows on its fields.
type Identity struct {
	IP        string     `json:"ip"`
	Principal *uuid.UUID `json:"principal,omitempty"`
}

func NewIdentity(ip string) Identity {
	return Identity{IP: ip}
}

func NewPrincipalIdentity(ip string, principal uuid.UUID) Identity {
	return Identity{IP: ip, Principal: &principal}
}

func (i Identity) HasPrincipal() bool {
	return i.Principal != nil && *i.Principal != uuid.Nil
}

// PrincipalOrNil normalizes an absent principal to nil for store keys.
func (i Identity) PrincipalOrNil() *uuid.UUID {
	if !i.HasPrincipal() {
		return nil
	}
	return i.Principal
}
