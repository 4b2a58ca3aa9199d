package comm

import (
	"fmt"
	"strconv"
	"strings"
)

// Role identifies a physical board on the protocol.
type Role byte

// Known roles.
const (
	RoleHost   Role = 0
	RoleTop    Role = 1
	RoleMiddle Role = 2
	RoleBottom Role = 3
)

var roleNames = map[Role]string{
	RoleHost:   "HOST",
	RoleTop:    "TOP",
	RoleMiddle: "MIDDLE",
	RoleBottom: "BOTTOM",
}

// String implements fmt.Stringer.
func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "ROLE" + strconv.Itoa(int(r))
}

// ParseRole parses a role name (case-insensitive) or a decimal number.
func ParseRole(s string) (Role, error) {
	s = strings.TrimSpace(s)
	for r, name := range roleNames {
		if strings.EqualFold(name, s) {
			return r, nil
		}
	}
	n, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid role %q", s)
	}
	return Role(n), nil
}

// Identifier is the message type tag, scoped to one role and one direction.
type Identifier byte

// Reserved identifiers. They are conventions, the wire format doesn't enforce them.
const (
	IdentifierIdentify Identifier = 253
	IdentifierError    Identifier = 254
	IdentifierFatal    Identifier = 255
)

// String implements fmt.Stringer.
func (id Identifier) String() string {
	switch id {
	case IdentifierIdentify:
		return "IDENTIFY"
	case IdentifierError:
		return "ERROR"
	case IdentifierFatal:
		return "FATAL"
	}
	return strconv.Itoa(int(id))
}
