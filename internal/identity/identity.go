package identity

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// AccessLevel is the integer role tier gating feature visibility.
type AccessLevel int

const (
	LevelPublic     AccessLevel = 1
	LevelTechnician AccessLevel = 2
	LevelStaff      AccessLevel = 3
	LevelAdmin      AccessLevel = 4
)

func (l AccessLevel) Valid() bool {
	return l >= LevelPublic && l <= LevelAdmin
}

// Role returns the policy role name for the access level.
func (l AccessLevel) Role() string {
	switch l {
	case LevelTechnician:
		return "technician"
	case LevelStaff:
		return "staff"
	case LevelAdmin:
		return "admin"
	default:
		return "public"
	}
}

// Capability is a coarse permission resolved once per request from the
// caller's access level and consulted by the query pipeline instead of
// re-deriving role checks at each call site.
type Capability uint8

const (
	CapViewMalfunctions Capability = 1 << iota
	CapManageMalfunctions
	CapManageProducts
	CapAdmin
)

type Capabilities uint8

func (c Capabilities) Has(cap Capability) bool {
	return c&Capabilities(cap) != 0
}

// CapabilitiesFor maps an access level to its capability set.
func CapabilitiesFor(level AccessLevel) Capabilities {
	var caps Capabilities
	if level >= LevelTechnician {
		caps |= Capabilities(CapViewMalfunctions)
	}
	if level >= LevelStaff {
		caps |= Capabilities(CapManageMalfunctions)
	}
	if level >= LevelAdmin {
		caps |= Capabilities(CapManageProducts)
		caps |= Capabilities(CapAdmin)
	}
	return caps
}

// Caller is the authenticated (or anonymous) request principal.
type Caller struct {
	UserID       snowflake.ID
	AccessLevel  AccessLevel
	Capabilities Capabilities
}

func (c Caller) Anonymous() bool {
	return c.UserID == 0
}

// CallerContextKey is the request context key for the caller identity.
type CallerContextKey struct{}

// WithCaller stores the caller in the context.
func WithCaller(ctx context.Context, caller Caller) context.Context {
	return context.WithValue(ctx, CallerContextKey{}, caller)
}

// CallerFromContext returns the caller from context. Absent caller means
// an anonymous public request.
func CallerFromContext(ctx context.Context) Caller {
	if ctx == nil {
		return Caller{AccessLevel: LevelPublic}
	}
	if caller, ok := ctx.Value(CallerContextKey{}).(Caller); ok {
		return caller
	}
	return Caller{AccessLevel: LevelPublic}
}
