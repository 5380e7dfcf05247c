package domain

type ctxKey string

const (
	RequesterCtxKey ctxKey = "cg-requester"
	OwnerMemoCtxKey ctxKey = "cg-owner-memo"
)

const (
	AuthorizationHeader = "authorization"
	RetryAfterHeader    = "Retry-After"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) IsElevated() bool {
	return r == RoleAdmin
}

type CatEventType string

const (
	CatCreated CatEventType = "created"
	CatUpdated CatEventType = "updated"
	CatDeleted CatEventType = "deleted"
)

// CatChannel is the pub/sub channel that carries CatEvents.
const CatChannel = "cats"

// PointType is the only geometry type a cat location may carry.
const PointType = "Point"
