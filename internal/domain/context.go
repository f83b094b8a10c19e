package domain

type ctxKey int

const (
	// RequesterIdCtxKey carries the authenticated operator id.
	RequesterIdCtxKey ctxKey = iota
	// RequesterRoleCtxKey carries the authenticated operator role.
	RequesterRoleCtxKey
)
