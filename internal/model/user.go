package model

import "time"

// User represents a rider or administrator account as stored in the
// `users` table. Each field corresponds to a column. The json tags are
// omitted here because these structs are used internally by the
// repository layer; handlers define separate response types with
// appropriate JSON tags.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – account role (RIDER or ADMIN).
//  IsActive     – whether the account is active.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// Account roles. Riders buy and hold tickets; admins additionally
// manage alerts and revoke tickets.
const (
	RoleRider = "RIDER"
	RoleAdmin = "ADMIN"
)

// RefreshToken models an entry in the `refresh_tokens` table. Each
// refresh token belongs to a user and carries metadata for expiry and
// revocation. The plain token is never stored; only its SHA-256 hash.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}

// Product is a row of the fare catalog (`products` table). Prices are
// stored in cents; PaymentLink is an opaque external checkout URL —
// payment processing itself happens outside this service.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – fare class name the product maps to (e.g. single_use).
//  Description – human-readable description shown in apps.
//  PriceCents  – price in USD cents.
//  PaymentLink – external checkout link for this product.
//  Active      – whether the product is currently offered.
type Product struct {
	ID          uint64 // products.id
	Name        string // products.name
	Description string // products.description
	PriceCents  uint32 // products.price_cents
	PaymentLink string // products.payment_link
	Active      bool   // products.active
}

// Alert is a service alert posted by an administrator (`alerts` table),
// shown to all riders until deleted.
//
// Fields:
//  ID       – primary key identifier.
//  Message  – alert text.
//  IssuedBy – user id of the admin who posted it.
//  IssuedAt – timestamp of creation.
type Alert struct {
	ID       uint64    // alerts.id
	Message  string    // alerts.message
	IssuedBy uint64    // alerts.issued_by
	IssuedAt time.Time // alerts.issued_at
}
