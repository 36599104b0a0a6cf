package identity

import (
	"time"

	"stokvel-backend/internal/domain/apperr"
)

var (
	ErrDuplicateIdentity  = apperr.New(apperr.KindIdentity, "DUPLICATE_IDENTITY", "identifier is already bound to an active account")
	ErrBlacklisted        = apperr.New(apperr.KindIdentity, "BLACKLISTED", "identifier is blacklisted")
	ErrAlreadyBlacklisted = apperr.New(apperr.KindIdentity, "ALREADY_BLACKLISTED", "identifier is blacklisted")
	ErrNotBound           = apperr.New(apperr.KindIdentity, "IDENTITY_NOT_BOUND", "identifier is not bound to an active account")
)

// Table: identity_bindings. A binding survives account closure; it only counts
// while the bound account is active.
type Binding struct {
	HashedID  string    `gorm:"column:hashed_id;primaryKey;size:64" json:"hashed_id"`
	Address   string    `gorm:"column:address;size:42;not null;index" json:"address"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Binding) TableName() string { return "identity_bindings" }

// Table: blacklist. Rows are never removed.
type BlacklistEntry struct {
	HashedID  string    `gorm:"column:hashed_id;primaryKey;size:64" json:"hashed_id"`
	Address   string    `gorm:"column:address;size:42;not null" json:"address"`
	LoanID    uint64    `gorm:"column:loan_id;not null" json:"loan_id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (BlacklistEntry) TableName() string { return "blacklist" }
