package db

import "gorm.io/gorm"

// ForUpdate returns the row-locking suffix for the connection's dialect.
// sqlite has no FOR UPDATE; its single writer already serializes transactions.
func ForUpdate(tx *gorm.DB) string {
	if tx != nil && tx.Dialector != nil && tx.Dialector.Name() == "sqlite" {
		return ""
	}
	return " FOR UPDATE"
}
