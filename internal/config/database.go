// internal/config/database.go
package config

import (
	"fmt"
)

// DSN renders the libpq keyword/value connection string used by the
// postgres gorm driver.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode,
	)
}
