package config

import (
	"fmt"
	"strings"
)

// Validate reports every mandatory setting that is missing. Secrets have no
// built-in fallback, so a bare environment never boots.
func (c Config) Validate() error {
	var missing []string
	if c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if len(c.JWTSecret) == 0 {
		missing = append(missing, "JWT_SECRET")
	}
	if c.MercadoPagoToken == "" {
		missing = append(missing, "MP_ACCESS_TOKEN")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env %s", strings.Join(missing, ", "))
	}
	return nil
}
