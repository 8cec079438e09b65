package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/globalenglish-api/pkg/config"
)

func TestDSN(t *testing.T) {
	cfg := config.DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "ge", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=ge sslmode=disable", DSN(cfg))

	cfg.LockTimeout = 3 * time.Second
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=ge sslmode=disable lock_timeout=3000", DSN(cfg))
}
