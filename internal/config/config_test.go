package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("PROCESSOR_TIMEOUT_SECONDS", "")
	t.Setenv("RECONCILE_INTERVAL_SECONDS", "nope")
	t.Setenv("COINPAYMENTS_CURRENCY", "")

	cfg := LoadConfig()
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, 30*time.Second, cfg.ProcessorTimeout)
	assert.Equal(t, 300*time.Second, cfg.ReconcileInterval)
	assert.Equal(t, "USDT.TRC20", cfg.CoinPaymentsCurrency)
}

func TestDSN(t *testing.T) {
	mysqlCfg := &Config{DBDriver: "mysql", DBUser: "u", DBPassword: "p", DBHost: "db", DBName: "taskinn"}
	assert.Equal(t, "u:p@tcp(db:3306)/taskinn?parseTime=true", mysqlCfg.DSN())

	pgCfg := &Config{DBDriver: "postgres", DBUser: "u", DBPassword: "p", DBHost: "db", DBPort: "6543", DBName: "taskinn", DBSSLMode: "require"}
	assert.Equal(t, "host=db port=6543 user=u password=p dbname=taskinn sslmode=require", pgCfg.DSN())
}
