package ledger

import (
	"testing"

	"taskinn/internal/dbtest"
	"taskinn/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newUser(t *testing.T, db *gorm.DB, name string) uint {
	t.Helper()
	user := domain.User{Username: name, Password: "x", Role: domain.RoleWorker}
	require.NoError(t, db.Create(&user).Error)
	return user.ID
}

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	return dbtest.Open(t)
}
