package ledger

import (
	"errors"
	"fmt"
	"time"

	"taskinn/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Split is the result of applying the commission policy to a gross amount.
// Gross == Commission + Fee + Net holds exactly.
type Split struct {
	Gross      decimal.Decimal `json:"gross"`
	Commission decimal.Decimal `json:"commission"`
	Fee        decimal.Decimal `json:"fee"`
	Net        decimal.Decimal `json:"net"`
}

// ComputeSplit charges rate on gross and subtracts the processor fee from what
// remains. No rounding is applied.
func ComputeSplit(gross, rate, fee decimal.Decimal) (Split, error) {
	if !gross.IsPositive() {
		return Split{}, ErrInvalidAmount
	}
	if err := ValidateRate(rate); err != nil {
		return Split{}, err
	}
	if fee.IsNegative() {
		return Split{}, fmt.Errorf("negative fee %s: %w", fee, ErrInvalidAmount)
	}
	commission := gross.Mul(rate)
	net := gross.Sub(commission).Sub(fee)
	if net.IsNegative() {
		return Split{}, fmt.Errorf("fee %s exceeds amount after commission: %w", fee, ErrInvalidAmount)
	}
	return Split{Gross: gross, Commission: commission, Fee: fee, Net: net}, nil
}

// TruncateNet cuts Net down to places decimals, the precision the processor
// pays out in, and moves the cut into Commission. Gross is unchanged.
func (s Split) TruncateNet(places int32) Split {
	net := s.Net.Truncate(places)
	s.Commission = s.Commission.Add(s.Net.Sub(net))
	s.Net = net
	return s
}

// ValidateRate accepts fractions in [0, 1).
func ValidateRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return ErrInvalidRate
	}
	return nil
}

// CommissionRate reads the global rate. It is called once per settlement so a
// rate change takes effect on the next settlement without a restart.
func CommissionRate(tx *gorm.DB) (decimal.Decimal, error) {
	var settings domain.AdminSettings
	err := tx.Select("id", "commission_rate").First(&settings, domain.AdminSettingsID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.DefaultCommissionRate, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("load commission rate: %w", err)
	}
	return settings.CommissionRate, nil
}

// SetCommissionRate updates the singleton settings row.
func SetCommissionRate(tx *gorm.DB, rate decimal.Decimal) error {
	if err := ValidateRate(rate); err != nil {
		return err
	}
	res := tx.Model(&domain.AdminSettings{}).Where("id = ?", domain.AdminSettingsID).Updates(map[string]any{
		"commission_rate": rate,
		"updated_at":      time.Now(), // MySQL counts only changed rows
	})
	if res.Error != nil {
		return fmt.Errorf("update commission rate: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrSettingsMissing
	}
	return nil
}
