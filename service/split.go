package service

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"tripbudget/models"
)

// MinorUnitExp 最小货币单位的指数（分）
const MinorUnitExp = 2

// MaxAmount 单个金额上限，与 decimal(12,2) 列一致
var MaxAmount = decimal.New(999999999999, -MinorUnitExp)

var (
	errTooPrecise = errors.New("too many decimal places")
	errOutOfRange = errors.New("amount out of range")
)

// ToMinorUnits 金额转换为最小货币单位，要求金额不超过两位小数且绝对值不超过 MaxAmount
func ToMinorUnits(amount decimal.Decimal) (int64, error) {
	shifted := amount.Shift(MinorUnitExp)
	if !shifted.Equal(shifted.Truncate(0)) {
		return 0, fmt.Errorf("amount %s: %w", amount, errTooPrecise)
	}
	if amount.Abs().GreaterThan(MaxAmount) {
		return 0, fmt.Errorf("amount %s: %w", amount, errOutOfRange)
	}
	return shifted.IntPart(), nil
}

// ValidateAmount 校验金额精度与上限，失败时返回 field 对应的 ValidationError
func ValidateAmount(field string, amount decimal.Decimal) error {
	_, err := ToMinorUnits(amount)
	return amountError(field, err)
}

func amountError(field string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, errOutOfRange):
		return models.NewValidationError(field, "金额不能超过 "+MaxAmount.StringFixed(MinorUnitExp))
	default:
		return models.NewValidationError(field, "金额最多两位小数")
	}
}

// FromMinorUnits 最小货币单位转换为金额
func FromMinorUnits(units int64) decimal.Decimal {
	return decimal.New(units, -MinorUnitExp)
}

// SplitEvenly 将金额平均分给参与者。
// 余数（以分为单位）按固定顺序逐个分配：付款人（若参与）优先，其余参与者按传入顺序。
// 份额按参与者传入顺序返回，付款人的份额标记为已结清。
func SplitEvenly(amount decimal.Decimal, participants []uint, payer uint) ([]models.MemberShare, error) {
	if len(participants) == 0 {
		return nil, models.NewValidationError("member_ids", "至少需要一名参与者")
	}
	cents, err := ToMinorUnits(amount)
	if err != nil {
		return nil, amountError("amount", err)
	}

	n := int64(len(participants))
	base := cents / n
	remainder := cents % n

	extra := make(map[uint]int64, remainder)
	order := remainderOrder(participants, payer)
	for i := int64(0); i < remainder; i++ {
		extra[order[i]] = 1
	}

	shares := make([]models.MemberShare, 0, len(participants))
	for i, id := range participants {
		shares = append(shares, models.MemberShare{
			Position: i,
			MemberID: id,
			Amount:   FromMinorUnits(base + extra[id]),
			Settled:  id == payer,
		})
	}
	return shares, nil
}

func remainderOrder(participants []uint, payer uint) []uint {
	order := make([]uint, 0, len(participants))
	for _, id := range participants {
		if id == payer {
			order = append(order, id)
			break
		}
	}
	for _, id := range participants {
		if id != payer {
			order = append(order, id)
		}
	}
	return order
}

// PerPersonBudget 人均预算，四舍五入到分
func PerPersonBudget(total decimal.Decimal, memberCount int) decimal.Decimal {
	if memberCount <= 0 {
		return decimal.Zero
	}
	return total.DivRound(decimal.NewFromInt(int64(memberCount)), MinorUnitExp)
}
