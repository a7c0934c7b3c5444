package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentType string

const (
	PaymentTypeEMI     PaymentType = "EMI"
	PaymentTypeLumpSum PaymentType = "LUMP_SUM"
)

func (t PaymentType) IsValid() bool {
	return t == PaymentTypeEMI || t == PaymentTypeLumpSum
}

// Payment is append-only: amount and type are recorded as given, without
// validation against the installment size. PaidAt is the ordering key; Seq
// breaks ties for payments recorded at the same instant.
type Payment struct {
	ID     uuid.UUID
	LoanID uuid.UUID
	Amount decimal.Decimal
	Type   PaymentType
	PaidAt time.Time
	Seq    int64
}
