package models

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

// TotalKey identifies the single derived Total of a courier on a calendar day.
type TotalKey struct {
	CourierID int64
	Date      civil.Date
}

func (k TotalKey) String() string {
	return fmt.Sprintf("%d:%s", k.CourierID, k.Date)
}

// Less orders keys by courier then date. Locks are taken in this order.
func (k TotalKey) Less(other TotalKey) bool {
	if k.CourierID != other.CourierID {
		return k.CourierID < other.CourierID
	}
	return k.Date.Before(other.Date)
}

// Entry is one ledger line (lancamento) of a courier on a calendar day.
type Entry struct {
	ID                int64      `json:"id" db:"id"`
	CourierID         int64      `json:"MotoqueiroId" db:"motoqueiro_id"`
	Date              civil.Date `json:"data" db:"data"`
	BasePay           float64    `json:"diaria" db:"diaria"`
	Fee               float64    `json:"taxa" db:"taxa"`
	Deliveries        int        `json:"qtd_entregas" db:"qtd_entregas"`
	HighFeeDeliveries int        `json:"qtd_taxas_acima_10" db:"qtd_taxas_acima_10"`
	Advances          float64    `json:"vales" db:"vales"`
	CreatedAt         time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time  `json:"updatedAt" db:"updated_at"`
}

func (e *Entry) Key() TotalKey {
	return TotalKey{CourierID: e.CourierID, Date: e.Date}
}

// Net is the entry's contribution to the day's total.
func (e *Entry) Net() float64 {
	return e.BasePay + e.Fee + float64(e.HighFeeDeliveries) - float64(e.Deliveries) - e.Advances
}

// Total is the derived net amount of a courier on a calendar day.
// Amount is owned by reconciliation; Paid is owned by the admin.
type Total struct {
	ID        int64       `json:"id" db:"id"`
	CourierID int64       `json:"MotoqueiroId" db:"motoqueiro_id"`
	Date      civil.Date  `json:"data" db:"data"`
	Amount    float64     `json:"total" db:"total"`
	Paid      bool        `json:"pago" db:"pago"`
	CreatedAt time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time   `json:"updatedAt" db:"updated_at"`
	Courier   *CourierRef `json:"Motoqueiro,omitempty" db:"-"`
}

func (t *Total) Key() TotalKey {
	return TotalKey{CourierID: t.CourierID, Date: t.Date}
}

// DeliveryMetrics are the delivery counters of a day summed over its entries.
type DeliveryMetrics struct {
	Deliveries        int
	HighFeeDeliveries int
}

// DashboardDay is one row of the courier self-view.
type DashboardDay struct {
	Date              civil.Date `json:"data"`
	Total             float64    `json:"total"`
	Paid              bool       `json:"pago"`
	Deliveries        int        `json:"qtd_entregas"`
	HighFeeDeliveries int        `json:"qtd_taxas_acima_10"`
}

// EntryFilter narrows entry listings. Nil fields are not applied.
type EntryFilter struct {
	CourierID *int64
	Date      *civil.Date
	Start     *civil.Date
	End       *civil.Date
}

// TotalFilter narrows total listings. Nil fields are not applied.
type TotalFilter struct {
	CourierID *int64
	Date      *civil.Date
}
