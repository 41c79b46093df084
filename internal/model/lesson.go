// Package model defines the core domain models used throughout the application.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReportType identifies the kind of ledger row. Values are the cell texts of the workbook.
type ReportType string

// Report type constants.
const (
	ReportGroup   ReportType = "קבוצתי"
	ReportPrivate ReportType = "פרטי"
	ReportTravel  ReportType = "יום נסיעות"
)

// Status is the payment status of a ledger row.
type Status string

// Status constants.
const (
	// StatusOpen marks a reported row that has not been paid yet. Open rows are editable.
	StatusOpen Status = "דווח-טרם שולם"
	// StatusPaid marks a paid row. Paid rows are locked.
	StatusPaid Status = "שולם - אסור לערוך שינויים"
	// StatusTransferred marks a row sent for payment. Transferred rows are locked.
	StatusTransferred Status = "הועבר לתשלום - אסור לערוך שינויים"
)

// Statuses lists the valid status values in workbook order.
func Statuses() []Status {
	return []Status{StatusOpen, StatusPaid, StatusTransferred}
}

// ParseStatus accepts a workbook status value or one of the short names open, paid, transferred.
func ParseStatus(s string) (Status, bool) {
	switch s {
	case string(StatusOpen), "open":
		return StatusOpen, true
	case string(StatusPaid), "paid", "paid-locked":
		return StatusPaid, true
	case string(StatusTransferred), "transferred", "transferred-locked":
		return StatusTransferred, true
	}
	return "", false
}

// Fixed system messages written into ledger rows.
const (
	MessageDateRequired      = "יש לעדכן תאריך שיעור"
	MessageLockedPaid        = "✅ שורה נעולה - שולם. 🔒 נעול לעריכה"
	MessageLockedTransferred = "✅ שורה נעולה - הועבר לתשלום. 🔒 נעול לעריכה"
	MessageOverrideFiltered  = "לא ניתן להוסיף רשומה מאחר והתאריך מסונן"
)

// Lesson is one ledger row: a lesson or a travel stipend, dated or pending a date.
type Lesson struct {
	// Date is the lesson date at 12:00 UTC; the zero value means the date is pending.
	Date         time.Time
	UpdatedAt    time.Time
	Remaining    decimal.NullDecimal
	Quantity     decimal.Decimal
	Teacher      string
	Type         ReportType
	Course       string
	Student      string
	Year         string
	Status       Status
	Notes        string
	Message      string
	PaymentMonth Month
}

// HasDate reports whether the lesson date is set.
func (l Lesson) HasDate() bool {
	return !l.Date.IsZero()
}

// IsPlaceholder reports whether the row is a private lesson still waiting for its date.
func (l Lesson) IsPlaceholder() bool {
	return l.Type == ReportPrivate && !l.HasDate()
}
