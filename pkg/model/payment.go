package model

import "time"

const InvoiceStatusPaid = "PAID"

type PaymentReceipt struct {
	BookingID     string    `json:"bookingId"`
	PaymentStatus string    `json:"paymentStatus"`
	TransactionID string    `json:"transactionId"`
	Amount        float64   `json:"amount"`
	Method        string    `json:"method"`
	Date          time.Time `json:"date"`
}

type Invoice struct {
	InvoiceID     string          `json:"invoiceId"`
	BookingID     string          `json:"bookingId"`
	TransactionID string          `json:"transactionId"`
	Date          time.Time       `json:"date"`
	Customer      *AccountSummary `json:"customer"`
	Vendor        *VendorSummary  `json:"vendor"`
	Service       string          `json:"service"`
	EventDate     time.Time       `json:"eventDate"`
	Amount        float64         `json:"amount"`
	PaymentMethod string          `json:"paymentMethod,omitempty"`
	Status        string          `json:"status"`
}

// PaymentRecord is what a successful payment writes onto its booking.
type PaymentRecord struct {
	TransactionID string
	Method        string
	PaidAt        time.Time
}
