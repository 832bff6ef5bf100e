package model

import "time"

// Subscription is a recurring cost the café owner tracks (game
// subscriptions, internet, software licences).
//
// Fields:
//  ID         – primary key identifier.
//  Type       – what the subscription is for.
//  Provider   – optional vendor name.
//  Cost       – cost in whole currency units.
//  StartDate  – when the subscription began.
//  ExpiryDate – when it lapses.
//  CreatedAt  – creation timestamp.
type Subscription struct {
	ID         uint64    // subscriptions.id
	Type       string    // subscriptions.type
	Provider   string    // subscriptions.provider
	Cost       int64     // subscriptions.cost
	StartDate  time.Time // subscriptions.start_date
	ExpiryDate time.Time // subscriptions.expiry_date
	CreatedAt  time.Time // subscriptions.created_at
}

// Salary records one salary payment to an employee.
//
// Fields:
//  ID           – primary key identifier.
//  EmployeeName – who was paid.
//  RoleLabel    – free-form role description.
//  Amount       – amount in whole currency units.
//  PaymentDate  – when the payment was made.
//  Note         – optional note.
//  CreatedAt    – creation timestamp.
type Salary struct {
	ID           uint64    // salaries.id
	EmployeeName string    // salaries.employee_name
	RoleLabel    string    // salaries.role_label
	Amount       int64     // salaries.amount
	PaymentDate  time.Time // salaries.payment_date
	Note         string    // salaries.note
	CreatedAt    time.Time // salaries.created_at
}
