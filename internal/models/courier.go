package models

import "time"

// Courier is a motoqueiro whose daily pay is tracked.
type Courier struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"nome" db:"nome"`
	Phone        string    `json:"telefone,omitempty" db:"telefone"`
	Login        string    `json:"login" db:"login"`
	PasswordHash string    `json:"-" db:"senha"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// CourierRef is the short courier projection attached to totals and logins.
type CourierRef struct {
	ID   int64  `json:"id"`
	Name string `json:"nome"`
}

// Admin is used only for authentication.
type Admin struct {
	ID           int64     `json:"id" db:"id"`
	Login        string    `json:"login" db:"login"`
	PasswordHash string    `json:"-" db:"senha"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}
