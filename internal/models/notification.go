package models

import "time"

// Notification is a fan-out artifact consumed by the in-app notification
// feed. The engine only ever appends; it never reads these back.
type Notification struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	PoolID    string    `json:"pool_id" db:"pool_id"`
	Type      string    `json:"type" db:"type"`
	Title     string    `json:"title" db:"title"`
	Body      string    `json:"body" db:"body"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// EmailTemplate is a named, versioned message template. Only the active
// version of a template is ever rendered.
type EmailTemplate struct {
	ID      int    `json:"id" db:"id"`
	Name    string `json:"name" db:"name"`
	Version int    `json:"version" db:"version"`
	Subject string `json:"subject" db:"subject"`
	Body    string `json:"body" db:"body"`
	Active  bool   `json:"active" db:"active"`
}

// EmailDelivery logs one outbound email attempt, success or failure.
type EmailDelivery struct {
	ID                string    `json:"id" db:"id"`
	UserID            string    `json:"user_id" db:"user_id"`
	PoolID            string    `json:"pool_id" db:"pool_id"`
	Template          string    `json:"template" db:"template"`
	Recipient         string    `json:"recipient" db:"recipient"`
	Status            string    `json:"status" db:"status"`
	ProviderMessageID string    `json:"provider_message_id" db:"provider_message_id"`
	ErrorText         string    `json:"error_text" db:"error_text"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}
