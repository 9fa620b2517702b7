package model

import "time"

// Item represents a physical object tracked by its owner. The QR token is
// the only public identifier: it maps to exactly one item and must never
// reveal the item or owner IDs.
type Item struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	QRToken     string     `json:"qr_token"`
	Icon        string     `json:"icon"`
	ScanCount   int64      `json:"scan_count"`
	LastScan    *time.Time `json:"last_scan,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	IsActive    bool       `json:"is_active"`
}

// DefaultIcon is used when an item is created without an icon.
const DefaultIcon = "ri-smartphone-line"
