package models

import "time"

// VisitorLog is one logging call from the gallery or one delivery.
// Rows are append-only; a visitor may appear many times.
type VisitorLog struct {
	ID          string
	VisitorID   string
	UserAgent   string
	Page        string
	Referrer    string
	GifName     string // empty when the page view is not about a GIF
	Location    string
	Country     string
	IP          string
	CreatedAt   time.Time
	EasternTime string
}

// DownloadEvent records a single download with the way it was served
// (object store, static copy, remote fallback, or a client beacon).
type DownloadEvent struct {
	ID          string
	GifName     string
	VisitorID   string
	Page        string
	Method      string
	IP          string
	CreatedAt   time.Time
	EasternTime string
}

// DownloadSummary is the per-download row used for reporting by place.
type DownloadSummary struct {
	ID          string
	GifName     string
	Referrer    string
	Location    string
	Country     string
	CreatedAt   time.Time
	EasternTime string
}

const (
	MethodObjectStore = "object-store"
	MethodStatic      = "static"
	MethodRemote      = "remote"
	MethodBeacon      = "beacon"
)
