package models

import "time"

// DownloadCounter is the single row kept per GIF.
type DownloadCounter struct {
	GifName     string
	Count       int64
	UpdatedAt   time.Time
	EasternTime string
}
