package common

const (
	// DefaultContentType is served when the object store does not declare one.
	DefaultContentType = "image/gif"

	// UnknownIP is what the edge reports when no client address is available.
	UnknownIP = "unknown"

	// LookupDisabled is the location string of the geolocation sentinel.
	LookupDisabled = "lookup disabled"

	// UnknownLocation is used when a lookup succeeds but names no place.
	UnknownLocation = "unknown"

	// DisplayTimeLayout formats the localized timestamp stored next to UTC ones.
	DisplayTimeLayout = "1/2/2006, 3:04:05 PM"
)
