package handler

// Route type
type Route string

const (
	// RoutePhotos get the current photo list
	RoutePhotos Route = "photos"
	// RouteCapture take a photo and add it to the gallery
	RouteCapture Route = "capture"
	// RouteEvents stream the photo list after every change
	RouteEvents Route = "events"
	// RouteFile serve a stored file behind a bridged URI
	RouteFile Route = "file"
)
