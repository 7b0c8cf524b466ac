package server

const (
	RouteLogin          = "/api/login"
	RouteLogout         = "/api/logout"
	RouteRecordings     = "/api/recordings"
	RouteRecordingsFile = "/api/recordings/stream"
	RouteRecordingsLink = "/api/recordings/link"
	RouteHealthz        = "/healthz"
)
