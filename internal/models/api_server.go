package models

// APIServer is the HTTP-facing surface of the service.
type APIServer interface {
	Start()
	Shutdown() error
}
