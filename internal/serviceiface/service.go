package serviceiface

import "context"

// Service is a long-running component started and stopped by the app
// manager.
type Service interface {
	Name() string
	Start() error
	Stop() error
}

// Pinger is a resource whose health the resource manager can check.
type Pinger interface {
	Ping(ctx context.Context) error
}
