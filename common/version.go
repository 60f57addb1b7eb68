package common

// Version is the service build version, set at link time via
// -ldflags "-X github.com/ManvendraPSdev/NTA-FIX-Backend/common.Version=...".
var Version = "dev"
