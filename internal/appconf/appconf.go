// Package appconf holds the application-level configuration shared by the
// binary and its components.
package appconf

// Environment identifies the runtime environment.
type Environment int

const (
	Development Environment = iota
	Test
	Production
)

// String returns the environment name used in flags and logs.
func (e Environment) String() string {
	switch e {
	case Test:
		return "test"
	case Production:
		return "production"
	default:
		return "development"
	}
}

// EnvFlagToEnvironment maps a flag value to an Environment.
// Unknown values map to Development.
func EnvFlagToEnvironment(value string) Environment {
	switch value {
	case "test":
		return Test
	case "production":
		return Production
	default:
		return Development
	}
}

// Config holds the runtime configuration for the camera engine.
type Config struct {
	// OpsPort is the port the observability listener binds to.
	OpsPort int
	Env     Environment
	Verbose bool

	// RecomputeHz caps how many auto-fit recomputations per second the
	// follow session performs. Zero disables throttling.
	RecomputeHz int

	// TrackCapacity bounds the breadcrumb recorder; oldest fixes are
	// dropped beyond it.
	TrackCapacity int
}
