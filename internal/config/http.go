package config

type HTTP struct {
	Port    uint32 `env:"HTTP_PORT" envDefault:"8000"`
	Swagger bool   `env:"HTTP_SWAGGER" envDefault:"true"`

	// CORSOrigins lists allowed origins, "*" for any.
	CORSOrigins []string `env:"HTTP_CORS_ORIGINS" envDefault:"*"`

	// DebugErrors exposes the underlying error in 500 response bodies.
	// Keep off outside local development.
	DebugErrors bool `env:"HTTP_DEBUG_ERRORS" envDefault:"false"`
}
