package config

// GetAuthSkipperPaths returns a list of paths to skip authentication for
func GetAuthSkipperPaths() []string {
	return []string{
		"/api/auth/login",
		"/api/auth/register",
		"/api/auth/refresh-token",
		"/health",
		"/playground",
	}
}
