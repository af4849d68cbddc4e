// Package config defines the application configuration structures and the
// viper-based loader that populates them from config files and environment
// variables, validating the result before the server starts.
package config
