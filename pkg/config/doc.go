// Package config loads and validates the application configuration.
//
// Configuration is read from a YAML file, merged over compiled defaults,
// and finally overridden by environment variables for secrets. All values
// are validated with struct tags before use.
//
// Load order (later wins):
//
//  1. Compiled defaults (DefaultConfig)
//  2. YAML file, if present
//  3. Environment variables (DEEPSEEK_API_KEY)
package config
