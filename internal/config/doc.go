// Package config defines configuration for the hospital-sync CLI.
//
// Configuration can be provided via:
//   - YAML configuration file (--config)
//   - Environment variables (HSYNC_ prefix, optionally from a .env file)
//
// Environment values override file values, which override Default().
package config
