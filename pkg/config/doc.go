// Package config loads optional YAML defaults for kvsd's CLI.
package config
