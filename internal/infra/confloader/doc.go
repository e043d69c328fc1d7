// Package confloader loads configuration with koanf.
//
// Priority (highest to lowest):
//
//  1. Command-line flags (WithOverrides)
//  2. Environment variables (SERVETLS_SECTION_KEY)
//  3. Configuration file (YAML)
//  4. Values already set on the target struct (defaults)
package confloader
