// Package config reads process configuration from SITESEARCH_* and
// SANITY_* environment variables.
package config
