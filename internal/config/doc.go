// Package config provides configuration structures and utilities for
// docmetrics. It defines analysis settings, report output preferences,
// web server limits and Google Drive credentials, and loads them from
// the .docmetrics YAML file, .env files and DOCMETRICS_* variables.
package config
