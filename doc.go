// Package main provides the entry point for the headless tools site CMS backend.
// It starts a Fiber web server exposing a JSON API for users, tools, media,
// the site settings global and an analytics event-tracking API. Documents are
// persisted with gorm (MySQL, PostgreSQL or SQLite) and analytics events older
// than the configured retention window are swept periodically.
package main
