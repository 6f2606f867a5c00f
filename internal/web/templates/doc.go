// Package templates holds the server's HTML pages as templ components.
// Edit the .templ files and regenerate the *_templ.go files.
package templates

//go:generate templ generate
