// Package provider defines the translation provider interface and implementations.
package provider

import "github.com/ZaguanLabs/xlate"

// Provider is the interface for translation backends.
// This is an alias to the main package interface for convenience.
type Provider = xlate.Provider

// Request is an alias to the main package type.
type Request = xlate.Request
