// Package provider implements machine translation backends for
// pre-translating catalogs.
package provider

import "github.com/ZaguanLabs/xmlpo"

// AIProvider is an alias for xmlpo.AIProvider.
type AIProvider = xmlpo.AIProvider

// TranslateRequest is an alias for xmlpo.TranslateRequest.
type TranslateRequest = xmlpo.TranslateRequest
