package errors

// Template defines a registered error.
type Template struct {
	Category Category
	Message  string
	Detail   string
}

var registry = map[string]Template{
	// Config (SF001-SF019)
	"SF001": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		Detail:   "storefront.json or storefront.toml could not be parsed.",
	},
	"SF002": {
		Category: CategoryConfig,
		Message:  "Invalid server address",
		Detail:   "The server address must be a host:port pair such as \":8080\".",
	},
	"SF003": {
		Category: CategoryConfig,
		Message:  "Unknown storage backend",
		Detail:   "The storage backend must be one of memory, sql or s3.",
	},
	"SF004": {
		Category: CategoryConfig,
		Message:  "Missing storage setting",
		Detail:   "The selected storage backend needs additional settings.",
	},
	"SF005": {
		Category: CategoryConfig,
		Message:  "Invalid catalog source",
		Detail:   "Set either a fixture file or a remote API URL for the catalog.",
	},
	"SF006": {
		Category: CategoryConfig,
		Message:  "Invalid log level",
		Detail:   "The log level must be one of debug, info, warn or error.",
	},

	// Catalog (SF020-SF039)
	"SF020": {
		Category: CategoryCatalog,
		Message:  "Product not found",
		Detail:   "No product exists with the requested id.",
	},
	"SF021": {
		Category: CategoryCatalog,
		Message:  "Catalog request failed",
		Detail:   "The remote product API returned an error or could not be reached.",
	},
	"SF022": {
		Category: CategoryCatalog,
		Message:  "Invalid catalog fixture",
		Detail:   "The product fixture file could not be read or decoded.",
	},
	"SF023": {
		Category: CategoryCatalog,
		Message:  "Invalid product query",
		Detail:   "A product list query parameter has an invalid value.",
	},

	// Hydration (SF040-SF059)
	"SF040": {
		Category: CategoryHydration,
		Message:  "Malformed initial data",
		Detail:   "The initial data sent by the page could not be decoded.",
	},

	// Protocol (SF060-SF079)
	"SF060": {
		Category: CategoryProtocol,
		Message:  "Malformed live message",
		Detail:   "A live session message was not valid JSON.",
	},
	"SF061": {
		Category: CategoryProtocol,
		Message:  "Unknown live message type",
		Detail:   "The live session does not handle this message type.",
	},
	"SF062": {
		Category: CategoryProtocol,
		Message:  "Invalid navigation target",
		Detail:   "Navigation targets must be paths on this site.",
	},
	"SF063": {
		Category: CategoryProtocol,
		Message:  "Unknown cart operation",
		Detail:   "The cart message named an operation that does not exist.",
	},
	"SF064": {
		Category: CategoryProtocol,
		Message:  "Unknown UI operation",
		Detail:   "The UI message named an operation that does not exist.",
	},
	"SF065": {
		Category: CategoryProtocol,
		Message:  "Live session not started",
		Detail:   "The first live message must be a hello message.",
	},

	// Storage (SF080-SF099)
	"SF080": {
		Category: CategoryStorage,
		Message:  "Storage backend unavailable",
		Detail:   "The configured storage backend could not be opened.",
	},

	// Runtime (SF100-SF119)
	"SF100": {
		Category: CategoryRuntime,
		Message:  "Render failed",
		Detail:   "A page template failed to execute.",
	},

	// CLI (SF140-SF159)
	"SF140": {
		Category: CategoryCLI,
		Message:  "Server failed",
		Detail:   "The HTTP server stopped with an error.",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}
