package routemod

// RecognizedFields is the fixed schema of route module field names. The
// order here is only used for documentation; extraction preserves source
// order instead.
var RecognizedFields = []string{
	"params",
	"links",
	"HydrateFallback",
	"serverLoader",
	"clientLoader",
	"serverAction",
	"clientAction",
	"meta",
	"Component",
	"ErrorBoundary",
	"handle",
	"headers",
}

// Server-only fields must never reach a build target that doesn't execute
// server code.
var serverOnlyFields = map[string]bool{
	"headers":      true,
	"serverLoader": true,
	"serverAction": true,
}

var recognizedFields = map[string]bool{}

func init() {
	for _, name := range RecognizedFields {
		recognizedFields[name] = true
	}
}

func IsRecognizedField(name string) bool {
	return recognizedFields[name]
}

func IsServerOnlyField(name string) bool {
	return serverOnlyFields[name]
}
