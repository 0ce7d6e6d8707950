package grandkitchen

import "github.com/sujitha-np/grandkitchen-go/core"

// Version is the SDK release version
const Version = core.Version

// UserAgent identifies this SDK; the transport sends it on every request
const UserAgent = core.UserAgent
