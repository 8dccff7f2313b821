package session

import (
	"go.uber.org/fx"
)

// Module provides the session registry and the shared cookie store
var Module = fx.Options(
	fx.Provide(
		NewCookieStore,
		NewCoordinator,
	),
)
