package auth

import (
	"go.uber.org/fx"
)

// Module provides the auth flow dependencies
var Module = fx.Options(
	fx.Provide(
		NewService,
		NewHelper,
	),
)
