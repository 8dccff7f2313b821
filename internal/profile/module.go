package profile

import (
	"go.uber.org/fx"
)

// Module provides the profile service dependencies
var Module = fx.Options(
	fx.Provide(
		NewService,
		NewImageService,
	),
)
