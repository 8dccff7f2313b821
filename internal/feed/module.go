package feed

import (
	"go.uber.org/fx"
)

// Module provides the photo feed dependencies
var Module = fx.Options(
	fx.Provide(
		NewService,
	),
)
