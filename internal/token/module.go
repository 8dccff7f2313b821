package token

import (
	"go.uber.org/fx"

	"github.com/pictora/pictora/internal/requester"
)

// Module provides the token store dependencies
var Module = fx.Options(
	fx.Provide(
		fx.Annotate(
			NewKeyringStore,
			fx.As(new(Store)),
		),
		fx.Annotate(
			NewBearerAuthorizer,
			fx.As(new(requester.Authorizer)),
		),
	),
)
