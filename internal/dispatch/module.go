package dispatch

import (
	"context"

	"go.uber.org/fx"
)

// Module provides the shared completion queue
var Module = fx.Options(
	fx.Provide(func(lc fx.Lifecycle) *Queue {
		q := New()
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				q.Close()
				return nil
			},
		})
		return q
	}),
)
