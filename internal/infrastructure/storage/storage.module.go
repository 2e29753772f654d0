package storage

import "go.uber.org/fx"

var Module = fx.Options(
	fx.Provide(NewLocalStore),
	fx.Provide(func(s *LocalStore) Store { return s }),
)
