package graphql

import (
	"github.com/secmon-lab/newsagent/pkg/usecase"
)

//go:generate go tool gqlgen generate --config ../../../gqlgen.yml

// This file will not be regenerated automatically.
//
// It serves as dependency injection for your app, add any dependencies you require here.

type Resolver struct {
	uc *usecase.UseCases
}

func NewResolver(uc *usecase.UseCases) *Resolver {
	return &Resolver{
		uc: uc,
	}
}
