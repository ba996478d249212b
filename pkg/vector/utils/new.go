// Package vectorutils constructs vector drivers from provider names.
package vectorutils

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/inwardlabs/psyche/pkg/vector"
	"github.com/inwardlabs/psyche/pkg/vector/inmemory"
	"github.com/inwardlabs/psyche/pkg/vector/sqlitevec"
)

type NewVectorDriverOpts struct {
	ProviderType string
	DBPath       string
	Dimensions   uint
	Logger       *zap.Logger
}

func NewVectorDriver(o *NewVectorDriverOpts) (vector.Driver, error) {
	switch o.ProviderType {
	case "inmemory":
		return inmemory.NewDriver(), nil
	case "sqlitevec":
		return sqlitevec.NewDriver(sqlitevec.Config{
			DBPath:     o.DBPath,
			Dimensions: o.Dimensions,
		}, o.Logger)
	default:
		return nil, fmt.Errorf("unsupported vector store provider: %s", o.ProviderType)
	}
}
