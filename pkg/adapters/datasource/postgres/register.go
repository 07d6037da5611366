package postgres

import (
	"github.com/praveenpotnurii/BifrostLink/pkg/adapters/datasource"
	"github.com/praveenpotnurii/BifrostLink/pkg/models"
)

func init() {
	datasource.Register(datasource.EngineRegistration{
		Info: datasource.EngineInfo{
			Type:        models.DatabaseTypePostgres,
			DisplayName: "PostgreSQL",
			Description: "PostgreSQL 12+, Aurora PostgreSQL, Supabase",
			DefaultPort: DefaultPort(),
		},
		Build: BuildURL,
		Parse: Parse,
	})
}
