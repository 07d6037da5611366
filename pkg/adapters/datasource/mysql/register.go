package mysql

import (
	"github.com/praveenpotnurii/BifrostLink/pkg/adapters/datasource"
	"github.com/praveenpotnurii/BifrostLink/pkg/models"
)

func init() {
	datasource.Register(datasource.EngineRegistration{
		Info: datasource.EngineInfo{
			Type:        models.DatabaseTypeMySQL,
			DisplayName: "MySQL",
			Description: "MySQL 5.7+, MariaDB, Aurora MySQL",
			DefaultPort: DefaultPort(),
		},
		Build: BuildDSN,
		Parse: Parse,
	})
}
