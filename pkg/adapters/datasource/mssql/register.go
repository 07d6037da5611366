package mssql

import (
	"github.com/praveenpotnurii/BifrostLink/pkg/adapters/datasource"
	"github.com/praveenpotnurii/BifrostLink/pkg/models"
)

func init() {
	datasource.Register(datasource.EngineRegistration{
		Info: datasource.EngineInfo{
			Type:        models.DatabaseTypeMSSQL,
			DisplayName: "Microsoft SQL Server",
			Description: "SQL Server 2019+, Azure SQL Database",
			DefaultPort: DefaultPort(),
		},
		Build: BuildURL,
		Parse: Parse,
	})
}
