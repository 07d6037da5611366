package mongodb

import (
	"github.com/praveenpotnurii/BifrostLink/pkg/adapters/datasource"
	"github.com/praveenpotnurii/BifrostLink/pkg/models"
)

func init() {
	datasource.Register(datasource.EngineRegistration{
		Info: datasource.EngineInfo{
			Type:        models.DatabaseTypeMongoDB,
			DisplayName: "MongoDB",
			Description: "MongoDB 5.0+, Atlas",
			DefaultPort: DefaultPort(),
		},
		Build: BuildURI,
		Parse: Parse,
	})
}
