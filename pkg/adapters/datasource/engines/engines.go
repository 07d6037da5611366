// Package engines registers every supported database engine with the
// datasource catalog. Import it for its side effects.
package engines

import (
	_ "github.com/praveenpotnurii/BifrostLink/pkg/adapters/datasource/mongodb"
	_ "github.com/praveenpotnurii/BifrostLink/pkg/adapters/datasource/mssql"
	_ "github.com/praveenpotnurii/BifrostLink/pkg/adapters/datasource/mysql"
	_ "github.com/praveenpotnurii/BifrostLink/pkg/adapters/datasource/postgres"
)
