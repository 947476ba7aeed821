// Package migrations embeds the SQL schema so the binary can migrate without the source tree.
package migrations

import "embed"

// FS holds one directory of golang-migrate files per supported driver.
//
//go:embed postgresql/*.sql mysql/*.sql
var FS embed.FS

// Dir returns the directory inside FS for a database driver name.
func Dir(driver string) string {
	if driver == "mysql" {
		return "mysql"
	}
	return "postgresql"
}
