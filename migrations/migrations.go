// Package migrations 内嵌建表脚本，由 golang-migrate 执行
// postgres/ 与 mysql/ 各自维护版本号
package migrations

import "embed"

//go:embed postgres/*.sql mysql/*.sql
var FS embed.FS
