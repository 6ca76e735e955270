package database

import (
	"database/sql"
	"strings"

	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// встроенные lower/upper в sqlite понимают только ASCII, поиск по кириллице с ними не работает
const sqliteDriverName = "sqlite3_unicode"

func init() {
	sql.Register(sqliteDriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			if err := conn.RegisterFunc("lower", foldCase(strings.ToLower), true); err != nil {
				return err
			}
			return conn.RegisterFunc("upper", foldCase(strings.ToUpper), true)
		},
	})
}

func openSQLite(dsn string) gorm.Dialector {
	return sqlite.New(sqlite.Config{DriverName: sqliteDriverName, DSN: dsn})
}

// NULL приходит как nil []byte и должен остаться NULL, числа возвращаются как есть
func foldCase(fold func(string) string) func(any) any {
	return func(v any) any {
		switch x := v.(type) {
		case string:
			return fold(x)
		case []byte:
			if x == nil {
				return nil
			}
			return fold(string(x))
		}
		return v
	}
}
