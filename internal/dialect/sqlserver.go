package dialect

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/golang-sql/civil"
	_ "github.com/microsoft/go-mssqldb"
)

// DefaultSQLServerPort is the port used by ServerParams when none is set.
const DefaultSQLServerPort = 1433

// DefaultODBCDriver is the DRIVER value used by ServerParams when none is set.
const DefaultODBCDriver = "ODBC Driver 13 for SQL Server"

// ServerParams assembles a driver-style SQL Server connection string.
type ServerParams struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	Driver   string
}

// DefaultServerParams targets a local server with the default database.
func DefaultServerParams() ServerParams {
	return ServerParams{
		Host:     "localhost",
		Port:     DefaultSQLServerPort,
		Database: "pycokidb",
		Driver:   DefaultODBCDriver,
	}
}

// String renders DRIVER={driver};SERVER=host;PORT=port;DATABASE=db;UID=user;PWD=password.
// Zero fields take their defaults.
func (p ServerParams) String() string {
	def := DefaultServerParams()
	if p.Host == "" {
		p.Host = def.Host
	}
	if p.Port == 0 {
		p.Port = def.Port
	}
	if p.Database == "" {
		p.Database = def.Database
	}
	if p.Driver == "" {
		p.Driver = def.Driver
	}
	return fmt.Sprintf("DRIVER={%s};SERVER=%s;PORT=%s;DATABASE=%s;UID=%s;PWD=%s",
		p.Driver, p.Host, strconv.Itoa(p.Port), p.Database, p.User, p.Password)
}

// SQLServer is the driver-based client/server backend. The descriptor is
// either a pre-built go-mssqldb connection string (URL, ADO or "odbc:" form)
// or the DRIVER=...;SERVER=... form produced by ServerParams.
type SQLServer struct{}

func (SQLServer) Name() string                      { return "sqlserver" }
func (SQLServer) Driver() string                    { return "sqlserver" }
func (SQLServer) DefaultDescriptor() string         { return DefaultServerParams().String() }
func (SQLServer) Quote(ident string) string         { return quoteWith(ident, "[", "]") }
func (SQLServer) Placeholder() sq.PlaceholderFormat { return sq.AtP }

func (d SQLServer) DSN(descriptor string) (string, error) {
	descriptor = strings.TrimSpace(descriptor)
	if descriptor == "" {
		descriptor = d.DefaultDescriptor()
	}
	lower := strings.ToLower(descriptor)
	switch {
	case strings.HasPrefix(lower, "sqlserver://"), strings.HasPrefix(lower, "odbc:"):
		return descriptor, nil
	case strings.Contains(lower, "driver="):
		return "odbc:" + descriptor, nil
	default:
		return descriptor, nil
	}
}

func (SQLServer) ExistsQuery() string {
	return "SELECT id FROM dbo.sysobjects WHERE id = object_id(?)"
}

func (SQLServer) ExistsArgs(table, _ string) []any {
	return []any{table}
}

func (SQLServer) CreateTable(table string, c Columns) string {
	return fmt.Sprintf(
		"CREATE TABLE %s (%s NVARCHAR(50) NOT NULL, %s NVARCHAR(100) NOT NULL, %s NVARCHAR(4000), %s DATETIME2, PRIMARY KEY (%s, %s))",
		table, c.Namespace, c.Key, c.Value, c.Timestamp, c.Namespace, c.Key,
	)
}

func (SQLServer) Upsert(table string, c Columns) (string, error) {
	merge := fmt.Sprintf(
		"MERGE INTO %[1]s AS A"+
			" USING (SELECT ? AS %[2]s, ? AS %[3]s, ? AS %[4]s, ? AS %[5]s) AS B"+
			" ON (A.%[2]s = B.%[2]s AND A.%[3]s = B.%[3]s)"+
			" WHEN MATCHED THEN UPDATE SET %[4]s = B.%[4]s, %[5]s = B.%[5]s"+
			" WHEN NOT MATCHED THEN INSERT (%[2]s, %[3]s, %[4]s, %[5]s) VALUES (B.%[2]s, B.%[3]s, B.%[4]s, B.%[5]s);",
		table, c.Namespace, c.Key, c.Value, c.Timestamp,
	)
	return sq.AtP.ReplacePlaceholders(merge)
}

// SetArgs binds the timestamp as a civil date-time, matching DATETIME2.
func (SQLServer) SetArgs(namespace, key, value string, ts time.Time) []any {
	return []any{namespace, key, value, civil.DateTimeOf(ts)}
}
