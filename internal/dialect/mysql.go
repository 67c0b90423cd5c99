package dialect

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/go-sql-driver/mysql"

	"github.com/roach88/sqlkv/internal/codec"
)

// DefaultMySQLDescriptor is used when no descriptor is given.
const DefaultMySQLDescriptor = "host=localhost;user=root;passwd=;db=pycokidb;charset=utf8;"

// MySQL is the client/server backend configured with a semicolon separated
// key=value descriptor, e.g. "host=db;port=3306;user=app;passwd=secret;db=kv;".
type MySQL struct{}

func (MySQL) Name() string                      { return "mysql" }
func (MySQL) Driver() string                    { return "mysql" }
func (MySQL) DefaultDescriptor() string         { return DefaultMySQLDescriptor }
func (MySQL) Quote(ident string) string         { return quoteWith(ident, "`", "`") }
func (MySQL) Placeholder() sq.PlaceholderFormat { return sq.Question }

func (d MySQL) DSN(descriptor string) (string, error) {
	if strings.TrimSpace(descriptor) == "" {
		descriptor = d.DefaultDescriptor()
	}
	cfg, err := ParseMySQLDescriptor(descriptor)
	if err != nil {
		return "", err
	}
	return cfg.FormatDSN(), nil
}

// ParseMySQLDescriptor converts a key=value; descriptor into a driver config.
// Recognized keys are host, port, user, passwd (or password), db (or
// database), charset and unix_socket; any other key becomes a driver param.
func ParseMySQLDescriptor(descriptor string) (*mysql.Config, error) {
	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	host, port := "localhost", "3306"
	params := map[string]string{}

	for _, pv := range strings.Split(descriptor, ";") {
		k, v, ok := strings.Cut(pv, "=")
		if !ok {
			continue
		}
		k = strings.ToLower(strings.TrimSpace(k))
		v = strings.TrimSpace(v)
		switch k {
		case "host":
			if v != "" {
				host = v
			}
		case "port":
			if _, err := strconv.Atoi(v); err != nil {
				return nil, fmt.Errorf("parse mysql descriptor: invalid port %q", v)
			}
			port = v
		case "user":
			cfg.User = v
		case "passwd", "password":
			cfg.Passwd = v
		case "db", "database":
			cfg.DBName = v
		case "unix_socket":
			cfg.Net = "unix"
			cfg.Addr = v
		case "cursorclass":
			// rows are always scanned by column name
		case "":
			return nil, fmt.Errorf("parse mysql descriptor: empty key in %q", pv)
		default:
			params[k] = v
		}
	}

	if cfg.Net == "tcp" {
		cfg.Addr = net.JoinHostPort(host, port)
	}
	if len(params) > 0 {
		cfg.Params = params
	}
	return cfg, nil
}

func (MySQL) ExistsQuery() string {
	return "SELECT TABLE_NAME FROM information_schema.TABLES WHERE TABLE_NAME = ? AND TABLE_SCHEMA = COALESCE(?, DATABASE())"
}

// ExistsArgs falls back to the connection's current database when schema is empty.
func (MySQL) ExistsArgs(table, schema string) []any {
	if schema == "" {
		return []any{table, nil}
	}
	return []any{table, schema}
}

func (MySQL) CreateTable(table string, c Columns) string {
	return fmt.Sprintf(
		"CREATE TABLE %s (%s VARCHAR(50) NOT NULL, %s VARCHAR(100) NOT NULL, %s VARCHAR(4000), %s DATETIME, PRIMARY KEY (%s, %s))",
		table, c.Namespace, c.Key, c.Value, c.Timestamp, c.Namespace, c.Key,
	)
}

func (MySQL) Upsert(table string, c Columns) (string, error) {
	text, _, err := sq.Replace(table).
		Columns(c.Namespace, c.Key, c.Value, c.Timestamp).
		Values(nil, nil, nil, nil).
		PlaceholderFormat(sq.Question).
		ToSql()
	return text, err
}

// SetArgs binds the wall clock of ts as DATETIME text. A time.Time argument
// would be converted to the connection's loc by the driver.
func (MySQL) SetArgs(namespace, key, value string, ts time.Time) []any {
	return []any{namespace, key, value, ts.Format(codec.NaiveLayout)}
}
