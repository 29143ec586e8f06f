// Copyright (c) 2026 SQLSage. All rights reserved.

package dbregistry

import (
	"fmt"
	"net/url"

	"github.com/sqlsage/sqlsage/internal/schema"
)

// buildDSN renders a target database's [schema.ConnectionInfo] as a
// postgres:// URL pgxpool.ParseConfig accepts.
func buildDSN(conn schema.ConnectionInfo) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(conn.Username, conn.Password),
		Host:   fmt.Sprintf("%s:%d", conn.Host, conn.Port),
		Path:   "/" + conn.Database,
	}
	q := url.Values{}
	q.Set("sslmode", string(conn.SSLMode))
	u.RawQuery = q.Encode()
	return u.String()
}
