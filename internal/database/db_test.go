package database

import (
	"strings"
	"testing"

	"github.com/go-sql-driver/mysql"
)

func TestDSNRoundTrip(t *testing.T) {
	s := Settings{User: "dash", Pass: "s3cret", Host: "db.local", Port: "3307", Name: "telemetry"}
	cfg, err := mysql.ParseDSN(s.DSN())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.User != "dash" || cfg.Passwd != "s3cret" || cfg.Addr != "db.local:3307" || cfg.DBName != "telemetry" {
		t.Errorf("unexpected config %+v", cfg)
	}
	if !cfg.ParseTime || cfg.Loc.String() != "UTC" {
		t.Errorf("expected parseTime in UTC, got parseTime=%v loc=%v", cfg.ParseTime, cfg.Loc)
	}
	if !strings.Contains(s.DSN(), "charset=utf8mb4") {
		t.Errorf("charset missing from %q", s.DSN())
	}
}

func TestDSNWithoutPassword(t *testing.T) {
	dsn := Settings{User: "root", Host: "localhost", Port: "3306", Name: "x"}.DSN()
	if !strings.HasPrefix(dsn, "root@tcp(localhost:3306)/x") {
		t.Errorf("unexpected dsn %q", dsn)
	}
}
