package app

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"surfup-server/internal/config"
	"surfup-server/internal/db/dbtest"

	_ "github.com/mattn/go-sqlite3"
)

func listen(t *testing.T) net.Listener {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	return ln
}

func testConfig(path string) config.Config {
	return config.Config{
		AppEnv:             "dev",
		SQLitePath:         path,
		SQLiteMaxOpenConns: 2,
		SQLiteMaxIdleConns: 2,
	}
}

func waitForOK(t *testing.T, url string) {
	t.Helper()
	client := &http.Client{Timeout: time.Second}
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("server not healthy: %s", url)
}

func TestServe_servesAndShutsDown(t *testing.T) {
	path := dbtest.Create(t, []string{"USC00519281"}, []dbtest.Measurement{
		dbtest.Row("USC00519281", "2017-01-01", 0.1, 60),
		dbtest.Row("USC00519281", "2017-01-31", 0.2, 70),
	})
	ln := listen(t)
	base := "http://" + ln.Addr().String()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, testConfig(path), ln) }()

	waitForOK(t, base+"/healthz")

	resp, err := http.Get(base + "/api/v1.0/2017-01-01/2017-01-31")
	if err != nil {
		t.Fatalf("get stats: %v", err)
	}
	var stats map[string]float64
	err = json.NewDecoder(resp.Body).Decode(&stats)
	_ = resp.Body.Close()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats["TMIN"] != 60 || stats["TAVG"] != 65 || stats["TMAX"] != 70 {
		t.Errorf("stats = %v", stats)
	}

	// a doubled slash is read as a start date only, matching /{start}
	resp, err = http.Get(base + "/api/v1.0//2017-01-31")
	if err != nil {
		t.Fatalf("get stats: %v", err)
	}
	stats = nil
	err = json.NewDecoder(resp.Body).Decode(&stats)
	_ = resp.Body.Close()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats["TMIN"] != 70 || stats["TAVG"] != 70 || stats["TMAX"] != 70 {
		t.Errorf("double slash stats = %v; want only 2017-01-31 onward", stats)
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Serve() = %v; want context.Canceled", err)
		}
	case <-time.After(shutdownTimeout + time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestServe_missingDatasetFailsFast(t *testing.T) {
	ln := listen(t)
	addr := ln.Addr().String()

	err := Serve(context.Background(), testConfig(filepath.Join(t.TempDir(), "missing.sqlite")), ln)
	if err == nil {
		t.Fatal("Serve() = nil; want error for missing dataset")
	}

	// the listener is released, nothing is served
	if conn, dialErr := net.DialTimeout("tcp", addr, 200*time.Millisecond); dialErr == nil {
		_ = conn.Close()
		t.Fatal("listener still accepting after startup failure")
	}
}

func TestServe_schemaMismatchFailsFast(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wrong.sqlite")
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := conn.Exec(`CREATE TABLE measurement (id INTEGER PRIMARY KEY, station TEXT)`); err != nil {
		t.Fatalf("create: %v", err)
	}
	_ = conn.Close()

	err = Serve(context.Background(), testConfig(path), listen(t))
	if err == nil || !strings.Contains(err.Error(), "schema") {
		t.Fatalf("Serve() = %v; want schema error", err)
	}
}

func TestRun_badAddress(t *testing.T) {
	cfg := testConfig("unused.sqlite")
	cfg.HTTPAddr = "not-an-address"
	if err := Run(context.Background(), cfg); err == nil {
		t.Fatal("Run() = nil; want listen error")
	}
}
