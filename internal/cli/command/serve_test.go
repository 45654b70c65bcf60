package command

import (
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/provisiond-go/internal/infra/tlscert/tlscerttest"
	"github.com/yndnr/provisiond-go/internal/server/config"
	"github.com/yndnr/provisiond-go/internal/telemetry/logger"
)

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen() error = %v", err)
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

type running struct {
	base   string
	client *http.Client
	cancel context.CancelFunc
	done   chan error
}

// startService runs serve in the background and waits until it answers.
func startService(t *testing.T, def serviceDef, cfg *config.Config) *running {
	t.Helper()

	kp := tlscerttest.Write(t, t.TempDir())
	cfg.Server.Cert = kp.CertFile
	cfg.Server.Key = kp.KeyFile
	cfg.Server.Port = freePort(t)
	cfg.Server.ShutdownTimeout = 5 * time.Second
	if err := config.Verify(cfg, def.service); err != nil {
		t.Fatalf("Verify() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- serve(ctx, def, cfg, logger.Discard(), nil, "")
	}()

	r := &running{
		base: "https://127.0.0.1:" + strconv.Itoa(cfg.Server.Port),
		client: &http.Client{
			Transport: &http.Transport{TLSClientConfig: kp.ClientConfig()},
			Timeout:   5 * time.Second,
		},
		cancel: cancel,
		done:   done,
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		conn, err := net.Dial("tcp", "127.0.0.1:"+strconv.Itoa(cfg.Server.Port))
		if err == nil {
			conn.Close()
			break
		}
		select {
		case err := <-done:
			t.Fatalf("serve() exited during startup: %v", err)
		default:
		}
		if time.Now().After(deadline) {
			cancel()
			t.Fatal("service did not start")
		}
		time.Sleep(20 * time.Millisecond)
	}

	t.Cleanup(func() { r.stop(t) })
	return r
}

func (r *running) stop(t *testing.T) {
	t.Helper()
	if r.cancel == nil {
		return
	}
	r.cancel()
	r.cancel = nil

	select {
	case err := <-r.done:
		if err != nil {
			t.Errorf("serve() error = %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Error("serve() did not return after cancel")
	}
}

func (r *running) do(t *testing.T, method, path, body string) (int, string) {
	t.Helper()
	req, err := http.NewRequest(method, r.base+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		t.Fatalf("%s %s error = %v", method, path, err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(data)
}

func TestServe_Checkin(t *testing.T) {
	cfg := config.Default()
	cfg.Checkin.LogFile = filepath.Join(t.TempDir(), "log", "checkin.log")

	svc := startService(t, checkinDef, cfg)

	code, body := svc.do(t, http.MethodPost, "/", "host-9 ready")
	if code != http.StatusOK || body != "Check-in received" {
		t.Errorf("POST = %d %q", code, body)
	}

	code, _ = svc.do(t, http.MethodGet, "/", "")
	if code != http.StatusMethodNotAllowed {
		t.Errorf("GET = %d, want %d", code, http.StatusMethodNotAllowed)
	}

	svc.stop(t)

	data, err := os.ReadFile(cfg.Checkin.LogFile)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	if len(lines) != 1 || !strings.HasSuffix(lines[0], " - Check-in received: host-9 ready") {
		t.Errorf("log = %q", data)
	}
}

func TestServe_SSHKey(t *testing.T) {
	const key = "ssh-rsa AAAAB3NzaC1yc2E=\n"

	keyPath := filepath.Join(t.TempDir(), "id_rsa.pub")
	if err := os.WriteFile(keyPath, []byte(key), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg := config.Default()
	cfg.SSHKey.KeyFile = keyPath
	cfg.Metrics.Addr = "127.0.0.1:" + strconv.Itoa(freePort(t))

	svc := startService(t, sshKeyDef, cfg)

	if code, body := svc.do(t, http.MethodGet, "/ssh_key", ""); code != http.StatusOK || body != key {
		t.Errorf("GET /ssh_key = %d %q, want 200 %q", code, body, key)
	}
	if code, body := svc.do(t, http.MethodGet, "/authorized_keys", ""); code != http.StatusNotFound || body != "" {
		t.Errorf("GET /authorized_keys = %d %q, want 404 empty", code, body)
	}

	resp, err := http.Get("http://" + cfg.Metrics.Addr + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics error = %v", err)
	}
	metrics, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(metrics), `provisiond_sshkey_requests_total{result="served",service="sshkey-server"} 1`) {
		t.Errorf("metrics missing served counter:\n%s", metrics)
	}

	if err := os.Remove(keyPath); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	resp, err = http.Get("http://" + cfg.Metrics.Addr + "/ready")
	if err != nil {
		t.Fatalf("GET /ready error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("/ready with missing key = %d, want 503", resp.StatusCode)
	}

	if code, _ := svc.do(t, http.MethodGet, "/ssh_key", ""); code < 500 {
		t.Errorf("GET /ssh_key with missing key = %d, want 5xx", code)
	}
}

func TestServe_BindFailure(t *testing.T) {
	busy, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatalf("net.Listen() error = %v", err)
	}
	defer busy.Close()

	kp := tlscerttest.Write(t, t.TempDir())
	cfg := config.Default()
	cfg.Server.Cert = kp.CertFile
	cfg.Server.Key = kp.KeyFile
	cfg.Server.Port = busy.Addr().(*net.TCPAddr).Port
	cfg.Checkin.LogFile = filepath.Join(t.TempDir(), "checkin.log")

	done := make(chan error, 1)
	go func() {
		done <- serve(context.Background(), checkinDef, cfg, logger.Discard(), nil, "")
	}()

	select {
	case err := <-done:
		if err == nil {
			t.Error("serve() on a busy port should fail")
		}
	case <-time.After(10 * time.Second):
		t.Fatal("serve() did not fail on a busy port")
	}
}

func TestServe_BadCertificate(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Server.Cert = filepath.Join(dir, "missing.crt")
	cfg.Server.Key = filepath.Join(dir, "missing.key")
	cfg.Server.Port = freePort(t)

	err := serve(context.Background(), sshKeyDef, cfg, logger.Discard(), nil, "")
	if err == nil {
		t.Fatal("serve() without key material should fail")
	}

	// Nothing may have been bound.
	ln, lerr := net.Listen("tcp", cfg.Server.Addr())
	if lerr != nil {
		t.Errorf("port %d was left bound: %v", cfg.Server.Port, lerr)
		return
	}
	ln.Close()
}

func TestApplyLogLevel(t *testing.T) {
	t.Cleanup(func() { logger.SetLevel("info") })
	logger.SetLevel("warn")

	for _, same := range []string{"warn", "WARN", "warning", "Warning"} {
		if applyLogLevel(same, logger.Discard()) {
			t.Errorf("applyLogLevel(%q) reported a change at level warn", same)
		}
	}
	if got := logger.GetLevel(); got != "warn" {
		t.Fatalf("GetLevel() = %q, want warn", got)
	}

	if !applyLogLevel("DEBUG", logger.Discard()) {
		t.Error("applyLogLevel(DEBUG) did not report a change")
	}
	if got := logger.GetLevel(); got != "debug" {
		t.Errorf("GetLevel() = %q, want debug", got)
	}
}
