// Package tlscerttest writes throwaway certificates for tests.
package tlscerttest

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// KeyPair is a self-signed server certificate written to disk.
type KeyPair struct {
	CertFile string
	KeyFile  string
	Cert     *x509.Certificate
}

// Write generates a self-signed certificate for localhost/127.0.0.1 and
// writes server.crt and server.key into dir.
func Write(t testing.TB, dir string) KeyPair {
	t.Helper()
	kp := KeyPair{
		CertFile: filepath.Join(dir, "server.crt"),
		KeyFile:  filepath.Join(dir, "server.key"),
	}
	kp.Cert = WriteTo(t, kp.CertFile, kp.KeyFile)
	return kp
}

// WriteTo generates a fresh key pair and writes it to the given paths.
// Files are written to a temporary name and renamed into place.
func WriteTo(t testing.TB, certFile, keyFile string) *x509.Certificate {
	t.Helper()

	pair := Generate(t)
	WriteFile(t, certFile, pair.CertPEM, 0644)
	WriteFile(t, keyFile, pair.KeyPEM, 0600)
	return pair.Cert
}

// PEMPair is a generated certificate and key not yet written to disk.
type PEMPair struct {
	CertPEM []byte
	KeyPEM  []byte
	Cert    *x509.Certificate
}

// Generate creates a self-signed certificate for localhost/127.0.0.1.
func Generate(t testing.TB) PEMPair {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 62))
	if err != nil {
		t.Fatalf("rand.Int() error = %v", err)
	}

	template := &x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			Organization: []string{"provisiond test"},
			CommonName:   "localhost",
		},
		NotBefore:             time.Now().Add(-time.Minute),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		IsCA:                  true,
		DNSNames:              []string{"localhost"},
		IPAddresses:           []net.IP{net.ParseIP("127.0.0.1"), net.IPv6loopback},
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("CreateCertificate() error = %v", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("ParseCertificate() error = %v", err)
	}

	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		t.Fatalf("MarshalECPrivateKey() error = %v", err)
	}

	return PEMPair{
		CertPEM: pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}),
		KeyPEM:  pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}),
		Cert:    cert,
	}
}

// ClientConfig returns a client TLS config that trusts only kp.
func (kp KeyPair) ClientConfig() *tls.Config {
	pool := x509.NewCertPool()
	pool.AddCert(kp.Cert)
	return &tls.Config{
		RootCAs:    pool,
		ServerName: "localhost",
		MinVersion: tls.VersionTLS12,
	}
}

// WriteFile writes data to a temporary name and renames it over path.
func WriteFile(t testing.TB, path string, data []byte, perm os.FileMode) {
	t.Helper()
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		t.Fatalf("WriteFile(%s) error = %v", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatalf("Rename(%s) error = %v", path, err)
	}
}
