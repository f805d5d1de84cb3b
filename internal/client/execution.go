package client

import (
	"crypto/tls"
	"crypto/x509"
	"net/http"
	"os"

	"github.com/pkg/errors"
)

func loadCertificates(sslCrtFile, sslKeyFile string) ([]tls.Certificate, error) {
	if sslCrtFile == "" || sslKeyFile == "" {
		return nil, nil
	}
	certificate, err := tls.LoadX509KeyPair(sslCrtFile, sslKeyFile)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load client certificate")
	}
	return []tls.Certificate{certificate}, nil
}

func loadCaPool(sslCaFile string) (*x509.CertPool, error) {
	if sslCaFile == "" {
		return nil, nil
	}
	bytes, err := os.ReadFile(sslCaFile)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read ca file")
	}
	caCertPool := x509.NewCertPool()
	if !caCertPool.AppendCertsFromPEM(bytes) {
		return nil, errors.Errorf("no certificates found in %s", sslCaFile)
	}
	return caCertPool, nil
}

// getTlsConfig returns a default transport unless a ca file or a client
// certificate pair is provided
func getTlsConfig(sslCaFile, sslCrtFile, sslKeyFile string) (*http.Transport, error) {
	if sslCaFile == "" && (sslCrtFile == "" || sslKeyFile == "") {
		return &http.Transport{}, nil
	}
	caCertPool, err := loadCaPool(sslCaFile)
	if err != nil {
		return nil, err
	}
	certificates, err := loadCertificates(sslCrtFile, sslKeyFile)
	if err != nil {
		return nil, err
	}
	return &http.Transport{
		TLSClientConfig: &tls.Config{
			// TLS versions below 1.2 are considered insecure
			// see https://www.rfc-editor.org/rfc/rfc7525.txt for details
			MinVersion:   tls.VersionTLS12,
			RootCAs:      caCertPool,
			Certificates: certificates,
		},
	}, nil
}
