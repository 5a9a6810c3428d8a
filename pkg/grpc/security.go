// Package grpc pkg/grpc/security.go provides transport security for the sync service
package grpc

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/carverauto/sensorsync/pkg/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

const (
	caCertFile     = "root.pem"
	serverCertFile = "server.pem"
	serverKeyFile  = "server-key.pem"
)

// NoSecurityProvider implements SecurityProvider with no security (development only).
type NoSecurityProvider struct{}

func (*NoSecurityProvider) GetClientCredentials(context.Context) (grpc.DialOption, error) {
	return grpc.WithTransportCredentials(insecure.NewCredentials()), nil
}

func (*NoSecurityProvider) GetServerCredentials(context.Context) (grpc.ServerOption, error) {
	return grpc.Creds(insecure.NewCredentials()), nil
}

func (*NoSecurityProvider) Close() error {
	return nil
}

// TLSProvider implements SecurityProvider with server-side TLS. Nodes verify
// the collector against root.pem; the collector does not ask nodes for
// certificates.
type TLSProvider struct {
	config      *models.SecurityConfig
	clientCreds credentials.TransportCredentials
	serverCreds credentials.TransportCredentials
}

func NewTLSProvider(config *models.SecurityConfig) (*TLSProvider, error) {
	if config == nil {
		return nil, errSecurityConfigRequired
	}

	provider := &TLSProvider{config: config}

	var err error

	switch config.Role {
	case models.RoleNode:
		provider.clientCreds, err = loadClientCredentials(config)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errFailedToLoadClientCreds, err)
		}
	case models.RoleCollector:
		provider.serverCreds, err = loadServerCredentials(config)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errFailedToLoadServerCreds, err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", errInvalidServiceRole, config.Role)
	}

	slog.Info("Initialized TLS provider", "role", config.Role, "cert_dir", config.CertDir)

	return provider, nil
}

func (*TLSProvider) Close() error {
	return nil
}

func (p *TLSProvider) GetClientCredentials(context.Context) (grpc.DialOption, error) {
	if p.clientCreds == nil {
		return nil, errServiceNotClient
	}

	return grpc.WithTransportCredentials(p.clientCreds), nil
}

func (p *TLSProvider) GetServerCredentials(context.Context) (grpc.ServerOption, error) {
	if p.serverCreds == nil {
		return nil, errServiceNotServer
	}

	return grpc.Creds(p.serverCreds), nil
}

func loadClientCredentials(config *models.SecurityConfig) (credentials.TransportCredentials, error) {
	caPool, err := loadCAPool(config.CertDir)
	if err != nil {
		return nil, err
	}

	return credentials.NewTLS(&tls.Config{
		RootCAs:    caPool,
		ServerName: config.ServerName,
		MinVersion: tls.VersionTLS13,
	}), nil
}

func loadServerCredentials(config *models.SecurityConfig) (credentials.TransportCredentials, error) {
	if err := NewCertificateManager(config).ValidateServerCertificates(); err != nil {
		return nil, err
	}

	certificate, err := tls.LoadX509KeyPair(
		filepath.Join(config.CertDir, serverCertFile),
		filepath.Join(config.CertDir, serverKeyFile))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errFailedToLoadServerCert, err)
	}

	return credentials.NewTLS(&tls.Config{
		Certificates: []tls.Certificate{certificate},
		MinVersion:   tls.VersionTLS13,
	}), nil
}

func loadCAPool(certDir string) (*x509.CertPool, error) {
	caCert, err := os.ReadFile(filepath.Join(certDir, caCertFile))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errFailedToReadCACert, err)
	}

	caPool := x509.NewCertPool()
	if !caPool.AppendCertsFromPEM(caCert) {
		return nil, fmt.Errorf("%w: %s", errFailedToAppendCACert, caCertFile)
	}

	return caPool, nil
}

// NewSecurityProvider creates the appropriate security provider based on mode.
func NewSecurityProvider(_ context.Context, config *models.SecurityConfig) (SecurityProvider, error) {
	if config == nil {
		slog.Debug("No security config provided, using no security")

		return &NoSecurityProvider{}, nil
	}

	switch config.Mode {
	case models.SecurityModeNone, "":
		return &NoSecurityProvider{}, nil
	case models.SecurityModeTLS:
		provider, err := NewTLSProvider(config)
		if err != nil {
			return nil, err
		}

		return provider, nil
	default:
		return nil, fmt.Errorf("%w: %s", errUnknownSecurityMode, config.Mode)
	}
}
