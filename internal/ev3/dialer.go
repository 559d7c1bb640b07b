// Package ev3 implements the transport backend for ev3dev bricks:
// command execution over SSH and file transfer over SFTP.
package ev3

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/NStrijbosch/pybricksdev/internal/transport"
)

// ev3dev factory defaults.
const (
	DefaultUser     = "robot"
	DefaultPassword = "maker"
	DefaultPort     = "22"
)

// Config carries the SSH credentials and dial options for one or more
// bricks.
type Config struct {
	User     string
	Password string

	// KeyPath enables public-key auth in addition to the password.
	KeyPath    string
	Passphrase []byte

	KnownHostsPath              string
	InsecureSkipHostKeyChecking bool

	Timeout time.Duration
}

// DefaultConfig returns the factory-default credentials.
func DefaultConfig() Config {
	return Config{
		User:     DefaultUser,
		Password: DefaultPassword,
		Timeout:  10 * time.Second,
	}
}

// Dialer builds SSH transport handles for brick addresses.
type Dialer struct {
	Config Config
}

// Dial establishes the SSH connection for the address and wraps it as
// a transport handle.
func (d Dialer) Dial(ctx context.Context, address transport.Address) (transport.Handle, error) {
	hostPort, err := hostPort(string(address))
	if err != nil {
		return nil, err
	}

	config, err := d.clientConfig()
	if err != nil {
		return nil, err
	}

	netDialer := net.Dialer{Timeout: d.Config.Timeout}
	conn, err := netDialer.DialContext(ctx, "tcp", hostPort)
	if err != nil {
		return nil, err
	}

	clientConn, chans, reqs, err := ssh.NewClientConn(conn, hostPort, config)
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &Handle{client: ssh.NewClient(clientConn, chans, reqs)}, nil
}

func hostPort(address string) (string, error) {
	host := strings.TrimSpace(address)
	if host == "" {
		return "", fmt.Errorf("ev3: address is required")
	}
	if _, _, err := net.SplitHostPort(host); err == nil {
		return host, nil
	}
	return net.JoinHostPort(host, DefaultPort), nil
}

func (d Dialer) clientConfig() (*ssh.ClientConfig, error) {
	cfg := d.Config
	if cfg.User == "" {
		return nil, fmt.Errorf("ev3: ssh user is required")
	}

	var auth []ssh.AuthMethod
	if cfg.Password != "" {
		auth = append(auth, ssh.Password(cfg.Password))
	}
	if cfg.KeyPath != "" {
		signer, err := cfg.signer()
		if err != nil {
			return nil, err
		}
		auth = append(auth, ssh.PublicKeys(signer))
	}
	if len(auth) == 0 {
		return nil, fmt.Errorf("ev3: password or key path is required")
	}

	var hostKeyCallback ssh.HostKeyCallback
	if cfg.InsecureSkipHostKeyChecking {
		hostKeyCallback = ssh.InsecureIgnoreHostKey()
	} else {
		callback, err := cfg.knownHostsCallback()
		if err != nil {
			return nil, err
		}
		hostKeyCallback = callback
	}

	return &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            auth,
		HostKeyCallback: hostKeyCallback,
		Timeout:         cfg.Timeout,
	}, nil
}

func (c Config) signer() (ssh.Signer, error) {
	privateKey, err := os.ReadFile(c.KeyPath)
	if err != nil {
		return nil, err
	}
	if len(c.Passphrase) > 0 {
		return ssh.ParsePrivateKeyWithPassphrase(privateKey, c.Passphrase)
	}
	return ssh.ParsePrivateKey(privateKey)
}

func (c Config) knownHostsCallback() (ssh.HostKeyCallback, error) {
	path := strings.TrimSpace(c.KnownHostsPath)
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("ev3: known hosts path not set and home dir unavailable")
		}
		path = filepath.Join(home, ".ssh", "known_hosts")
	}
	return knownhosts.New(path)
}
